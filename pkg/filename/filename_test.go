package filename_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/etlrecon/pkg/filename"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "clientes.csv", want: "clientes"},
		{name: "date suffix", in: "clientes_20240115.csv", want: "clientes"},
		{name: "date and time suffix", in: "clientes_20240115_1430.csv", want: "clientes"},
		{name: "date and seconds suffix", in: "clientes_20240115_143001.csv", want: "clientes"},
		{name: "only trailing group stripped", in: "a_20240101_x_20240115_1430.csv", want: "a_20240101_x"},
		{name: "directory removed", in: "/data/s3/chama/pedidos_20231231.csv", want: "pedidos"},
		{name: "no extension", in: "pedidos_20231231", want: "pedidos"},
		{name: "short digits kept", in: "pedidos_2023.csv", want: "pedidos_2023"},
		{name: "time without date kept", in: "pedidos_1430.csv", want: "pedidos_1430"},
		{name: "uppercase extension", in: "Vendas_20240101.CSV", want: "Vendas"},
		{name: "dots in name", in: "v1.2_vendas_20240101.csv", want: "v1.2_vendas"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filename.Normalize(tt.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, in := range []string{"clientes_20240115_1430.csv", "a_20240101_x_20240115.csv", "b.csv"} {
		once := filename.Normalize(in)
		assert.Equal(t, once, filename.Normalize(once+".csv"), in)
	}
}

func TestIsCandidate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"clientes.csv", true},
		{"CLIENTES.CSV", true},
		{"clientes.csv:Zone.Identifier", false},
		{"clientes.csv.Zone.Identifier", false},
		{".hidden.csv", false},
		{"clientes.txt", false},
		{"clientes", false},
		{"clientes.csv.bak", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, filename.IsCandidate(tt.in))
		})
	}
}
