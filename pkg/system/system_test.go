package system_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/etlrecon/pkg/catalog"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
	"github.com/agentstation/etlrecon/pkg/system"
)

const systemJSON = `[
  {"tabela": "tb_clientes", "colunas_nao_utilizadas": {"Data de Cadastro": "DT_CADASTRO ", "Apelido": null}},
  {"tabela": "tb_pedidos", "colunas_nao_utilizadas": ["status", null]},
  {"tabela": "tb_vazia"},
  {"colunas_nao_utilizadas": ["sem_tabela"]}
]`

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{Files: []catalog.File{
		{Name: "clientes", Mappings: []catalog.Mapping{{
			Map:   "map_clientes",
			Table: "tb_clientes",
			Fields: []catalog.Field{
				{Source: "ID_CLIENTE", Target: "id", Type: "int"},
				{Source: "DT_CAD", Target: "dt_cadastro", Type: "date"},
			},
		}}},
		{Name: "pedidos", Mappings: []catalog.Mapping{
			{
				Map:   "map_pedidos",
				Table: "tb_pedidos",
				Fields: []catalog.Field{
					{Source: "NR_PEDIDO", Target: "numero", Type: "int"},
					{Source: "ST_PEDIDO", Target: "Status", Type: "string"},
				},
			},
			{
				Map:    "map_itens",
				Table:  "tb_itens",
				Fields: []catalog.Field{{Source: "NR_ITEM", Target: "item", Type: "int"}},
			},
		}},
	}}
}

func TestParse(t *testing.T) {
	idx, err := system.Parse(context.Background(), []byte(systemJSON), "chama_system.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"tb_clientes", "tb_pedidos", "tb_vazia"}, idx.Names())
	assert.Equal(t, map[string]string{"dt_cadastro": "Data de Cadastro"}, idx["tb_clientes"].Unused)
	assert.Equal(t, map[string]string{"status": ""}, idx["tb_pedidos"].Unused)
	assert.Empty(t, idx["tb_vazia"].Unused)

	assert.True(t, idx["tb_pedidos"].IsUnused(" STATUS"))
	assert.False(t, idx["tb_pedidos"].IsUnused("numero"))
	assert.False(t, idx["tb_itens"].IsUnused("item"))
}

func TestParseYAML(t *testing.T) {
	doc := `
- tabela: tb_clientes
  colunas_nao_utilizadas:
    - apelido
- tabela: tb_clientes
  colunas_nao_utilizadas:
    Nome Social: nome_social
`
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	idx, err := system.Parse(ctx, []byte(doc), "system.yaml")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"nome_social": "Nome Social"}, idx["tb_clientes"].Unused)
	assert.True(t, tl.ContainsAll("System table listed twice", "tb_clientes"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not a list", doc: `{"tabela": "tb_clientes"}`},
		{name: "no tables", doc: `[]`},
		{name: "only unnamed entries", doc: `[{"colunas_nao_utilizadas": ["a"]}]`},
		{name: "unused columns as scalar", doc: `[{"tabela": "t", "colunas_nao_utilizadas": "a"}]`},
		{name: "invalid document", doc: `[{"tabela": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := system.Parse(context.Background(), []byte(tt.doc), "system.json")
			require.Error(t, err)
			assert.True(t, errors.IsParseError(err))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := system.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
}

func TestCompare(t *testing.T) {
	idx, err := system.Parse(context.Background(), []byte(systemJSON), "chama_system.json")
	require.NoError(t, err)
	generatedAt := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	r := system.Compare("chama", testCatalog(), idx, generatedAt)

	assert.Equal(t, "chama", r.Project)
	assert.Equal(t, generatedAt, r.GeneratedAt)
	assert.Equal(t, 2, r.ETL.TotalFiles)
	assert.Equal(t, 3, r.System.TotalTables)
	require.Len(t, r.Files, 2)

	clientes := r.Files[0].Mappings[0]
	assert.True(t, clientes.HasSystemData)
	assert.Equal(t, 1, clientes.SystemUnusedColumnsCount)
	assert.True(t, clientes.Fields[0].IsUsedInSystem)
	assert.False(t, clientes.Fields[1].IsUsedInSystem)
	assert.Equal(t, system.UsageStats{TotalFields: 2, UsedCount: 1, UnusedCount: 1}, clientes.Statistics)

	pedidos := r.Files[1].Mappings[0]
	assert.False(t, pedidos.Fields[1].IsUsedInSystem, "target matching ignores case")

	itens := r.Files[1].Mappings[1]
	assert.False(t, itens.HasSystemData)
	assert.Zero(t, itens.SystemUnusedColumnsCount)
	assert.True(t, itens.Fields[0].IsUsedInSystem, "fields of unknown tables count as used")

	assert.Equal(t, []system.Orphan{{FileName: "pedidos", Map: "map_itens", Table: "tb_itens", FieldsCount: 1}}, r.WithoutSystem)
	assert.Equal(t, 1, r.WithoutSystemCount)

	fields, used, unused := r.Totals()
	assert.Equal(t, 5, fields)
	assert.Equal(t, 3, used)
	assert.Equal(t, 2, unused)
}

func TestCompareEmptyCatalog(t *testing.T) {
	idx := system.Index{"tb": {Name: "tb", Unused: map[string]string{}}}
	r := system.Compare("vazio", &catalog.Catalog{}, idx, time.Time{})

	assert.Empty(t, r.Files)
	assert.NotNil(t, r.WithoutSystem)
	assert.Zero(t, r.WithoutSystemCount)
}

func TestWrite(t *testing.T) {
	idx, err := system.Parse(context.Background(), []byte(systemJSON), "chama_system.json")
	require.NoError(t, err)
	r := system.Compare("chama", testCatalog(), idx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	dir := filepath.Join(t.TempDir(), "etl_vs_system")
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	written, err := system.Write(ctx, dir, r)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "etl_vs_system_metadata.json"),
		filepath.Join(dir, "etl_vs_system_fields.csv"),
	}, written)
	assert.True(t, tl.ContainsAll("System comparison written", `"unused":2`))

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	var decoded struct {
		ETL struct {
			TotalFiles int `json:"total_files"`
		} `json:"etl_metadata"`
		Files []struct {
			FileName string `json:"file_name"`
			Mappings []struct {
				HasSystemData bool `json:"has_system_data"`
				Fields        []struct {
					Target         string `json:"target"`
					IsUsedInSystem bool   `json:"is_used_in_system"`
				} `json:"fields"`
			} `json:"mappings"`
		} `json:"files"`
		WithoutSystemCount int `json:"etl_without_system_count"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.ETL.TotalFiles)
	assert.Equal(t, "clientes", decoded.Files[0].FileName)
	assert.Equal(t, "dt_cadastro", decoded.Files[0].Mappings[0].Fields[1].Target)
	assert.False(t, decoded.Files[0].Mappings[0].Fields[1].IsUsedInSystem)
	assert.Equal(t, 1, decoded.WithoutSystemCount)

	f, err := os.Open(written[1])
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, system.FieldsHeader, records[0])
	assert.Equal(t, []string{"clientes", "map_clientes", "tb_clientes", "DT_CAD", "dt_cadastro", "date", "false"}, records[2])
	assert.Equal(t, []string{"pedidos", "map_itens", "tb_itens", "NR_ITEM", "item", "int", "true"}, records[5])
}
