package cmdutil

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/project"
)

func testConfig() *project.Config {
	return &project.Config{Projects: map[string]*project.Project{
		"b": {Name: "b"},
		"a": {Name: "a"},
	}}
}

func TestProjectFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{name: "single project", args: []string{"--project", "b"}, want: []string{"b"}},
		{name: "repeated and comma separated", args: []string{"-p", "b,a", "-p", "b"}, want: []string{"b", "a"}},
		{name: "all", args: []string{"--all"}, want: []string{"a", "b"}},
		{name: "nothing selected", args: nil, wantErr: true},
		{name: "unknown project", args: []string{"-p", "zzz"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
			flags := AddProjectFlags(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))

			got, err := flags.Select(testConfig())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			names := make([]string, len(got))
			for i, p := range got {
				names[i] = p.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestProjectFlagsMutuallyExclusive(t *testing.T) {
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	AddProjectFlags(cmd)
	cmd.SetArgs([]string{"--all", "--project", "a"})
	assert.Error(t, cmd.Execute())
}

func TestProjectFlagsNilConfig(t *testing.T) {
	_, err := (&ProjectFlags{All: true}).Select(nil)
	assert.True(t, errors.IsConfigError(err))
}

func TestAddRunFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	opts := AddRunFlags(cmd, 4, true)
	assert.Equal(t, 4, opts.Workers)
	assert.True(t, opts.Workbook)

	require.NoError(t, cmd.ParseFlags([]string{"-w", "8", "--xlsx=false"}))
	assert.Equal(t, 8, opts.Workers)
	assert.False(t, opts.Workbook)
}
