package compare

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/etlrecon/internal/appcontext"
	"github.com/agentstation/etlrecon/pkg/constants"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
	"github.com/agentstation/etlrecon/pkg/project"
)

const projectsYAML = `
output_dir: output
projects:
  chama:
    description: Chama ETL
    s3_comparison:
      s3_path: input/chama/s3
  portal:
    s3_comparison:
      s3_path: input/portal/s3
  sem_s3:
    config_path: domains/sem_s3
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setup(t *testing.T) *project.Config {
	t.Helper()
	root := t.TempDir()
	cfg, err := project.Parse([]byte(projectsYAML), root)
	require.NoError(t, err)

	chama := cfg.Projects["chama"]
	writeFile(t, filepath.Join(chama.ETLDir(), "clientes_20240101.csv"), "id;nome\n1;Ana\n2;Bia\n")
	writeFile(t, filepath.Join(chama.S3Dir(), "clientes.csv"), "id,nome\n1,Ana\n2,Bea\n")
	writeFile(t, filepath.Join(chama.ETLDir(), "pedidos.csv"), "id\n1\n")

	portal := cfg.Projects["portal"]
	writeFile(t, filepath.Join(portal.ETLDir(), "contas.csv"), "id\n7\n")
	writeFile(t, filepath.Join(portal.S3Dir(), "contas_20240301_1200.csv"), "id\n7\n")
	return cfg
}

func execute(t *testing.T, cfg *project.Config, format string, args ...string) (string, error) {
	t.Helper()
	tl := logging.NewTestLogger(t)
	app := &appcontext.Mock{
		ProjectsFunc:     func() (*project.Config, error) { return cfg, nil },
		LoggerFunc:       func() *zerolog.Logger { return tl.Logger },
		OutputFormatFunc: func() string { return format },
	}

	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCompareCommandProject(t *testing.T) {
	cfg := setup(t)

	out, err := execute(t, cfg, "json", "--project", "chama")
	require.NoError(t, err)

	var summaries []struct {
		Project string `json:"project"`
		Files   []struct {
			Key    string `json:"key"`
			Status string `json:"status"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "chama", summaries[0].Project)
	require.Len(t, summaries[0].Files, 2)
	assert.Equal(t, "clientes", summaries[0].Files[0].Key)
	assert.Equal(t, "MISMATCHES_FOUND", summaries[0].Files[0].Status)
	assert.Equal(t, "NO_S3_FILE", summaries[0].Files[1].Status)

	dir := cfg.Projects["chama"].ComparisonDir()
	for _, name := range []string{
		"clientes" + constants.ComparedFileSuffix,
		constants.SummaryFile,
		constants.ConsolidatedFile,
		constants.MissingFile,
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.FileExists(t, filepath.Join(cfg.OutputDir, constants.MergedConsolidatedFile))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, constants.MergedMissingFile))
	assert.NoFileExists(t, filepath.Join(dir, constants.WorkbookFile))
}

func TestCompareCommandAllJoinsProjectErrors(t *testing.T) {
	cfg := setup(t)

	out, err := execute(t, cfg, "table", "--all", "--xlsx")
	require.Error(t, err)

	var projectErr *errors.ProjectError
	require.True(t, errors.As(err, &projectErr))
	assert.Equal(t, "sem_s3", projectErr.Project)
	assert.True(t, errors.IsConfigError(err))

	assert.Contains(t, out, "chama")
	assert.Contains(t, out, "portal")
	assert.FileExists(t, filepath.Join(cfg.Projects["chama"].ComparisonDir(), constants.WorkbookFile))
	assert.FileExists(t, filepath.Join(cfg.Projects["portal"].ComparisonDir(), constants.SummaryFile))
}

func TestCompareCommandRequiresSelection(t *testing.T) {
	cfg := setup(t)
	_, err := execute(t, cfg, "table")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestCompareCommandUnknownProject(t *testing.T) {
	cfg := setup(t)
	_, err := execute(t, cfg, "table", "-p", "nope")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCompareCommandUnknownNextToKnown(t *testing.T) {
	cfg := setup(t)
	out, err := execute(t, cfg, "json", "-p", "chama", "-p", "typo")
	require.Error(t, err)

	var projectErr *errors.ProjectError
	require.True(t, errors.As(err, &projectErr))
	assert.Equal(t, "typo", projectErr.Project)
	assert.True(t, errors.IsNotFound(err))

	var summaries []struct {
		Project string `json:"project"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "chama", summaries[0].Project)
	assert.FileExists(t, filepath.Join(cfg.Projects["chama"].ComparisonDir(), constants.SummaryFile))
}

func TestRunCanceled(t *testing.T) {
	cfg := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summaries, err := Run(ctx, cfg, []*project.Project{cfg.Projects["chama"]}, Options{Workers: 1})
	require.Error(t, err)
	assert.Empty(t, summaries)
	assert.ErrorIs(t, err, context.Canceled)
}
