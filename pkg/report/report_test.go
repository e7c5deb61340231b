package report_test

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
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/etlrecon/pkg/compare"
	"github.com/agentstation/etlrecon/pkg/constants"
	"github.com/agentstation/etlrecon/pkg/differ"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/project"
	"github.com/agentstation/etlrecon/pkg/report"
	"github.com/agentstation/etlrecon/pkg/tabular"
)

func sampleSummary() *compare.ProjectSummary {
	return &compare.ProjectSummary{
		Project:     "chama",
		GeneratedAt: time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC),
		Files: []compare.FileReport{
			{
				Key:         "clientes",
				ETLPath:     "/etl/clientes.csv",
				S3Path:      "/s3/clientes_20240115.csv",
				Status:      compare.StatusMismatches,
				RowCountETL: 2,
				RowCountS3:  1,
				Columns:     differ.ColumnDiff{InBoth: []string{"id"}},
				Rows: []differ.RowResult{
					{Index: 0, Status: differ.RowMatch, Verdicts: []differ.CellVerdict{
						{Column: "id", ETL: tabular.Present("1"), S3: tabular.Present("1"), Equal: true},
					}},
					{Index: 1, Status: differ.RowMissingInS3, Verdicts: []differ.CellVerdict{
						{Column: "id", ETL: tabular.Present("2"), S3: tabular.Absent},
					}},
				},
			},
			{
				Key:     "pedidos",
				ETLPath: "/etl/pedidos.csv",
				Status:  compare.StatusNoS3File,
			},
			{
				Key:     "produtos",
				ETLPath: "/etl/produtos.csv",
				S3Path:  "/s3/produtos.csv",
				Status:  compare.StatusParseError,
				Error:   "s3: csv parse error: empty file",
			},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "s3_vs_etl")
	w := report.NewWriter(dir, report.WithWorkbook(true))

	written, err := w.Write(context.Background(), sampleSummary())
	require.NoError(t, err)
	assert.Len(t, written, 7)

	t.Run("per-file report only for compared files", func(t *testing.T) {
		recs := readCSV(t, filepath.Join(dir, "clientes"+constants.ComparedFileSuffix))
		assert.Equal(t, [][]string{
			report.FileHeader,
			{"1", "MATCH", "id", "1", "1", "true"},
			{"2", "MISSING_IN_S3", "id", "2", "", "false"},
		}, recs)
		assert.NoFileExists(t, filepath.Join(dir, "pedidos"+constants.ComparedFileSuffix))
		assert.NoFileExists(t, filepath.Join(dir, "produtos"+constants.ComparedFileSuffix))
	})

	t.Run("summary lists every file", func(t *testing.T) {
		recs := readCSV(t, filepath.Join(dir, constants.SummaryFile))
		require.Len(t, recs, 4)
		assert.Equal(t, report.SummaryHeader, recs[0])
		assert.Equal(t, []string{"clientes", "MISMATCHES_FOUND", "2", "1", "1", "1"}, recs[1][:6])
		assert.Equal(t, "NO_S3_FILE", recs[2][1])
		assert.Equal(t, "PARSE_ERROR", recs[3][1])
		assert.Equal(t, "s3: csv parse error: empty file", recs[3][11])
	})

	t.Run("consolidated keeps files without rows", func(t *testing.T) {
		recs := readCSV(t, filepath.Join(dir, constants.ConsolidatedFile))
		require.Len(t, recs, 5)
		assert.Equal(t, report.ConsolidatedHeader, recs[0])
		assert.Equal(t, []string{"chama", "clientes", "MISMATCHES_FOUND", "1", "MATCH", "id", "1", "1", "true"}, recs[1])
		assert.Equal(t, []string{"chama", "pedidos", "NO_S3_FILE", "", "", "", "", "", ""}, recs[3])
		assert.Equal(t, "PARSE_ERROR", recs[4][2])
	})

	t.Run("missing report", func(t *testing.T) {
		recs := readCSV(t, filepath.Join(dir, constants.MissingFile))
		assert.Equal(t, [][]string{
			report.MissingHeader,
			{"chama", "pedidos", "/etl/pedidos.csv"},
		}, recs)
	})

	t.Run("json", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, constants.SummaryJSONFile))
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, "chama", doc["project"])
		totals := doc["totals"].(map[string]any)
		assert.EqualValues(t, 3, totals["files"])
		assert.EqualValues(t, 1, totals["no_s3_file"])
		assert.Contains(t, string(data), `"s3": null`)
	})

	t.Run("markdown", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, constants.SummaryMarkdownFile))
		require.NoError(t, err)
		out := string(data)
		assert.Contains(t, out, "# Comparação S3 vs ETL: chama")
		assert.Contains(t, out, "Arquivos ETL sem S3")
		assert.Contains(t, out, "`pedidos`")
	})

	t.Run("workbook", func(t *testing.T) {
		f, err := excelize.OpenFile(filepath.Join(dir, constants.WorkbookFile))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		assert.Equal(t, []string{"Resumo", "Sem S3"}, f.GetSheetList())
		rows, err := f.GetRows("Resumo")
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "arquivo", rows[0][0])

		missing, err := f.GetRows("Sem S3")
		require.NoError(t, err)
		require.Len(t, missing, 2)
		assert.Equal(t, "pedidos", missing[1][1])
	})
}

func TestWriteDefaults(t *testing.T) {
	dir := t.TempDir()
	written, err := report.NewWriter(dir, report.WithJSON(false), report.WithMarkdown(false)).
		Write(context.Background(), &compare.ProjectSummary{Project: "vazio"})
	require.NoError(t, err)
	assert.Len(t, written, 3)
	assert.NoFileExists(t, filepath.Join(dir, constants.WorkbookFile))

	recs := readCSV(t, filepath.Join(dir, constants.MissingFile))
	assert.Equal(t, [][]string{report.MissingHeader}, recs)
}

func TestWriteUnwritableDir(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := report.NewWriter(filepath.Join(blocker, "out")).Write(context.Background(), sampleSummary())
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
}

func writeCSVFile(t *testing.T, path string, recs [][]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(recs))
	require.NoError(t, f.Close())
}

func TestMerge(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "chama", constants.ConsolidatedFile)
	b := filepath.Join(root, "portal", constants.ConsolidatedFile)
	writeCSVFile(t, a, [][]string{{"projeto", "arquivo"}, {"chama", "x"}})
	writeCSVFile(t, b, [][]string{{"projeto", "arquivo"}, {"portal", "y"}, {"portal", "z"}})

	out := filepath.Join(root, "geral", constants.MergedConsolidatedFile)
	n, err := report.Merge(context.Background(), out, []string{a, filepath.Join(root, "missing.csv"), b})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, [][]string{
		{"projeto", "arquivo"},
		{"chama", "x"},
		{"portal", "y"},
		{"portal", "z"},
	}, readCSV(t, out))

	t.Run("header mismatch", func(t *testing.T) {
		c := filepath.Join(root, "other.csv")
		writeCSVFile(t, c, [][]string{{"projeto", "outro"}})
		_, err := report.Merge(context.Background(), out, []string{a, c})
		require.Error(t, err)
		assert.True(t, errors.IsParseError(err))
	})

	t.Run("no inputs", func(t *testing.T) {
		none := filepath.Join(root, "none.csv")
		n, err := report.Merge(context.Background(), none, []string{filepath.Join(root, "nope.csv")})
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoFileExists(t, none)
	})
}

func TestMergeProjects(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	var dirs []string
	for _, name := range []string{"chama", "portal_turbo"} {
		dir := filepath.Join(root, name, "s3_vs_etl")
		s := sampleSummary()
		s.Project = name
		_, err := report.NewWriter(dir).Write(ctx, s)
		require.NoError(t, err)
		dirs = append(dirs, dir)
	}

	written, err := report.MergeProjects(ctx, root, dirs)
	require.NoError(t, err)
	require.Len(t, written, 2)

	consolidated := readCSV(t, filepath.Join(root, constants.MergedConsolidatedFile))
	assert.Len(t, consolidated, 1+2*4)
	missing := readCSV(t, filepath.Join(root, constants.MergedMissingFile))
	assert.Equal(t, [][]string{
		report.MissingHeader,
		{"chama", "pedidos", "/etl/pedidos.csv"},
		{"portal_turbo", "pedidos", "/etl/pedidos.csv"},
	}, missing)
}

func TestFileNames(t *testing.T) {
	tests := []struct {
		name  string
		files []compare.FileReport
		want  []string
	}{
		{
			name: "unique keys",
			files: []compare.FileReport{
				{Key: "clientes", ETLPath: "/etl/clientes.csv", Status: compare.StatusOK},
				{Key: "pedidos", ETLPath: "/etl/pedidos.csv", Status: compare.StatusNoS3File},
				{Key: "produtos", ETLPath: "/etl/produtos.csv", Status: compare.StatusReadError},
			},
			want: []string{"clientes_comparado.csv", "", ""},
		},
		{
			name: "shared key uses the etl file name",
			files: []compare.FileReport{
				{Key: "vendas", ETLPath: "/etl/vendas.csv", Status: compare.StatusOK},
				{Key: "vendas", ETLPath: "/etl/vendas_20240101_0000.csv", Status: compare.StatusMismatches},
			},
			want: []string{"vendas_comparado.csv", "vendas_20240101_0000_comparado.csv"},
		},
		{
			name: "same etl base name gets a suffix",
			files: []compare.FileReport{
				{Key: "vendas", ETLPath: "/etl/vendas.csv", Status: compare.StatusOK},
				{Key: "vendas", ETLPath: "/etl/vendas.CSV", Status: compare.StatusOK},
			},
			want: []string{"vendas_comparado.csv", "vendas_2_comparado.csv"},
		},
		{
			name: "shared key with one uncompared file",
			files: []compare.FileReport{
				{Key: "vendas", ETLPath: "/etl/vendas_20240101.csv", Status: compare.StatusOK},
				{Key: "vendas", ETLPath: "/etl/vendas_20240102.csv", Status: compare.StatusParseError},
			},
			want: []string{"vendas_comparado.csv", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, report.FileNames(tt.files))
		})
	}
}

func TestWriteSharedKeyKeepsEveryReport(t *testing.T) {
	root := t.TempDir()
	etlDir := filepath.Join(root, "etl")
	s3Dir := filepath.Join(root, "s3")
	writeCSVFile(t, filepath.Join(etlDir, "vendas.csv"), [][]string{{"id"}, {"A"}})
	writeCSVFile(t, filepath.Join(etlDir, "vendas_20240101_0000.csv"), [][]string{{"id"}, {"B"}})
	writeCSVFile(t, filepath.Join(s3Dir, "vendas_20240105_0000.csv"), [][]string{{"id"}, {"A"}})

	p := &project.Project{
		Name:         "chama",
		OutputDir:    root,
		S3Comparison: &project.Comparison{S3Path: s3Dir, ETLPath: etlDir},
	}
	summary, err := compare.NewRunner().Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, summary.Files, 2)
	assert.Equal(t, compare.StatusOK, summary.Files[0].Status)
	assert.Equal(t, compare.StatusMismatches, summary.Files[1].Status)

	dir := p.ComparisonDir()
	written, err := report.NewWriter(dir).Write(context.Background(), summary)
	require.NoError(t, err)

	seen := make(map[string]bool, len(written))
	for _, path := range written {
		assert.False(t, seen[path], "written twice: %s", path)
		seen[path] = true
	}

	assert.Equal(t, [][]string{
		report.FileHeader,
		{"1", "MATCH", "id", "A", "A", "true"},
	}, readCSV(t, filepath.Join(dir, "vendas_comparado.csv")))
	assert.Equal(t, [][]string{
		report.FileHeader,
		{"1", "MISMATCH", "id", "B", "A", "false"},
	}, readCSV(t, filepath.Join(dir, "vendas_20240101_0000_comparado.csv")))

	summaryRecs := readCSV(t, filepath.Join(dir, constants.SummaryFile))
	require.Len(t, summaryRecs, 3)
	last := len(report.SummaryHeader) - 1
	assert.Equal(t, "vendas_comparado.csv", summaryRecs[1][last])
	assert.Equal(t, "vendas_20240101_0000_comparado.csv", summaryRecs[2][last])
}
