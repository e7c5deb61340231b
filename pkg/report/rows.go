package report

import (
	"strconv"
	"strings"

	"github.com/agentstation/etlrecon/pkg/compare"
)

// Column headers of the generated CSV files.
var (
	FileHeader         = []string{"linha", "status_linha", "coluna", "valor_etl", "valor_s3", "igual"}
	SummaryHeader      = []string{"arquivo", "status", "linhas_etl", "linhas_s3", "linhas_iguais", "linhas_divergentes", "colunas_so_etl", "colunas_so_s3", "arquivo_etl", "arquivo_s3", "ambiguo_com", "erro", "relatorio"}
	ConsolidatedHeader = []string{"projeto", "arquivo", "status_arquivo", "linha", "status_linha", "coluna", "valor_etl", "valor_s3", "igual"}
	MissingHeader      = []string{"projeto", "arquivo", "arquivo_etl"}
)

// fileRows flattens the verdicts of one report, one line per cell.
func fileRows(f *compare.FileReport) [][]string {
	out := make([][]string, 0, len(f.Rows))
	for _, r := range f.Rows {
		for _, v := range r.Verdicts {
			out = append(out, []string{
				strconv.Itoa(r.Index + 1),
				string(r.Status),
				v.Column,
				v.ETL.String(),
				v.S3.String(),
				strconv.FormatBool(v.Equal),
			})
		}
	}
	return out
}

func summaryRows(s *compare.ProjectSummary) [][]string {
	names := FileNames(s.Files)
	out := make([][]string, 0, len(s.Files))
	for i := range s.Files {
		f := &s.Files[i]
		sum := f.Summary()
		out = append(out, []string{
			f.Key,
			string(f.Status),
			strconv.Itoa(f.RowCountETL),
			strconv.Itoa(f.RowCountS3),
			strconv.Itoa(sum.Match),
			strconv.Itoa(sum.Differences()),
			strings.Join(f.Columns.OnlyETL, "|"),
			strings.Join(f.Columns.OnlyS3, "|"),
			f.ETLPath,
			f.S3Path,
			strings.Join(f.AmbiguousWith, "|"),
			f.Error,
			names[i],
		})
	}
	return out
}

// consolidatedRows lists every verdict of every file. Files without row
// results still contribute one line carrying their status.
func consolidatedRows(s *compare.ProjectSummary) [][]string {
	var out [][]string
	for i := range s.Files {
		f := &s.Files[i]
		rows := fileRows(f)
		if len(rows) == 0 {
			out = append(out, []string{s.Project, f.Key, string(f.Status), "", "", "", "", "", ""})
			continue
		}
		for _, r := range rows {
			out = append(out, append([]string{s.Project, f.Key, string(f.Status)}, r...))
		}
	}
	return out
}

func missingRows(s *compare.ProjectSummary) [][]string {
	missing := s.Missing()
	out := make([][]string, 0, len(missing))
	for _, f := range missing {
		out = append(out, []string{s.Project, f.Key, f.ETLPath})
	}
	return out
}
