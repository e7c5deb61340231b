// Package table converts comparison and documentation results into rows for
// terminal tables.
package table

import (
	"strconv"
	"strings"

	"github.com/agentstation/etlrecon/internal/cmd/emoji"
	"github.com/agentstation/etlrecon/pkg/compare"
	"github.com/agentstation/etlrecon/pkg/project"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// ProjectsToTableData lists the configured projects.
func ProjectsToTableData(cfg *project.Config, wide bool) Data {
	headers := []string{"Project", "Description", "S3", "Catalog"}
	if wide {
		headers = append(headers, "ETL Dir", "S3 Dir", "Output Dir")
	}

	rows := make([][]string, 0, len(cfg.Projects))
	for _, name := range cfg.Names() {
		p := cfg.Projects[name]
		row := []string{
			name,
			dash(p.Description),
			mark(p.ValidateForComparison() == nil),
			mark(p.ValidateForDocs() == nil),
		}
		if wide {
			row = append(row, p.ETLDir(), dash(p.S3Dir()), p.OutputDir)
		}
		rows = append(rows, row)
	}

	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignCenter, AlignCenter},
	}
}

// SummariesToTableData renders one line per compared project.
func SummariesToTableData(summaries []*compare.ProjectSummary) Data {
	headers := []string{"Project", "Files", "OK", "Mismatches", "No S3", "Errors", "Ambiguous", "Rows ETL", "Rows S3"}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		t := s.Totals()
		rows = append(rows, []string{
			s.Project,
			strconv.Itoa(t.Files),
			strconv.Itoa(t.OK),
			strconv.Itoa(t.Mismatches),
			strconv.Itoa(t.NoS3File),
			strconv.Itoa(t.Errors),
			strconv.Itoa(t.Ambiguous),
			FormatNumber(int64(t.RowsETL)),
			FormatNumber(int64(t.RowsS3)),
		})
	}

	align := make([]Align, len(headers))
	align[0] = AlignLeft
	for i := 1; i < len(align); i++ {
		align[i] = AlignRight
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// FilesToTableData renders one line per compared file of a project.
func FilesToTableData(s *compare.ProjectSummary, wide bool) Data {
	headers := []string{"", "File", "Status", "Rows ETL", "Rows S3", "Matching", "Diverging"}
	if wide {
		headers = append(headers, "Only ETL", "Only S3", "Error")
	}

	rows := make([][]string, 0, len(s.Files))
	for i := range s.Files {
		f := &s.Files[i]
		sum := f.Summary()
		row := []string{
			StatusSymbol(f.Status),
			f.Key,
			string(f.Status),
			strconv.Itoa(f.RowCountETL),
			strconv.Itoa(f.RowCountS3),
			strconv.Itoa(sum.Match),
			strconv.Itoa(sum.Differences()),
		}
		if wide {
			row = append(row,
				dash(strings.Join(f.Columns.OnlyETL, ", ")),
				dash(strings.Join(f.Columns.OnlyS3, ", ")),
				dash(f.Error),
			)
		}
		rows = append(rows, row)
	}

	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignCenter, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight},
	}
}

// StatusSymbol maps a file status to a one-character marker.
func StatusSymbol(s compare.FileStatus) string {
	switch {
	case s == compare.StatusOK:
		return emoji.Success
	case s == compare.StatusMismatches:
		return emoji.Warning
	case s == compare.StatusNoS3File:
		return emoji.Optional
	case s.IsError():
		return emoji.Error
	default:
		return emoji.Unknown
	}
}

// FormatNumber formats large numbers with comma separators.
func FormatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if len(str) <= 3 {
		return str
	}

	var b strings.Builder
	for i, r := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func mark(ok bool) string {
	if ok {
		return emoji.Success
	}
	return emoji.Optional
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
