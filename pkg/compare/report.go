package compare

import (
	"time"

	"github.com/agentstation/etlrecon/pkg/differ"
	"github.com/agentstation/etlrecon/pkg/match"
)

// FileStatus is the outcome of comparing one ETL file.
type FileStatus string

const (
	// StatusOK means every row and column matched.
	StatusOK FileStatus = "OK"
	// StatusMismatches means at least one row or column differed.
	StatusMismatches FileStatus = "MISMATCHES_FOUND"
	// StatusNoS3File means no S3 file shares the ETL file's key.
	StatusNoS3File FileStatus = "NO_S3_FILE"
	// StatusReadError means one of the files could not be read.
	StatusReadError FileStatus = "READ_ERROR"
	// StatusParseError means one of the files could not be parsed.
	StatusParseError FileStatus = "PARSE_ERROR"
)

// IsError reports whether the status stands for a failed comparison.
func (s FileStatus) IsError() bool {
	return s == StatusReadError || s == StatusParseError
}

// FileReport is the comparison result of one ETL file.
type FileReport struct {
	Key           string             `json:"key" yaml:"key"`
	ETLPath       string             `json:"etl_path" yaml:"etl_path"`
	S3Path        string             `json:"s3_path,omitempty" yaml:"s3_path,omitempty"`
	Status        FileStatus         `json:"status" yaml:"status"`
	RowCountETL   int                `json:"row_count_etl" yaml:"row_count_etl"`
	RowCountS3    int                `json:"row_count_s3" yaml:"row_count_s3"`
	Columns       differ.ColumnDiff  `json:"columns" yaml:"columns"`
	Rows          []differ.RowResult `json:"rows,omitempty" yaml:"rows,omitempty"`
	Error         string             `json:"error,omitempty" yaml:"error,omitempty"`
	AmbiguousWith []string           `json:"ambiguous_with,omitempty" yaml:"ambiguous_with,omitempty"`
}

// Summary counts the row results of the report.
func (r *FileReport) Summary() differ.Summary {
	return differ.Summarize(r.Rows)
}

// ProjectSummary aggregates the file reports of one project.
type ProjectSummary struct {
	Project     string            `json:"project" yaml:"project"`
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at"`
	ETLDir      string            `json:"etl_dir" yaml:"etl_dir"`
	S3Dir       string            `json:"s3_dir" yaml:"s3_dir"`
	Files       []FileReport      `json:"files" yaml:"files"`
	UnclaimedS3 []string          `json:"unclaimed_s3,omitempty" yaml:"unclaimed_s3,omitempty"`
	Collisions  []match.Collision `json:"key_collisions,omitempty" yaml:"key_collisions,omitempty"`
}

// Totals are the derived counters of a ProjectSummary.
type Totals struct {
	Files      int `json:"files" yaml:"files"`
	OK         int `json:"ok" yaml:"ok"`
	Mismatches int `json:"mismatches" yaml:"mismatches"`
	NoS3File   int `json:"no_s3_file" yaml:"no_s3_file"`
	Errors     int `json:"errors" yaml:"errors"`
	Ambiguous  int `json:"ambiguous" yaml:"ambiguous"`
	RowsETL    int `json:"rows_etl" yaml:"rows_etl"`
	RowsS3     int `json:"rows_s3" yaml:"rows_s3"`
}

// Totals computes the counters over all file reports.
func (s *ProjectSummary) Totals() Totals {
	t := Totals{Files: len(s.Files)}
	for i := range s.Files {
		f := &s.Files[i]
		switch {
		case f.Status == StatusOK:
			t.OK++
		case f.Status == StatusMismatches:
			t.Mismatches++
		case f.Status == StatusNoS3File:
			t.NoS3File++
		case f.Status.IsError():
			t.Errors++
		}
		if len(f.AmbiguousWith) > 0 {
			t.Ambiguous++
		}
		t.RowsETL += f.RowCountETL
		t.RowsS3 += f.RowCountS3
	}
	return t
}

// Missing returns the reports of ETL files without an S3 counterpart.
func (s *ProjectSummary) Missing() []FileReport {
	var out []FileReport
	for _, f := range s.Files {
		if f.Status == StatusNoS3File {
			out = append(out, f)
		}
	}
	return out
}
