package differ

import (
	"fmt"
	"strings"

	"github.com/agentstation/etlrecon/pkg/tabular"
)

// RowStatus is the outcome of comparing one row position.
type RowStatus string

const (
	// RowMatch means every column of the row compared equal.
	RowMatch RowStatus = "MATCH"
	// RowMismatch means at least one column differed.
	RowMismatch RowStatus = "MISMATCH"
	// RowMissingInS3 means the ETL table has the row but the S3 table does not.
	RowMissingInS3 RowStatus = "MISSING_IN_S3"
	// RowMissingInETL means the S3 table has the row but the ETL table does not.
	RowMissingInETL RowStatus = "MISSING_IN_ETL"
)

// CellVerdict is the comparison of one column at one row position. Equal
// holds when both values are present and equal, or when the column exists on
// both sides and both rows were padded there.
type CellVerdict struct {
	Column string        `json:"column" yaml:"column"`
	ETL    tabular.Value `json:"etl" yaml:"etl"`
	S3     tabular.Value `json:"s3" yaml:"s3"`
	Equal  bool          `json:"equal" yaml:"equal"`
}

// RowResult holds the verdicts of one row position, in column-union order.
type RowResult struct {
	Index    int           `json:"index" yaml:"index"`
	Verdicts []CellVerdict `json:"verdicts" yaml:"verdicts"`
	Status   RowStatus     `json:"status" yaml:"status"`
}

// ColumnDiff compares the column sets of two tables.
type ColumnDiff struct {
	InBoth  []string `json:"in_both" yaml:"in_both"`
	OnlyETL []string `json:"only_etl" yaml:"only_etl"`
	OnlyS3  []string `json:"only_s3" yaml:"only_s3"`
}

// Identical reports whether both tables had the same columns.
func (c ColumnDiff) Identical() bool {
	return len(c.OnlyETL) == 0 && len(c.OnlyS3) == 0
}

// Summary counts row results by status.
type Summary struct {
	Match        int
	Mismatch     int
	MissingInS3  int
	MissingInETL int
	Cells        int
	CellsDiffer  int
}

// Summarize counts the statuses and unequal cells of results.
func Summarize(results []RowResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case RowMatch:
			s.Match++
		case RowMismatch:
			s.Mismatch++
		case RowMissingInS3:
			s.MissingInS3++
		case RowMissingInETL:
			s.MissingInETL++
		}
		for _, v := range r.Verdicts {
			s.Cells++
			if !v.Equal {
				s.CellsDiffer++
			}
		}
	}
	return s
}

// Differences is the number of rows that did not match.
func (s Summary) Differences() int {
	return s.Mismatch + s.MissingInS3 + s.MissingInETL
}

// String returns a human-readable summary.
func (s Summary) String() string {
	if s.Differences() == 0 {
		return fmt.Sprintf("%d rows match", s.Match)
	}
	var parts []string
	if s.Mismatch > 0 {
		parts = append(parts, fmt.Sprintf("%d mismatched", s.Mismatch))
	}
	if s.MissingInS3 > 0 {
		parts = append(parts, fmt.Sprintf("%d missing in S3", s.MissingInS3))
	}
	if s.MissingInETL > 0 {
		parts = append(parts, fmt.Sprintf("%d missing in ETL", s.MissingInETL))
	}
	return fmt.Sprintf("%d rows match, %s", s.Match, strings.Join(parts, ", "))
}
