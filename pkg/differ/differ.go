// Package differ compares two tables row by row and column by column.
//
// Rows are aligned by position. The compared columns are the union of both
// headers, ETL columns first, then the columns only S3 has.
package differ

import (
	"strings"

	"github.com/agentstation/etlrecon/internal/matcher"
	"github.com/agentstation/etlrecon/pkg/tabular"
)

// Differ compares an ETL table against its S3 counterpart.
type Differ interface {
	// Compare returns one RowResult per row position of the longer table.
	Compare(etl, s3 *tabular.Table) []RowResult

	// Columns compares the column sets of both tables.
	Columns(etl, s3 *tabular.Table) ColumnDiff
}

type differ struct {
	foldColumns   bool
	foldValues    bool
	ignoreColumns []string
	ignore        *matcher.Set
}

// New creates a Differ. Column names and values are case-sensitive unless
// configured otherwise.
func New(opts ...Option) Differ {
	d := &differ{}
	for _, opt := range opts {
		opt(d)
	}

	mopts := &matcher.Options{CaseInsensitive: d.foldColumns}
	set, err := matcher.NewSet(d.ignoreColumns, mopts)
	if err != nil {
		set = matcher.LiteralSet(d.ignoreColumns, mopts)
	}
	d.ignore = set
	return d
}

// column is one entry of the column union.
type column struct {
	name string
	etl  int
	s3   int
}

func (d *differ) columnKey(name string) string {
	name = strings.TrimSpace(name)
	if d.foldColumns {
		return strings.ToLower(name)
	}
	return name
}

func (d *differ) ignored(key string) bool {
	return d.ignore.Match(key)
}

// union builds the ordered column union with each side's index (-1 if absent).
func (d *differ) union(etl, s3 *tabular.Table) []column {
	s3Index := make(map[string]int, len(s3.Columns))
	for i, c := range s3.Columns {
		k := d.columnKey(c)
		if _, dup := s3Index[k]; !dup {
			s3Index[k] = i
		}
	}

	seen := make(map[string]bool, len(etl.Columns)+len(s3.Columns))
	cols := make([]column, 0, len(etl.Columns)+len(s3.Columns))
	for i, c := range etl.Columns {
		k := d.columnKey(c)
		if seen[k] || d.ignored(k) {
			continue
		}
		seen[k] = true
		j, ok := s3Index[k]
		if !ok {
			j = -1
		}
		cols = append(cols, column{name: strings.TrimSpace(c), etl: i, s3: j})
	}
	for j, c := range s3.Columns {
		k := d.columnKey(c)
		if seen[k] || d.ignored(k) {
			continue
		}
		seen[k] = true
		cols = append(cols, column{name: strings.TrimSpace(c), etl: -1, s3: j})
	}
	return cols
}

// Compare aligns rows by index and compares every union column.
func (d *differ) Compare(etl, s3 *tabular.Table) []RowResult {
	if etl == nil {
		etl = &tabular.Table{}
	}
	if s3 == nil {
		s3 = &tabular.Table{}
	}

	cols := d.union(etl, s3)
	n := max(len(etl.Rows), len(s3.Rows))
	results := make([]RowResult, 0, n)

	for i := 0; i < n; i++ {
		var etlRow, s3Row tabular.Row
		if i < len(etl.Rows) {
			etlRow = etl.Rows[i]
		}
		if i < len(s3.Rows) {
			s3Row = s3.Rows[i]
		}

		verdicts := make([]CellVerdict, len(cols))
		allEqual := true
		for c, col := range cols {
			v := CellVerdict{
				Column: col.name,
				ETL:    cell(etlRow, col.etl),
				S3:     cell(s3Row, col.s3),
			}
			v.Equal = d.equal(v.ETL, v.S3) || bothPadded(etlRow, s3Row, col, v)
			allEqual = allEqual && v.Equal
			verdicts[c] = v
		}

		status := RowMismatch
		switch {
		case etlRow == nil:
			status = RowMissingInETL
		case s3Row == nil:
			status = RowMissingInS3
		case allEqual:
			status = RowMatch
		}

		results = append(results, RowResult{Index: i, Verdicts: verdicts, Status: status})
	}

	return results
}

// Columns compares column names after trimming, in ETL then S3 order.
func (d *differ) Columns(etl, s3 *tabular.Table) ColumnDiff {
	diff := ColumnDiff{InBoth: []string{}, OnlyETL: []string{}, OnlyS3: []string{}}
	if etl == nil {
		etl = &tabular.Table{}
	}
	if s3 == nil {
		s3 = &tabular.Table{}
	}
	for _, col := range d.union(etl, s3) {
		switch {
		case col.etl >= 0 && col.s3 >= 0:
			diff.InBoth = append(diff.InBoth, col.name)
		case col.etl >= 0:
			diff.OnlyETL = append(diff.OnlyETL, col.name)
		default:
			diff.OnlyS3 = append(diff.OnlyS3, col.name)
		}
	}
	return diff
}

// equal compares two present values after trimming.
func (d *differ) equal(a, b tabular.Value) bool {
	if !a.Present || !b.Present {
		return false
	}
	x, y := strings.TrimSpace(a.S), strings.TrimSpace(b.S)
	if d.foldValues {
		return strings.EqualFold(x, y)
	}
	return x == y
}

// bothPadded is true when the column exists on both sides and both rows were
// too short to reach it.
func bothPadded(etlRow, s3Row tabular.Row, col column, v CellVerdict) bool {
	return etlRow != nil && s3Row != nil &&
		col.etl >= 0 && col.s3 >= 0 &&
		!v.ETL.Present && !v.S3.Present
}

func cell(row tabular.Row, idx int) tabular.Value {
	if row == nil || idx < 0 || idx >= len(row) {
		return tabular.Absent
	}
	return row[idx]
}
