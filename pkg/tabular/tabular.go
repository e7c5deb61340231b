// Package tabular loads delimited text files into in-memory tables.
//
// Files are read whole. The delimiter is detected per file with Sniff, header
// names are trimmed and rows are aligned to the header, with missing fields
// represented by the absent Value rather than an empty string.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/agentstation/etlrecon/pkg/constants"
	"github.com/agentstation/etlrecon/pkg/errors"
)

const utf8BOM = "\ufeff"

// Value is a cell value. The zero Value is absent, which is distinct from
// a present empty string.
type Value struct {
	S       string
	Present bool
}

// Present returns a present Value holding s.
func Present(s string) Value {
	return Value{S: s, Present: true}
}

// Absent is the marker for a field the source row did not have.
var Absent = Value{}

// String renders absent values as the empty string.
func (v Value) String() string {
	return v.S
}

// MarshalJSON encodes absent values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Present {
		return []byte("null"), nil
	}
	return json.Marshal(v.S)
}

// MarshalYAML encodes absent values as null.
func (v Value) MarshalYAML() (any, error) {
	if !v.Present {
		return nil, nil
	}
	return v.S, nil
}

// Row is a slice of values aligned with Table.Columns.
type Row []Value

// Table is an immutable snapshot of a delimited file.
type Table struct {
	Path      string
	Columns   []string
	Rows      []Row
	Delimiter rune
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Option configures Load.
type Option func(*options)

type options struct {
	sampleLines int
	delimiter   rune
}

// WithSampleLines sets how many data lines are sampled for sniffing.
func WithSampleLines(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sampleLines = n
		}
	}
}

// WithDelimiter skips sniffing and forces the given delimiter.
func WithDelimiter(r rune) Option {
	return func(o *options) {
		o.delimiter = r
	}
}

func newOptions(opts []Option) *options {
	o := &options{sampleLines: constants.SniffSampleLines}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load reads the file at path into a Table.
//
// It returns an *errors.IOError when the file cannot be read and an
// *errors.ParseError when the file is empty, its delimiter is inconsistent
// or its CSV structure is malformed.
func Load(path string, opts ...Option) (*Table, error) {
	o := newOptions(opts)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	header, sample := firstLines(string(data), o.sampleLines)
	if header == "" {
		return nil, errors.NewParseError("csv", path, "empty file", nil)
	}

	delim, err := pickDelimiter(path, header, sample, o)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, csvParseError(path, err)
	}
	for len(records) > 0 && isBlank(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, errors.NewParseError("csv", path, "empty file", nil)
	}

	columns, keep := headerColumns(records[0])
	if len(columns) == 0 {
		return nil, errors.NewParseError("csv", path, "header has no named columns", nil)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make(Row, len(keep))
		for i, idx := range keep {
			if idx < len(rec) {
				row[i] = Present(rec[idx])
			}
		}
		rows = append(rows, row)
	}

	return &Table{
		Path:      path,
		Columns:   columns,
		Rows:      rows,
		Delimiter: delim,
	}, nil
}

// ReadHeader returns the trimmed column names of the file at path without
// loading its rows.
func ReadHeader(path string, opts ...Option) ([]string, error) {
	o := newOptions(opts)

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for len(lines) <= o.sampleLines && sc.Scan() {
		line := sc.Text()
		if len(lines) == 0 {
			line = strings.TrimPrefix(line, utf8BOM)
			if strings.TrimSpace(line) == "" {
				continue
			}
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if len(lines) == 0 {
		return nil, errors.NewParseError("csv", path, "empty file", nil)
	}

	delim, err := pickDelimiter(path, lines[0], lines[1:], o)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(lines[0]))
	r.Comma = delim
	r.FieldsPerRecord = -1
	rec, err := r.Read()
	if err != nil {
		return nil, csvParseError(path, err)
	}

	columns, _ := headerColumns(rec)
	return columns, nil
}

func pickDelimiter(path, header string, sample []string, o *options) (rune, error) {
	if o.delimiter != 0 {
		return o.delimiter, nil
	}
	s := Sniff(header, sample)
	if !s.Consistent {
		return 0, errors.NewParseError("csv", path, "inconsistent delimiter between header and data lines", nil)
	}
	return s.Delimiter, nil
}

// firstLines returns the first non-blank line and up to n following lines.
func firstLines(data string, n int) (string, []string) {
	var header string
	var sample []string
	for len(data) > 0 && len(sample) < n {
		var line string
		line, data, _ = strings.Cut(data, "\n")
		line = strings.TrimSuffix(line, "\r")
		if header == "" {
			if strings.TrimSpace(line) != "" {
				header = line
			}
			continue
		}
		sample = append(sample, line)
	}
	return header, sample
}

// headerColumns trims header names and drops the positions whose name is empty.
func headerColumns(rec []string) ([]string, []int) {
	columns := make([]string, 0, len(rec))
	keep := make([]int, 0, len(rec))
	for i, name := range rec {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		if name == "" {
			continue
		}
		columns = append(columns, name)
		keep = append(keep, i)
	}
	return columns, keep
}

func isBlank(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}

func csvParseError(path string, err error) error {
	if errors.Is(err, io.EOF) {
		return errors.NewParseError("csv", path, "empty file", err)
	}
	pe := errors.NewParseError("csv", path, err.Error(), err)
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		pe.Line = csvErr.Line
		pe.Column = csvErr.Column
		pe.Message = csvErr.Err.Error()
	}
	return pe
}
