// Package report renders comparison summaries to disk.
//
// For every project the Writer produces one CSV per compared file, a summary
// CSV, a consolidated CSV of every verdict and a CSV of ETL files without an
// S3 counterpart, plus JSON, Markdown and optionally XLSX renditions of the
// summary. Merge concatenates the per-project CSVs across projects.
package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/agentstation/etlrecon/pkg/compare"
	"github.com/agentstation/etlrecon/pkg/constants"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
)

// Writer writes the reports of one project into a directory.
type Writer struct {
	dir      string
	workbook bool
	json     bool
	markdown bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithWorkbook enables the COMPARACAO.xlsx workbook.
func WithWorkbook(enabled bool) Option {
	return func(w *Writer) {
		w.workbook = enabled
	}
}

// WithJSON toggles comparacao.json.
func WithJSON(enabled bool) Option {
	return func(w *Writer) {
		w.json = enabled
	}
}

// WithMarkdown toggles RESUMO_COMPARACAO.md.
func WithMarkdown(enabled bool) Option {
	return func(w *Writer) {
		w.markdown = enabled
	}
}

// NewWriter creates a Writer for dir. JSON and Markdown are on by default,
// the workbook is off.
func NewWriter(dir string, opts ...Option) *Writer {
	w := &Writer{dir: dir, json: true, markdown: true}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write renders every report of the summary and returns the written paths.
// Any write failure is returned as an *errors.IOError or *errors.ResourceError.
func (w *Writer) Write(ctx context.Context, s *compare.ProjectSummary) ([]string, error) {
	logger := logging.FromContext(ctx)

	if err := os.MkdirAll(w.dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", w.dir, err)
	}

	var written []string
	emit := func(name string, fn func(path string) error) error {
		path := filepath.Join(w.dir, name)
		if err := fn(path); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	for i, name := range FileNames(s.Files) {
		if name == "" {
			continue
		}
		f := &s.Files[i]
		if err := emit(name, func(path string) error {
			return writeCSV(path, FileHeader, fileRows(f))
		}); err != nil {
			return written, err
		}
	}

	steps := []struct {
		name    string
		enabled bool
		fn      func(path string) error
	}{
		{constants.SummaryFile, true, func(p string) error { return writeCSV(p, SummaryHeader, summaryRows(s)) }},
		{constants.ConsolidatedFile, true, func(p string) error { return writeCSV(p, ConsolidatedHeader, consolidatedRows(s)) }},
		{constants.MissingFile, true, func(p string) error { return writeCSV(p, MissingHeader, missingRows(s)) }},
		{constants.SummaryJSONFile, w.json, func(p string) error { return writeJSON(p, s) }},
		{constants.SummaryMarkdownFile, w.markdown, func(p string) error { return writeMarkdown(p, s) }},
		{constants.WorkbookFile, w.workbook, func(p string) error { return writeWorkbook(p, s) }},
	}
	for _, step := range steps {
		if !step.enabled {
			continue
		}
		if err := emit(step.name, step.fn); err != nil {
			return written, err
		}
	}

	logger.Info().
		Str("dir", w.dir).
		Int("files", len(written)).
		Msg("Reports written")
	return written, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// summaryDocument is the JSON shape of comparacao.json.
type summaryDocument struct {
	*compare.ProjectSummary
	Totals compare.Totals `json:"totals"`
}

func writeJSON(path string, s *compare.ProjectSummary) error {
	data, err := json.MarshalIndent(summaryDocument{ProjectSummary: s, Totals: s.Totals()}, "", "  ")
	if err != nil {
		return errors.WrapResource("marshal", "report", path, err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
