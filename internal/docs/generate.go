// Package docs generates the documentation of a project's ETL catalog:
// a Markdown index, one Markdown page per mapping, a JSON metadata file and
// a flattened CSV of every field.
package docs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/etlrecon/pkg/constants"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
)

// Generator handles documentation generation
type Generator struct {
	outputDir string
	now       func() time.Time
}

// Option is a functional option for configuring the Generator
type Option func(*Generator)

// WithOutputDir sets the output directory for generated documentation
func WithOutputDir(dir string) Option {
	return func(g *Generator) {
		g.outputDir = dir
	}
}

// WithClock sets the time source for the generation timestamp
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// New creates a new documentation generator
func New(opts ...Option) *Generator {
	g := &Generator{
		outputDir: "./" + constants.DefaultDocsDir,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FieldsHeader is the header of the flattened fields CSV.
var FieldsHeader = []string{"arquivo", "map", "tabela", "source", "target", "type", "exists_in_s3"}

// Generate writes every documentation artifact for meta and returns the
// written paths.
func (g *Generator) Generate(ctx context.Context, meta *Metadata) ([]string, error) {
	logger := logging.FromContext(ctx)

	if err := os.MkdirAll(g.outputDir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", g.outputDir, err)
	}

	pages := pageNames(meta)
	var written []string
	for i, f := range meta.Files {
		for j, m := range f.Mappings {
			path := filepath.Join(g.outputDir, pages[i][j])
			if err := g.writePage(path, meta, f.Name, m); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}

	index := filepath.Join(g.outputDir, "README.md")
	if err := g.writeIndex(index, meta, pages); err != nil {
		return written, err
	}
	written = append(written, index)

	jsonPath := filepath.Join(g.outputDir, meta.Project+"_etl_metadata.json")
	if err := writeMetadataJSON(jsonPath, meta); err != nil {
		return written, err
	}
	written = append(written, jsonPath)

	csvPath := filepath.Join(g.outputDir, meta.Project+"_etl_fields.csv")
	if err := writeFieldsCSV(csvPath, meta); err != nil {
		return written, err
	}
	written = append(written, csvPath)

	mappings, fields, inS3 := meta.Stats()
	logger.Info().
		Str("dir", g.outputDir).
		Int("files", len(meta.Files)).
		Int("mappings", mappings).
		Int("fields", fields).
		Int("fields_in_s3", inS3).
		Msg("Documentation generated")
	return written, nil
}

// Now returns the generator's current time.
func (g *Generator) Now() time.Time {
	return g.now()
}

func (g *Generator) writePage(path string, meta *Metadata, file string, m MappingDoc) error {
	return writeMarkdownFile(path, func(doc *Markdown) {
		title := m.Table
		if title == "" {
			title = m.Map
		}
		doc.H1(title).
			PlainTextf("*Documentation generated on: %s*", meta.GeneratedAt.Format(constants.TimeFormatHuman)).
			LF().
			LabeledCode("File", file).
			LabeledCode("Mapping", m.Map).
			LabeledCode("Table", m.Table).
			LabeledCode("Total Fields", m.Statistics.TotalFields)

		doc.H2("Statistics").
			LabeledCode("Fields in S3", m.Statistics.ExistsInS3Count).
			ConditionalSection(m.S3Comparison.HasS3File, func(doc *Markdown) {
				doc.LabeledCode("Fields in Both (S3 and ETL)", m.S3Comparison.FieldsInBothCount)
				if m.S3Comparison.FieldsOnlyInS3Count > 0 {
					doc.LabeledCode("Fields Only in S3", m.S3Comparison.FieldsOnlyInS3Count)
				}
				if m.S3Comparison.FieldsOnlyInETLCount > 0 {
					doc.LabeledCode("Fields Only in ETL", m.S3Comparison.FieldsOnlyInETLCount)
				}
			})

		doc.H2("Fields")
		if len(m.Fields) == 0 {
			doc.PlainText("No fields found.")
			return
		}
		header := []string{"Source", "Type", "Target"}
		if m.S3Comparison.HasS3File {
			header = append(header, "Exists in S3")
		}
		rows := make([][]string, 0, len(m.Fields))
		for _, f := range m.Fields {
			row := []string{escapeCell(f.Source), escapeCell(f.Type), escapeCell(f.Target)}
			if m.S3Comparison.HasS3File {
				row = append(row, check(f.ExistsInS3))
			}
			rows = append(rows, row)
		}
		doc.Table(md.TableSet{Header: header, Rows: rows})
	})
}

func (g *Generator) writeIndex(path string, meta *Metadata, pages [][]string) error {
	mappings, fields, inS3 := meta.Stats()
	return writeMarkdownFile(path, func(doc *Markdown) {
		doc.H1(fmt.Sprintf("ETL Documentation: %s", meta.Project)).
			PlainTextf("*Documentation generated on: %s*", meta.GeneratedAt.Format(constants.TimeFormatHuman)).
			LF().
			BulletList(
				fmt.Sprintf("Files: %d", len(meta.Files)),
				fmt.Sprintf("Mappings: %d", mappings),
				fmt.Sprintf("Fields: %d", fields),
				fmt.Sprintf("Fields in S3: %d", inS3),
			)

		rows := make([][]string, 0, mappings)
		for i, f := range meta.Files {
			for j, m := range f.Mappings {
				rows = append(rows, []string{
					escapeCell(f.Name),
					link(escapeCell(m.Map), pages[i][j]),
					escapeCell(m.Table),
					strconv.Itoa(m.Statistics.TotalFields),
					check(m.S3Comparison.HasS3File),
				})
			}
		}
		doc.H2("Mappings").
			Table(md.TableSet{
				Header: []string{"File", "Mapping", "Table", "Fields", "S3 File"},
				Rows:   rows,
			})
	})
}

func writeMarkdownFile(path string, render func(*Markdown)) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	doc := NewMarkdown(f)
	render(doc)
	if err := doc.Build(); err != nil {
		_ = f.Close()
		return errors.WrapResource("render", "docs", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func writeMetadataJSON(path string, meta *Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.WrapResource("marshal", "docs", path, err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func writeFieldsCSV(path string, meta *Metadata) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}

	w := csv.NewWriter(f)
	_ = w.Write(FieldsHeader)
	for _, file := range meta.Files {
		for _, m := range file.Mappings {
			for _, field := range m.Fields {
				_ = w.Write([]string{
					file.Name, m.Map, m.Table,
					field.Source, field.Target, field.Type,
					strconv.FormatBool(field.ExistsInS3),
				})
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// pageNames assigns every mapping of meta a page name, indexed by file then
// mapping. Mappings whose safe names collide get a -2, -3... suffix in
// catalog order.
func pageNames(meta *Metadata) [][]string {
	used := make(map[string]bool)
	names := make([][]string, len(meta.Files))
	for i, f := range meta.Files {
		names[i] = make([]string, len(f.Mappings))
		for j, m := range f.Mappings {
			base := pageBase(f.Name, m.Map)
			name := base
			for n := 2; used[name] || name == "readme"; n++ {
				name = base + "-" + strconv.Itoa(n)
			}
			used[name] = true
			names[i][j] = name + ".md"
		}
	}
	return names
}

// pageBase builds a file-system safe page name for a mapping.
func pageBase(file, mapping string) string {
	name := strings.ToLower(file + "_" + mapping)
	name = strings.Trim(unsafeChars.ReplaceAllString(name, "-"), "-_")
	if name == "" {
		name = "mapping"
	}
	return name
}
