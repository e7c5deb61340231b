// Package catalog loads the ETL architecture catalog of a project: the
// files an ETL run produces, the mappings inside each file and the fields
// each mapping carries from the source system into the target table.
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
)

// Field is one source-to-target column mapping.
type Field struct {
	Source string `yaml:"source" json:"source"`
	Target string `yaml:"target" json:"target"`
	Type   string `yaml:"type" json:"type"`
}

// UnmarshalYAML accepts the legacy from_santander/laborit keys as aliases
// of source/target.
func (f *Field) UnmarshalYAML(unmarshal func(any) error) error {
	var raw struct {
		Source        string `yaml:"source"`
		Target        string `yaml:"target"`
		Type          string `yaml:"type"`
		FromSantander string `yaml:"from_santander"`
		Laborit       string `yaml:"laborit"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	f.Source = firstNonEmpty(raw.Source, raw.FromSantander)
	f.Target = firstNonEmpty(raw.Target, raw.Laborit)
	f.Type = raw.Type
	return nil
}

// Key is the normalized source column name used to look fields up in CSV
// headers.
func (f Field) Key() string {
	return NormalizeColumn(f.Source)
}

// Mapping maps one source layout onto one target table.
type Mapping struct {
	Map    string  `yaml:"map" json:"map"`
	Table  string  `yaml:"table" json:"table"`
	Fields []Field `yaml:"fields" json:"fields"`
}

// File is one ETL output file and its mappings.
type File struct {
	Name     string    `yaml:"name" json:"name"`
	Mappings []Mapping `yaml:"mappings" json:"mappings"`
}

// Catalog is the ETL architecture of one project.
type Catalog struct {
	Files []File `yaml:"files" json:"files"`
}

// Stats counts the entries of a catalog.
type Stats struct {
	Files    int
	Mappings int
	Fields   int
}

// Stats returns the number of files, mappings and fields.
func (c *Catalog) Stats() Stats {
	s := Stats{Files: len(c.Files)}
	for _, f := range c.Files {
		s.Mappings += len(f.Mappings)
		for _, m := range f.Mappings {
			s.Fields += len(m.Fields)
		}
	}
	return s
}

// NormalizeColumn lower-cases and trims a column name.
func NormalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// document is either a single file or a list of files.
type document struct {
	Name     string    `yaml:"name"`
	Mappings []Mapping `yaml:"mappings"`
	Files    []File    `yaml:"files"`
}

var extensions = map[string]bool{".json": true, ".yaml": true, ".yml": true}

// Load reads every catalog document directly inside dir. Documents that
// cannot be read or parsed are logged and skipped. A missing directory is an
// *errors.ConfigError.
func Load(ctx context.Context, dir string) (*Catalog, error) {
	logger := logging.FromContext(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewConfigError("config_path", "cannot read catalog directory "+dir, errors.WrapIO("list", dir, err))
	}

	cat := &Catalog{}
	for _, entry := range entries {
		if entry.IsDir() || !extensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		files, err := loadDocument(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Skipping catalog document")
			continue
		}
		cat.Files = append(cat.Files, files...)
	}

	sort.SliceStable(cat.Files, func(i, j int) bool {
		return cat.Files[i].Name < cat.Files[j].Name
	})

	s := cat.Stats()
	logger.Debug().Int("files", s.Files).Int("mappings", s.Mappings).Int("fields", s.Fields).Msg("Catalog loaded")
	return cat, nil
}

func loadDocument(path string) ([]File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse(strings.TrimPrefix(filepath.Ext(path), "."), path, err)
	}

	if len(doc.Files) > 0 {
		return doc.Files, nil
	}
	if doc.Name == "" && len(doc.Mappings) == 0 {
		return nil, errors.NewParseError("catalog", path, "document has neither files nor mappings", nil)
	}
	name := doc.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return []File{{Name: name, Mappings: doc.Mappings}}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
