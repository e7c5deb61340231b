// Package system checks the ETL catalog against the target system's own
// metadata: which tables it knows and which of their columns it never reads.
package system

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/etlrecon/pkg/catalog"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
)

// Table is one system table and the columns it leaves unused, keyed by the
// normalized target name. The value is the column's display name in the
// system, empty when the metadata only lists target names.
type Table struct {
	Name   string
	Unused map[string]string
}

// IsUnused reports whether the target column is listed as unused.
func (t *Table) IsUnused(target string) bool {
	if t == nil {
		return false
	}
	_, ok := t.Unused[catalog.NormalizeColumn(target)]
	return ok
}

// Index looks system tables up by name.
type Index map[string]*Table

// Names returns the table names in order.
func (idx Index) Names() []string {
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type rawTable struct {
	Table  string `yaml:"tabela"`
	Unused any    `yaml:"colunas_nao_utilizadas"`
}

// Load reads a system metadata document: a list of tables, each naming its
// unused columns either as a {display: target} map or as a list of targets.
// Entries without a table name are skipped. When a table appears twice the
// last entry wins.
func Load(ctx context.Context, path string) (Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(ctx, data, path)
}

// Parse decodes system metadata already in memory. path only labels errors.
func Parse(ctx context.Context, data []byte, path string) (Index, error) {
	logger := logging.FromContext(ctx)

	var raw []rawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapParse("system", path, err)
	}

	idx := make(Index, len(raw))
	for i, r := range raw {
		name := strings.TrimSpace(r.Table)
		if name == "" {
			logger.Debug().Int("entry", i).Str("path", path).Msg("Skipping system entry without table")
			continue
		}
		t, err := newTable(name, r.Unused)
		if err != nil {
			return nil, errors.NewParseError("system", path, err.Error(), nil)
		}
		if _, dup := idx[name]; dup {
			logger.Warn().Str("table", name).Str("path", path).Msg("System table listed twice, keeping the last entry")
		}
		idx[name] = t
	}
	if len(idx) == 0 {
		return nil, errors.NewParseError("system", path, "document lists no tables", nil)
	}
	return idx, nil
}

func newTable(name string, unused any) (*Table, error) {
	t := &Table{Name: name, Unused: map[string]string{}}
	switch v := unused.(type) {
	case nil:
	case map[string]any:
		for display, target := range v {
			if target == nil {
				continue
			}
			t.Unused[catalog.NormalizeColumn(fmt.Sprint(target))] = display
		}
	case []any:
		for _, target := range v {
			if target == nil {
				continue
			}
			t.Unused[catalog.NormalizeColumn(fmt.Sprint(target))] = ""
		}
	default:
		return nil, fmt.Errorf("table %s: colunas_nao_utilizadas must be a map or a list, got %T", name, unused)
	}
	return t, nil
}

// FieldUsage is a catalog field annotated with its use by the system.
type FieldUsage struct {
	catalog.Field `yaml:",inline"`
	IsUsedInSystem bool `json:"is_used_in_system" yaml:"is_used_in_system"`
}

// UsageStats are the per-mapping counters.
type UsageStats struct {
	TotalFields int `json:"total_fields" yaml:"total_fields"`
	UsedCount   int `json:"used_count" yaml:"used_count"`
	UnusedCount int `json:"unused_count" yaml:"unused_count"`
}

// MappingUsage is one mapping checked against its system table.
type MappingUsage struct {
	Map                      string       `json:"map" yaml:"map"`
	Table                    string       `json:"table" yaml:"table"`
	HasSystemData            bool         `json:"has_system_data" yaml:"has_system_data"`
	Fields                   []FieldUsage `json:"fields" yaml:"fields"`
	Statistics               UsageStats   `json:"statistics" yaml:"statistics"`
	SystemUnusedColumnsCount int          `json:"system_unused_columns_count" yaml:"system_unused_columns_count"`
}

// FileUsage groups the mappings of one catalog file.
type FileUsage struct {
	FileName string         `json:"file_name" yaml:"file_name"`
	Mappings []MappingUsage `json:"mappings" yaml:"mappings"`
}

// Orphan is a mapping whose table the system does not know.
type Orphan struct {
	FileName    string `json:"file_name" yaml:"file_name"`
	Map         string `json:"map" yaml:"map"`
	Table       string `json:"table" yaml:"table"`
	FieldsCount int    `json:"fields_count" yaml:"fields_count"`
}

// Report is the ETL vs system comparison of one project.
type Report struct {
	Project     string    `json:"project" yaml:"project"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	ETL         struct {
		TotalFiles int `json:"total_files" yaml:"total_files"`
	} `json:"etl_metadata" yaml:"etl_metadata"`
	System struct {
		TotalTables int `json:"total_tables" yaml:"total_tables"`
	} `json:"system_metadata" yaml:"system_metadata"`
	Files              []FileUsage `json:"files" yaml:"files"`
	WithoutSystem      []Orphan    `json:"etl_without_system" yaml:"etl_without_system"`
	WithoutSystemCount int         `json:"etl_without_system_count" yaml:"etl_without_system_count"`
}

// Compare marks every catalog field as used unless its table lists the
// field's target among its unused columns. Fields of tables the system does
// not know count as used, and their mappings are listed as orphans.
func Compare(project string, cat *catalog.Catalog, idx Index, generatedAt time.Time) *Report {
	r := &Report{
		Project:       project,
		GeneratedAt:   generatedAt,
		Files:         make([]FileUsage, 0, len(cat.Files)),
		WithoutSystem: []Orphan{},
	}
	r.ETL.TotalFiles = len(cat.Files)
	r.System.TotalTables = len(idx)

	for _, f := range cat.Files {
		fu := FileUsage{FileName: f.Name, Mappings: make([]MappingUsage, 0, len(f.Mappings))}
		for _, m := range f.Mappings {
			table, known := idx[m.Table]
			mu := MappingUsage{
				Map:           m.Map,
				Table:         m.Table,
				HasSystemData: known,
				Fields:        make([]FieldUsage, 0, len(m.Fields)),
			}
			if known {
				mu.SystemUnusedColumnsCount = len(table.Unused)
			}
			for _, field := range m.Fields {
				used := !table.IsUnused(field.Target)
				mu.Fields = append(mu.Fields, FieldUsage{Field: field, IsUsedInSystem: used})
				if used {
					mu.Statistics.UsedCount++
				} else {
					mu.Statistics.UnusedCount++
				}
			}
			mu.Statistics.TotalFields = len(mu.Fields)

			if !known {
				r.WithoutSystem = append(r.WithoutSystem, Orphan{
					FileName:    f.Name,
					Map:         m.Map,
					Table:       m.Table,
					FieldsCount: len(m.Fields),
				})
			}
			fu.Mappings = append(fu.Mappings, mu)
		}
		r.Files = append(r.Files, fu)
	}
	r.WithoutSystemCount = len(r.WithoutSystem)
	return r
}

// Totals sums the field counters of every mapping.
func (r *Report) Totals() (fields, used, unused int) {
	for _, f := range r.Files {
		for _, m := range f.Mappings {
			fields += m.Statistics.TotalFields
			used += m.Statistics.UsedCount
			unused += m.Statistics.UnusedCount
		}
	}
	return fields, used, unused
}
