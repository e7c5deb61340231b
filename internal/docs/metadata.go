package docs

import (
	"time"

	"github.com/agentstation/etlrecon/pkg/catalog"
)

// FieldDoc is a catalog field annotated with its S3 presence.
type FieldDoc struct {
	catalog.Field `yaml:",inline"`
	ExistsInS3 bool `json:"exists_in_s3" yaml:"exists_in_s3"`
}

// MappingStats are the per-mapping counters.
type MappingStats struct {
	TotalFields     int `json:"total_fields" yaml:"total_fields"`
	ExistsInS3Count int `json:"exists_in_s3_count" yaml:"exists_in_s3_count"`
}

// S3Comparison compares a mapping's fields with the header of its S3 file.
type S3Comparison struct {
	HasS3File            bool     `json:"has_s3_file" yaml:"has_s3_file"`
	FieldsInBothCount    int      `json:"fields_in_both_count" yaml:"fields_in_both_count"`
	FieldsOnlyInS3Count  int      `json:"fields_only_in_s3_count" yaml:"fields_only_in_s3_count"`
	FieldsOnlyInETLCount int      `json:"fields_only_in_etl_count" yaml:"fields_only_in_etl_count"`
	FieldsOnlyInS3       []string `json:"fields_only_in_s3,omitempty" yaml:"fields_only_in_s3,omitempty"`
}

// MappingDoc is a documented mapping.
type MappingDoc struct {
	Map          string       `json:"map" yaml:"map"`
	Table        string       `json:"table" yaml:"table"`
	Fields       []FieldDoc   `json:"fields" yaml:"fields"`
	Statistics   MappingStats `json:"statistics" yaml:"statistics"`
	S3Comparison S3Comparison `json:"s3_comparison" yaml:"s3_comparison"`
}

// FileDoc is a documented catalog file.
type FileDoc struct {
	Name     string       `json:"name" yaml:"name"`
	Mappings []MappingDoc `json:"mappings" yaml:"mappings"`
}

// Metadata is the documentation model of one project.
type Metadata struct {
	Project     string    `json:"project" yaml:"project"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Files       []FileDoc `json:"files" yaml:"files"`
}

// Build annotates every catalog field with its presence in the S3 header of
// the file sharing the catalog file's name. It has no side effects.
func Build(project string, cat *catalog.Catalog, s3 S3Index, generatedAt time.Time) *Metadata {
	meta := &Metadata{Project: project, GeneratedAt: generatedAt, Files: make([]FileDoc, 0, len(cat.Files))}

	for _, f := range cat.Files {
		columns, hasS3 := s3.Columns(f.Name)
		fd := FileDoc{Name: f.Name, Mappings: make([]MappingDoc, 0, len(f.Mappings))}

		for _, m := range f.Mappings {
			doc := MappingDoc{
				Map:          m.Map,
				Table:        m.Table,
				Fields:       make([]FieldDoc, 0, len(m.Fields)),
				S3Comparison: S3Comparison{HasS3File: hasS3},
			}

			referenced := make(map[string]bool, len(m.Fields))
			for _, field := range m.Fields {
				key := field.Key()
				referenced[key] = true
				exists := hasS3 && columns[key]
				doc.Fields = append(doc.Fields, FieldDoc{Field: field, ExistsInS3: exists})
				if exists {
					doc.Statistics.ExistsInS3Count++
				}
			}
			doc.Statistics.TotalFields = len(doc.Fields)

			if hasS3 {
				doc.S3Comparison.FieldsInBothCount = doc.Statistics.ExistsInS3Count
				doc.S3Comparison.FieldsOnlyInETLCount = doc.Statistics.TotalFields - doc.Statistics.ExistsInS3Count
				for _, col := range s3.Ordered(f.Name) {
					if !referenced[col] {
						doc.S3Comparison.FieldsOnlyInS3 = append(doc.S3Comparison.FieldsOnlyInS3, col)
					}
				}
				doc.S3Comparison.FieldsOnlyInS3Count = len(doc.S3Comparison.FieldsOnlyInS3)
			}

			fd.Mappings = append(fd.Mappings, doc)
		}
		meta.Files = append(meta.Files, fd)
	}
	return meta
}

// Stats sums the counters of every mapping.
func (m *Metadata) Stats() (mappings, fields, inS3 int) {
	for _, f := range m.Files {
		for _, mp := range f.Mappings {
			mappings++
			fields += mp.Statistics.TotalFields
			inS3 += mp.Statistics.ExistsInS3Count
		}
	}
	return mappings, fields, inS3
}
