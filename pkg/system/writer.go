package system

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/agentstation/etlrecon/pkg/constants"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
)

// FieldsHeader is the header of the flattened usage CSV.
var FieldsHeader = []string{"arquivo", "map", "tabela", "source", "target", "type", "is_used_in_system"}

// Write stores r as JSON and as a flattened CSV under dir and returns the
// written paths.
func Write(ctx context.Context, dir string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}

	var written []string
	jsonPath := filepath.Join(dir, constants.SystemMetadataFile)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, errors.WrapResource("marshal", "system", jsonPath, err)
	}
	if err := os.WriteFile(jsonPath, data, constants.FilePermissions); err != nil {
		return nil, errors.WrapIO("write", jsonPath, err)
	}
	written = append(written, jsonPath)

	csvPath := filepath.Join(dir, constants.SystemFieldsFile)
	if err := writeFieldsCSV(csvPath, r); err != nil {
		return written, err
	}
	written = append(written, csvPath)

	fields, used, unused := r.Totals()
	logging.FromContext(ctx).Info().
		Str("dir", dir).
		Int("tables", r.System.TotalTables).
		Int("fields", fields).
		Int("used", used).
		Int("unused", unused).
		Int("without_system", r.WithoutSystemCount).
		Msg("System comparison written")
	return written, nil
}

func writeFieldsCSV(path string, r *Report) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}

	w := csv.NewWriter(f)
	_ = w.Write(FieldsHeader)
	for _, file := range r.Files {
		for _, m := range file.Mappings {
			for _, field := range m.Fields {
				_ = w.Write([]string{
					file.FileName, m.Map, m.Table,
					field.Source, field.Target, field.Type,
					strconv.FormatBool(field.IsUsedInSystem),
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
