package report

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"slices"

	"github.com/agentstation/etlrecon/pkg/constants"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
)

// Merge concatenates CSV files sharing one header into outPath and returns
// the number of data rows written. Missing inputs are skipped. A header that
// differs from the first input's is an *errors.ParseError. Nothing is written
// when no input exists.
func Merge(ctx context.Context, outPath string, inputs []string) (int, error) {
	n, _, err := merge(ctx, outPath, inputs)
	return n, err
}

func merge(ctx context.Context, outPath string, inputs []string) (int, bool, error) {
	logger := logging.FromContext(ctx)

	var header []string
	var headerSource string
	var rows [][]string
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}

		recs, err := readCSV(in)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Warn().Str("path", in).Msg("Skipping missing report")
				continue
			}
			return 0, false, err
		}
		if len(recs) == 0 {
			logger.Warn().Str("path", in).Msg("Skipping empty report")
			continue
		}

		if header == nil {
			header = recs[0]
			headerSource = in
		} else if !slices.Equal(header, recs[0]) {
			return 0, false, errors.NewParseError("csv", in, "header differs from "+headerSource, nil)
		}
		rows = append(rows, recs[1:]...)
	}

	if header == nil {
		logger.Warn().Str("path", outPath).Msg("No reports to merge")
		return 0, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(outPath), constants.DirPermissions); err != nil {
		return 0, false, errors.WrapIO("create", filepath.Dir(outPath), err)
	}
	if err := writeCSV(outPath, header, rows); err != nil {
		return 0, false, err
	}

	logger.Info().Str("path", outPath).Int("rows", len(rows)).Int("inputs", len(inputs)).Msg("Reports merged")
	return len(rows), true, nil
}

// MergeProjects writes the cross-project consolidated and missing reports
// into outDir from the comparison directories of each project.
func MergeProjects(ctx context.Context, outDir string, comparisonDirs []string) ([]string, error) {
	targets := []struct {
		out  string
		name string
	}{
		{constants.MergedConsolidatedFile, constants.ConsolidatedFile},
		{constants.MergedMissingFile, constants.MissingFile},
	}

	var written []string
	for _, t := range targets {
		inputs := make([]string, len(comparisonDirs))
		for i, dir := range comparisonDirs {
			inputs[i] = filepath.Join(dir, t.name)
		}
		out := filepath.Join(outDir, t.out)
		_, wrote, err := merge(ctx, out, inputs)
		if err != nil {
			return written, err
		}
		if wrote {
			written = append(written, out)
		}
	}
	return written, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}
	return recs, nil
}
