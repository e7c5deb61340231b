package report

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agentstation/etlrecon/pkg/compare"
	"github.com/agentstation/etlrecon/pkg/constants"
)

// HasFileReport reports whether f gets its own <name>_comparado.csv.
func HasFileReport(f *compare.FileReport) bool {
	return f.Status != compare.StatusNoS3File && !f.Status.IsError()
}

// FileNames returns the per-file report name of every entry of files, in the
// same order. Entries without a per-file report get "".
//
// The name is derived from the canonical key. When several compared files
// share a key, each of them is named after its ETL file instead, and a
// numeric suffix breaks any remaining tie.
func FileNames(files []compare.FileReport) []string {
	keys := make(map[string]int, len(files))
	for i := range files {
		if HasFileReport(&files[i]) {
			keys[files[i].Key]++
		}
	}

	names := make([]string, len(files))
	used := make(map[string]bool, len(files))
	for i := range files {
		f := &files[i]
		if !HasFileReport(f) {
			continue
		}
		base := f.Key
		if keys[f.Key] > 1 {
			base = etlBase(f.ETLPath, f.Key)
		}
		name := base
		for n := 2; used[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[name] = true
		names[i] = name + constants.ComparedFileSuffix
	}
	return names
}

func etlBase(path, fallback string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return fallback
	}
	return base
}
