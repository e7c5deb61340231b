// Package filename derives canonical keys from ETL and S3 file names.
//
// Both sides of a comparison name the same dataset differently: ETL runs
// write "clientes.csv" while the object store export is
// "clientes_20240115_1430.csv". The canonical key of both is "clientes".
package filename

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentstation/etlrecon/pkg/constants"
)

// dateSuffix matches a trailing _YYYYMMDD optionally followed by _HHMM or _HHMMSS.
var dateSuffix = regexp.MustCompile(`_\d{8}(?:_\d{4,6})?$`)

// Normalize returns the canonical key of a file name or path.
// The directory, the extension and one trailing date suffix are removed.
func Normalize(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return dateSuffix.ReplaceAllString(base, "")
}

// IsCandidate reports whether a directory entry should be enumerated as a
// CSV data file.
func IsCandidate(name string) bool {
	base := filepath.Base(name)
	if base == "" || strings.HasPrefix(base, ".") {
		return false
	}
	if strings.Contains(base, constants.ZoneIdentifierMarker) {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), constants.CSVExtension)
}
