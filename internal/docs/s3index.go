package docs

import (
	"context"

	"github.com/agentstation/etlrecon/pkg/catalog"
	"github.com/agentstation/etlrecon/pkg/logging"
	"github.com/agentstation/etlrecon/pkg/match"
	"github.com/agentstation/etlrecon/pkg/tabular"
)

// S3Index maps a canonical file key to the normalized column names of its
// S3 header, in header order.
type S3Index map[string][]string

// Columns returns the column set of key and whether key has an S3 file.
func (idx S3Index) Columns(key string) (map[string]bool, bool) {
	cols, ok := idx[key]
	if !ok {
		return nil, false
	}
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set, true
}

// Ordered returns the normalized columns of key in header order.
func (idx S3Index) Ordered(key string) []string {
	return idx[key]
}

// IndexS3Headers reads the header of every CSV file in dir. When several
// files share a key the first by path wins. Unreadable files are logged and
// skipped.
func IndexS3Headers(ctx context.Context, dir string) (S3Index, error) {
	logger := logging.FromContext(ctx)

	files, err := match.Enumerate(dir, match.OriginS3)
	if err != nil {
		return nil, err
	}

	idx := make(S3Index, len(files))
	for _, f := range files {
		if _, seen := idx[f.Key]; seen {
			logger.Warn().Str("file", f.Key).Str("path", f.Path).Msg("Ignoring duplicate S3 header")
			continue
		}
		header, err := tabular.ReadHeader(f.Path)
		if err != nil {
			logger.Warn().Err(err).Str("path", f.Path).Msg("Cannot read S3 header")
			continue
		}
		cols := make([]string, len(header))
		for i, h := range header {
			cols[i] = catalog.NormalizeColumn(h)
		}
		idx[f.Key] = cols
	}
	return idx, nil
}
