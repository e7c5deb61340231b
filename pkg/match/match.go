// Package match pairs ETL files with their S3 counterparts by canonical key.
package match

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/filename"
)

// Origin tells which side of a comparison a file comes from.
type Origin string

const (
	// OriginETL marks files produced by the ETL run.
	OriginETL Origin = "etl"
	// OriginS3 marks files downloaded from the object store.
	OriginS3 Origin = "s3"
)

// FileDescriptor identifies one enumerated CSV file.
type FileDescriptor struct {
	Key    string `json:"key" yaml:"key"`
	Path   string `json:"path" yaml:"path"`
	Origin Origin `json:"origin" yaml:"origin"`
}

// NewDescriptor builds a descriptor whose key is derived from path.
func NewDescriptor(path string, origin Origin) FileDescriptor {
	return FileDescriptor{
		Key:    filename.Normalize(path),
		Path:   path,
		Origin: origin,
	}
}

// Pair associates one ETL file with the S3 file sharing its key, if any.
type Pair struct {
	Key          string
	ETL          FileDescriptor
	S3           *FileDescriptor
	Alternatives []FileDescriptor
}

// HasS3 reports whether an S3 counterpart was found.
func (p Pair) HasS3() bool {
	return p.S3 != nil
}

// Ambiguous reports whether other S3 files shared the chosen key.
func (p Pair) Ambiguous() bool {
	return len(p.Alternatives) > 0
}

// Collision lists the ETL files that normalize to one canonical key. Every
// one of them is still paired and compared on its own.
type Collision struct {
	Key   string   `json:"key" yaml:"key"`
	Paths []string `json:"paths" yaml:"paths"`
}

// Result is the outcome of Resolve.
type Result struct {
	// Pairs has exactly one entry per ETL descriptor, sorted by ETL path.
	Pairs []Pair
	// Ambiguities has one entry per key shared by more than one S3 file,
	// whether or not an ETL file claims it.
	Ambiguities []*errors.AmbiguousMatchError
	// Collisions has one entry per key shared by more than one ETL file.
	Collisions []Collision
	// UnclaimedS3 lists S3 files whose key no ETL file has.
	UnclaimedS3 []FileDescriptor
}

// Resolve pairs every ETL descriptor with at most one S3 descriptor.
//
// When several S3 files normalize to the same key the one with the
// lexicographically smallest path is chosen and the others are kept as
// alternatives. The result does not depend on the input order.
func Resolve(etl, s3 []FileDescriptor) Result {
	etl = sortedByPath(etl)
	s3 = sortedByPath(s3)

	byKey := make(map[string][]FileDescriptor, len(s3))
	for _, d := range s3 {
		byKey[d.Key] = append(byKey[d.Key], d)
	}

	res := Result{Pairs: make([]Pair, 0, len(etl))}
	for _, d := range s3 {
		candidates := byKey[d.Key]
		if len(candidates) > 1 && candidates[0].Path == d.Path {
			res.Ambiguities = append(res.Ambiguities,
				errors.NewAmbiguousMatchError(d.Key, d.Path, paths(candidates[1:])))
		}
	}

	etlByKey := make(map[string][]string, len(etl))
	for _, e := range etl {
		etlByKey[e.Key] = append(etlByKey[e.Key], e.Path)
	}

	claimed := make(map[string]bool, len(etl))
	for _, e := range etl {
		pair := Pair{Key: e.Key, ETL: e}
		if candidates := byKey[e.Key]; len(candidates) > 0 {
			chosen := candidates[0]
			pair.S3 = &chosen
			if len(candidates) > 1 {
				pair.Alternatives = slices.Clone(candidates[1:])
			}
			claimed[e.Key] = true
		}
		if shared := etlByKey[e.Key]; len(shared) > 1 && shared[0] == e.Path {
			res.Collisions = append(res.Collisions, Collision{Key: e.Key, Paths: slices.Clone(shared)})
		}
		res.Pairs = append(res.Pairs, pair)
	}

	for _, d := range s3 {
		if !claimed[d.Key] {
			res.UnclaimedS3 = append(res.UnclaimedS3, d)
		}
	}

	return res
}

// Enumerate lists the candidate CSV files directly inside dir, sorted by name.
func Enumerate(dir string, origin Origin) ([]FileDescriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("list", dir, err)
	}

	var out []FileDescriptor
	for _, entry := range entries {
		if entry.IsDir() || !filename.IsCandidate(entry.Name()) {
			continue
		}
		out = append(out, NewDescriptor(filepath.Join(dir, entry.Name()), origin))
	}
	return out, nil
}

func sortedByPath(in []FileDescriptor) []FileDescriptor {
	out := slices.Clone(in)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Compare(out[i].Path, out[j].Path) < 0
	})
	return out
}

func paths(ds []FileDescriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Path
	}
	return out
}
