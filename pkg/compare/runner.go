// Package compare orchestrates the S3 vs ETL comparison of a project.
//
// A Runner enumerates both directories of a project, pairs the files by
// canonical key, loads and compares every pair and returns one FileReport per
// ETL file. Failures on a single file are recorded in its report and never
// stop the run; only configuration problems are fatal.
package compare

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/etlrecon/pkg/constants"
	"github.com/agentstation/etlrecon/pkg/differ"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
	"github.com/agentstation/etlrecon/pkg/match"
	"github.com/agentstation/etlrecon/pkg/project"
	"github.com/agentstation/etlrecon/pkg/tabular"
)

// LoadFunc loads a table from a path.
type LoadFunc func(path string) (*tabular.Table, error)

// Runner compares the ETL output of a project with its S3 downloads.
type Runner struct {
	workers int
	load    LoadFunc
	now     func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency sets how many files are compared at once. Values below 1
// mean sequential.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		switch {
		case n < 1:
			r.workers = 1
		case n > constants.MaxWorkers:
			r.workers = constants.MaxWorkers
		default:
			r.workers = n
		}
	}
}

// WithLoader replaces the table loader.
func WithLoader(fn LoadFunc) Option {
	return func(r *Runner) {
		if fn != nil {
			r.load = fn
		}
	}
}

// WithClock sets the time source for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a sequential Runner. Unless WithLoader is given, files
// are read with tabular.Load using the project's sniff_sample_lines.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		workers: constants.DefaultWorkers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run compares one project. It returns an *errors.ConfigError when the
// project is not configured for comparison or one of its directories is
// missing, and ctx.Err() when ctx is canceled.
func (r *Runner) Run(ctx context.Context, p *project.Project) (*ProjectSummary, error) {
	if err := p.ValidateForComparison(); err != nil {
		return nil, err
	}
	etlDir, s3Dir := p.ETLDir(), p.S3Dir()
	if err := requireDir(p.Name, "etl_path", etlDir); err != nil {
		return nil, err
	}
	if err := requireDir(p.Name, "s3_path", s3Dir); err != nil {
		return nil, err
	}

	ctx = logging.WithProject(ctx, p.Name)
	logger := logging.FromContext(ctx)

	etlFiles, err := match.Enumerate(etlDir, match.OriginETL)
	if err != nil {
		return nil, errors.WrapConfig(p.Name, err)
	}
	s3Files, err := match.Enumerate(s3Dir, match.OriginS3)
	if err != nil {
		return nil, errors.WrapConfig(p.Name, err)
	}

	resolved := match.Resolve(etlFiles, s3Files)
	for _, amb := range resolved.Ambiguities {
		logger.Warn().
			Str("file", amb.Key).
			Str("chosen", amb.Chosen).
			Strs("discarded", amb.Discarded).
			Msg("Several S3 files share one key")
	}
	for _, c := range resolved.Collisions {
		logger.Warn().
			Str("file", c.Key).
			Strs("paths", c.Paths).
			Msg("Several ETL files share one key")
	}
	for _, d := range resolved.UnclaimedS3 {
		logger.Debug().Str("file", d.Key).Str("path", d.Path).Msg("S3 file has no ETL counterpart")
	}

	logger.Info().
		Int("etl_files", len(etlFiles)).
		Int("s3_files", len(s3Files)).
		Int("workers", r.workers).
		Msg("Comparing project")

	d := differFor(p)
	load := r.loaderFor(p)
	reports := make([]FileReport, len(resolved.Pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, pair := range resolved.Pairs {
		i, pair := i, pair
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = compareFile(logging.WithFile(gctx, pair.Key), load, d, pair)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &ProjectSummary{
		Project:     p.Name,
		GeneratedAt: r.now(),
		ETLDir:      etlDir,
		S3Dir:       s3Dir,
		Files:       reports,
		Collisions:  resolved.Collisions,
	}
	for _, u := range resolved.UnclaimedS3 {
		summary.UnclaimedS3 = append(summary.UnclaimedS3, u.Path)
	}

	totals := summary.Totals()
	logger.Info().
		Int("ok", totals.OK).
		Int("mismatches", totals.Mismatches).
		Int("no_s3_file", totals.NoS3File).
		Int("errors", totals.Errors).
		Msg("Project compared")

	return summary, nil
}

func (r *Runner) loaderFor(p *project.Project) LoadFunc {
	if r.load != nil {
		return r.load
	}
	sample := tabular.WithSampleLines(p.SniffSampleLines)
	return func(path string) (*tabular.Table, error) {
		return tabular.Load(path, sample)
	}
}

func compareFile(ctx context.Context, load LoadFunc, d differ.Differ, pair match.Pair) FileReport {
	logger := logging.FromContext(ctx)
	rep := FileReport{
		Key:     pair.Key,
		ETLPath: pair.ETL.Path,
	}
	for _, alt := range pair.Alternatives {
		rep.AmbiguousWith = append(rep.AmbiguousWith, alt.Path)
	}

	if !pair.HasS3() {
		rep.Status = StatusNoS3File
		logger.Warn().Str("path", pair.ETL.Path).Msg("No S3 file for ETL file")
		return rep
	}
	rep.S3Path = pair.S3.Path

	etl, err := load(pair.ETL.Path)
	if err != nil {
		return failed(ctx, rep, "etl", err)
	}
	s3, err := load(pair.S3.Path)
	if err != nil {
		return failed(ctx, rep, "s3", err)
	}

	rep.RowCountETL = etl.Len()
	rep.RowCountS3 = s3.Len()
	rep.Columns = d.Columns(etl, s3)
	rep.Rows = d.Compare(etl, s3)

	rep.Status = StatusOK
	if !rep.Columns.Identical() || rep.Summary().Differences() > 0 {
		rep.Status = StatusMismatches
	}

	logger.Debug().
		Str("status", string(rep.Status)).
		Int("rows_etl", rep.RowCountETL).
		Int("rows_s3", rep.RowCountS3).
		Msg("File compared")
	return rep
}

// failed downgrades a load error into a report status.
func failed(ctx context.Context, rep FileReport, side string, err error) FileReport {
	rep.Status = StatusReadError
	if errors.IsParseError(err) {
		rep.Status = StatusParseError
	}
	rep.Error = side + ": " + err.Error()
	logging.FromContext(ctx).Error().Err(err).Str("side", side).Msg("Cannot load file")
	return rep
}

func differFor(p *project.Project) differ.Differ {
	var opts []differ.Option
	if p.CaseInsensitiveColumns {
		opts = append(opts, differ.WithCaseInsensitiveColumns())
	}
	if p.CaseInsensitiveValues {
		opts = append(opts, differ.WithCaseInsensitiveValues())
	}
	if len(p.IgnoreColumns) > 0 {
		opts = append(opts, differ.WithIgnoredColumns(p.IgnoreColumns...))
	}
	return differ.New(opts...)
}

func requireDir(projectName, key, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.NewConfigError(projectName, key+" directory does not exist: "+dir, err)
	}
	if !info.IsDir() {
		return errors.NewConfigError(projectName, key+" is not a directory: "+dir, nil)
	}
	return nil
}
