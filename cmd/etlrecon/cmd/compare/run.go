package compare

import (
	"context"

	comparison "github.com/agentstation/etlrecon/pkg/compare"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
	"github.com/agentstation/etlrecon/pkg/project"
	"github.com/agentstation/etlrecon/pkg/report"
)

// Options tune a comparison run.
type Options struct {
	Workers  int
	Workbook bool
}

// Run compares the selected projects one after the other, writes their
// reports and merges the reports of every configured project. A project
// that fails does not stop the others; its error is returned joined with
// the rest once every project has run.
func Run(ctx context.Context, cfg *project.Config, selected []*project.Project, opts Options) ([]*comparison.ProjectSummary, error) {
	logger := logging.FromContext(ctx)

	var (
		summaries []*comparison.ProjectSummary
		errs      []error
	)
	for _, p := range selected {
		if err := ctx.Err(); err != nil {
			errs = append(errs, errors.NewProjectError(p.Name, err))
			break
		}

		summary, err := runProject(ctx, p, opts)
		if err != nil {
			logger.Error().Err(err).Str("project", p.Name).Msg("Comparison failed")
			errs = append(errs, errors.NewProjectError(p.Name, err))
		}
		if summary != nil {
			summaries = append(summaries, summary)
		}
	}

	if len(summaries) > 0 {
		dirs := make([]string, 0, len(cfg.Projects))
		for _, name := range cfg.Names() {
			dirs = append(dirs, cfg.Projects[name].ComparisonDir())
		}
		written, err := report.MergeProjects(ctx, cfg.OutputDir, dirs)
		if err != nil {
			errs = append(errs, err)
		} else if len(written) > 0 {
			logger.Debug().Strs("files", written).Msg("Merged project reports")
		}
	}

	return summaries, errors.Join(errs...)
}

func runProject(ctx context.Context, p *project.Project, opts Options) (*comparison.ProjectSummary, error) {
	ctx = logging.WithProject(ctx, p.Name)
	logger := logging.FromContext(ctx)

	summary, err := comparison.NewRunner(comparison.WithConcurrency(opts.Workers)).Run(ctx, p)
	if err != nil {
		return nil, err
	}

	written, err := report.NewWriter(p.ComparisonDir(), report.WithWorkbook(opts.Workbook)).Write(ctx, summary)
	if err != nil {
		return summary, err
	}

	t := summary.Totals()
	logger.Info().
		Int("files", t.Files).
		Int("ok", t.OK).
		Int("mismatches", t.Mismatches).
		Int("no_s3_file", t.NoS3File).
		Int("errors", t.Errors).
		Int("reports", len(written)).
		Str("dir", p.ComparisonDir()).
		Msg("Project compared")
	return summary, nil
}
