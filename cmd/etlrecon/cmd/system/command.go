// Package system implements the system command.
package system

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/etlrecon/internal/appcontext"
	"github.com/agentstation/etlrecon/internal/cmd/cmdutil"
	"github.com/agentstation/etlrecon/internal/cmd/output"
	"github.com/agentstation/etlrecon/internal/cmd/table"
	"github.com/agentstation/etlrecon/pkg/catalog"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
	"github.com/agentstation/etlrecon/pkg/project"
	sysmeta "github.com/agentstation/etlrecon/pkg/system"
)

// Result describes the system comparison of one project.
type Result struct {
	Project       string   `json:"project" yaml:"project"`
	Dir           string   `json:"dir" yaml:"dir"`
	Tables        int      `json:"system_tables" yaml:"system_tables"`
	Fields        int      `json:"fields" yaml:"fields"`
	Used          int      `json:"used" yaml:"used"`
	Unused        int      `json:"unused" yaml:"unused"`
	WithoutSystem int      `json:"etl_without_system" yaml:"etl_without_system"`
	Written       []string `json:"written" yaml:"written"`
}

// NewCommand creates the system command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var projectFlags *cmdutil.ProjectFlags

	cmd := &cobra.Command{
		Use:     "system",
		GroupID: "core",
		Short:   "Check the ETL catalog against the target system's metadata",
		Long: `System reads the ETL architecture catalog under a project's config_path and
the system metadata named by its system_metadata setting. Every catalog field
is marked as used unless the system lists its target column among the unused
columns of the mapping's table.

Mappings whose table the system does not know are listed apart. The result is
written as JSON and CSV under <output_dir>/etl_vs_system.`,
		Example: `  etlrecon system --project chama   # Check one project
  etlrecon system --all             # Check every project`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithOperation(logging.WithLogger(cmd.Context(), app.Logger()), "system")

			cfg, err := app.Projects()
			if err != nil {
				return err
			}
			selected, selectErr := projectFlags.Select(cfg)
			if len(selected) == 0 {
				return selectErr
			}
			if selectErr != nil {
				logging.FromContext(ctx).Error().Err(selectErr).Msg("Skipping unknown projects")
			}

			var (
				results []Result
				errs    = []error{selectErr}
			)
			for _, p := range selected {
				res, err := Check(ctx, p, time.Now())
				if err != nil {
					app.Logger().Error().Err(err).Str("project", p.Name).Msg("System comparison failed")
					errs = append(errs, errors.NewProjectError(p.Name, err))
					continue
				}
				results = append(results, *res)
			}

			if err := output.Print(cmd.OutOrStdout(), app.OutputFormat(), resultsTable(results), results); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}

	projectFlags = cmdutil.AddProjectFlags(cmd)

	return cmd
}

// Check compares one project's catalog with its system metadata and writes
// the result.
func Check(ctx context.Context, p *project.Project, now time.Time) (*Result, error) {
	if err := p.ValidateForSystem(); err != nil {
		return nil, err
	}
	ctx = logging.WithProject(ctx, p.Name)

	cat, err := catalog.Load(ctx, p.ConfigPath)
	if err != nil {
		return nil, err
	}
	idx, err := sysmeta.Load(ctx, p.SystemMetadata)
	if err != nil {
		return nil, errors.NewConfigError(p.Name, "cannot load system_metadata", err)
	}

	report := sysmeta.Compare(p.Name, cat, idx, now)
	for _, o := range report.WithoutSystem {
		logging.FromContext(ctx).Warn().
			Str("file", o.FileName).
			Str("map", o.Map).
			Str("table", o.Table).
			Msg("Mapping table unknown to the system")
	}

	written, err := sysmeta.Write(ctx, p.SystemDir(), report)
	if err != nil {
		return nil, err
	}

	fields, used, unused := report.Totals()
	return &Result{
		Project:       p.Name,
		Dir:           p.SystemDir(),
		Tables:        report.System.TotalTables,
		Fields:        fields,
		Used:          used,
		Unused:        unused,
		WithoutSystem: report.WithoutSystemCount,
		Written:       written,
	}, nil
}

func resultsTable(results []Result) table.Data {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Project,
			strconv.Itoa(r.Tables),
			strconv.Itoa(r.Fields),
			strconv.Itoa(r.Used),
			strconv.Itoa(r.Unused),
			strconv.Itoa(r.WithoutSystem),
			r.Dir,
		})
	}
	return table.Data{
		Headers: []string{"Project", "Tables", "Fields", "Used", "Unused", "Without System", "Directory"},
		Rows:    rows,
		ColumnAlignment: []table.Align{
			table.AlignLeft, table.AlignRight, table.AlignRight, table.AlignRight, table.AlignRight, table.AlignRight, table.AlignLeft,
		},
	}
}
