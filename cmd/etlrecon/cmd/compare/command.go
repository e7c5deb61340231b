// Package compare implements the compare command.
package compare

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/etlrecon/internal/appcontext"
	"github.com/agentstation/etlrecon/internal/cmd/cmdutil"
	"github.com/agentstation/etlrecon/internal/cmd/output"
	"github.com/agentstation/etlrecon/internal/cmd/table"
	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/logging"
)

// NewCommand creates the compare command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		projectFlags *cmdutil.ProjectFlags
		runFlags     *cmdutil.RunOptions
	)

	cmd := &cobra.Command{
		Use:     "compare",
		GroupID: "core",
		Short:   "Compare ETL output with S3 source files",
		Long: `Compare pairs every ETL CSV file of a project with the S3 CSV file sharing
its canonical name (date suffixes removed), compares them row by row and
cell by cell, and writes the reports under the project's s3_vs_etl
directory. The consolidated and missing-file reports of every project are
then merged under the configured output directory.

Mismatches and unreadable files are reported, not fatal: the command only
fails when a project cannot be compared at all.`,
		Example: `  etlrecon compare --project chama          # Compare one project
  etlrecon compare -p chama -p portal_turbo  # Compare several projects
  etlrecon compare --all --workers 4         # Compare everything, 4 files at a time
  etlrecon compare --all -o json             # Machine-readable summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithOperation(logging.WithLogger(cmd.Context(), app.Logger()), "compare")

			opts := Options{Workers: app.Workers(), Workbook: app.Workbook()}
			if cmd.Flags().Changed("workers") {
				opts.Workers = runFlags.Workers
			}
			if cmd.Flags().Changed("xlsx") {
				opts.Workbook = runFlags.Workbook
			}

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

			summaries, runErr := Run(ctx, cfg, selected, opts)

			format := app.OutputFormat()
			w := cmd.OutOrStdout()
			if output.DetectFormat(format) == output.FormatWide {
				for _, s := range summaries {
					if err := output.Print(w, format, table.FilesToTableData(s, true), s); err != nil {
						return err
					}
				}
			}
			if err := output.Print(w, format, table.SummariesToTableData(summaries), summaries); err != nil {
				return err
			}
			return errors.Join(selectErr, runErr)
		},
	}

	projectFlags = cmdutil.AddProjectFlags(cmd)
	runFlags = cmdutil.AddRunFlags(cmd, app.Workers(), app.Workbook())

	return cmd
}
