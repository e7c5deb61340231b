// Package projects implements the projects command.
package projects

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/etlrecon/internal/appcontext"
	"github.com/agentstation/etlrecon/internal/cmd/output"
	"github.com/agentstation/etlrecon/internal/cmd/table"
	"github.com/agentstation/etlrecon/pkg/project"
)

// NewCommand creates the projects command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "projects [name]",
		GroupID: "core",
		Aliases: []string{"project"},
		Short:   "List the configured projects",
		Long: `Projects lists the projects of the projects file with their resolved
directories. A check mark in the S3 column means the project can be
compared; one in the Catalog column means it can be documented.`,
		Example: `  etlrecon projects            # List every project
  etlrecon projects chama      # Show one project
  etlrecon projects -o wide    # Include resolved directories`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Projects()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				p, err := cfg.Get(args[0])
				if err != nil {
					return err
				}
				cfg = &project.Config{
					BaseDir:   cfg.BaseDir,
					OutputDir: cfg.OutputDir,
					Projects:  map[string]*project.Project{p.Name: p},
				}
			}

			format := app.OutputFormat()
			wide := output.DetectFormat(format) == output.FormatWide
			return output.Print(cmd.OutOrStdout(), format, table.ProjectsToTableData(cfg, wide), cfg)
		},
	}
}
