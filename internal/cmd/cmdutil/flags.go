// Package cmdutil provides shared flags and configuration utilities for etlrecon commands.
package cmdutil

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentstation/etlrecon/pkg/errors"
	"github.com/agentstation/etlrecon/pkg/project"
)

// ProjectFlags selects the projects a command runs on.
type ProjectFlags struct {
	Projects []string
	All      bool
}

// NewProjectFlagSet returns the --project/--all flag set bound to flags.
func NewProjectFlagSet(flags *ProjectFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("projects", pflag.ContinueOnError)
	fs.StringSliceVarP(&flags.Projects, "project", "p", nil,
		"Project name from the projects file (repeatable)")
	fs.BoolVarP(&flags.All, "all", "a", false,
		"Run on every configured project")
	return fs
}

// AddProjectFlags adds --project and --all to a command.
func AddProjectFlags(cmd *cobra.Command) *ProjectFlags {
	flags := &ProjectFlags{}
	cmd.Flags().AddFlagSet(NewProjectFlagSet(flags))
	cmd.MarkFlagsMutuallyExclusive("project", "all")
	return flags
}

// Select resolves the flags against cfg. The known projects are returned
// even when the error reports unknown names.
func (f *ProjectFlags) Select(cfg *project.Config) ([]*project.Project, error) {
	if cfg == nil {
		return nil, errors.NewConfigError("projects", "no projects file loaded", nil)
	}
	return cfg.Select(f.Projects, f.All)
}

// RunOptions holds the comparison tuning flags.
type RunOptions struct {
	Workers  int
	Workbook bool
}

// AddRunFlags adds --workers and --xlsx with the given defaults.
func AddRunFlags(cmd *cobra.Command, workers int, workbook bool) *RunOptions {
	opts := &RunOptions{}
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", workers,
		"Number of files compared concurrently")
	cmd.Flags().BoolVar(&opts.Workbook, "xlsx", workbook,
		"Also write the summary as an XLSX workbook")
	return opts
}
