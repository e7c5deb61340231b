package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/agentstation/etlrecon/cmd/etlrecon/cmd/compare"
	"github.com/agentstation/etlrecon/cmd/etlrecon/cmd/docs"
	"github.com/agentstation/etlrecon/cmd/etlrecon/cmd/projects"
	"github.com/agentstation/etlrecon/cmd/etlrecon/cmd/system"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(compare.NewCommand(a))
	rootCmd.AddCommand(docs.NewCommand(a))
	rootCmd.AddCommand(projects.NewCommand(a))
	rootCmd.AddCommand(system.NewCommand(a))

	rootCmd.AddCommand(a.NewVersionCommand())
	rootCmd.AddCommand(a.NewManCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "etlrecon %s\n", a.version)
			if a.config.Verbose {
				fmt.Fprintf(w, "  commit:   %s\n", a.commit)
				fmt.Fprintf(w, "  built:    %s\n", a.date)
				fmt.Fprintf(w, "  built by: %s\n", a.builtBy)
				fmt.Fprintf(w, "  go:       %s\n", runtime.Version())
				fmt.Fprintf(w, "  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}

// NewManCommand creates the hidden man page command.
func (a *App) NewManCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  "Generate man page",
		Long:   `Generate man page for etlrecon CLI tool.`,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header := &doc.GenManHeader{
				Title:   "ETLRECON",
				Section: "1",
				Source:  "etlrecon " + a.version,
				Manual:  "etlrecon Manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
