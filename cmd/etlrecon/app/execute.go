package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/etlrecon/internal/cmd/output"
	"github.com/agentstation/etlrecon/pkg/logging"
)

// Execute runs the etlrecon CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "etlrecon",
		Short:   "Reconcile ETL output against S3 source files",
		Version: a.version,
		Long: `etlrecon compares the CSV files an ETL run produced with the CSV files
downloaded from S3, cell by cell, and writes per-file, per-project and
cross-project reports.

It also documents the ETL architecture catalog of a project and marks
which mapped fields are present in the S3 files.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	// Flag defaults come from the loaded configuration; setupCommand only
	// applies the flags that were set explicitly.
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.etlrecon.yaml)")
	flags.String("projects-file", a.config.ProjectsFile, "projects configuration file")
	flags.BoolP("verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", a.config.NoColor, "disable colored output")
	flags.StringP("format", "o", a.config.Format, "output format: table, json, yaml, wide")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("etlrecon {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	reloaded := false
	if path := mustGetString(cmd, "config"); path != "" {
		config, err := LoadConfig(path)
		if err != nil {
			return err
		}
		a.config = config
		reloaded = true
	}

	a.config.UpdateFromFlags(cmd.Flags())

	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return err
	}

	if reloaded || cmd.Flags().Changed("projects-file") {
		a.mu.Lock()
		a.projects = nil
		a.mu.Unlock()
	}

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
