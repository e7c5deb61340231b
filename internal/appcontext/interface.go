// Package appcontext provides the shared application context interface
// used by all commands. Commands accept this interface rather than the
// concrete App type so they can be tested with Mock.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/etlrecon/pkg/project"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/etlrecon/app implements this interface.
type Interface interface {
	// Projects returns the parsed projects file, loading it lazily on
	// first use.
	Projects() (*project.Config, error)

	// Logger returns the configured logger instance.
	// Commands should use this for all logging operations.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Workers returns the number of files compared concurrently.
	Workers() int

	// Workbook reports whether the XLSX report is enabled.
	Workbook() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
