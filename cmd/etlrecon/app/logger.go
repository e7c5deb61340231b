package app

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/rs/zerolog"

	"github.com/agentstation/etlrecon/pkg/logging"
)

// levels accepted from --log-level and LOG_LEVEL.
var levels = []string{"trace", "debug", "info", "warn", "error"}

// warnings receives level resolution notices. Tests swap it out.
var warnings io.Writer = os.Stderr

// NewLogger builds the run logger. The level is resolved in this order:
// --log-level, -v/-q (quiet wins when both are set), LOG_LEVEL, info.
// Debug and trace runs include the caller. LOG_TIME_FORMAT, LOG_CALLER and
// LOG_FIELDS are taken from the environment.
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)

	cfg := logging.ConfigFromEnv()
	cfg.Level = level
	cfg.Format = config.LogFormat
	cfg.Output = config.LogOutput
	cfg.NoColor = cfg.NoColor || config.NoColor
	cfg.AddCaller = cfg.AddCaller || level == zerolog.LevelDebugValue || level == zerolog.LevelTraceValue
	return logging.NewLoggerFromConfig(cfg)
}

func determineLogLevel(config *Config) string {
	switch {
	case config.LogLevel != "":
		level := validateLogLevel(config.LogLevel)
		if level != config.LogLevel {
			fmt.Fprintf(warnings, "Warning: unknown log level %q, falling back to %q\n", config.LogLevel, level)
		}
		return level
	case config.Verbose && config.Quiet:
		fmt.Fprintln(warnings, "Warning: --verbose and --quiet both set, using --quiet")
		return zerolog.LevelWarnValue
	case config.Verbose:
		return zerolog.LevelDebugValue
	case config.Quiet:
		return zerolog.LevelWarnValue
	case config.EnvLogLevel != "":
		return validateLogLevel(config.EnvLogLevel)
	default:
		return zerolog.LevelInfoValue
	}
}

// validateLogLevel returns level when it is one of the accepted names and
// info otherwise. Matching is case sensitive.
func validateLogLevel(level string) string {
	if slices.Contains(levels, level) {
		return level
	}
	return zerolog.LevelInfoValue
}
