package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDetermineLogLevel tests the log level precedence logic.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "default level when no flags set",
			config:   &Config{},
			expected: "info",
		},
		{
			name:     "verbose flag sets debug",
			config:   &Config{Verbose: true},
			expected: "debug",
		},
		{
			name:     "quiet flag sets warn",
			config:   &Config{Quiet: true},
			expected: "warn",
		},
		{
			name:     "explicit log-level overrides verbose",
			config:   &Config{LogLevel: "error", Verbose: true},
			expected: "error",
		},
		{
			name:     "explicit log-level overrides quiet",
			config:   &Config{LogLevel: "trace", Quiet: true},
			expected: "trace",
		},
		{
			name:     "both verbose and quiet prefers quiet",
			config:   &Config{Verbose: true, Quiet: true},
			expected: "warn",
		},
		{
			name:     "LOG_LEVEL used when no flag is set",
			config:   &Config{EnvLogLevel: "debug"},
			expected: "debug",
		},
		{
			name:     "quiet flag overrides LOG_LEVEL",
			config:   &Config{EnvLogLevel: "debug", Quiet: true},
			expected: "warn",
		},
		{
			name:     "invalid LOG_LEVEL falls back to info",
			config:   &Config{EnvLogLevel: "loud"},
			expected: "info",
		},
		{
			name:     "invalid log level falls back to info",
			config:   &Config{LogLevel: "invalid"},
			expected: "info",
		},
	}

	var buf bytes.Buffer
	original := warnings
	warnings = &buf
	t.Cleanup(func() { warnings = original })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := determineLogLevel(tt.config)
			if result != tt.expected {
				t.Errorf("determineLogLevel() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

// TestValidateLogLevel tests log level validation.
func TestValidateLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"error", "error"},
		{"invalid", "info"},
		{"", "info"},
		{"DEBUG", "info"},
	}

	for _, tt := range tests {
		if result := validateLogLevel(tt.level); result != tt.expected {
			t.Errorf("validateLogLevel(%q) = %q, expected %q", tt.level, result, tt.expected)
		}
	}
}

// TestNewLogger tests that logger creation works with various configs.
func TestNewLogger(t *testing.T) {
	configs := []*Config{
		{LogFormat: "auto", LogOutput: "stderr"},
		{LogFormat: "json", LogOutput: "discard", Verbose: true},
		{LogFormat: "console", LogOutput: "discard", NoColor: true, LogLevel: "trace"},
	}

	for _, config := range configs {
		logger := NewLogger(config)
		logger.Debug().Msg("test")
	}
}

func TestDetermineLogLevelWarnings(t *testing.T) {
	var buf bytes.Buffer
	original := warnings
	warnings = &buf
	t.Cleanup(func() { warnings = original })

	determineLogLevel(&Config{LogLevel: "loud"})
	determineLogLevel(&Config{Verbose: true, Quiet: true})
	determineLogLevel(&Config{Verbose: true})

	out := buf.String()
	if !strings.Contains(out, `unknown log level "loud"`) {
		t.Errorf("missing invalid level warning in %q", out)
	}
	if !strings.Contains(out, "--verbose and --quiet both set") {
		t.Errorf("missing conflicting flags warning in %q", out)
	}
	if n := strings.Count(out, "\n"); n != 2 {
		t.Errorf("expected 2 warnings, got %d", n)
	}
}

func TestNewLoggerEnvironmentFields(t *testing.T) {
	t.Setenv("LOG_FIELDS", "run=nightly")
	path := filepath.Join(t.TempDir(), "run.log")

	logger := NewLogger(&Config{LogFormat: "json", LogOutput: path})
	logger.Info().Msg("started")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), `"run":"nightly"`) {
		t.Errorf("LOG_FIELDS not applied: %s", data)
	}
}
