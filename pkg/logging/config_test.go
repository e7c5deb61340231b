package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/etlrecon/pkg/logging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", "stdout")
	t.Setenv("LOG_FIELDS", "env=test, run = nightly")

	cfg := logging.ConfigFromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.Equal(t, map[string]any{"env": "test", "run": "nightly"}, cfg.Fields)
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	tests := []struct {
		name      string
		level     string
		wantInfo  bool
		wantDebug bool
	}{
		{name: "debug", level: "debug", wantInfo: true, wantDebug: true},
		{name: "info", level: "info", wantInfo: true, wantDebug: false},
		{name: "warn", level: "warn", wantInfo: false, wantDebug: false},
		{name: "unknown falls back to info", level: "loud", wantInfo: true, wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "etlrecon.log")
			logger := logging.NewLoggerFromConfig(&logging.Config{
				Level:  tt.level,
				Format: "json",
				Output: path,
				Fields: map[string]any{"project": "chama"},
			})

			logger.Info().Msg("info line")
			logger.Debug().Msg("debug line")

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			out := string(content)

			assert.Equal(t, tt.wantInfo, strings.Contains(out, "info line"))
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug line"))
			if tt.wantInfo {
				assert.Contains(t, out, `"project":"chama"`)
			}
		})
	}
}

func TestNewLoggerFromConfigNil(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	logger := logging.NewLoggerFromConfig(nil)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
