package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/etlrecon/pkg/constants"
	"github.com/agentstation/etlrecon/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Comparison configuration
	ProjectsFile string
	Workers      int
	Workbook     bool

	// Logging configuration. LogLevel is only set by --log-level;
	// EnvLogLevel holds LOG_LEVEL.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables (ETLRECON_ prefix)
// 3. .env files
// 4. Config file (configFile, or .etlrecon.yaml in $HOME or the working directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("ETLRECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("projects_file", constants.DefaultProjectsFile)
	v.SetDefault("workers", constants.DefaultWorkers)
	v.SetDefault("xlsx", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("app", "cannot read "+configFile, err)
		}
	} else {
		// Search for config in standard locations
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".etlrecon")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("app", "invalid config file", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		ProjectsFile: v.GetString("projects_file"),
		Workers:      v.GetInt("workers"),
		Workbook:     v.GetBool("xlsx"),

		EnvLogLevel: getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if config.Workers < 1 {
		config.Workers = constants.DefaultWorkers
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// Only flags set on the command line override the loaded values.
func (c *Config) UpdateFromFlags(fs *pflag.FlagSet) {
	fs.Visit(func(f *pflag.Flag) {
		value := f.Value.String()
		switch f.Name {
		case "verbose":
			c.Verbose = value == "true"
		case "quiet":
			c.Quiet = value == "true"
		case "no-color":
			c.NoColor = value == "true"
		case "format":
			c.Format = value
		case "log-level":
			c.LogLevel = value
		case "projects-file":
			c.ProjectsFile = value
		}
	})
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
