package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/basesync/internal/cmd/application"
	"github.com/agentstation/basesync/pkg/constants"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Sync defaults
	Singularity string
	Formatter   string
	NoFormat    bool
	Repo        string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	// logLevelFlag is --log-level, kept apart from LOG_LEVEL because
	// -v and -q sit between them in precedence.
	logLevelFlag string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables
//  3. .env files
//  4. Config file (~/.basesync.yaml or ./.basesync.yaml)
//  5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig(viper.New(), "")
}

// loadConfig reads configuration into v. An explicit configFile must exist.
func loadConfig(v *viper.Viper, configFile string) (*Config, error) {
	loadEnvFiles()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix("BASESYNC")

	v.SetDefault("singularity", constants.DefaultSingularityFile)
	v.SetDefault("formatter", constants.DefaultFormatter)
	v.SetDefault("no_format", false)
	v.SetDefault("repo", "")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigName)

		// Read config file (ignore error if not found)
		_ = v.ReadInConfig()
	}

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),

		Singularity: v.GetString("singularity"),
		Formatter:   v.GetString("formatter"),
		NoFormat:    v.GetBool("no_format"),
		Repo:        v.GetString("repo"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", v.GetString("log_level")),
		LogFormat: getEnvOrDefault("LOG_FORMAT", stringOr(v.GetString("log_format"), "auto")),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", stringOr(v.GetString("log_output"), "stderr")),
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	c.logLevelFlag = logLevel
}

// Settings returns the sync defaults commands start from.
func (c *Config) Settings() application.Settings {
	return application.Settings{
		Singularity: c.Singularity,
		Formatter:   c.Formatter,
		NoFormat:    c.NoFormat,
		Repo:        c.Repo,
	}
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment are not overridden.
func loadEnvFiles() {
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

func stringOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
