package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/archsync/internal/config"
)

// EnvPrefix prefixes every settings environment variable (ARCHSYNC_THRESHOLD, ...).
const EnvPrefix = "ARCHSYNC"

// Config holds the CLI configuration loaded from flags, environment
// variables, .env files and the config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.archsync.yaml or ./.archsync.yaml)
// 5. Defaults
func LoadConfig() (*Config, *viper.Viper, error) {
	loadEnvFiles()

	v := newViper()
	readConfigFile(v, "")

	cfg := &Config{
		Verbose:    v.GetBool("verbose"),
		Quiet:      v.GetBool("quiet"),
		NoColor:    v.GetBool("no-color") || os.Getenv("NO_COLOR") != "",
		Format:     v.GetString("format"),
		ConfigFile: v.ConfigFileUsed(),
		LogLevel:   config.GetString(v, "LOG_LEVEL"),
		LogFormat:  getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:  getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}
	return cfg, v, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)
	return v
}

// readConfigFile reads file, or searches the home and working directories
// when file is empty. A missing config file is not an error.
func readConfigFile(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(".archsync")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	_ = v.ReadInConfig()
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		if _, err := os.Stat(filepath.Clean(envFile)); err == nil {
			_ = godotenv.Load(envFile)
		}
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
