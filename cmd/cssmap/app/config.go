package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/errors"
)

// EnvPrefix prefixes every environment variable cssmap reads through viper.
const EnvPrefix = "CSSMAP"

// Config holds the application configuration loaded from config files,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Pipeline configuration
	BaseURL     string
	OutputDir   string
	CompatData  string
	Corrections string
	BatchSize   int
	HTTPTimeout time.Duration
	UserAgent   string

	// Server configuration
	Listen string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. Environment variables (CSSMAP_OUTPUT_DIR, ...)
//  3. .env files
//  4. Config file (path, or .cssmap.yaml in $HOME or the working directory)
//  5. Defaults
//
// An explicit path must exist. A discovered config file that fails to
// parse is an error; a missing one is not.
func LoadConfig(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".cssmap")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config file", err.Error(), err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		BaseURL:     v.GetString("base_url"),
		OutputDir:   v.GetString("output_dir"),
		CompatData:  v.GetString("compat_data"),
		Corrections: v.GetString("corrections"),
		BatchSize:   v.GetInt("batch_size"),
		HTTPTimeout: v.GetDuration("http_timeout"),
		UserAgent:   v.GetString("user_agent"),

		Listen: v.GetString("listen"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", v.GetString("log_level")),
		LogFormat: getEnvOrDefault("LOG_FORMAT", v.GetString("log_format")),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", v.GetString("log_output")),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", constants.WebrefBaseURL)
	v.SetDefault("output_dir", constants.DefaultOutputDir)
	v.SetDefault("compat_data", constants.DefaultCompatDataPath)
	v.SetDefault("batch_size", constants.DefaultBatchSize)
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("user_agent", constants.DefaultUserAgent)
	v.SetDefault("listen", constants.DefaultListenAddr)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags applies the global flags. Flags take precedence over
// the config file and environment; unset flags leave config values alone.
func (c *Config) UpdateFromFlags(f *Flags) {
	c.Verbose = c.Verbose || f.Verbose
	c.Quiet = c.Quiet || f.Quiet
	c.NoColor = c.NoColor || f.NoColor
	if f.Format != "" {
		c.Format = f.Format
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded second, so for unset variables .env wins.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
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
