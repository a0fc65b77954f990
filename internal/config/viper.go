package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"shipment-parser/internal/parser"
)

// EnvPrefix is the prefix of every environment variable read here.
const EnvPrefix = "SHIPMENT_PARSER"

// LoadWithViper loads configuration using Viper
func LoadWithViper(v *viper.Viper) (*Config, error) {
	// Set defaults
	setDefaults(v)

	// Set up environment variable binding
	setupEnvBinding(v)

	// Load configuration file if specified
	if err := loadConfigFile(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Unmarshal configuration
	config := &Config{}
	if err := unmarshalConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// A fixtures file adds to any inline fixtures
	if config.FixturesFile != "" {
		fixtures, err := LoadFixtures(config.FixturesFile)
		if err != nil {
			return nil, err
		}
		config.Fixtures = append(config.Fixtures, fixtures...)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values
func setDefaults(v *viper.Viper) {
	// Output defaults
	v.SetDefault("format", "table")
	v.SetDefault("quiet", false)
	v.SetDefault("no_color", false)
	v.SetDefault("debug", false)

	// Export defaults
	v.SetDefault("output_dir", ".")

	// Parsing defaults
	v.SetDefault("max_input_bytes", parser.DefaultMaxInputBytes)
	v.SetDefault("fixtures_file", "")

	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.rate_limit", "0s")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.disabled", false)

	// Remote parsing defaults
	v.SetDefault("server_url", "")
	v.SetDefault("request_timeout", "30s")
}

// setupEnvBinding sets up environment variable binding
func setupEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	envBindings := map[string]string{
		"format":                  "FORMAT",
		"quiet":                   "QUIET",
		"no_color":                "NO_COLOR",
		"debug":                   "DEBUG",
		"output_dir":              "OUTPUT_DIR",
		"max_input_bytes":         "MAX_INPUT_BYTES",
		"fixtures_file":           "FIXTURES_FILE",
		"server.host":             "SERVER_HOST",
		"server.port":             "SERVER_PORT",
		"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",
		"server.api_key":          "SERVER_API_KEY",
		"server.rate_limit":       "SERVER_RATE_LIMIT",
		"cache.ttl":               "CACHE_TTL",
		"cache.disabled":          "CACHE_DISABLED",
		"server_url":              "SERVER_URL",
		"request_timeout":         "REQUEST_TIMEOUT",
	}

	for configKey, envSuffix := range envBindings {
		v.BindEnv(configKey, EnvPrefix+"_"+envSuffix)
	}

	// Special handling for NO_COLOR environment variable
	v.BindEnv("no_color", EnvPrefix+"_NO_COLOR", "NO_COLOR")
}

// loadConfigFile loads configuration file if it exists
func loadConfigFile(v *viper.Viper) error {
	// Check if a specific config file was set
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME")
		v.SetConfigName("shipment-parser")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional, only return error if it's not a "not found" error
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}

// unmarshalConfig maps Viper keys to Config fields
func unmarshalConfig(v *viper.Viper, config *Config) error {
	config.Format = v.GetString("format")
	config.Quiet = v.GetBool("quiet")
	config.NoColor = v.GetBool("no_color")
	config.Debug = v.GetBool("debug")
	config.OutputDir = v.GetString("output_dir")
	config.MaxInputBytes = v.GetInt("max_input_bytes")
	config.FixturesFile = v.GetString("fixtures_file")
	config.ServerHost = v.GetString("server.host")
	config.ServerPort = v.GetString("server.port")
	config.DisableCache = v.GetBool("cache.disabled")
	config.APIKey = v.GetString("server.api_key")
	config.ServerURL = v.GetString("server_url")

	var err error
	config.ShutdownTimeout, err = parseDuration(v.GetString("server.shutdown_timeout"))
	if err != nil {
		return fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	config.RateLimit, err = parseDuration(v.GetString("server.rate_limit"))
	if err != nil {
		return fmt.Errorf("invalid rate limit: %w", err)
	}

	config.CacheTTL, err = parseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return fmt.Errorf("invalid cache TTL: %w", err)
	}

	config.RequestTimeout, err = parseDuration(v.GetString("request_timeout"))
	if err != nil {
		return fmt.Errorf("invalid request timeout: %w", err)
	}

	if v.IsSet("fixtures") {
		if err := v.UnmarshalKey("fixtures", &config.Fixtures); err != nil {
			return fmt.Errorf("invalid fixtures: %w", err)
		}
	}

	return nil
}

// parseDuration accepts a Go duration string or a whole number of seconds.
func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}
	return time.Duration(seconds) * time.Second, nil
}

// Load loads configuration using a new Viper instance, reading .env first
func Load() (*Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadWithViper(viper.New())
}

// LoadWithFile loads configuration from a specific file
func LoadWithFile(configFile string) (*Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	v := viper.New()
	v.SetConfigFile(configFile)
	return LoadWithViper(v)
}
