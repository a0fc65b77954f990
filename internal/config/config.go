package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"shipment-parser/internal/parser"
)

// Config holds all application configuration
type Config struct {
	// Output
	Format  string
	Quiet   bool
	NoColor bool
	Debug   bool

	// Export
	OutputDir string

	// Parsing
	MaxInputBytes int
	FixturesFile  string
	Fixtures      []parser.ReferenceFixture

	// Server
	ServerHost      string
	ServerPort      string
	ShutdownTimeout time.Duration
	CacheTTL        time.Duration
	DisableCache    bool
	APIKey          string
	RateLimit       time.Duration

	// Remote parsing
	ServerURL      string
	RequestTimeout time.Duration
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	validFormats := []string{"table", "json"}
	isValidFormat := false
	for _, format := range validFormats {
		if c.Format == format {
			isValidFormat = true
			break
		}
	}
	if !isValidFormat {
		return fmt.Errorf("invalid format: %s (must be one of: table, json)", c.Format)
	}

	if c.MaxInputBytes <= 0 {
		return fmt.Errorf("max input bytes must be positive")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid server port: %s", c.ServerPort)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	if c.CacheTTL <= 0 && !c.DisableCache {
		return fmt.Errorf("cache TTL must be positive")
	}

	if c.ServerURL != "" && len(c.ServerURL) < 8 {
		return fmt.Errorf("invalid server URL format")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	seen := make(map[string]bool)
	for i, f := range c.Fixtures {
		if f.ShipmentID == "" {
			return fmt.Errorf("fixture %d: shipment_id cannot be empty", i)
		}
		if seen[f.ShipmentID] {
			return fmt.Errorf("fixture %d: duplicate shipment_id %s", i, f.ShipmentID)
		}
		seen[f.ShipmentID] = true
		if f.ExpectedCount < 0 {
			return fmt.Errorf("fixture %s: expected_count must be non-negative", f.ShipmentID)
		}
	}

	return nil
}

// Address returns the full server address
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// LogLevel is debug when debug output was requested, info otherwise.
func (c *Config) LogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// GetDisableCache reports whether the server result cache is off.
func (c *Config) GetDisableCache() bool {
	return c.DisableCache
}

// GetCacheTTL returns how long cached results stay valid.
func (c *Config) GetCacheTTL() time.Duration {
	return c.CacheTTL
}

// GetDisableRateLimit reports whether parse requests are unlimited.
func (c *Config) GetDisableRateLimit() bool {
	return c.RateLimit <= 0
}

// GetRateLimitInterval is the minimum time between parse requests from one
// client.
func (c *Config) GetRateLimitInterval() time.Duration {
	return c.RateLimit
}

// ParserConfig builds the extraction pipeline configuration.
func (c *Config) ParserConfig(logger *slog.Logger) *parser.Config {
	return &parser.Config{
		Fixtures:      c.Fixtures,
		MaxInputBytes: c.MaxInputBytes,
		Logger:        logger,
	}
}
