package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
)

// ErrMissingAPIKey is returned when no TMDb API key is configured.
var ErrMissingAPIKey = errors.New(
	"tmdb.api_key is required (set it in the config file, CINESCOPE_TMDB_API_KEY or TMDB_API_KEY)",
)

// Default values applied by Validate.
const (
	DefaultBaseURL           = "https://api.themoviedb.org/3"
	DefaultLanguage          = "en-US"
	DefaultCacheTTL          = 15 * time.Minute
	DefaultTimeout           = 30 * time.Second
	DefaultMaxRetries        = 1
	DefaultEnrichConcurrency = 8
	DefaultSuggestionLimit   = 8
	DefaultServerAddr        = ":8080"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultWriteTimeout      = 60 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// Config represents the main application configuration
type Config struct {
	// Metadata provider
	TMDb TMDbConfig `yaml:"tmdb"`

	// Outbound HTTP
	HTTP HTTPConfig `yaml:"http"`

	// Listing and enrichment
	Discover DiscoverConfig `yaml:"discover"`

	// JSON API server
	Server ServerConfig `yaml:"server"`

	// Frontends
	Telegram *TelegramConfig `yaml:"telegram,omitempty"`

	// Application settings
	App AppConfig `yaml:"app"`
}

// TMDbConfig holds TMDb API configuration
type TMDbConfig struct {
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url,omitempty"`
	Language string        `yaml:"language,omitempty"` // BCP 47 tag, e.g. "en-US"
	Region   string        `yaml:"region,omitempty"`   // ISO 3166-1 code used for search, e.g. "VN"
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty"`
}

// HTTPConfig holds outbound request settings
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	MaxRetries int           `yaml:"max_retries,omitempty"` // 1 = single attempt
}

// DiscoverConfig holds listing settings
type DiscoverConfig struct {
	EnrichConcurrency int `yaml:"enrich_concurrency,omitempty"`
	SuggestionLimit   int `yaml:"suggestion_limit,omitempty"`
}

// ServerConfig holds JSON API server settings
type ServerConfig struct {
	Addr              string        `yaml:"addr,omitempty"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout,omitempty"`
	// Covers a whole listing response, including its detail lookups.
	WriteTimeout    time.Duration `yaml:"write_timeout,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken       string  `yaml:"bot_token"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids,omitempty"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	LogLevel string `yaml:"log_level"`          // "debug", "info", "warn", "error"
	LogFile  string `yaml:"log_file,omitempty"` // Empty = stderr
}

// Load loads configuration from a YAML file with environment variable overrides.
// A missing file is not an error: defaults and environment variables apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Environment-only configuration.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides overrides config values with environment variables
func (c *Config) applyEnvOverrides() {
	// TMDb
	if v := os.Getenv("TMDB_API_KEY"); v != "" && c.TMDb.APIKey == "" {
		c.TMDb.APIKey = v
	}
	if v := os.Getenv("CINESCOPE_TMDB_API_KEY"); v != "" {
		c.TMDb.APIKey = v
	}
	if v := os.Getenv("CINESCOPE_TMDB_BASE_URL"); v != "" {
		c.TMDb.BaseURL = v
	}
	if v := os.Getenv("CINESCOPE_TMDB_LANGUAGE"); v != "" {
		c.TMDb.Language = v
	}
	if v := os.Getenv("CINESCOPE_TMDB_REGION"); v != "" {
		c.TMDb.Region = v
	}

	// Discover
	if v := os.Getenv("CINESCOPE_ENRICH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Discover.EnrichConcurrency = n
		}
	}

	// Server
	if v := os.Getenv("CINESCOPE_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CINESCOPE_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Server.WriteTimeout = d
		}
	}

	// Telegram
	if v := os.Getenv("CINESCOPE_TELEGRAM_BOT_TOKEN"); v != "" {
		if c.Telegram == nil {
			c.Telegram = &TelegramConfig{}
		}
		c.Telegram.BotToken = v
	}

	// App
	if v := os.Getenv("CINESCOPE_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv("CINESCOPE_LOG_FILE"); v != "" {
		c.App.LogFile = v
	}
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if err := c.validateTMDb(); err != nil {
		return err
	}

	// HTTP
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = DefaultTimeout
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must not be negative")
	}
	if c.HTTP.MaxRetries == 0 {
		c.HTTP.MaxRetries = DefaultMaxRetries
	}

	// Discover
	if c.Discover.EnrichConcurrency < 0 {
		return fmt.Errorf("discover.enrich_concurrency must not be negative")
	}
	if c.Discover.EnrichConcurrency == 0 {
		c.Discover.EnrichConcurrency = DefaultEnrichConcurrency
	}
	if c.Discover.SuggestionLimit < 0 {
		return fmt.Errorf("discover.suggestion_limit must not be negative")
	}
	if c.Discover.SuggestionLimit == 0 {
		c.Discover.SuggestionLimit = DefaultSuggestionLimit
	}

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("server.addr %q is not host:port: %w", c.Server.Addr, err)
	}
	for _, t := range []struct {
		name string
		d    time.Duration
	}{
		{"read_header_timeout", c.Server.ReadHeaderTimeout},
		{"write_timeout", c.Server.WriteTimeout},
		{"shutdown_timeout", c.Server.ShutdownTimeout},
	} {
		if t.d < 0 {
			return fmt.Errorf("server.%s must not be negative", t.name)
		}
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = max(DefaultWriteTimeout, 2*c.HTTP.Timeout)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Telegram
	if c.Telegram != nil && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram is configured")
	}

	// App
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	switch strings.ToLower(c.App.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug, info, warn, error (got %q)", c.App.LogLevel)
	}

	return nil
}

func (c *Config) validateTMDb() error {
	if strings.TrimSpace(c.TMDb.APIKey) == "" {
		return ErrMissingAPIKey
	}

	if c.TMDb.BaseURL == "" {
		c.TMDb.BaseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(c.TMDb.BaseURL, "http://") && !strings.HasPrefix(c.TMDb.BaseURL, "https://") {
		return fmt.Errorf("tmdb.base_url must use http or https (got %q)", c.TMDb.BaseURL)
	}
	c.TMDb.BaseURL = strings.TrimRight(c.TMDb.BaseURL, "/")

	if c.TMDb.Language == "" {
		c.TMDb.Language = DefaultLanguage
	}
	tag, err := language.Parse(c.TMDb.Language)
	if err != nil {
		return fmt.Errorf("tmdb.language %q is not a valid language tag: %w", c.TMDb.Language, err)
	}
	c.TMDb.Language = tag.String()

	if c.TMDb.Region != "" {
		region, err := language.ParseRegion(c.TMDb.Region)
		if err != nil {
			return fmt.Errorf("tmdb.region %q is not a valid region: %w", c.TMDb.Region, err)
		}
		c.TMDb.Region = region.String()
	}

	if c.TMDb.CacheTTL < 0 {
		return fmt.Errorf("tmdb.cache_ttl must not be negative")
	}
	if c.TMDb.CacheTTL == 0 {
		c.TMDb.CacheTTL = DefaultCacheTTL
	}
	return nil
}
