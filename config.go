package pylon

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	pylonhttp "github.com/randalmurphal/pylon-go/http"
)

// Environment variables consulted when config values are absent.
const (
	EnvAPIKey  = "PYLON_API_KEY"
	EnvBaseURL = "PYLON_BASE_URL"
)

// DefaultBaseURL is the production Pylon API endpoint.
const DefaultBaseURL = pylonhttp.DefaultBaseURL

// Config holds the configuration for the Pylon client.
type Config struct {
	// APIKey is the bearer token for the Pylon API. Falls back to the
	// PYLON_API_KEY environment variable when empty.
	APIKey string

	// BaseURL is the API endpoint. Defaults to https://api.usepylon.com.
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// HTTP contains HTTP client configuration.
	HTTP HTTPConfig

	// Retry contains retry configuration for GET requests.
	Retry RetryConfig
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxIdleConns caps idle connections held by the pooled transport.
	// Zero keeps the transport default.
	MaxIdleConns int

	// IdleConnTimeout is how long idle connections are kept before being
	// closed. Zero keeps the transport default.
	IdleConnTimeout time.Duration
}

// RetryConfig holds retry configuration.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts.
	MaxRetries int

	// WaitMin is the initial wait between retries.
	WaitMin time.Duration

	// WaitMax is the cap on the wait between retries.
	WaitMax time.Duration

	// Jitter randomizes retry waits to avoid thundering herds.
	Jitter bool
}

// fileConfig mirrors Config for YAML decoding. Durations are strings in
// the file ("30s", "500ms"); pointers distinguish absent keys from zero
// values during the overlay.
type fileConfig struct {
	APIKey    string           `yaml:"api_key"`
	BaseURL   string           `yaml:"base_url"`
	UserAgent string           `yaml:"user_agent"`
	HTTP      *fileHTTPConfig  `yaml:"http"`
	Retry     *fileRetryConfig `yaml:"retry"`
}

type fileHTTPConfig struct {
	Timeout         string `yaml:"timeout"`
	MaxIdleConns    *int   `yaml:"max_idle_conns"`
	IdleConnTimeout string `yaml:"idle_conn_timeout"`
}

type fileRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	WaitMin    string `yaml:"wait_min"`
	WaitMax    string `yaml:"wait_max"`
	Jitter     *bool  `yaml:"jitter"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   pylonhttp.DefaultBaseURL,
		UserAgent: "pylon-go",
		HTTP: HTTPConfig{
			Timeout: pylonhttp.DefaultTimeout,
		},
		Retry: RetryConfig{
			MaxRetries: pylonhttp.DefaultMaxRetries,
			WaitMin:    pylonhttp.DefaultRetryWaitMin,
			WaitMax:    pylonhttp.DefaultRetryWaitMax,
			Jitter:     true,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrConfigAPIKeyRequired
	}

	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http://") &&
		!strings.HasPrefix(c.BaseURL, "https://") {
		return ErrConfigBaseURLInvalid
	}

	if c.HTTP.Timeout < 0 {
		return ErrConfigTimeoutInvalid
	}

	if c.Retry.MaxRetries < 0 || c.Retry.WaitMin < 0 || c.Retry.WaitMax < 0 {
		return ErrConfigRetryInvalid
	}

	return nil
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// ConfigFromEnv builds a Config from defaults plus the PYLON_* environment
// variables.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg
}

// LoadConfig reads a YAML config file and overlays the PYLON_* environment
// variables on top. Missing values keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := file.overlay(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.applyEnv()

	return cfg, nil
}

// overlay applies file values onto cfg. Absent keys keep their defaults.
func (f *fileConfig) overlay(cfg *Config) error {
	if f.APIKey != "" {
		cfg.APIKey = f.APIKey
	}
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}

	if f.HTTP != nil {
		if f.HTTP.Timeout != "" {
			d, err := parseFileDuration(f.HTTP.Timeout, "http.timeout")
			if err != nil {
				return err
			}
			cfg.HTTP.Timeout = d
		}
		if f.HTTP.MaxIdleConns != nil {
			cfg.HTTP.MaxIdleConns = *f.HTTP.MaxIdleConns
		}
		if f.HTTP.IdleConnTimeout != "" {
			d, err := parseFileDuration(f.HTTP.IdleConnTimeout, "http.idle_conn_timeout")
			if err != nil {
				return err
			}
			cfg.HTTP.IdleConnTimeout = d
		}
	}

	if f.Retry != nil {
		if f.Retry.MaxRetries != nil {
			cfg.Retry.MaxRetries = *f.Retry.MaxRetries
		}
		if f.Retry.WaitMin != "" {
			d, err := parseFileDuration(f.Retry.WaitMin, "retry.wait_min")
			if err != nil {
				return err
			}
			cfg.Retry.WaitMin = d
		}
		if f.Retry.WaitMax != "" {
			d, err := parseFileDuration(f.Retry.WaitMax, "retry.wait_max")
			if err != nil {
				return err
			}
			cfg.Retry.WaitMax = d
		}
		if f.Retry.Jitter != nil {
			cfg.Retry.Jitter = *f.Retry.Jitter
		}
	}

	return nil
}

func parseFileDuration(value, key string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

// applyEnv overlays environment variables onto the config. The API key
// env var wins only when the config carries none.
func (c *Config) applyEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv(EnvAPIKey)
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
}
