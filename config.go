package research

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	DefaultTimeout          = 30 * time.Second
	DefaultMaxResponseBytes = 10 << 20
)

// Environment variables read by LoadConfig.
const (
	EnvBaseURL = "GEMINI_API_URL"
	EnvAPIKey  = "GEMINI_API_KEY"
	EnvTimeout = "GEMINI_TIMEOUT"
)

// Config holds everything the assistant needs to reach the provider.
type Config struct {
	BaseURL          string        `yaml:"base_url"`           // Full generateContent URL, without the key
	APIKey           string        `yaml:"api_key"`            // Sent as the "key" query parameter
	Timeout          time.Duration `yaml:"timeout"`            // Optional, defaults to 30s; ignored when Client is set
	MaxResponseBytes int64         `yaml:"max_response_bytes"` // Optional, defaults to 10 MiB
	Client           Doer          `yaml:"-"`                  // Optional, defaults to an *http.Client with Timeout
}

// Validate checks that the required fields are present.
// Their format is not inspected.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return newError(KindInvalidConfig, "base URL is required")
	}
	if c.APIKey == "" {
		return newError(KindInvalidConfig, "API key is required")
	}
	if c.MaxResponseBytes < 0 {
		return newError(KindInvalidConfig, "max response bytes must be non-negative")
	}
	return nil
}

// withDefaults returns a copy of c with zero fields filled in.
func (c Config) withDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxResponseBytes == 0 {
		c.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
	}
	return c
}

// LoadConfig builds a Config from, in increasing precedence: the YAML file at
// path (skipped when path is empty or the file does not exist), a .env file in
// the working directory, and the GEMINI_* environment variables.
// The result is not validated; New does that.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, wrapError(KindInvalidConfig, "failed to parse "+path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, wrapError(KindInvalidConfig, "failed to read "+path, err)
		}
	}

	// Existing environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, wrapError(KindInvalidConfig, "failed to load .env", err)
	}

	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return Config{}, wrapError(KindInvalidConfig, fmt.Sprintf("invalid %s", EnvTimeout), err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// parseTimeout accepts a Go duration ("45s") or a bare number of milliseconds.
func parseTimeout(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}
