// Package config loads the application settings from the environment.
package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// EnvPrefix is the prefix shared by every environment variable read by Load.
const EnvPrefix = "REPO_ANALYZER"

// Config is the container for app configuration.
type Config struct {
	// APIURL - base address of the GitHub REST API, with protocol
	APIURL string `envconfig:"API_URL" default:"https://api.github.com/"`

	// Timeout - timeout applied by the http client to every request
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`

	// UserAgent - value sent in the User-Agent header
	UserAgent string `envconfig:"USER_AGENT" default:"repo-analyzer"`
}

// Load reads the configuration from REPO_ANALYZER_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "couldn't parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values and normalizes APIURL to end with a slash,
// which go-github requires of its base URL.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return errors.Wrapf(err, "invalid api url %q", c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("invalid api url %q: scheme must be http or https", c.APIURL)
	}
	if !strings.HasSuffix(c.APIURL, "/") {
		c.APIURL += "/"
	}
	if c.Timeout < 0 {
		return errors.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}
