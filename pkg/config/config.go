package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

// Env variable names shared with tests.
const (
	EnvAPIBaseURL = "NDERTIMNET_API_BASE_URL"
	EnvStateDir   = "NDERTIMNET_STATE_DIR"
)

type Config struct {
	App   AppConfig
	API   APIConfig
	State StateConfig
	Watch WatchConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NDERTIMNET_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"NDERTIMNET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NDERTIMNET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

type APIConfig struct {
	BaseURL string        `envconfig:"NDERTIMNET_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"NDERTIMNET_API_TIMEOUT" default:"15s"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API base URL %q: %w", a.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("API base URL %q must be http or https", a.BaseURL)
	}
	return nil
}

type StateConfig struct {
	// Dir holds the durable credential/state database. Empty means
	// session-only operation regardless of the remember flag.
	Dir string `envconfig:"NDERTIMNET_STATE_DIR"`
}

type WatchConfig struct {
	ChatInterval  time.Duration `envconfig:"NDERTIMNET_CHAT_POLL_INTERVAL" default:"10s"`
	BadgeInterval time.Duration `envconfig:"NDERTIMNET_BADGE_POLL_INTERVAL" default:"60s"`
}
