package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	ProviderConfig
	SessionConfig
	StoreConfig
	RoutesConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetUpstreamURL() string
}

type mainConfig struct {
	EnvVars
	Provider
	Session
	Store
	Routes
}

var _ Config = mainConfig{}

// New loads the configuration from the process environment.
func New() (Config, error) {
	return Load(environ())
}

// Load parses the configuration from the supplied variables and validates it.
func Load(vars map[string]string) (Config, error) {
	var c mainConfig
	if err := env.ParseWithOptions(&c, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("[config Load] parse env: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("[config Load] %w", err)
	}
	return c, nil
}

func (c mainConfig) validate() error {
	if err := requireAbsoluteURL("AUTH0_DOMAIN", c.Domain); err != nil {
		return err
	}
	if err := requireAbsoluteURL("AUTH0_CALLBACK_URL", c.CallbackURL); err != nil {
		return err
	}
	if err := requireAbsoluteURL("UPSTREAM_URL", c.UpstreamURL); err != nil {
		return err
	}

	switch c.Backend {
	case StoreBackendMemory:
	case StoreBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORE_BACKEND=%s", StoreBackendRedis)
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.Backend)
	}

	switch c.RandomSource {
	case RandomSourceCrypto:
	case RandomSourceHTTP:
		if err := requireAbsoluteURL("RANDOM_SOURCE_URL", c.RandomSourceURL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported RANDOM_SOURCE %q", c.RandomSource)
	}

	if !strings.HasPrefix(c.CallbackPath, "/") || !strings.HasPrefix(c.LogoutPath, "/") {
		return fmt.Errorf("CALLBACK_PATH and LOGOUT_PATH must start with '/'")
	}
	return nil
}

func requireAbsoluteURL(name, value string) error {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", name, value)
	}
	return nil
}

func environ() map[string]string {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars
}
