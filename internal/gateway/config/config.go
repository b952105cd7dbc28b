// Package config handles configuration for the HTTP gateway, layering
// defaults, a JSON file, environment variables and command-line flags.
package config

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// EnvPrefix is prepended to every environment variable the gateway reads.
const EnvPrefix = "GATEWAY_"

// Config holds runtime settings for the gateway.
//
// RateLimit is the number of login and password-reset requests a single
// client IP may make per minute. TrustedProxies lists the addresses or
// CIDR ranges whose X-Forwarded-For and X-Real-IP headers are believed;
// empty means the TCP peer is always the client.
type Config struct {
	HTTPAddr       string        `env:"HTTP_ADDRESS"`
	MetricsAddr    string        `env:"METRICS_ADDRESS"`
	BackendAddr    string        `env:"BACKEND_ADDRESS"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	RateLimit      int           `env:"RATE_LIMIT"`
	CORSOrigins    []string      `env:"CORS_ORIGINS"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES"`
	LogLevel       string        `env:"LOG_LEVEL"`
	LogFormat      string        `env:"LOG_FORMAT"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.MetricsAddr = ":9091"
	c.BackendAddr = "localhost:50051"
	c.RequestTimeout = 10 * time.Second
	c.RateLimit = 30
	c.CORSOrigins = []string{"*"}
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// LoadConfig builds a Config from os.Args and the process environment.
func LoadConfig(ctx context.Context) (*Config, error) {
	return load(ctx, os.Args[1:], envconfig.OsLookuper())
}

func load(ctx context.Context, args []string, env envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(ctx, cfg, env); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the gateway cannot start with.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("config: http address is required")
	}
	if c.BackendAddr == "" {
		return fmt.Errorf("config: backend address is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request timeout must be positive")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("config: rate limit must be positive")
	}
	if _, err := c.TrustedPrefixes(); err != nil {
		return err
	}
	return nil
}

// TrustedPrefixes parses TrustedProxies. A bare address is a single-host range.
func (c *Config) TrustedPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, s := range c.TrustedProxies {
		s = strings.TrimSpace(s)
		if strings.Contains(s, "/") {
			p, err := netip.ParsePrefix(s)
			if err != nil {
				return nil, fmt.Errorf("config: trusted proxy %q: %w", s, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("config: trusted proxy %q: %w", s, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
