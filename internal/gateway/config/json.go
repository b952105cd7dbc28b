package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/storefront/internal/flagx"
	"github.com/dmitrijs2005/storefront/internal/timex"
)

// JsonConfig is the on-disk form of Config; absent fields keep earlier values.
type JsonConfig struct {
	HTTPAddr       *string         `json:"http_address"`
	MetricsAddr    *string         `json:"metrics_address"`
	BackendAddr    *string         `json:"backend_address"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	RateLimit      *int            `json:"rate_limit"`
	CORSOrigins    []string        `json:"cors_origins"`
	TrustedProxies []string        `json:"trusted_proxies"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
}

func parseJson(config *Config, args []string) error {
	path := flagx.JsonConfigFlags(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if c.HTTPAddr != nil {
		config.HTTPAddr = *c.HTTPAddr
	}
	if c.MetricsAddr != nil {
		config.MetricsAddr = *c.MetricsAddr
	}
	if c.BackendAddr != nil {
		config.BackendAddr = *c.BackendAddr
	}
	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.RateLimit != nil {
		config.RateLimit = *c.RateLimit
	}
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.TrustedProxies != nil {
		config.TrustedProxies = c.TrustedProxies
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	if c.LogFormat != nil {
		config.LogFormat = *c.LogFormat
	}

	return nil
}
