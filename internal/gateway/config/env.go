package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// parseEnv overlays GATEWAY_* variables onto cfg.
func parseEnv(ctx context.Context, cfg *Config, l envconfig.Lookuper) error {
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:           cfg,
		Lookuper:         envconfig.PrefixLookuper(EnvPrefix, l),
		DefaultOverwrite: true,
	})
	if err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}
