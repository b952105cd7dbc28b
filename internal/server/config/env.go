package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// parseEnv overlays STOREFRONT_* variables onto cfg. Variables that are not
// set leave the current value untouched.
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
