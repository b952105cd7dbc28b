package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/storefront/internal/flagx"
	"github.com/dmitrijs2005/storefront/internal/timex"
)

// JsonConfig is the on-disk form of Config. Pointer fields distinguish
// "absent" from zero values, so a partial file only overrides what it names.
// Durations accept both "15m" and integer nanoseconds (see timex.Duration).
type JsonConfig struct {
	EndpointAddrGRPC             *string         `json:"grpc_address"`
	MetricsAddr                  *string         `json:"metrics_address"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity"`
	ResetTokenValidityDuration   *timex.Duration `json:"reset_token_validity"`
	ResetURL                     *string         `json:"reset_url"`
	RedisAddr                    *string         `json:"redis_address"`
	RedisDB                      *int            `json:"redis_db"`
	RequireAuth                  *bool           `json:"require_auth"`
	BcryptCost                   *int            `json:"bcrypt_cost"`
	CleanupSchedule              *string         `json:"cleanup_schedule"`
	SMTPHost                     *string         `json:"smtp_host"`
	SMTPPort                     *int            `json:"smtp_port"`
	SMTPUser                     *string         `json:"smtp_user"`
	SMTPPassword                 *string         `json:"smtp_password"`
	SMTPFrom                     *string         `json:"smtp_from"`
	LogLevel                     *string         `json:"log_level"`
	LogFormat                    *string         `json:"log_format"`
}

// parseJson loads the JSON file named by -c/-config in args, if any, and
// copies every field present in the file into config.
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

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&config.ResetTokenValidityDuration, c.ResetTokenValidityDuration)
	setString(&config.ResetURL, c.ResetURL)
	setString(&config.RedisAddr, c.RedisAddr)
	setInt(&config.RedisDB, c.RedisDB)
	if c.RequireAuth != nil {
		config.RequireAuth = *c.RequireAuth
	}
	setInt(&config.BcryptCost, c.BcryptCost)
	setString(&config.CleanupSchedule, c.CleanupSchedule)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
