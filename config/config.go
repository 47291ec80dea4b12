// Package config loads app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"

	"github.com/gharkaam/authcore/core"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisAddr enables the Redis-backed ephemeral store when set (host:port).
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// SigningSecret signs session tokens; required outside development.
	SigningSecret string `mapstructure:"SIGNING_SECRET"`
	// TokenTTL is the session token lifetime (e.g. "168h").
	TokenTTL string `mapstructure:"TOKEN_TTL"`
	// OTPTTL is the OTP validity window (e.g. "10m").
	OTPTTL string `mapstructure:"OTP_TTL"`
	// OTPCooldown is the gap enforced between OTP requests (e.g. "5m").
	OTPCooldown string `mapstructure:"OTP_COOLDOWN"`
	// OTPHourlyCap is the per-phone request cap per rolling hour.
	OTPHourlyCap int `mapstructure:"OTP_HOURLY_CAP"`
	// SMSGatewayURL is the SMS gateway endpoint; empty disables dispatch (dev).
	SMSGatewayURL string `mapstructure:"SMS_GATEWAY_URL"`
	// SMSGatewayKey is the gateway API key.
	SMSGatewayKey string `mapstructure:"SMS_GATEWAY_KEY"`
	// SMSSender is the sender ID shown to recipients.
	SMSSender string `mapstructure:"SMS_SENDER"`
	// PurgeCron schedules the expired-challenge purge; empty disables it.
	PurgeCron string `mapstructure:"PURGE_CRON"`
	// Env is the application environment ("development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Env vars override .env; a missing .env is ignored (CI).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("SIGNING_SECRET", "")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("OTP_TTL", "10m")
	v.SetDefault("OTP_COOLDOWN", "5m")
	v.SetDefault("OTP_HOURLY_CAP", 3)
	v.SetDefault("SMS_GATEWAY_URL", "")
	v.SetDefault("SMS_GATEWAY_KEY", "")
	v.SetDefault("SMS_SENDER", "GHRKAM")
	v.SetDefault("PURGE_CRON", "0 * * * *")
	v.SetDefault("APP_ENV", "development")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.Env == "production" && cfg.SigningSecret == "" {
		return nil, errors.New("config: SIGNING_SECRET must be set when APP_ENV=production")
	}
	if cfg.Env == "production" && cfg.SMSGatewayURL == "" {
		return nil, errors.New("config: SMS_GATEWAY_URL must be set when APP_ENV=production")
	}

	return &cfg, nil
}

// Core translates the loaded environment into the explicit core.Config the
// auth components receive at construction.
func (c *Config) Core() core.Config {
	return core.Config{
		OTPTTL:        duration(c.OTPTTL, 10*time.Minute),
		Cooldown:      duration(c.OTPCooldown, 5*time.Minute),
		HourlyCap:     c.OTPHourlyCap,
		TokenTTL:      duration(c.TokenTTL, 7*24*time.Hour),
		SigningSecret: c.SigningSecret,
		GatewayURL:    c.SMSGatewayURL,
		GatewayKey:    c.SMSGatewayKey,
		Sender:        c.SMSSender,
		Env:           c.Env,
	}
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
