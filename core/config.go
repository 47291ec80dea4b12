package core

import "time"

// Config carries every knob the auth core recognizes. Components receive it
// at construction; nothing in this package reads the environment directly.
type Config struct {
	// OTPTTL is how long an issued code stays verifiable. Default 10m.
	OTPTTL time.Duration
	// Cooldown is the minimum gap between two OTP requests for one phone. Default 5m.
	Cooldown time.Duration
	// HourlyCap is the number of OTP requests allowed per phone per rolling hour. Default 3.
	HourlyCap int
	// TokenTTL is the session token lifetime. Default 7 days.
	TokenTTL time.Duration
	// SigningSecret signs and verifies session tokens (HS256). Required.
	SigningSecret string
	// GatewayURL is the SMS gateway endpoint. Empty disables dispatch (dev).
	GatewayURL string
	// GatewayKey authenticates against the SMS gateway.
	GatewayKey string
	// Sender is the SMS sender ID shown to recipients.
	Sender string
	// Env is the deployment environment ("production" disables the dev code peek).
	Env string
}

const (
	defaultOTPTTL    = 10 * time.Minute
	defaultCooldown  = 5 * time.Minute
	defaultHourlyCap = 3
	defaultTokenTTL  = 7 * 24 * time.Hour
)

// withDefaults fills zero values so a partially populated Config behaves.
func (c Config) withDefaults() Config {
	if c.OTPTTL <= 0 {
		c.OTPTTL = defaultOTPTTL
	}
	if c.Cooldown <= 0 {
		c.Cooldown = defaultCooldown
	}
	if c.HourlyCap <= 0 {
		c.HourlyCap = defaultHourlyCap
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = defaultTokenTTL
	}
	return c
}

// IsProduction reports whether dev-only affordances must stay off.
func (c Config) IsProduction() bool { return c.Env == "production" }
