// Package config handles configuration for the auth server, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the auth server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store,
//     intended for development and tests only.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the
//     default in production.
//   - TokenValidityDuration: lifetime of issued tokens.
//   - BcryptCost: work factor for password hashing.
type Config struct {
	EndpointAddrHTTP      string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	BcryptCost            int
}

// LoadDefaults populates Config with development defaults.
// NOTE: The secret key is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "dev-secret-key-change-in-production"
	c.TokenValidityDuration = 24 * time.Hour
	c.BcryptCost = 10
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
