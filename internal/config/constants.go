// Path: internal/config/constants.go
package config

import "time"

const (
	// Server configuration defaults
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 45 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

const (
	DefaultEnvFile                = "config/.env"
	DefaultAPIHost                = "127.0.0.1"
	DefaultPort                   = 5000
	DefaultEligibleSamplePageSize = 500
	DefaultRequestTimeout         = 30 * time.Second
	DefaultSessionIdleTimeout     = 30 * time.Minute
	// SessionSweepInterval is how often idle wizard sessions are looked for.
	SessionSweepInterval = time.Minute
)
