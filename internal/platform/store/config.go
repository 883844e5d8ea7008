package store

import "time"

// Config enables and configures each backend
type Config struct {
	AppName string
	PG      PGConfig
	CH      CHConfig
}

// PGConfig configures the pgx pool
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// Open pings up to ConnectRetries times (default 20) with PingTimeout (default 3s) each
	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures the native clickhouse connection
type CHConfig struct {
	Enabled bool
	URL     string

	// reported in system.query_log client info
	ClientName string
	ClientTag  string
}
