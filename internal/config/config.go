// Package config provides sharkDB server configuration and flag parsing.
package config

import (
	"flag"
	"path/filepath"
)

// Config holds server configuration. DataPath empty means fully in-memory:
// no catalog, no snapshots, clean slate on every start.
type Config struct {
	HTTPAddr  string // HTTP API listen address (default :8090)
	DataPath  string // data directory for catalog + snapshots (empty = in-memory)
	AuthToken string // bearer token required on write endpoints (empty = off)
	ReadOnly  bool   // reject all write endpoints with 403
	Restore   bool   // recreate tables from catalog/snapshots on start
	SnapshotOnShutdown bool // dump every table on graceful shutdown

	RateLimit int // write requests per minute per client IP (0 = unlimited)
	RateBurst int // burst allowance for the write rate limit

	LogLevel string // zerolog level: debug, info, warn, error
	LogJSON  bool   // JSON log output instead of console
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		HTTPAddr:           ":8090",
		DataPath:           "",
		Restore:            true,
		SnapshotOnShutdown: true,
		RateBurst:          20,
		LogLevel:           "info",
	}
}

// ParseFlags parses command-line flags into the config.
func (c *Config) ParseFlags() error {
	flag.StringVar(&c.HTTPAddr, "http", c.HTTPAddr, "HTTP API listen address")
	flag.StringVar(&c.DataPath, "data", c.DataPath, "data directory (empty = in-memory only)")
	flag.StringVar(&c.AuthToken, "httpauth", c.AuthToken, "require this bearer token for HTTP writes")
	flag.BoolVar(&c.ReadOnly, "httpreadonly", c.ReadOnly, "read-only mode (blocks writes)")
	flag.BoolVar(&c.Restore, "restore", c.Restore, "restore tables from the data directory on start")
	flag.BoolVar(&c.SnapshotOnShutdown, "snapshot-on-shutdown", c.SnapshotOnShutdown, "dump tables on graceful shutdown")
	flag.IntVar(&c.RateLimit, "write-rpm", c.RateLimit, "write requests per minute per IP (0 = unlimited)")
	flag.IntVar(&c.RateBurst, "write-burst", c.RateBurst, "write rate limit burst")
	flag.StringVar(&c.LogLevel, "loglevel", c.LogLevel, "log level (debug|info|warn|error)")
	flag.BoolVar(&c.LogJSON, "logjson", c.LogJSON, "JSON log output")
	flag.Parse()
	return nil
}

// CatalogPath returns the sqlite catalog location, or "" when in-memory.
func (c *Config) CatalogPath() string {
	if c.DataPath == "" {
		return ""
	}
	return filepath.Join(c.DataPath, "catalog.db")
}

// SnapshotDir returns the snapshot directory, or "" when in-memory.
func (c *Config) SnapshotDir() string {
	if c.DataPath == "" {
		return ""
	}
	return filepath.Join(c.DataPath, "snapshots")
}
