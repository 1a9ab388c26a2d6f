// Package config resolves the station client's runtime settings. Sources
// are layered: built-in defaults, then .env/environment variables, then an
// optional JSON file, then command-line flags. Later sources win.
package config

import "time"

// Config holds runtime settings for a station client.
type Config struct {
	// ServerAddr is the base URL of the central gateflow server.
	ServerAddr string
	// APIKey authenticates this station against the server.
	APIKey string
	// DBPath is the SQLite file holding the cache, queue and bay ledger.
	DBPath string

	// OnlineCheckInterval is how often the client probes server
	// reachability; ProbeTimeout bounds a single probe.
	OnlineCheckInterval time.Duration
	ProbeTimeout        time.Duration

	// Sync engine tuning.
	SyncBatchSize  int
	SyncMaxRetries int
	SyncDebounce   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://127.0.0.1:8080"
	c.DBPath = "gateflow.db"
	c.OnlineCheckInterval = 10 * time.Second
	c.ProbeTimeout = 3 * time.Second
	c.SyncBatchSize = 10
	c.SyncMaxRetries = 3
	c.SyncDebounce = 2 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, JSON (if present) and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
