package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/gateflow/gateflow/internal/flagx"
	"github.com/gateflow/gateflow/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so JSON can specify intervals either as strings like
// "3s" or as integer nanoseconds.
type JsonConfig struct {
	ServerAddr          string         `json:"server_addr"`
	APIKey              string         `json:"api_key"`
	DBPath              string         `json:"db_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	ProbeTimeout        timex.Duration `json:"probe_timeout"`
	SyncBatchSize       int            `json:"sync_batch_size"`
	SyncMaxRetries      int            `json:"sync_max_retries"`
	SyncDebounce        timex.Duration `json:"sync_debounce"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c/-config flag. Zero fields in the file leave the current value in
// place, so a partial file works.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerAddr != "" {
		cfg.ServerAddr = jc.ServerAddr
	}
	if jc.APIKey != "" {
		cfg.APIKey = jc.APIKey
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.ProbeTimeout.Duration != 0 {
		cfg.ProbeTimeout = time.Duration(jc.ProbeTimeout.Duration)
	}
	if jc.SyncBatchSize != 0 {
		cfg.SyncBatchSize = jc.SyncBatchSize
	}
	if jc.SyncMaxRetries != 0 {
		cfg.SyncMaxRetries = jc.SyncMaxRetries
	}
	if jc.SyncDebounce.Duration != 0 {
		cfg.SyncDebounce = time.Duration(jc.SyncDebounce.Duration)
	}
}
