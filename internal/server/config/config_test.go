package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()
	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Contains(t, cfg.DatabaseDSN, "postgres://")
	assert.Equal(t, 25*time.Second, cfg.FeedKeepalive)
	assert.NotZero(t, cfg.RateLimitRPS)
}
