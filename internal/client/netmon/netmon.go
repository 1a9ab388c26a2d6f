// Package netmon tracks whether the remote store is reachable. It probes
// on a fixed interval and fires callbacks on every offline/online flip;
// the sync engine hooks the restore callback to drain its queue.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/gateflow/gateflow/internal/logging"
)

// Pinger is the probe target, satisfied by the remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Monitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger

	mu         sync.Mutex
	online     bool
	started    bool
	onLost     []func()
	onRestored []func()
}

func New(pinger Pinger, interval, timeout time.Duration, logger logging.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Online reports the last observed reachability. It is pessimistic until
// the first probe succeeds.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnLost registers a callback fired once per online-to-offline flip.
// Registration must happen before Start.
func (m *Monitor) OnLost(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLost = append(m.onLost, fn)
}

// OnRestored registers a callback fired once per offline-to-online flip.
func (m *Monitor) OnRestored(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRestored = append(m.onRestored, fn)
}

// Start probes immediately and then on every interval tick until ctx is
// cancelled. It returns after the first probe so callers start with a
// settled state.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.probe(ctx)

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.probe(ctx)
			}
		}
	}()
}

func (m *Monitor) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.pinger.Ping(pctx)
	m.setOnline(ctx, err == nil)
}

func (m *Monitor) setOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	var fns []func()
	if online {
		fns = append(fns, m.onRestored...)
	} else {
		fns = append(fns, m.onLost...)
	}
	m.mu.Unlock()

	if m.logger != nil {
		if online {
			m.logger.Info(ctx, "connectivity restored")
		} else {
			m.logger.Warn(ctx, "connectivity lost")
		}
	}
	for _, fn := range fns {
		fn()
	}
}
