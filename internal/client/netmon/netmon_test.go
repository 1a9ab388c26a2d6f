package netmon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	mu  sync.Mutex
	err error
}

func (p *fakePinger) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakePinger) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func TestMonitor_StartsOfflineUntilProbe(t *testing.T) {
	p := &fakePinger{err: errors.New("down")}
	m := New(p, 5*time.Millisecond, time.Second, nil)
	assert.False(t, m.Online())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	assert.False(t, m.Online())
}

func TestMonitor_FlipCallbacksFireOnce(t *testing.T) {
	p := &fakePinger{}
	m := New(p, 5*time.Millisecond, time.Second, nil)

	var mu sync.Mutex
	var restored, lost int
	m.OnRestored(func() { mu.Lock(); restored++; mu.Unlock() })
	m.OnLost(func() { mu.Lock(); lost++; mu.Unlock() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	// First probe succeeds synchronously.
	require.True(t, m.Online())
	mu.Lock()
	assert.Equal(t, 1, restored)
	mu.Unlock()

	p.setErr(errors.New("down"))
	require.Eventually(t, func() bool { return !m.Online() }, time.Second, 2*time.Millisecond)

	p.setErr(nil)
	require.Eventually(t, func() bool { return m.Online() }, time.Second, 2*time.Millisecond)

	mu.Lock()
	assert.Equal(t, 2, restored)
	assert.Equal(t, 1, lost)
	mu.Unlock()
}

func TestMonitor_StopsOnCancel(t *testing.T) {
	p := &fakePinger{}
	m := New(p, 5*time.Millisecond, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	require.True(t, m.Online())

	cancel()
	time.Sleep(20 * time.Millisecond)

	// No more probes run after cancel, so the state stays put even when
	// the pinger starts failing.
	p.setErr(errors.New("down"))
	time.Sleep(20 * time.Millisecond)
	assert.True(t, m.Online())
}
