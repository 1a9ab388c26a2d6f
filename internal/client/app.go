// Package client assembles a station's offline-first runtime: the local
// SQLite cache and queue, the sync engine, the connectivity monitor, the
// live change listener, and the station service on top of them.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gateflow/gateflow/internal/client/cache"
	"github.com/gateflow/gateflow/internal/client/config"
	"github.com/gateflow/gateflow/internal/client/live"
	"github.com/gateflow/gateflow/internal/client/localdb"
	"github.com/gateflow/gateflow/internal/client/netmon"
	"github.com/gateflow/gateflow/internal/client/queue"
	"github.com/gateflow/gateflow/internal/client/remote"
	"github.com/gateflow/gateflow/internal/client/stations"
	"github.com/gateflow/gateflow/internal/client/syncer"
	"github.com/gateflow/gateflow/internal/client/vehicles"
	"github.com/gateflow/gateflow/internal/logging"
	"github.com/gateflow/gateflow/internal/warehouse"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	monitor  *netmon.Monitor
	engine   *syncer.Engine
	listener *live.Listener
	service  *stations.Service
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := localdb.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing local database: %w", err)
	}

	cacheRepo := cache.NewSQLiteRepository(db)
	queueRepo := queue.NewSQLiteRepository(db)
	bayStore := warehouse.NewSQLiteStore(db)

	store := remote.NewHTTPStore(nil, c.ServerAddr, c.APIKey)

	monitor := netmon.New(store, c.OnlineCheckInterval, c.ProbeTimeout, logger)

	engine := syncer.New(queueRepo, store, cacheRepo, logger, syncer.Options{
		BatchSize:  c.SyncBatchSize,
		MaxRetries: c.SyncMaxRetries,
		Debounce:   c.SyncDebounce,
		Online:     monitor.Online,
	})

	listener := live.NewListener(store, cacheRepo, logger)

	repo := vehicles.NewRepository(cacheRepo, store, monitor, engine, logger)
	service := stations.NewService(repo, bayStore, logger)
	service.EnableAttachments(store)

	return &App{
		config:   c,
		logger:   logger,
		monitor:  monitor,
		engine:   engine,
		listener: listener,
		service:  service,
	}, nil
}

// Stations returns the station-facing service. UIs and terminals embed
// the App and drive the gate flow through it.
func (app *App) Stations() *stations.Service {
	return app.service
}

// Sync exposes the queue engine for status badges and manual retries.
func (app *App) Sync() *syncer.Engine {
	return app.engine
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the background machinery and blocks until ctx is cancelled
// or a termination signal arrives. Queued work drains whenever
// connectivity comes back.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting station client", "server", app.config.ServerAddr, "db", app.config.DBPath)

	app.initSignalHandler(cancelFunc)

	app.monitor.OnRestored(func() {
		app.engine.ScheduleDrain(ctx)
	})

	// Start returns after the first probe, so Online is settled before any
	// station traffic.
	app.monitor.Start(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.listener.Run(ctx)
	}()

	// Anything left over from the previous run goes out as soon as the
	// server is reachable.
	app.engine.ScheduleDrain(ctx)

	<-ctx.Done()
	wg.Wait()
}
