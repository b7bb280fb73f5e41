package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/skitterwm/skitter/internal/config"
	"github.com/skitterwm/skitter/internal/engine"
	"github.com/skitterwm/skitter/internal/ipc"
	"github.com/skitterwm/skitter/internal/monitors"
	"github.com/skitterwm/skitter/internal/recovery"
	"github.com/skitterwm/skitter/internal/x11"
)

// reloader re-reads the config file and hot-applies it to the engine.
// Serves both the IPC RELOAD command and the file watcher.
type reloader struct {
	engine *engine.Engine
	path   string
}

func (r *reloader) Reload() (applied, pendingRestart []string, err error) {
	cfg, err := config.LoadFromPath(r.path)
	if err != nil {
		return nil, nil, err
	}
	result, err := r.engine.ApplyConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return result.Applied, result.PendingRestart, nil
}

func runDaemon() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := newLogger(cfg.LogLevel)
	logger.Info("configuration loaded",
		"threshold_px", cfg.Proximity.ThresholdPx,
		"poll_interval_ms", cfg.Engine.PollIntervalMs)

	// Connect to display server
	conn, err := x11.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer conn.Close()

	// Monitor registry, refreshed on RandR topology events
	enum, err := x11.NewEnumerator(conn)
	if err != nil {
		log.Fatalf("Failed to initialize monitor enumeration: %v", err)
	}
	registry := monitors.NewRegistry(enum)
	if err := x11.WatchTopology(conn, registry, logger); err != nil {
		logger.Warn("monitor topology events unavailable", "error", err)
	}

	// Circuit breakers. The X11 collaborators self-heal by pinging the
	// connection; a tick-loop fault has no recovery action.
	rec := recovery.NewManager(recovery.Settings{
		FailureThreshold: uint64(cfg.Recovery.FailureThreshold),
		MaxRetries:       cfg.Recovery.MaxRetries,
		RetryBackoff:     cfg.RetryBackoff(),
		Cooldown:         cfg.Cooldown(),
		OnStateChange: func(component string, from, to recovery.State) {
			logger.Warn("breaker transition",
				"component", component, "from", from.String(), "to", to.String())
		},
	}, logger)
	reconnect := func(ctx context.Context) bool { return conn.Ping() }
	rec.Register(engine.ComponentCursor, reconnect)
	rec.Register(engine.ComponentWindows, reconnect)
	rec.Register(engine.ComponentMover, reconnect)
	rec.Register(engine.ComponentTick, nil)

	eng := engine.New(engine.Deps{
		Cursor:   x11.NewCursor(conn),
		Windows:  x11.NewWindows(conn),
		Registry: registry,
		Recovery: rec,
		Logger:   logger,
	}, cfg)
	if err := eng.Start(); err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}
	defer eng.Stop()

	cfgPath, err := config.DefaultConfigPath()
	if err != nil {
		log.Fatalf("Failed to resolve config path: %v", err)
	}
	rel := &reloader{engine: eng, path: cfgPath}

	// Start IPC server
	ipcServer, err := ipc.NewServer(eng, rec, registry, rel, logger)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	// Watch the config file for edits. The watcher is optional; a
	// missing config directory only disables hot reload.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var watchReqs chan string
	if watcher, err := config.NewWatcher(cfgPath, logger); err != nil {
		logger.Warn("config file watch disabled", "error", err)
	} else {
		defer watcher.Close()
		go watcher.Run(ctx)
		watchReqs = watcher.Requests
	}

	logger.Info("skitter daemon started", "version", version)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				logger.Info("received SIGHUP, reloading config")
				reload(rel, logger)
			case os.Interrupt, syscall.SIGTERM:
				logger.Info("shutting down skitter daemon")
				return
			}
		case reason := <-watchReqs:
			logger.Info("reloading config", "reason", reason)
			reload(rel, logger)
		}
	}
}

func reload(rel *reloader, logger *slog.Logger) {
	applied, pending, err := rel.Reload()
	if err != nil {
		logger.Error("config reload failed", "error", err)
		return
	}
	if len(pending) > 0 {
		logger.Info("config fields waiting for restart", "fields", pending)
	}
	if len(applied) == 0 && len(pending) == 0 {
		logger.Info("config unchanged")
	}
}
