// auditd is the flight audit daemon. It sweeps every active flight on an
// interval, listens for on-demand audit requests on the queue, and publishes
// grounding alerts when a flight transitions to no-go.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/flightdeck/go-api/flightdeck/audit"
	"github.com/flightdeck/go-api/flightdeck/flight"
	"github.com/flightdeck/go-api/flightdeck/legality"
	"github.com/flightdeck/go-api/flightdeck/notify"
	"github.com/flightdeck/go-api/flightdeck/postgres"
	"github.com/flightdeck/go-api/flightdeck/queue"
	"github.com/flightdeck/go-api/flightdeck/slogger"
	"github.com/flightdeck/go-api/flightdeck/store"
	"github.com/flightdeck/go-api/flightdeck/weather"
)

const defaultSweepInterval = time.Hour

func main() {
	_ = godotenv.Load()
	slogger.Init()

	if err := postgres.Connect(); err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer postgres.Close()

	kv, err := store.NewValkeyStore()
	if err != nil {
		// The daemon runs without a cache, just slower and chattier upstream.
		slog.Warn("Valkey unavailable, running without cache", "error", err)
		kv = nil
	} else {
		defer kv.Close()
	}

	var wx weather.Provider = weather.NewClient()
	if kv != nil {
		wx = weather.NewCachingProvider(wx, kv)
	}

	repo := flight.NewRepository()
	dispatcher := notify.NewDispatcher()
	engine := audit.NewEngine(repo, wx, kv, dispatcher, legality.DefaultConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go queue.ListenWithRetry(ctx, queue.AuditRequestQueue, engine.HandleRequest(ctx))

	interval := sweepInterval()
	slog.Info("Audit daemon starting", "sweep_interval", interval)
	engine.RunPeriodic(ctx, interval)

	slog.Info("Audit daemon stopped")
}

// sweepInterval reads AUDIT_SWEEP_INTERVAL (a Go duration string such as
// "30m") and falls back to the hourly default on absence or parse failure.
func sweepInterval() time.Duration {
	raw := os.Getenv("AUDIT_SWEEP_INTERVAL")
	if raw == "" {
		return defaultSweepInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid AUDIT_SWEEP_INTERVAL, using default", "value", raw, "default", defaultSweepInterval)
		return defaultSweepInterval
	}
	return d
}
