package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/flightdeck/go-api/flightdeck"
)

// maxConcurrentAudits caps how many flights a sweep audits at once.
const maxConcurrentAudits = 4

// SweepResult tallies one pass over the active flights.
type SweepResult struct {
	Total   int
	Go      int
	Caution int
	NoGo    int
	Errors  []error
}

// Sweep audits every active flight scheduled in the future. Flights are
// audited concurrently; one failure never aborts the batch. Returns an error
// only when the flight list itself cannot be loaded.
func (e *Engine) Sweep(ctx context.Context) (SweepResult, error) {
	ids, err := e.flights.ListActiveFlightIDs(ctx, e.now())
	if err != nil {
		return SweepResult{}, fmt.Errorf("list active flights: %w", err)
	}

	result := SweepResult{Total: len(ids)}
	if len(ids) == 0 {
		return result, nil
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, maxConcurrentAudits)
	)

	for _, id := range ids {
		wg.Add(1)
		go func(flightID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			snapshot, err := e.RunAudit(ctx, flightID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("flight %s: %w", flightID, err))
				return
			}
			switch snapshot.OverallStatus {
			case flightdeck.StatusGo:
				result.Go++
			case flightdeck.StatusCaution:
				result.Caution++
			case flightdeck.StatusNoGo:
				result.NoGo++
			}
		}(id)
	}
	wg.Wait()

	slog.Info("Audit sweep finished",
		"total", result.Total,
		"go", result.Go,
		"caution", result.Caution,
		"no_go", result.NoGo,
		"errors", len(result.Errors))

	return result, nil
}

// RunPeriodic sweeps on a fixed interval until ctx is cancelled. A sweep runs
// immediately on start so a restart never waits a full interval.
func (e *Engine) RunPeriodic(ctx context.Context, interval time.Duration) {
	if _, err := e.Sweep(ctx); err != nil {
		slog.Error("Audit sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Periodic audit sweep stopping")
			return
		case <-ticker.C:
			if _, err := e.Sweep(ctx); err != nil {
				slog.Error("Audit sweep failed", "error", err)
			}
		}
	}
}

// Request is an on-demand audit request consumed from the audit queue.
type Request struct {
	FlightID string `json:"flight_id"`
}

// HandleRequest decodes a queue message and runs the requested audit. Shaped
// to plug directly into the queue listener.
func (e *Engine) HandleRequest(ctx context.Context) func(msg string) {
	return func(msg string) {
		var req Request
		if err := json.Unmarshal([]byte(msg), &req); err != nil {
			slog.Error("Invalid audit request", "error", err, "message", msg)
			return
		}
		if req.FlightID == "" {
			slog.Error("Audit request missing flight_id", "message", msg)
			return
		}
		if _, err := e.RunAudit(ctx, req.FlightID); err != nil {
			slog.Error("On-demand audit failed", "flight_id", req.FlightID, "error", err)
		}
	}
}
