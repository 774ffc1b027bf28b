// Package audit orchestrates the legality and risk audit for scheduled
// flights: it resolves the flight, gathers weather, runs every rule, ranks
// the risk scenarios, persists the snapshot, and raises grounding alerts on
// the go/no-go transition edge.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/flightdeck/go-api/flightdeck"
	"github.com/flightdeck/go-api/flightdeck/legality"
	"github.com/flightdeck/go-api/flightdeck/risk"
	"github.com/flightdeck/go-api/flightdeck/store"
	"github.com/flightdeck/go-api/flightdeck/weather"
)

// FlightStore is the persistence seam the engine audits against. The
// flight.Repository satisfies it.
type FlightStore interface {
	GetFlight(ctx context.Context, id string) (*flightdeck.Flight, error)
	SaveAuditResult(ctx context.Context, id string, snapshot flightdeck.AuditSnapshot) error
	MarkAlertSent(ctx context.Context, id string) (bool, error)
	ResetAlertGate(ctx context.Context, id string) error
	ListActiveFlightIDs(ctx context.Context, now time.Time) ([]string, error)
}

// Alerter dispatches grounding alerts. The notify.Dispatcher satisfies it.
type Alerter interface {
	DispatchNoGo(flightID string, flight *flightdeck.Flight, snapshot *flightdeck.AuditSnapshot, summary string) error
}

// weatherFetchTimeout bounds how long a single audit waits on the weather
// provider before falling back to stored data.
const weatherFetchTimeout = 15 * time.Second

// Engine runs audits. kvStore and alerter may be nil; the engine then skips
// the latest-snapshot cache and alert dispatch respectively.
type Engine struct {
	flights FlightStore
	weather weather.Provider
	kvStore store.KVStore
	alerter Alerter
	cfg     legality.Config
	now     func() time.Time
}

// NewEngine creates an audit engine. Pass nil for kvStore or alerter to
// disable those side channels.
func NewEngine(flights FlightStore, wx weather.Provider, kvStore store.KVStore, alerter Alerter, cfg legality.Config) *Engine {
	return &Engine{
		flights: flights,
		weather: wx,
		kvStore: kvStore,
		alerter: alerter,
		cfg:     cfg,
		now:     time.Now,
	}
}

// latestKey is the cache key holding a flight's most recent audit snapshot.
func latestKey(flightID string) string {
	return fmt.Sprintf("audit:latest:%s", flightID)
}

// RunAudit performs a full audit of one flight and returns the persisted
// snapshot. A missing flight or a failed save aborts the audit; a failed
// weather fetch degrades it instead, with a warning check recording the gap.
func (e *Engine) RunAudit(ctx context.Context, flightID string) (*flightdeck.AuditSnapshot, error) {
	fl, err := e.flights.GetFlight(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("load flight %s: %w", flightID, err)
	}
	prevStatus := fl.OverallStatus

	wx, degraded := e.gatherWeather(ctx, fl)

	checks := legality.Evaluate(fl, wx, e.cfg)
	if degraded {
		checks = append(checks, legality.WeatherUnavailableCheck(wx != nil))
	}

	overall := legality.OverallStatus(checks)
	snapshot := flightdeck.AuditSnapshot{
		Checks:        checks,
		OverallStatus: overall,
		Weather:       wx,
		RiskScenarios: risk.Scenarios(fl, wx),
		GeneratedAt:   e.now().UTC(),
	}

	if err := e.flights.SaveAuditResult(ctx, flightID, snapshot); err != nil {
		return nil, fmt.Errorf("save audit for flight %s: %w", flightID, err)
	}

	e.cacheLatest(ctx, flightID, snapshot)
	e.handleAlerting(ctx, flightID, fl, &snapshot, prevStatus)

	slog.Info("Audit complete",
		"flight_id", flightID,
		"overall_status", overall,
		"checks", len(checks),
		"scenarios", len(snapshot.RiskScenarios),
		"weather_degraded", degraded)

	return &snapshot, nil
}

// gatherWeather fetches fresh weather for the departure airport, falling back
// to the flight's stored observation if the fetch fails. The second return
// value reports whether the audit is running on degraded weather.
func (e *Engine) gatherWeather(ctx context.Context, fl *flightdeck.Flight) (*flightdeck.WeatherSnapshot, bool) {
	if e.weather == nil || fl.DepartureAirport == "" {
		return fl.Weather, true
	}

	wctx, cancel := context.WithTimeout(ctx, weatherFetchTimeout)
	defer cancel()

	wx, err := e.weather.Fetch(wctx, fl.DepartureAirport)
	if err != nil {
		slog.Warn("Weather fetch failed, degrading audit",
			"flight_id", fl.ID,
			"station", fl.DepartureAirport,
			"error", err)
		// A caching provider may still hand back its last good observation
		// alongside the error.
		if wx == nil {
			wx = fl.Weather
		}
		return wx, true
	}
	if wx == nil {
		// Provider reached the source but it had no observation.
		return fl.Weather, true
	}
	return wx, false
}

// cacheLatest stores the snapshot under the latest-audit key. Best effort;
// the database row is the source of truth.
func (e *Engine) cacheLatest(ctx context.Context, flightID string, snapshot flightdeck.AuditSnapshot) {
	if e.kvStore == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.Warn("Failed to marshal snapshot for cache", "flight_id", flightID, "error", err)
		return
	}
	if err := e.kvStore.SetValue(ctx, latestKey(flightID), string(data)); err != nil {
		slog.Warn("Failed to cache latest snapshot", "flight_id", flightID, "error", err)
	}
}

// LatestSnapshot returns the cached most-recent snapshot for a flight, or an
// error if none is cached.
func (e *Engine) LatestSnapshot(ctx context.Context, flightID string) (*flightdeck.AuditSnapshot, error) {
	if e.kvStore == nil {
		return nil, fmt.Errorf("no snapshot cache configured")
	}
	value, err := e.kvStore.GetValue(ctx, latestKey(flightID))
	if err != nil {
		return nil, fmt.Errorf("snapshot not cached for flight %s: %w", flightID, err)
	}
	var snapshot flightdeck.AuditSnapshot
	if err := json.Unmarshal([]byte(value), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}
	return &snapshot, nil
}

// handleAlerting raises a grounding alert only on the transition INTO no-go,
// guarded by the per-flight alert gate so repeated audits of a grounded
// flight stay quiet. Leaving no-go re-arms the gate.
func (e *Engine) handleAlerting(ctx context.Context, flightID string, fl *flightdeck.Flight, snapshot *flightdeck.AuditSnapshot, prevStatus flightdeck.OverallStatus) {
	if snapshot.OverallStatus != flightdeck.StatusNoGo {
		if prevStatus == flightdeck.StatusNoGo {
			if err := e.flights.ResetAlertGate(ctx, flightID); err != nil {
				slog.Warn("Failed to reset alert gate", "flight_id", flightID, "error", err)
			}
		}
		return
	}

	if prevStatus == flightdeck.StatusNoGo || e.alerter == nil {
		return
	}

	acquired, err := e.flights.MarkAlertSent(ctx, flightID)
	if err != nil {
		slog.Warn("Failed to acquire alert gate", "flight_id", flightID, "error", err)
		return
	}
	if !acquired {
		return
	}

	summary := legality.Summary(snapshot.Checks, snapshot.OverallStatus)
	if err := e.alerter.DispatchNoGo(flightID, fl, snapshot, summary); err != nil {
		slog.Warn("Failed to dispatch grounding alert", "flight_id", flightID, "error", err)
	}
}
