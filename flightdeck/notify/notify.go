// Package notify builds and publishes no-go alert payloads for downstream
// notifiers (email, chat, dashboards). Alerts are published to the alert
// queue as JSON; delivery itself is someone else's job.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/flightdeck/go-api/flightdeck"
	"github.com/flightdeck/go-api/flightdeck/queue"
)

// Publisher sends a serialized payload to a named queue. Satisfied by
// queue.Send.
type Publisher func(qName string, message string) error

// WeatherBlock is the weather summary included in an alert, trimmed to what a
// notifier needs to render.
type WeatherBlock struct {
	Station        string  `json:"station"`
	FlightCategory string  `json:"flight_category"`
	Visibility     float64 `json:"visibility"`
	Ceiling        *int    `json:"ceiling,omitempty"`
	WindSpeed      int     `json:"wind_speed"`
	WindGust       *int    `json:"wind_gust,omitempty"`
	RawMETAR       string  `json:"raw_metar,omitempty"`
}

// AlertPayload is the message published when a flight transitions to no-go.
type AlertPayload struct {
	FlightID      string                     `json:"flight_id"`
	Recipient     string                     `json:"recipient"`
	PilotName     string                     `json:"pilot_name"`
	TailNumber    string                     `json:"tail_number"`
	ScheduledDate time.Time                  `json:"scheduled_date"`
	Departure     string                     `json:"departure"`
	Arrival       string                     `json:"arrival,omitempty"`
	OverallStatus string                     `json:"overall_status"`
	Summary       string                     `json:"summary"`
	FailedChecks  []flightdeck.LegalityCheck `json:"failed_checks"`
	Weather       *WeatherBlock              `json:"weather,omitempty"`
	GeneratedAt   time.Time                  `json:"generated_at"`
}

// Dispatcher publishes grounding alerts.
type Dispatcher struct {
	publish Publisher
	qName   string
}

// NewDispatcher returns a dispatcher publishing to the standard alert queue.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{publish: queue.Send, qName: queue.AlertQueue}
}

// NewDispatcherWithPublisher allows injecting a publisher for tests.
func NewDispatcherWithPublisher(p Publisher, qName string) *Dispatcher {
	return &Dispatcher{publish: p, qName: qName}
}

// DispatchNoGo builds an alert from the flight and its audit snapshot and
// publishes it. Only fail checks ride along; warnings did not ground the
// flight.
func (d *Dispatcher) DispatchNoGo(flightID string, flight *flightdeck.Flight, snapshot *flightdeck.AuditSnapshot, summary string) error {
	payload := BuildAlert(flightID, flight, snapshot, summary)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal alert for flight %s: %w", flightID, err)
	}

	if err := d.publish(d.qName, string(body)); err != nil {
		return fmt.Errorf("publish alert for flight %s: %w", flightID, err)
	}

	slog.Info("Grounding alert published",
		"flight_id", flightID,
		"tail_number", payload.TailNumber,
		"failed_checks", len(payload.FailedChecks))
	return nil
}

// BuildAlert assembles the alert payload without publishing it.
func BuildAlert(flightID string, flight *flightdeck.Flight, snapshot *flightdeck.AuditSnapshot, summary string) AlertPayload {
	payload := AlertPayload{
		FlightID:      flightID,
		Recipient:     flight.Pilot.Email,
		PilotName:     flight.Pilot.Name,
		TailNumber:    flight.Aircraft.TailNumber,
		ScheduledDate: flight.ScheduledDate,
		Departure:     flight.DepartureAirport,
		Arrival:       flight.ArrivalAirport,
		OverallStatus: string(snapshot.OverallStatus),
		Summary:       summary,
		GeneratedAt:   snapshot.GeneratedAt,
	}

	for _, check := range snapshot.Checks {
		if check.Status == flightdeck.StatusFail {
			payload.FailedChecks = append(payload.FailedChecks, check)
		}
	}

	if snapshot.Weather != nil {
		payload.Weather = &WeatherBlock{
			Station:        snapshot.Weather.Station,
			FlightCategory: string(snapshot.Weather.FlightCategory),
			Visibility:     snapshot.Weather.Visibility,
			Ceiling:        snapshot.Weather.Ceiling,
			WindSpeed:      snapshot.Weather.Wind.Speed,
			WindGust:       snapshot.Weather.Wind.Gust,
			RawMETAR:       snapshot.Weather.METAR,
		}
	}

	return payload
}
