package notify

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightdeck/go-api/flightdeck"
)

func testFlightAndSnapshot() (*flightdeck.Flight, *flightdeck.AuditSnapshot) {
	gust := 24
	fl := &flightdeck.Flight{
		ID: "42",
		Pilot: &flightdeck.Pilot{
			Name:  "Sam Carter",
			Email: "sam@example.com",
		},
		Aircraft: &flightdeck.Aircraft{
			TailNumber: "N12345",
		},
		ScheduledDate:    time.Date(2026, 6, 10, 10, 0, 0, 0, time.UTC),
		DepartureAirport: "KPAO",
		ArrivalAirport:   "KSQL",
	}
	snapshot := &flightdeck.AuditSnapshot{
		Checks: []flightdeck.LegalityCheck{
			{Item: "Annual Inspection", Status: flightdeck.StatusPass, Message: "Annual valid until Sep 1, 2026"},
			{Item: "Medical Certificate", Status: flightdeck.StatusFail, Message: "Medical expired on Jan 1, 2026"},
			{Item: "Wind Conditions", Status: flightdeck.StatusWarning, Message: "High winds: 18kts gusting 24kts"},
		},
		OverallStatus: flightdeck.StatusNoGo,
		Weather: &flightdeck.WeatherSnapshot{
			Station:        "KPAO",
			METAR:          "KPAO 101750Z 31018G24KT 10SM CLR",
			FlightCategory: flightdeck.CategoryVFR,
			Visibility:     10,
			Wind:           flightdeck.Wind{Direction: 310, Speed: 18, Gust: &gust},
		},
		GeneratedAt: time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC),
	}
	return fl, snapshot
}

func TestBuildAlertCarriesOnlyFailedChecks(t *testing.T) {
	fl, snapshot := testFlightAndSnapshot()

	payload := BuildAlert("42", fl, snapshot, "FLIGHT GROUNDED")

	assert.Equal(t, "sam@example.com", payload.Recipient)
	assert.Equal(t, "N12345", payload.TailNumber)
	assert.Equal(t, "no-go", payload.OverallStatus)
	require.Len(t, payload.FailedChecks, 1)
	assert.Equal(t, "Medical Certificate", payload.FailedChecks[0].Item)

	require.NotNil(t, payload.Weather)
	assert.Equal(t, "KPAO", payload.Weather.Station)
	assert.Equal(t, 18, payload.Weather.WindSpeed)
	require.NotNil(t, payload.Weather.WindGust)
	assert.Equal(t, 24, *payload.Weather.WindGust)
}

func TestDispatchNoGoPublishesJSON(t *testing.T) {
	fl, snapshot := testFlightAndSnapshot()

	var gotQueue, gotBody string
	d := NewDispatcherWithPublisher(func(qName, message string) error {
		gotQueue = qName
		gotBody = message
		return nil
	}, "test.alerts")

	err := d.DispatchNoGo("42", fl, snapshot, "FLIGHT GROUNDED")
	require.NoError(t, err)
	assert.Equal(t, "test.alerts", gotQueue)

	var decoded AlertPayload
	require.NoError(t, json.Unmarshal([]byte(gotBody), &decoded))
	assert.Equal(t, "42", decoded.FlightID)
	assert.Equal(t, "FLIGHT GROUNDED", decoded.Summary)
	assert.Len(t, decoded.FailedChecks, 1)
}

func TestDispatchNoGoPropagatesPublishError(t *testing.T) {
	fl, snapshot := testFlightAndSnapshot()

	d := NewDispatcherWithPublisher(func(qName, message string) error {
		return errors.New("broker unreachable")
	}, "test.alerts")

	err := d.DispatchNoGo("42", fl, snapshot, "FLIGHT GROUNDED")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unreachable")
}

func TestBuildAlertWithoutWeather(t *testing.T) {
	fl, snapshot := testFlightAndSnapshot()
	snapshot.Weather = nil

	payload := BuildAlert("42", fl, snapshot, "FLIGHT GROUNDED")
	assert.Nil(t, payload.Weather)
}
