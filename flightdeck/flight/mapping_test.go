package flight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flightdeck/go-api/flightdeck"
	"github.com/flightdeck/go-api/flightdeck/postgres/models"
)

func TestAircraftMappingRoundTrip(t *testing.T) {
	hundredHour := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	domain := flightdeck.Aircraft{
		TailNumber:   "N12345",
		Model:        "172S",
		Manufacturer: "Cessna",
		Year:         2004,
		ForHire:      true,
		MaintenanceDates: flightdeck.MaintenanceDates{
			Annual:       time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			Transponder:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			StaticSystem: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			HundredHour:  &hundredHour,
		},
		CurrentHours: flightdeck.HourMeters{Hobbs: 3520.4, Tach: 3480.0},
		OperatingLimits: &flightdeck.OperatingLimits{
			VSpeeds:                  flightdeck.VSpeeds{Vne: 163, Vno: 129, Vfe: 85},
			MaxDemonstratedCrosswind: 15,
		},
		Logs: []flightdeck.MaintenanceLogEntry{
			{
				Date:        hundredHour,
				Description: "100-hour inspection completed",
				HobbsTime:   3440,
				TachTime:    3400,
				Mechanic:    "J. Alvarez A&P 1234567",
			},
		},
	}

	row, err := MapAircraftToDB(domain)
	require.NoError(t, err)
	assert.Equal(t, "N12345", row.TailNumber)
	assert.Equal(t, "172S", row.AircraftType)
	require.Len(t, row.Logs, 1)

	back, err := MapDBAircraft(row)
	require.NoError(t, err)
	assert.Equal(t, domain.TailNumber, back.TailNumber)
	assert.Equal(t, domain.MaintenanceDates.Annual, back.MaintenanceDates.Annual)
	require.NotNil(t, back.MaintenanceDates.HundredHour)
	assert.Equal(t, hundredHour, *back.MaintenanceDates.HundredHour)
	require.NotNil(t, back.OperatingLimits)
	assert.Equal(t, 15, back.OperatingLimits.MaxDemonstratedCrosswind)
	assert.Equal(t, float64(163), back.OperatingLimits.VSpeeds.Vne)
	require.Len(t, back.Logs, 1)
	assert.Equal(t, "J. Alvarez A&P 1234567", back.Logs[0].Mechanic)

	// The round-tripped aircraft still yields its 100-hour baseline.
	baseline, ok := back.TachAtLastHundredHour()
	require.True(t, ok)
	assert.Equal(t, 3400.0, baseline)
}

func TestPilotMappingRoundTrip(t *testing.T) {
	analyzedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	domain := flightdeck.Pilot{
		Name:  "Sam Carter",
		Email: "sam@example.com",
		Certificates: flightdeck.Certificate{
			Type:            flightdeck.CertPPL,
			InstrumentRated: true,
		},
		Experience: flightdeck.Experience{
			TotalHours:      250,
			NightHours:      40,
			Last90DaysHours: 12,
		},
		MedicalExpiration:      time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		FlightReviewExpiration: time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
		SafetyAnalysis: &flightdeck.SafetyAnalysis{
			LastAnalyzed: analyzedAt,
			Score:        6.5,
		},
	}

	row := MapPilotToDB(domain)
	assert.Equal(t, "PPL", row.CertificateType)
	require.NotNil(t, row.SafetyScore)
	assert.Equal(t, 6.5, *row.SafetyScore)

	back := MapDBPilot(row)
	assert.Equal(t, domain.Name, back.Name)
	assert.True(t, back.Certificates.InstrumentRated)
	assert.Equal(t, domain.Experience.TotalHours, back.Experience.TotalHours)
	require.NotNil(t, back.SafetyAnalysis)
	assert.Equal(t, 6.5, back.SafetyAnalysis.Score)
	assert.Equal(t, analyzedAt, back.SafetyAnalysis.LastAnalyzed)
}

func TestPilotMappingWithoutSafetyAnalysis(t *testing.T) {
	row := MapPilotToDB(flightdeck.Pilot{Name: "Sam Carter", Email: "sam@example.com"})
	assert.Nil(t, row.SafetyScore)

	back := MapDBPilot(row)
	assert.Nil(t, back.SafetyAnalysis)
}

func TestFlightMappingDecodesDenormalizedJSON(t *testing.T) {
	checks, err := models.MarshalJSONB([]flightdeck.LegalityCheck{
		{Category: flightdeck.CategoryPilot, Item: "Medical Certificate", Status: flightdeck.StatusFail, Message: "Medical expired on Jan 1, 2026"},
	})
	require.NoError(t, err)
	weather, err := models.MarshalJSONB(flightdeck.WeatherSnapshot{
		Station:        "KPAO",
		FlightCategory: flightdeck.CategoryVFR,
		Visibility:     10,
		Wind:           flightdeck.Wind{Direction: 310, Speed: 8},
	})
	require.NoError(t, err)

	row := models.Flight{
		Model:            gorm.Model{ID: 42},
		PilotID:          7,
		AircraftID:       3,
		Pilot:            MapPilotToDB(flightdeck.Pilot{Name: "Sam Carter", Email: "sam@example.com"}),
		ScheduledDate:    time.Date(2026, 6, 10, 10, 0, 0, 0, time.UTC),
		DepartureAirport: "KPAO",
		ArrivalAirport:   "KSQL",
		Status:           models.FlightStatusNoGo,
		OverallStatus:    "no-go",
		LegalityChecks:   checks,
		Weather:          weather,
		AlertSent:        true,
	}
	row.Aircraft.TailNumber = "N12345"

	fl, err := MapDBFlight(row)
	require.NoError(t, err)
	assert.Equal(t, "42", fl.ID)
	assert.Equal(t, flightdeck.FlightNoGo, fl.Status)
	assert.Equal(t, flightdeck.StatusNoGo, fl.OverallStatus)
	assert.True(t, fl.AlertSent)
	require.Len(t, fl.LegalityChecks, 1)
	assert.Equal(t, "Medical Certificate", fl.LegalityChecks[0].Item)
	require.NotNil(t, fl.Weather)
	assert.Equal(t, "KPAO", fl.Weather.Station)
	assert.True(t, fl.IsCrossCountry())
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Entity: "flight", ID: "99"}
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "flight")
	assert.Contains(t, err.Error(), "99")
	assert.False(t, IsNotFound(assert.AnError))
}
