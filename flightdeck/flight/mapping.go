package flight

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/flightdeck/go-api/flightdeck"
	"github.com/flightdeck/go-api/flightdeck/postgres/models"
)

/*	=========== Mapping Functions ============ */

// MapDBFlight converts a loaded flight row (with pilot, aircraft, and logs
// preloaded) into the domain aggregate the audit engine consumes.
func MapDBFlight(dbFlight models.Flight) (*flightdeck.Flight, error) {
	pilot := MapDBPilot(dbFlight.Pilot)
	aircraft, err := MapDBAircraft(dbFlight.Aircraft)
	if err != nil {
		return nil, err
	}

	f := &flightdeck.Flight{
		ID:               strconv.FormatUint(uint64(dbFlight.ID), 10),
		Pilot:            pilot,
		Aircraft:         aircraft,
		ScheduledDate:    dbFlight.ScheduledDate,
		DepartureAirport: dbFlight.DepartureAirport,
		ArrivalAirport:   dbFlight.ArrivalAirport,
		Status:           flightdeck.FlightStatus(dbFlight.Status),
		OverallStatus:    flightdeck.OverallStatus(dbFlight.OverallStatus),
		AlertSent:        dbFlight.AlertSent,
	}

	if len(dbFlight.LegalityChecks) > 0 {
		if err := json.Unmarshal([]byte(dbFlight.LegalityChecks), &f.LegalityChecks); err != nil {
			return nil, fmt.Errorf("unmarshal legality checks for flight %s: %w", f.ID, err)
		}
	}
	if len(dbFlight.Weather) > 0 {
		var w flightdeck.WeatherSnapshot
		if err := json.Unmarshal([]byte(dbFlight.Weather), &w); err != nil {
			return nil, fmt.Errorf("unmarshal weather for flight %s: %w", f.ID, err)
		}
		f.Weather = &w
	}

	return f, nil
}

// MapDBPilot converts a pilot row into the domain snapshot.
func MapDBPilot(dbPilot models.Pilot) *flightdeck.Pilot {
	p := &flightdeck.Pilot{
		Name:  dbPilot.Name,
		Email: dbPilot.Email,
		Certificates: flightdeck.Certificate{
			Type:             flightdeck.CertificateType(dbPilot.CertificateType),
			InstrumentRated:  dbPilot.InstrumentRated,
			MultiEngineRated: dbPilot.MultiEngineRated,
		},
		Experience: flightdeck.Experience{
			TotalHours:        dbPilot.TotalHours,
			PICHours:          dbPilot.PICHours,
			NightHours:        dbPilot.NightHours,
			IFRHours:          dbPilot.IFRHours,
			CrossCountryHours: dbPilot.CrossCountryHours,
			Last90DaysHours:   dbPilot.Last90DaysHours,
			Last30DaysHours:   dbPilot.Last30DaysHours,
		},
		MedicalExpiration:      dbPilot.MedicalExpiration,
		FlightReviewExpiration: dbPilot.FlightReviewExpiration,
	}

	if dbPilot.SafetyScore != nil {
		analysis := &flightdeck.SafetyAnalysis{Score: *dbPilot.SafetyScore}
		if dbPilot.SafetyAnalyzedAt != nil {
			analysis.LastAnalyzed = *dbPilot.SafetyAnalyzedAt
		}
		p.SafetyAnalysis = analysis
	}

	return p
}

// MapDBAircraft converts an aircraft row and its logs into the domain
// snapshot.
func MapDBAircraft(dbAircraft models.Aircraft) (*flightdeck.Aircraft, error) {
	a := &flightdeck.Aircraft{
		TailNumber:   dbAircraft.TailNumber,
		Model:        dbAircraft.AircraftType,
		Manufacturer: dbAircraft.Manufacturer,
		Year:         dbAircraft.Year,
		ForHire:      dbAircraft.ForHire,
		MaintenanceDates: flightdeck.MaintenanceDates{
			Annual:       dbAircraft.AnnualDate,
			Transponder:  dbAircraft.TransponderDate,
			StaticSystem: dbAircraft.StaticSystemDate,
			HundredHour:  dbAircraft.HundredHourDate,
		},
		CurrentHours: flightdeck.HourMeters{
			Hobbs: dbAircraft.HobbsHours,
			Tach:  dbAircraft.TachHours,
		},
	}

	if len(dbAircraft.OperatingLimits) > 0 {
		var limits flightdeck.OperatingLimits
		if err := json.Unmarshal([]byte(dbAircraft.OperatingLimits), &limits); err != nil {
			return nil, fmt.Errorf("unmarshal operating limits for %s: %w", dbAircraft.TailNumber, err)
		}
		a.OperatingLimits = &limits
	}

	for _, l := range dbAircraft.Logs {
		a.Logs = append(a.Logs, flightdeck.MaintenanceLogEntry{
			Date:        l.Date,
			Description: l.Description,
			HobbsTime:   l.HobbsTime,
			TachTime:    l.TachTime,
			Mechanic:    l.Mechanic,
		})
	}

	return a, nil
}

// MapAircraftToDB converts a domain aircraft into a row for insertion.
func MapAircraftToDB(a flightdeck.Aircraft) (models.Aircraft, error) {
	var limits models.JSONB
	if a.OperatingLimits != nil {
		var err error
		limits, err = models.MarshalJSONB(a.OperatingLimits)
		if err != nil {
			return models.Aircraft{}, fmt.Errorf("marshal operating limits for %s: %w", a.TailNumber, err)
		}
	}

	dbAircraft := models.Aircraft{
		TailNumber:       a.TailNumber,
		AircraftType:     a.Model,
		Manufacturer:     a.Manufacturer,
		Year:             a.Year,
		ForHire:          a.ForHire,
		AnnualDate:       a.MaintenanceDates.Annual,
		TransponderDate:  a.MaintenanceDates.Transponder,
		StaticSystemDate: a.MaintenanceDates.StaticSystem,
		HundredHourDate:  a.MaintenanceDates.HundredHour,
		HobbsHours:       a.CurrentHours.Hobbs,
		TachHours:        a.CurrentHours.Tach,
		OperatingLimits:  limits,
	}

	for _, l := range a.Logs {
		dbAircraft.Logs = append(dbAircraft.Logs, models.MaintenanceLog{
			Date:        l.Date,
			Description: l.Description,
			HobbsTime:   l.HobbsTime,
			TachTime:    l.TachTime,
			Mechanic:    l.Mechanic,
		})
	}

	return dbAircraft, nil
}

// MapPilotToDB converts a domain pilot into a row for insertion.
func MapPilotToDB(p flightdeck.Pilot) models.Pilot {
	dbPilot := models.Pilot{
		Name:                   p.Name,
		Email:                  p.Email,
		CertificateType:        string(p.Certificates.Type),
		InstrumentRated:        p.Certificates.InstrumentRated,
		MultiEngineRated:       p.Certificates.MultiEngineRated,
		TotalHours:             p.Experience.TotalHours,
		PICHours:               p.Experience.PICHours,
		NightHours:             p.Experience.NightHours,
		IFRHours:               p.Experience.IFRHours,
		CrossCountryHours:      p.Experience.CrossCountryHours,
		Last90DaysHours:        p.Experience.Last90DaysHours,
		Last30DaysHours:        p.Experience.Last30DaysHours,
		MedicalExpiration:      p.MedicalExpiration,
		FlightReviewExpiration: p.FlightReviewExpiration,
	}

	if p.SafetyAnalysis != nil {
		score := p.SafetyAnalysis.Score
		analyzedAt := p.SafetyAnalysis.LastAnalyzed
		dbPilot.SafetyScore = &score
		dbPilot.SafetyAnalyzedAt = &analyzedAt
	}

	return dbPilot
}
