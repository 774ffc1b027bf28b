// Package legality implements the deterministic compliance evaluators: pure
// functions that turn aircraft, pilot, and weather snapshots into
// pass/warning/fail checks, plus the overall go/caution/no-go aggregation.
package legality

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/flightdeck/go-api/flightdeck"
)

const dateLayout = "Jan 2, 2006"

// Config holds the rule thresholds. All evaluators take it explicitly so two
// call sites can never drift apart on a constant.
type Config struct {
	AnnualWarningDays       int
	TransponderWarningDays  int
	MedicalWarningDays      int
	FlightReviewWarningDays int
	HundredHourWarningHours float64
	CurrencyMinHours        float64
	LowTimeHours            float64
	WindCautionKts          int
	WindNoGoKts             int
}

// DefaultConfig returns the standard regulatory thresholds.
func DefaultConfig() Config {
	return Config{
		AnnualWarningDays:       30,
		TransponderWarningDays:  60,
		MedicalWarningDays:      30,
		FlightReviewWarningDays: 30,
		HundredHourWarningHours: 10,
		CurrencyMinHours:        3,
		LowTimeHours:            100,
		WindCautionKts:          20,
		WindNoGoKts:             30,
	}
}

// daysUntil returns the whole days from asOf until due, negative when past.
func daysUntil(due, asOf time.Time) int {
	return int(math.Floor(due.Sub(asOf).Hours() / 24))
}

// CheckAnnualInspection evaluates the 12-calendar-month annual inspection.
func CheckAnnualInspection(aircraft *flightdeck.Aircraft, asOf time.Time, cfg Config) flightdeck.LegalityCheck {
	due := aircraft.MaintenanceDates.Annual.AddDate(1, 0, 0)
	days := daysUntil(due, asOf)

	check := flightdeck.LegalityCheck{
		Category: flightdeck.CategoryMaintenance,
		Item:     "Annual Inspection",
	}

	switch {
	case asOf.After(due):
		check.Status = flightdeck.StatusFail
		check.Message = fmt.Sprintf("Annual overdue by %d days", -days)
		check.Details = fmt.Sprintf("Last annual: %s", aircraft.MaintenanceDates.Annual.Format(dateLayout))
	case days <= cfg.AnnualWarningDays:
		check.Status = flightdeck.StatusWarning
		check.Message = fmt.Sprintf("Annual due in %d days", days)
		check.Details = fmt.Sprintf("Due by: %s", due.Format(dateLayout))
	default:
		check.Status = flightdeck.StatusPass
		check.Message = fmt.Sprintf("Annual valid until %s", due.Format(dateLayout))
	}
	return check
}

// CheckTransponder evaluates the 24-calendar-month transponder certification.
func CheckTransponder(aircraft *flightdeck.Aircraft, asOf time.Time, cfg Config) flightdeck.LegalityCheck {
	due := aircraft.MaintenanceDates.Transponder.AddDate(0, 24, 0)
	days := daysUntil(due, asOf)

	check := flightdeck.LegalityCheck{
		Category: flightdeck.CategoryMaintenance,
		Item:     "Transponder Check",
	}

	switch {
	case asOf.After(due):
		check.Status = flightdeck.StatusFail
		check.Message = fmt.Sprintf("Transponder check overdue by %d days", -days)
		check.Details = fmt.Sprintf("Last check: %s", aircraft.MaintenanceDates.Transponder.Format(dateLayout))
	case days <= cfg.TransponderWarningDays:
		check.Status = flightdeck.StatusWarning
		check.Message = fmt.Sprintf("Transponder due in %d days", days)
	default:
		check.Status = flightdeck.StatusPass
		check.Message = fmt.Sprintf("Transponder valid until %s", due.Format(dateLayout))
	}
	return check
}

// CheckStaticSystem evaluates the 24-calendar-month static system and
// altimeter certification. Only binding when the flight requires IFR
// capability; pilot instrument rating is the proxy for that.
func CheckStaticSystem(aircraft *flightdeck.Aircraft, asOf time.Time, requiresIFR bool) flightdeck.LegalityCheck {
	check := flightdeck.LegalityCheck{
		Category: flightdeck.CategoryMaintenance,
		Item:     "Static System (IFR)",
	}

	if !requiresIFR {
		check.Status = flightdeck.StatusPass
		check.Message = "N/A for VFR flight"
		return check
	}

	due := aircraft.MaintenanceDates.StaticSystem.AddDate(0, 24, 0)
	if asOf.After(due) {
		check.Status = flightdeck.StatusFail
		check.Message = "Static system check overdue for IFR"
		check.Details = fmt.Sprintf("Last check: %s", aircraft.MaintenanceDates.StaticSystem.Format(dateLayout))
		return check
	}

	check.Status = flightdeck.StatusPass
	check.Message = fmt.Sprintf("Static system valid until %s", due.Format(dateLayout))
	return check
}

// CheckHundredHour evaluates the 100-hour inspection by tach time. Aircraft
// not operated for hire auto-pass, and a missing baseline defaults to "not
// applicable" rather than failing.
func CheckHundredHour(aircraft *flightdeck.Aircraft, cfg Config) flightdeck.LegalityCheck {
	check := flightdeck.LegalityCheck{
		Category: flightdeck.CategoryMaintenance,
		Item:     "100-Hour Inspection",
	}

	if !aircraft.ForHire || aircraft.MaintenanceDates.HundredHour == nil {
		check.Status = flightdeck.StatusPass
		check.Message = "N/A (not for-hire)"
		return check
	}

	baseline, ok := aircraft.TachAtLastHundredHour()
	if !ok {
		check.Status = flightdeck.StatusPass
		check.Message = "No 100-hour baseline on record"
		check.Details = fmt.Sprintf("Current tach: %.1f", aircraft.CurrentHours.Tach)
		return check
	}

	hoursSince := aircraft.CurrentHours.Tach - baseline
	remaining := 100 - hoursSince

	switch {
	case hoursSince >= 100:
		check.Status = flightdeck.StatusFail
		check.Message = fmt.Sprintf("100-hour overdue by %.1f hours", hoursSince-100)
		check.Details = fmt.Sprintf("Current tach: %.1f, last 100-hr at: %.1f", aircraft.CurrentHours.Tach, baseline)
	case remaining <= cfg.HundredHourWarningHours:
		check.Status = flightdeck.StatusWarning
		check.Message = fmt.Sprintf("100-hour due in %.1f hours", remaining)
	default:
		check.Status = flightdeck.StatusPass
		check.Message = fmt.Sprintf("100-hour not due for %.1f more hours", remaining)
	}
	return check
}

// CheckMedical evaluates the medical certificate expiration.
func CheckMedical(pilot *flightdeck.Pilot, asOf time.Time, cfg Config) flightdeck.LegalityCheck {
	exp := pilot.MedicalExpiration
	days := daysUntil(exp, asOf)

	check := flightdeck.LegalityCheck{
		Category: flightdeck.CategoryPilot,
		Item:     "Medical Certificate",
	}

	switch {
	case asOf.After(exp):
		check.Status = flightdeck.StatusFail
		check.Message = fmt.Sprintf("Medical expired on %s", exp.Format(dateLayout))
	case days <= cfg.MedicalWarningDays:
		check.Status = flightdeck.StatusWarning
		check.Message = fmt.Sprintf("Medical expires in %d days", days)
	default:
		check.Status = flightdeck.StatusPass
		check.Message = fmt.Sprintf("Medical valid until %s", exp.Format(dateLayout))
	}
	return check
}

// CheckFlightReview evaluates the flight review (BFR) expiration.
func CheckFlightReview(pilot *flightdeck.Pilot, asOf time.Time, cfg Config) flightdeck.LegalityCheck {
	exp := pilot.FlightReviewExpiration
	days := daysUntil(exp, asOf)

	check := flightdeck.LegalityCheck{
		Category: flightdeck.CategoryPilot,
		Item:     "Flight Review (BFR)",
	}

	switch {
	case asOf.After(exp):
		check.Status = flightdeck.StatusFail
		check.Message = fmt.Sprintf("Flight review expired on %s", exp.Format(dateLayout))
	case days <= cfg.FlightReviewWarningDays:
		check.Status = flightdeck.StatusWarning
		check.Message = fmt.Sprintf("Flight review expires in %d days", days)
	default:
		check.Status = flightdeck.StatusPass
		check.Message = fmt.Sprintf("Flight review valid until %s", exp.Format(dateLayout))
	}
	return check
}

// CheckCurrency evaluates 90-day recent experience. Low hours are advisory,
// never grounding.
func CheckCurrency(pilot *flightdeck.Pilot, cfg Config) flightdeck.LegalityCheck {
	hours := pilot.Experience.Last90DaysHours

	check := flightdeck.LegalityCheck{
		Category: flightdeck.CategoryPilot,
		Item:     "90-Day Currency",
	}

	if hours < cfg.CurrencyMinHours {
		check.Status = flightdeck.StatusWarning
		check.Message = fmt.Sprintf("Low recent experience: %.1f hours in last 90 days", hours)
		check.Details = "Consider a refresher flight with an instructor"
		return check
	}

	check.Status = flightdeck.StatusPass
	check.Message = fmt.Sprintf("Recent experience: %.1f hours in last 90 days", hours)
	return check
}

// CheckWeather produces the two weather safety checks: flight category vs
// pilot qualifications, and wind. Wind thresholds come from the aircraft's
// published crosswind limit when available, otherwise the global constants.
func CheckWeather(weather *flightdeck.WeatherSnapshot, pilot *flightdeck.Pilot, aircraft *flightdeck.Aircraft, cfg Config) []flightdeck.LegalityCheck {
	checks := make([]flightdeck.LegalityCheck, 0, 2)

	ratings := flightdeck.LegalityCheck{
		Category: flightdeck.CategorySafety,
		Item:     "Weather vs. Ratings",
	}
	switch {
	case weather.FlightCategory.IsInstrument() && !pilot.Certificates.InstrumentRated:
		ratings.Status = flightdeck.StatusFail
		ratings.Message = fmt.Sprintf("%s conditions require instrument rating", weather.FlightCategory)
		ratings.Details = fmt.Sprintf("Pilot %s is VFR-only", pilot.Name)
	case weather.FlightCategory == flightdeck.CategoryMVFR && pilot.Experience.TotalHours < cfg.LowTimeHours:
		ratings.Status = flightdeck.StatusWarning
		ratings.Message = "MVFR conditions not recommended for low-time pilots"
		ratings.Details = fmt.Sprintf("Pilot has %.0f total hours", pilot.Experience.TotalHours)
	default:
		ratings.Status = flightdeck.StatusPass
		ratings.Message = fmt.Sprintf("%s conditions OK for pilot qualifications", weather.FlightCategory)
	}
	checks = append(checks, ratings)

	cautionKts, noGoKts := cfg.WindCautionKts, cfg.WindNoGoKts
	if aircraft != nil && aircraft.OperatingLimits != nil && aircraft.OperatingLimits.MaxDemonstratedCrosswind > 0 {
		cautionKts = aircraft.OperatingLimits.MaxDemonstratedCrosswind
		noGoKts = cautionKts + 10
	}

	maxWind := weather.Wind.Max()
	windDesc := fmt.Sprintf("%dkts", weather.Wind.Speed)
	if weather.Wind.Gust != nil {
		windDesc = fmt.Sprintf("%dkts gusting %dkts", weather.Wind.Speed, *weather.Wind.Gust)
	}

	wind := flightdeck.LegalityCheck{
		Category: flightdeck.CategorySafety,
		Item:     "Wind Conditions",
	}
	switch {
	case maxWind >= noGoKts:
		wind.Status = flightdeck.StatusFail
		wind.Message = fmt.Sprintf("Excessive winds: %s", windDesc)
	case maxWind >= cautionKts:
		wind.Status = flightdeck.StatusWarning
		wind.Message = fmt.Sprintf("High winds: %s", windDesc)
	default:
		wind.Status = flightdeck.StatusPass
		wind.Message = fmt.Sprintf("Winds acceptable: %s", windDesc)
	}
	checks = append(checks, wind)

	return checks
}

// WeatherUnavailableCheck is appended when no fresh weather could be fetched,
// so a degraded audit is never silently presented as a clean one.
func WeatherUnavailableCheck(stale bool) flightdeck.LegalityCheck {
	check := flightdeck.LegalityCheck{
		Category: flightdeck.CategorySafety,
		Item:     "Weather Data",
		Status:   flightdeck.StatusWarning,
		Message:  "Unable to fetch current weather - manual check required",
	}
	if stale {
		check.Details = "Evaluated against the last stored observation"
	}
	return check
}

// OverallStatus reduces a check list to the tri-state verdict: any fail is
// no-go, else any warning is caution, else go. Order-independent and total
// over any finite list, including empty.
func OverallStatus(checks []flightdeck.LegalityCheck) flightdeck.OverallStatus {
	status := flightdeck.StatusGo
	for _, c := range checks {
		switch c.Status {
		case flightdeck.StatusFail:
			return flightdeck.StatusNoGo
		case flightdeck.StatusWarning:
			status = flightdeck.StatusCaution
		}
	}
	return status
}

// Summary renders an operator-readable digest of the check list.
func Summary(checks []flightdeck.LegalityCheck, overall flightdeck.OverallStatus) string {
	if overall == flightdeck.StatusGo {
		return "All systems GO. Flight is legal and safe to operate."
	}

	var b strings.Builder
	if overall == flightdeck.StatusNoGo {
		b.WriteString("FLIGHT GROUNDED\n\n")
	} else {
		b.WriteString("FLIGHT CAUTION\n\n")
	}

	var failed, warned []flightdeck.LegalityCheck
	for _, c := range checks {
		switch c.Status {
		case flightdeck.StatusFail:
			failed = append(failed, c)
		case flightdeck.StatusWarning:
			warned = append(warned, c)
		}
	}

	if len(failed) > 0 {
		b.WriteString("Critical Issues:\n")
		for _, c := range failed {
			fmt.Fprintf(&b, "- %s: %s\n", c.Item, c.Message)
		}
		b.WriteString("\n")
	}
	if len(warned) > 0 {
		b.WriteString("Warnings:\n")
		for _, c := range warned {
			fmt.Fprintf(&b, "- %s: %s\n", c.Item, c.Message)
		}
	}

	return b.String()
}

// Evaluate runs every applicable rule for a resolved flight against the given
// weather and returns the full check list. Weather may be nil; the caller
// decides whether to append WeatherUnavailableCheck.
func Evaluate(flight *flightdeck.Flight, weather *flightdeck.WeatherSnapshot, cfg Config) []flightdeck.LegalityCheck {
	asOf := flight.ScheduledDate
	aircraft := flight.Aircraft
	pilot := flight.Pilot

	checks := []flightdeck.LegalityCheck{
		CheckAnnualInspection(aircraft, asOf, cfg),
		CheckTransponder(aircraft, asOf, cfg),
		CheckStaticSystem(aircraft, asOf, pilot.Certificates.InstrumentRated),
		CheckHundredHour(aircraft, cfg),
		CheckMedical(pilot, asOf, cfg),
		CheckFlightReview(pilot, asOf, cfg),
		CheckCurrency(pilot, cfg),
	}

	if weather != nil {
		checks = append(checks, CheckWeather(weather, pilot, aircraft, cfg)...)
	}

	return checks
}
