// Package risk layers a continuous hazard model on top of the discrete
// compliance checks: each scenario carries an illustrative probability and a
// severity that escalates with context such as night operations or a
// VFR-only pilot in instrument conditions.
package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/flightdeck/go-api/flightdeck"
)

const (
	// Component wear cycles, in airframe hours.
	alternatorOverhaulInterval = 500
	engineOverhaulInterval     = 2000

	// Probability caps, percent.
	alternatorRiskCap = 15
	engineRiskCap     = 10
)

// Scenarios computes the full hazard list for a resolved flight, sorted by
// severity descending. Ties keep emission order; the list is rebuilt from
// scratch on every call.
func Scenarios(flight *flightdeck.Flight, weather *flightdeck.WeatherSnapshot) []flightdeck.RiskScenario {
	aircraft := flight.Aircraft
	pilot := flight.Pilot
	night := flight.IsNight()
	crossCountry := flight.IsCrossCountry()

	scenarios := []flightdeck.RiskScenario{
		electricalFailure(aircraft, pilot, night),
	}

	if weather != nil {
		scenarios = append(scenarios, weatherBelowMinimums(weather, pilot))
	}

	if s, ok := proficiencyGap(pilot); ok {
		scenarios = append(scenarios, s)
	}
	if s, ok := historicalSafetyRisk(pilot); ok {
		scenarios = append(scenarios, s)
	}
	if s, ok := pilotInexperience(pilot, night, crossCountry); ok {
		scenarios = append(scenarios, s)
	}

	scenarios = append(scenarios, engineFailure(aircraft, crossCountry))

	sortBySeverity(scenarios)
	return scenarios
}

// sortBySeverity orders critical > high > medium > low. The sort must be
// stable so ties keep relative emission order.
func sortBySeverity(s []flightdeck.RiskScenario) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Severity.Rank() > s[j].Severity.Rank()
	})
}

// electricalFailure models alternator wear on a 500-hour cycle. A failure at
// night without lights, radios, or instruments is treated as catastrophic,
// escalating further when the pilot has little night time.
func electricalFailure(aircraft *flightdeck.Aircraft, pilot *flightdeck.Pilot, night bool) flightdeck.RiskScenario {
	hoursSinceOverhaul := math.Mod(aircraft.CurrentHours.Hobbs, alternatorOverhaulInterval)
	probability := capRound(hoursSinceOverhaul/alternatorOverhaulInterval*alternatorRiskCap, alternatorRiskCap)

	severity := flightdeck.SeverityLow
	if night && probability > 5 {
		severity = flightdeck.SeverityHigh
	}
	if night && pilot.Experience.NightHours < 20 {
		severity = flightdeck.SeverityCritical
	}

	desc := fmt.Sprintf("%d%% alternator failure risk. Daylight operations reduce severity.", probability)
	if night {
		desc = fmt.Sprintf("%d%% alternator failure risk. Night flight with %.0f night hours - no lights/radios would be catastrophic.",
			probability, pilot.Experience.NightHours)
	}

	return flightdeck.RiskScenario{
		Title:       "Electrical Failure",
		Probability: probability,
		Severity:    severity,
		Description: desc,
	}
}

// weatherBelowMinimums assigns a base risk by flight category and escalates
// severity when the pilot cannot fall back on an instrument rating.
func weatherBelowMinimums(weather *flightdeck.WeatherSnapshot, pilot *flightdeck.Pilot) flightdeck.RiskScenario {
	probability := 5
	switch weather.FlightCategory {
	case flightdeck.CategoryMVFR:
		probability = 20
	case flightdeck.CategoryIFR:
		probability = 40
	case flightdeck.CategoryLIFR:
		probability = 60
	}

	instrumentRated := pilot.Certificates.InstrumentRated
	severity := flightdeck.SeverityLow
	if probability >= 20 && !instrumentRated {
		severity = flightdeck.SeverityHigh
	}
	if probability >= 40 && !instrumentRated {
		severity = flightdeck.SeverityCritical
	}

	var desc string
	if !instrumentRated && probability >= 20 {
		desc = fmt.Sprintf("%s conditions with VFR-only pilot. If weather worsens, pilot lacks instrument capability.", weather.FlightCategory)
	} else {
		ceiling := "CLR"
		if weather.Ceiling != nil {
			ceiling = fmt.Sprintf("%d", *weather.Ceiling)
		}
		desc = fmt.Sprintf("Current: %s. Ceiling %s, vis %.1fSM.", weather.FlightCategory, ceiling, weather.Visibility)
	}

	return flightdeck.RiskScenario{
		Title:       "Weather Below Minimums",
		Probability: probability,
		Severity:    severity,
		Description: desc,
	}
}

// proficiencyGap flags skill degradation from low recent flight time. No
// scenario is emitted at 6 hours or more in the last 90 days.
func proficiencyGap(pilot *flightdeck.Pilot) (flightdeck.RiskScenario, bool) {
	hours := pilot.Experience.Last90DaysHours

	switch {
	case hours < 3:
		return flightdeck.RiskScenario{
			Title:       "Recent Proficiency Gap",
			Probability: 30,
			Severity:    flightdeck.SeverityHigh,
			Description: fmt.Sprintf("Pilot has only %.1f hours in last 90 days. High risk of skill degradation.", hours),
		}, true
	case hours < 6:
		return flightdeck.RiskScenario{
			Title:       "Low Proficiency",
			Probability: 15,
			Severity:    flightdeck.SeverityMedium,
			Description: fmt.Sprintf("Pilot has %.1f hours in last 90 days. Consider a practice flight.", hours),
		}, true
	}
	return flightdeck.RiskScenario{}, false
}

// historicalSafetyRisk carries the external advisor's score into the ranking
// as an opaque signal. Scores of 5 or below emit nothing.
func historicalSafetyRisk(pilot *flightdeck.Pilot) (flightdeck.RiskScenario, bool) {
	if pilot.SafetyAnalysis == nil || pilot.SafetyAnalysis.Score <= 5 {
		return flightdeck.RiskScenario{}, false
	}

	score := pilot.SafetyAnalysis.Score
	severity := flightdeck.SeverityHigh
	if score > 8 {
		severity = flightdeck.SeverityCritical
	}

	return flightdeck.RiskScenario{
		Title:       "Historical Safety Risk",
		Probability: int(math.Round(score * 5)),
		Severity:    severity,
		Description: fmt.Sprintf("Safety analysis historically scores this pilot at %.1f/10 risk level.", score),
	}, true
}

// pilotInexperience triggers for student pilots and anyone under 100 total
// hours. Severity escalates for students flying cross-country, and again for
// students at night.
func pilotInexperience(pilot *flightdeck.Pilot, night, crossCountry bool) (flightdeck.RiskScenario, bool) {
	isStudent := pilot.Certificates.Type == flightdeck.CertStudent
	total := pilot.Experience.TotalHours

	if !isStudent && total >= 100 {
		return flightdeck.RiskScenario{}, false
	}

	probability := 25.0
	if !isStudent {
		probability = math.Max(15-total/10, 5)
	}

	severity := flightdeck.SeverityMedium
	if isStudent && crossCountry {
		severity = flightdeck.SeverityHigh
	}
	if isStudent && night {
		severity = flightdeck.SeverityCritical
	}

	var desc string
	if isStudent {
		desc = fmt.Sprintf("Student pilot with %.0f total hours.", total)
		if night {
			desc += " Night flight requires endorsement."
		}
	} else {
		desc = fmt.Sprintf("Low-time pilot (%.0f hrs). Consider additional pre-flight briefing.", total)
	}

	return flightdeck.RiskScenario{
		Title:       "Pilot Inexperience",
		Probability: int(math.Round(probability)),
		Severity:    severity,
		Description: desc,
	}, true
}

// engineFailure models engine wear on a 2000-hour TBO cycle. A worn engine
// matters more away from the home field.
func engineFailure(aircraft *flightdeck.Aircraft, crossCountry bool) flightdeck.RiskScenario {
	engineHours := math.Mod(aircraft.CurrentHours.Hobbs, engineOverhaulInterval)
	probability := capRound(engineHours/engineOverhaulInterval*engineRiskCap, engineRiskCap)

	severity := flightdeck.SeverityLow
	if probability > 5 && crossCountry {
		severity = flightdeck.SeverityMedium
	}

	return flightdeck.RiskScenario{
		Title:       "Engine Failure",
		Probability: probability,
		Severity:    severity,
		Description: fmt.Sprintf("%d%% risk based on TBO position. %.0f hrs since major overhaul.", probability, engineHours),
	}
}

// capRound rounds to the nearest whole percent and clamps to limit.
func capRound(v float64, limit int) int {
	p := int(math.Round(v))
	if p > limit {
		return limit
	}
	return p
}
