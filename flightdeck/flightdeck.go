// Package flightdeck holds the shared domain types consumed across the SDK:
// aircraft, pilot, and weather snapshots, legality checks, risk scenarios,
// and the audit snapshot persisted for each flight.
package flightdeck

import (
	"strings"
	"time"
)

// CheckStatus is the outcome of a single legality check.
type CheckStatus string

const (
	StatusPass    CheckStatus = "pass"
	StatusWarning CheckStatus = "warning"
	StatusFail    CheckStatus = "fail"
)

// CheckCategory groups legality checks by concern.
type CheckCategory string

const (
	CategoryMaintenance CheckCategory = "maintenance"
	CategoryPilot       CheckCategory = "pilot"
	CategorySafety      CheckCategory = "safety"
	CategoryCompliance  CheckCategory = "compliance"
)

// OverallStatus is the tri-state audit verdict.
type OverallStatus string

const (
	StatusGo      OverallStatus = "go"
	StatusCaution OverallStatus = "caution"
	StatusNoGo    OverallStatus = "no-go"
)

// FlightStatus is the flight lifecycle state. The audit verdict states are a
/// subset: RunAudit is the only transition into go/caution/no-go.
type FlightStatus string

const (
	FlightPlanned   FlightStatus = "planned"
	FlightGo        FlightStatus = "go"
	FlightCaution   FlightStatus = "caution"
	FlightNoGo      FlightStatus = "no-go"
	FlightCompleted FlightStatus = "completed"
	FlightCancelled FlightStatus = "cancelled"
)

// Severity ranks risk scenarios. Higher rank sorts first.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the sort weight of a severity; unknown values rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// FlightCategory is the METAR-derived flight category, ordered by severity.
type FlightCategory string

const (
	CategoryVFR  FlightCategory = "VFR"
	CategoryMVFR FlightCategory = "MVFR"
	CategoryIFR  FlightCategory = "IFR"
	CategoryLIFR FlightCategory = "LIFR"
)

// IsInstrument reports whether the category requires instrument capability.
func (c FlightCategory) IsInstrument() bool {
	return c == CategoryIFR || c == CategoryLIFR
}

// Wind is the surface wind portion of a METAR.
type Wind struct {
	Direction int  `json:"direction"`
	Speed     int  `json:"speed"`
	Gust      *int `json:"gust,omitempty"`
}

// Max returns the greater of sustained speed and gust.
func (w Wind) Max() int {
	if w.Gust != nil && *w.Gust > w.Speed {
		return *w.Gust
	}
	return w.Speed
}

// WeatherSnapshot is a read-only fact valid at fetch time. The engine never
// mutates one; a fresh fetch replaces it wholesale.
type WeatherSnapshot struct {
	Station        string         `json:"station"`
	METAR          string         `json:"metar"`
	TAF            string         `json:"taf,omitempty"`
	FlightCategory FlightCategory `json:"flight_category"`
	Visibility     float64        `json:"visibility"` // statute miles
	Ceiling        *int           `json:"ceiling,omitempty"`
	Wind           Wind           `json:"wind"`
	FetchedAt      time.Time      `json:"fetched_at"`
}

// LegalityCheck is one pass/warning/fail line of the compliance report.
// Checks are produced fresh on every audit run and never mutated afterwards.
type LegalityCheck struct {
	Category CheckCategory `json:"category"`
	Item     string        `json:"item"`
	Status   CheckStatus   `json:"status"`
	Message  string        `json:"message"`
	Details  string        `json:"details,omitempty"`
}

// RiskScenario is one entry of the probability-weighted hazard ranking.
type RiskScenario struct {
	Title       string   `json:"title"`
	Probability int      `json:"probability"` // percent, 0-100
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// AuditSnapshot is the persisted result of one audit run. Snapshots are
// append-only; the flight record always points at the latest.
type AuditSnapshot struct {
	Checks        []LegalityCheck  `json:"checks"`
	OverallStatus OverallStatus    `json:"overall_status"`
	Weather       *WeatherSnapshot `json:"weather,omitempty"`
	RiskScenarios []RiskScenario   `json:"risk_scenarios"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// MaintenanceDates are the inspection anchor dates on an aircraft. Due dates
// are computed by the evaluators, never stored pre-computed.
type MaintenanceDates struct {
	Annual       time.Time  `json:"annual"`
	Transponder  time.Time  `json:"transponder"`
	StaticSystem time.Time  `json:"static_system"`
	HundredHour  *time.Time `json:"hundred_hour,omitempty"`
}

// HourMeters are the aircraft's current hour readings.
type HourMeters struct {
	Hobbs float64 `json:"hobbs"`
	Tach  float64 `json:"tach"`
}

// VSpeeds are the published airspeed limits from the POH.
type VSpeeds struct {
	Vso float64 `json:"vso"`
	Vs1 float64 `json:"vs1"`
	Vr  float64 `json:"vr"`
	Vx  float64 `json:"vx"`
	Vy  float64 `json:"vy"`
	Vfe float64 `json:"vfe"`
	Va  float64 `json:"va"`
	Vno float64 `json:"vno"`
	Vne float64 `json:"vne"`
}

// OperatingLimits carries aircraft-specific limits. MaxDemonstratedCrosswind
// of zero means "not published" and the global wind thresholds apply.
type OperatingLimits struct {
	VSpeeds                  VSpeeds `json:"v_speeds"`
	MaxGrossWeight           float64 `json:"max_gross_weight,omitempty"`
	EmptyWeight              float64 `json:"empty_weight,omitempty"`
	UsefulLoad               float64 `json:"useful_load,omitempty"`
	FuelCapacity             float64 `json:"fuel_capacity,omitempty"`
	MaxDemonstratedCrosswind int     `json:"max_demonstrated_crosswind,omitempty"` // knots
}

// MaintenanceLogEntry is one parsed maintenance logbook line. Entries are fed
// in by the external document extractor before an audit runs.
type MaintenanceLogEntry struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	HobbsTime   float64   `json:"hobbs_time"`
	TachTime    float64   `json:"tach_time"`
	Mechanic    string    `json:"mechanic,omitempty"`
}

// Aircraft is the audit engine's immutable view of an airframe.
type Aircraft struct {
	TailNumber       string                `json:"tail_number"`
	Model            string                `json:"model,omitempty"`
	Manufacturer     string                `json:"manufacturer,omitempty"`
	Year             int                   `json:"year,omitempty"`
	ForHire          bool                  `json:"for_hire"`
	MaintenanceDates MaintenanceDates      `json:"maintenance_dates"`
	CurrentHours     HourMeters            `json:"current_hours"`
	OperatingLimits  *OperatingLimits      `json:"operating_limits,omitempty"`
	Logs             []MaintenanceLogEntry `json:"logs,omitempty"`
}

// TachAtLastHundredHour returns the tach reading recorded at the most recent
// 100-hour inspection log entry, or false when no such entry exists.
func (a Aircraft) TachAtLastHundredHour() (float64, bool) {
	found := false
	var tach float64
	for _, l := range a.Logs {
		if !strings.Contains(strings.ToLower(l.Description), "100") {
			continue
		}
		if !found || l.TachTime > tach {
			tach = l.TachTime
			found = true
		}
	}
	return tach, found
}

// CertificateType is the pilot certificate level.
type CertificateType string

const (
	CertStudent CertificateType = "Student"
	CertSport   CertificateType = "Sport"
	CertPPL     CertificateType = "PPL"
	CertCPL     CertificateType = "CPL"
	CertATP     CertificateType = "ATP"
)

// Certificate is the pilot's certificate and ratings.
type Certificate struct {
	Type             CertificateType `json:"type"`
	InstrumentRated  bool            `json:"instrument_rated"`
	MultiEngineRated bool            `json:"multi_engine_rated"`
}

// Experience holds the pilot's logbook totals.
type Experience struct {
	TotalHours        float64 `json:"total_hours"`
	PICHours          float64 `json:"pic_hours"`
	NightHours        float64 `json:"night_hours"`
	IFRHours          float64 `json:"ifr_hours"`
	CrossCountryHours float64 `json:"cross_country_hours"`
	Last90DaysHours   float64 `json:"last_90_days_hours"`
	Last30DaysHours   float64 `json:"last_30_days_hours"`
}

// SafetyAnalysis is the opaque score left behind by the external narrative
// risk advisor. The engine consumes the score as a signal and never
// re-interprets the findings behind it.
type SafetyAnalysis struct {
	LastAnalyzed time.Time `json:"last_analyzed"`
	Score        float64   `json:"score"` // 0-10, higher = riskier
}

// Pilot is the audit engine's view of a pilot.
type Pilot struct {
	Name                   string          `json:"name"`
	Email                  string          `json:"email"`
	Certificates           Certificate     `json:"certificates"`
	Experience             Experience      `json:"experience"`
	MedicalExpiration      time.Time       `json:"medical_expiration"`
	FlightReviewExpiration time.Time       `json:"flight_review_expiration"`
	SafetyAnalysis         *SafetyAnalysis `json:"safety_analysis,omitempty"`
}

// Flight is the aggregate root for audit purposes. Pilot and Aircraft are
// resolved before the engine sees it.
type Flight struct {
	ID               string           `json:"id"`
	Pilot            *Pilot           `json:"pilot"`
	Aircraft         *Aircraft        `json:"aircraft"`
	ScheduledDate    time.Time        `json:"scheduled_date"`
	DepartureAirport string           `json:"departure_airport"`
	ArrivalAirport   string           `json:"arrival_airport,omitempty"`
	Status           FlightStatus     `json:"status"`
	OverallStatus    OverallStatus    `json:"overall_status"`
	LegalityChecks   []LegalityCheck  `json:"legality_checks,omitempty"`
	Weather          *WeatherSnapshot `json:"weather,omitempty"`
	Snapshot         *AuditSnapshot   `json:"snapshot,omitempty"`
	AlertSent        bool             `json:"alert_sent"`
}

// IsCrossCountry reports whether the flight arrives at a different airport
// than it departs from.
func (f Flight) IsCrossCountry() bool {
	return f.ArrivalAirport != "" && f.ArrivalAirport != f.DepartureAirport
}

// IsNight reports whether the scheduled departure falls in the night window
// (19:00 through 06:59 local).
func (f Flight) IsNight() bool {
	h := f.ScheduledDate.Hour()
	return h >= 19 || h <= 6
}
