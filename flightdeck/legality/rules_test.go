package legality

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/flightdeck/go-api/flightdeck"
)

// asOf is the reference instant for every date-boundary test below.
var asOf = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

func testAircraft() *flightdeck.Aircraft {
	hundredHour := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	return &flightdeck.Aircraft{
		TailNumber: "N12345",
		Model:      "172S",
		ForHire:    false,
		MaintenanceDates: flightdeck.MaintenanceDates{
			Annual:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Transponder:  time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			StaticSystem: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			HundredHour:  &hundredHour,
		},
		CurrentHours: flightdeck.HourMeters{Hobbs: 3520.4, Tach: 3480.0},
		Logs: []flightdeck.MaintenanceLogEntry{
			{
				Date:        hundredHour,
				Description: "100-hour inspection completed IAW Part 43 Appendix D",
				HobbsTime:   3440.0,
				TachTime:    3400.0,
			},
		},
	}
}

func testPilot() *flightdeck.Pilot {
	return &flightdeck.Pilot{
		Name:  "Sam Carter",
		Email: "sam@example.com",
		Certificates: flightdeck.Certificate{
			Type:            flightdeck.CertPPL,
			InstrumentRated: false,
		},
		Experience: flightdeck.Experience{
			TotalHours:      250,
			NightHours:      40,
			Last90DaysHours: 12,
		},
		MedicalExpiration:      time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		FlightReviewExpiration: time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestAnnualInspectionBoundaries(t *testing.T) {
	t.Log("\n🔍 Testing annual inspection date boundaries...")

	cfg := DefaultConfig()

	// Last annual Jun 1 2025, due Jun 1 2026, 78 days out.
	aircraft := testAircraft()
	check := CheckAnnualInspection(aircraft, asOf, cfg)
	if check.Status != flightdeck.StatusPass {
		t.Errorf("❌ Expected pass 78 days before due, got %s (%s)", check.Status, check.Message)
	}
	if check.Message != "Annual valid until Jun 1, 2026" {
		t.Errorf("❌ Unexpected pass message: %q", check.Message)
	}

	// Due Mar 20 2026, 5 days out, inside the 30-day window.
	aircraft.MaintenanceDates.Annual = time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	check = CheckAnnualInspection(aircraft, asOf, cfg)
	if check.Status != flightdeck.StatusWarning {
		t.Errorf("❌ Expected warning inside window, got %s", check.Status)
	}
	if check.Message != "Annual due in 5 days" {
		t.Errorf("❌ Unexpected warning message: %q", check.Message)
	}

	// Due Mar 1 2026, 14 days overdue.
	aircraft.MaintenanceDates.Annual = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	check = CheckAnnualInspection(aircraft, asOf, cfg)
	if check.Status != flightdeck.StatusFail {
		t.Errorf("❌ Expected fail past due, got %s", check.Status)
	}
	if check.Message != "Annual overdue by 14 days" {
		t.Errorf("❌ Unexpected fail message: %q", check.Message)
	}

	t.Log("\n✅ Annual inspection boundary test passed")
}

func TestTransponderTwentyFourCalendarMonths(t *testing.T) {
	t.Log("\n🔍 Testing transponder 24-calendar-month recurrence...")

	cfg := DefaultConfig()
	aircraft := testAircraft()

	// Last check Dec 1 2024, due Dec 1 2026, well clear of the 60-day window.
	check := CheckTransponder(aircraft, asOf, cfg)
	if check.Status != flightdeck.StatusPass {
		t.Errorf("❌ Expected pass, got %s (%s)", check.Status, check.Message)
	}

	// Last check Apr 1 2024, due Apr 1 2026, 17 days out.
	aircraft.MaintenanceDates.Transponder = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	check = CheckTransponder(aircraft, asOf, cfg)
	if check.Status != flightdeck.StatusWarning {
		t.Errorf("❌ Expected warning, got %s", check.Status)
	}
	if check.Message != "Transponder due in 17 days" {
		t.Errorf("❌ Unexpected warning message: %q", check.Message)
	}

	// Last check Feb 1 2024, due Feb 1 2026, 42 days overdue.
	aircraft.MaintenanceDates.Transponder = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	check = CheckTransponder(aircraft, asOf, cfg)
	if check.Status != flightdeck.StatusFail {
		t.Errorf("❌ Expected fail, got %s", check.Status)
	}
	if check.Message != "Transponder check overdue by 42 days" {
		t.Errorf("❌ Unexpected fail message: %q", check.Message)
	}

	t.Log("\n✅ Transponder recurrence test passed")
}

func TestStaticSystemOnlyBindsIFR(t *testing.T) {
	t.Log("\n🔍 Testing static system IFR gating...")

	aircraft := testAircraft()
	// Way overdue, but the flight does not require IFR capability.
	aircraft.MaintenanceDates.StaticSystem = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	check := CheckStaticSystem(aircraft, asOf, false)
	if check.Status != flightdeck.StatusPass {
		t.Errorf("❌ Expected pass for VFR flight, got %s", check.Status)
	}
	if check.Message != "N/A for VFR flight" {
		t.Errorf("❌ Unexpected message: %q", check.Message)
	}

	check = CheckStaticSystem(aircraft, asOf, true)
	if check.Status != flightdeck.StatusFail {
		t.Errorf("❌ Expected fail for IFR-capable flight, got %s", check.Status)
	}

	// Pass/fail only: inside 60 days of due must still pass.
	aircraft.MaintenanceDates.StaticSystem = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	check = CheckStaticSystem(aircraft, asOf, true)
	if check.Status != flightdeck.StatusPass {
		t.Errorf("❌ Static system has no warning band, expected pass, got %s", check.Status)
	}

	t.Log("\n✅ Static system gating test passed")
}

func TestHundredHourInspection(t *testing.T) {
	t.Log("\n🔍 Testing 100-hour inspection by tach time...")

	cfg := DefaultConfig()

	// Not for hire: auto-pass no matter the hours.
	aircraft := testAircraft()
	aircraft.CurrentHours.Tach = 3600
	check := CheckHundredHour(aircraft, cfg)
	if check.Status != flightdeck.StatusPass || check.Message != "N/A (not for-hire)" {
		t.Errorf("❌ Expected not-for-hire auto-pass, got %s (%s)", check.Status, check.Message)
	}

	// For hire, 80 hours since the last 100-hour at tach 3400.
	aircraft = testAircraft()
	aircraft.ForHire = true
	check = CheckHundredHour(aircraft, cfg)
	if check.Status != flightdeck.StatusPass {
		t.Errorf("❌ Expected pass with 20 hours remaining, got %s (%s)", check.Status, check.Message)
	}

	// 92 hours since: inside the 10-hour warning window.
	aircraft.CurrentHours.Tach = 3492
	check = CheckHundredHour(aircraft, cfg)
	if check.Status != flightdeck.StatusWarning {
		t.Errorf("❌ Expected warning with 8 hours remaining, got %s", check.Status)
	}

	// 105.5 hours since: overdue.
	aircraft.CurrentHours.Tach = 3505.5
	check = CheckHundredHour(aircraft, cfg)
	if check.Status != flightdeck.StatusFail {
		t.Errorf("❌ Expected fail when overdue, got %s", check.Status)
	}
	if check.Message != "100-hour overdue by 5.5 hours" {
		t.Errorf("❌ Unexpected fail message: %q", check.Message)
	}

	// For hire with no 100-hour log entry: graceful pass, never a crash.
	aircraft = testAircraft()
	aircraft.ForHire = true
	aircraft.Logs = nil
	check = CheckHundredHour(aircraft, cfg)
	if check.Status != flightdeck.StatusPass {
		t.Errorf("❌ Expected graceful pass without baseline, got %s", check.Status)
	}

	t.Log("\n✅ 100-hour inspection test passed")
}

func TestMedicalExpiredYesterday(t *testing.T) {
	t.Log("\n🔍 Testing medical certificate expiry...")

	cfg := DefaultConfig()
	pilot := testPilot()

	// Expired one day before the flight.
	pilot.MedicalExpiration = asOf.AddDate(0, 0, -1)
	check := CheckMedical(pilot, asOf, cfg)
	if check.Status != flightdeck.StatusFail {
		t.Errorf("❌ Expected fail for expired medical, got %s", check.Status)
	}
	if check.Message != "Medical expired on Mar 14, 2026" {
		t.Errorf("❌ Fail message must carry the expiry date, got %q", check.Message)
	}

	// 26 days out: warning.
	pilot.MedicalExpiration = time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	check = CheckMedical(pilot, asOf, cfg)
	if check.Status != flightdeck.StatusWarning {
		t.Errorf("❌ Expected warning inside 30 days, got %s", check.Status)
	}
	if check.Message != "Medical expires in 26 days" {
		t.Errorf("❌ Unexpected warning message: %q", check.Message)
	}

	t.Log("\n✅ Medical expiry test passed")
}

func TestFlightReviewConfigurableWindow(t *testing.T) {
	t.Log("\n🔍 Testing flight review warning window configurability...")

	pilot := testPilot()
	// Expires 45 days out.
	pilot.FlightReviewExpiration = time.Date(2026, 4, 29, 0, 0, 0, 0, time.UTC)

	cfg := DefaultConfig()
	check := CheckFlightReview(pilot, asOf, cfg)
	if check.Status != flightdeck.StatusPass {
		t.Errorf("❌ Expected pass with 30-day window, got %s", check.Status)
	}

	cfg.FlightReviewWarningDays = 60
	check = CheckFlightReview(pilot, asOf, cfg)
	if check.Status != flightdeck.StatusWarning {
		t.Errorf("❌ Expected warning with 60-day window, got %s", check.Status)
	}
	if check.Message != "Flight review expires in 45 days" {
		t.Errorf("❌ Unexpected warning message: %q", check.Message)
	}

	pilot.FlightReviewExpiration = asOf.AddDate(0, 0, -10)
	check = CheckFlightReview(pilot, asOf, cfg)
	if check.Status != flightdeck.StatusFail {
		t.Errorf("❌ Expected fail for expired review, got %s", check.Status)
	}

	t.Log("\n✅ Flight review window test passed")
}

func TestCurrencyNeverFails(t *testing.T) {
	t.Log("\n🔍 Testing 90-day currency is advisory only...")

	cfg := DefaultConfig()
	pilot := testPilot()

	pilot.Experience.Last90DaysHours = 0
	check := CheckCurrency(pilot, cfg)
	if check.Status != flightdeck.StatusWarning {
		t.Errorf("❌ Expected warning at zero recent hours, got %s", check.Status)
	}

	pilot.Experience.Last90DaysHours = 3
	check = CheckCurrency(pilot, cfg)
	if check.Status != flightdeck.StatusPass {
		t.Errorf("❌ Expected pass at exactly 3 hours, got %s", check.Status)
	}

	t.Log("\n✅ Currency advisory test passed")
}

func TestWeatherVsRatings(t *testing.T) {
	t.Log("\n🔍 Testing weather vs ratings check...")

	cfg := DefaultConfig()
	pilot := testPilot()
	aircraft := testAircraft()

	wx := &flightdeck.WeatherSnapshot{
		Station:        "KPAO",
		FlightCategory: flightdeck.CategoryLIFR,
		Visibility:     0.5,
		Wind:           flightdeck.Wind{Direction: 310, Speed: 15},
	}

	checks := CheckWeather(wx, pilot, aircraft, cfg)
	if len(checks) != 2 {
		t.Fatalf("❌ Expected 2 weather checks, got %d", len(checks))
	}
	if checks[0].Status != flightdeck.StatusFail {
		t.Errorf("❌ LIFR with VFR-only pilot must fail, got %s", checks[0].Status)
	}
	if checks[0].Message != "LIFR conditions require instrument rating" {
		t.Errorf("❌ Unexpected ratings message: %q", checks[0].Message)
	}
	if checks[1].Status != flightdeck.StatusPass {
		t.Errorf("❌ 15kts no gust must pass wind check, got %s", checks[1].Status)
	}

	// Instrument rated pilot clears the same conditions.
	pilot.Certificates.InstrumentRated = true
	checks = CheckWeather(wx, pilot, aircraft, cfg)
	if checks[0].Status != flightdeck.StatusPass {
		t.Errorf("❌ LIFR with rated pilot should pass, got %s", checks[0].Status)
	}

	// MVFR with a low-time pilot is advisory.
	pilot = testPilot()
	pilot.Experience.TotalHours = 60
	wx.FlightCategory = flightdeck.CategoryMVFR
	checks = CheckWeather(wx, pilot, aircraft, cfg)
	if checks[0].Status != flightdeck.StatusWarning {
		t.Errorf("❌ MVFR with 60-hour pilot should warn, got %s", checks[0].Status)
	}

	t.Log("\n✅ Weather vs ratings test passed")
}

func TestWindThresholds(t *testing.T) {
	t.Log("\n🔍 Testing wind thresholds with and without aircraft limits...")

	cfg := DefaultConfig()
	pilot := testPilot()
	aircraft := testAircraft()

	gust := 22
	wx := &flightdeck.WeatherSnapshot{
		FlightCategory: flightdeck.CategoryVFR,
		Visibility:     10,
		Wind:           flightdeck.Wind{Direction: 270, Speed: 18, Gust: &gust},
	}

	// Gust 22 crosses the global 20kt caution line.
	checks := CheckWeather(wx, pilot, aircraft, cfg)
	wind := checks[1]
	if wind.Status != flightdeck.StatusWarning {
		t.Errorf("❌ Expected warning at gust 22, got %s", wind.Status)
	}
	if wind.Message != "High winds: 18kts gusting 22kts" {
		t.Errorf("❌ Unexpected wind message: %q", wind.Message)
	}

	// 32 sustained crosses the global 30kt no-go line.
	wx.Wind = flightdeck.Wind{Direction: 270, Speed: 32}
	checks = CheckWeather(wx, pilot, aircraft, cfg)
	if checks[1].Status != flightdeck.StatusFail {
		t.Errorf("❌ Expected fail at 32kts, got %s", checks[1].Status)
	}

	// A published crosswind limit tightens both thresholds.
	aircraft.OperatingLimits = &flightdeck.OperatingLimits{MaxDemonstratedCrosswind: 15}
	wx.Wind = flightdeck.Wind{Direction: 270, Speed: 16}
	checks = CheckWeather(wx, pilot, aircraft, cfg)
	if checks[1].Status != flightdeck.StatusWarning {
		t.Errorf("❌ Expected warning at 16kts with 15kt limit, got %s", checks[1].Status)
	}

	wx.Wind = flightdeck.Wind{Direction: 270, Speed: 26}
	checks = CheckWeather(wx, pilot, aircraft, cfg)
	if checks[1].Status != flightdeck.StatusFail {
		t.Errorf("❌ Expected fail at 26kts with 15kt limit (limit+10), got %s", checks[1].Status)
	}

	t.Log("\n✅ Wind threshold test passed")
}

func TestOverallStatusAggregation(t *testing.T) {
	t.Log("\n🔍 Testing overall status aggregation...")

	pass := flightdeck.LegalityCheck{Status: flightdeck.StatusPass}
	warn := flightdeck.LegalityCheck{Status: flightdeck.StatusWarning}
	fail := flightdeck.LegalityCheck{Status: flightdeck.StatusFail}

	cases := []struct {
		name   string
		checks []flightdeck.LegalityCheck
		want   flightdeck.OverallStatus
	}{
		{"empty", nil, flightdeck.StatusGo},
		{"all pass", []flightdeck.LegalityCheck{pass, pass, pass}, flightdeck.StatusGo},
		{"one warning", []flightdeck.LegalityCheck{pass, warn, pass}, flightdeck.StatusCaution},
		{"warning and fail", []flightdeck.LegalityCheck{warn, fail, pass}, flightdeck.StatusNoGo},
		{"single fail", []flightdeck.LegalityCheck{fail}, flightdeck.StatusNoGo},
	}

	for _, tc := range cases {
		if got := OverallStatus(tc.checks); got != tc.want {
			t.Errorf("❌ %s: expected %s, got %s", tc.name, tc.want, got)
		}

		// Order independence: reversing the list never changes the verdict.
		reversed := make([]flightdeck.LegalityCheck, len(tc.checks))
		for i, c := range tc.checks {
			reversed[len(tc.checks)-1-i] = c
		}
		if got := OverallStatus(reversed); got != tc.want {
			t.Errorf("❌ %s reversed: expected %s, got %s", tc.name, tc.want, got)
		}
	}

	// Adding a fail never improves the aggregate.
	for _, tc := range cases {
		got := OverallStatus(append(append([]flightdeck.LegalityCheck{}, tc.checks...), fail))
		if got != flightdeck.StatusNoGo {
			t.Errorf("❌ %s plus a fail must be no-go, got %s", tc.name, got)
		}
	}

	t.Log("\n✅ Aggregation test passed")
}

func TestEvaluatorIdempotence(t *testing.T) {
	t.Log("\n🔍 Testing evaluator idempotence...")

	cfg := DefaultConfig()
	aircraft := testAircraft()
	pilot := testPilot()

	a := CheckAnnualInspection(aircraft, asOf, cfg)
	b := CheckAnnualInspection(aircraft, asOf, cfg)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("❌ Annual evaluator not idempotent: %+v vs %+v", a, b)
	}

	c := CheckMedical(pilot, asOf, cfg)
	d := CheckMedical(pilot, asOf, cfg)
	if !reflect.DeepEqual(c, d) {
		t.Errorf("❌ Medical evaluator not idempotent: %+v vs %+v", c, d)
	}

	t.Log("\n✅ Idempotence test passed")
}

func TestLIFRGroundsVFRPilot(t *testing.T) {
	t.Log("\n🔍 Testing LIFR conditions ground a VFR-only pilot...")

	cfg := DefaultConfig()
	flight := &flightdeck.Flight{
		ID:               "1",
		Pilot:            testPilot(),
		Aircraft:         testAircraft(),
		ScheduledDate:    asOf.Add(14 * time.Hour),
		DepartureAirport: "KPAO",
	}
	wx := &flightdeck.WeatherSnapshot{
		Station:        "KPAO",
		FlightCategory: flightdeck.CategoryLIFR,
		Visibility:     0.5,
		Wind:           flightdeck.Wind{Direction: 310, Speed: 15},
	}

	checks := Evaluate(flight, wx, cfg)
	if len(checks) != 9 {
		t.Fatalf("❌ Expected 9 checks with weather, got %d", len(checks))
	}

	overall := OverallStatus(checks)
	if overall != flightdeck.StatusNoGo {
		t.Errorf("❌ Expected no-go, got %s", overall)
	}

	summary := Summary(checks, overall)
	if !strings.Contains(summary, "FLIGHT GROUNDED") {
		t.Errorf("❌ Summary must announce grounding, got %q", summary)
	}
	if !strings.Contains(summary, "LIFR conditions require instrument rating") {
		t.Errorf("❌ Summary must list the grounding check, got %q", summary)
	}

	t.Log("\n✅ LIFR grounding test passed")
}

func TestAllClearSummary(t *testing.T) {
	t.Log("\n🔍 Testing full clearance summary...")

	cfg := DefaultConfig()
	flight := &flightdeck.Flight{
		ID:               "1",
		Pilot:            testPilot(),
		Aircraft:         testAircraft(),
		ScheduledDate:    asOf.Add(14 * time.Hour),
		DepartureAirport: "KPAO",
	}
	wx := &flightdeck.WeatherSnapshot{
		Station:        "KPAO",
		FlightCategory: flightdeck.CategoryVFR,
		Visibility:     10,
		Wind:           flightdeck.Wind{Direction: 310, Speed: 8},
	}

	checks := Evaluate(flight, wx, cfg)
	overall := OverallStatus(checks)
	if overall != flightdeck.StatusGo {
		for _, c := range checks {
			if c.Status != flightdeck.StatusPass {
				t.Logf("  offending check: %s = %s (%s)", c.Item, c.Status, c.Message)
			}
		}
		t.Fatalf("❌ Expected go, got %s", overall)
	}

	if got := Summary(checks, overall); got != "All systems GO. Flight is legal and safe to operate." {
		t.Errorf("❌ Unexpected all-clear summary: %q", got)
	}

	t.Log("\n✅ Full clearance test passed")
}

func TestWeatherUnavailableCheck(t *testing.T) {
	t.Log("\n🔍 Testing degraded weather warning check...")

	check := WeatherUnavailableCheck(false)
	if check.Status != flightdeck.StatusWarning {
		t.Errorf("❌ Expected warning status, got %s", check.Status)
	}
	if check.Message != "Unable to fetch current weather - manual check required" {
		t.Errorf("❌ Unexpected message: %q", check.Message)
	}
	if check.Details != "" {
		t.Errorf("❌ Fresh-miss check should carry no details, got %q", check.Details)
	}

	stale := WeatherUnavailableCheck(true)
	if stale.Details == "" {
		t.Error("❌ Stale-data check should note the stored observation")
	}

	t.Log("\n✅ Degraded weather check test passed")
}
