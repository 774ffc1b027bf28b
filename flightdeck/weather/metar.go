// Package weather fetches METAR/TAF observations from the aviationweather.gov
// data API and derives the flight category consumed by the audit engine.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/flightdeck/go-api/flightdeck"
)

const (
	defaultBaseURL = "https://aviationweather.gov/api/data"
	defaultTimeout = 10 * time.Second
)

// Provider fetches the latest observation for an airport. Implementations
// return (nil, nil) when the station has no data for valid input, and an
// error only on transport or decoding failure.
type Provider interface {
	Fetch(ctx context.Context, airportCode string) (*flightdeck.WeatherSnapshot, error)
}

// Client is the aviationweather.gov METAR/TAF provider.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client with a bounded request timeout.
func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithBaseURL returns a Client pointed at an alternate endpoint,
// used by tests.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// cloudLayer is one sky-condition group from the API response.
type cloudLayer struct {
	Cover string `json:"cover"`
	Base  int    `json:"base"`
}

// metarResponse mirrors the fields we consume from the data API. Visibility
// arrives as "10+" for unlimited and wind direction as "VRB" for variable,
// so both decode through tolerant wrappers.
type metarResponse struct {
	RawOb  string       `json:"rawOb"`
	Visib  flexFloat    `json:"visib"`
	Wdir   flexInt      `json:"wdir"`
	Wspd   int          `json:"wspd"`
	Wgst   *int         `json:"wgst"`
	Clouds []cloudLayer `json:"clouds"`
}

type tafResponse struct {
	RawTAF string `json:"rawTAF"`
}

// flexFloat decodes a JSON number or a numeric string such as "10+".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("visibility is neither number nor string: %s", data)
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "+")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cannot parse visibility %q: %w", s, err)
	}
	*f = flexFloat(n)
	return nil
}

// flexInt decodes a JSON number or a non-numeric string ("VRB") as zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("wind direction is neither number nor string: %s", data)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		*f = flexInt(n)
	} else {
		*f = 0
	}
	return nil
}

// NormalizeStation upper-cases an airport code and prefixes the ICAO "K" for
// bare three-letter US identifiers.
func NormalizeStation(airportCode string) string {
	code := strings.ToUpper(strings.TrimSpace(airportCode))
	if len(code) == 3 {
		return "K" + code
	}
	return code
}

// Fetch implements Provider against the ADDS data API. METAR and TAF are
// fetched in sequence; a missing TAF is not an error.
func (c *Client) Fetch(ctx context.Context, airportCode string) (*flightdeck.WeatherSnapshot, error) {
	station := NormalizeStation(airportCode)

	var metars []metarResponse
	url := fmt.Sprintf("%s/metar?ids=%s&format=json&hours=1", c.baseURL, station)
	if err := c.getJSON(ctx, url, &metars); err != nil {
		return nil, fmt.Errorf("fetch METAR for %s: %w", station, err)
	}
	if len(metars) == 0 {
		return nil, nil
	}
	m := metars[0]

	ceiling := findCeiling(m.Clouds)
	visibility := float64(m.Visib)
	if visibility == 0 {
		// The API omits visibility on some automated stations; assume clear.
		visibility = 10
	}

	snapshot := &flightdeck.WeatherSnapshot{
		Station:        station,
		METAR:          m.RawOb,
		FlightCategory: DetermineFlightCategory(visibility, ceiling),
		Visibility:     visibility,
		Ceiling:        ceiling,
		Wind: flightdeck.Wind{
			Direction: int(m.Wdir),
			Speed:     m.Wspd,
			Gust:      m.Wgst,
		},
		FetchedAt: time.Now().UTC(),
	}

	var tafs []tafResponse
	tafURL := fmt.Sprintf("%s/taf?ids=%s&format=json", c.baseURL, station)
	if err := c.getJSON(ctx, tafURL, &tafs); err == nil && len(tafs) > 0 {
		snapshot.TAF = tafs[0].RawTAF
	}

	return snapshot, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// findCeiling returns the base of the lowest broken or overcast layer, or
// nil when the sky has no ceiling.
func findCeiling(clouds []cloudLayer) *int {
	var ceiling *int
	for _, layer := range clouds {
		if layer.Cover != "BKN" && layer.Cover != "OVC" {
			continue
		}
		base := layer.Base
		if ceiling == nil || base < *ceiling {
			ceiling = &base
		}
	}
	return ceiling
}

// DetermineFlightCategory maps visibility and ceiling onto the standard
// LIFR/IFR/MVFR/VFR bands.
func DetermineFlightCategory(visibility float64, ceiling *int) flightdeck.FlightCategory {
	switch {
	case ceiling != nil && *ceiling < 500, visibility < 1:
		return flightdeck.CategoryLIFR
	case ceiling != nil && *ceiling < 1000, visibility < 3:
		return flightdeck.CategoryIFR
	case ceiling != nil && *ceiling < 3000, visibility < 5:
		return flightdeck.CategoryMVFR
	default:
		return flightdeck.CategoryVFR
	}
}
