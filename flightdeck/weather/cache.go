package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/flightdeck/go-api/flightdeck"
	"github.com/flightdeck/go-api/flightdeck/store"
)

const (
	cacheKeyPrefix = "wx:metar:"

	// Cached observations older than this are useless for a go/no-go call.
	defaultCacheTTLSeconds = 6 * 60 * 60
)

// CachingProvider wraps a Provider with a last-known-good cache in the KV
// store. Successful fetches are written through; on fetch failure the cached
// observation is served so an audit can still run with degraded data.
type CachingProvider struct {
	inner      Provider
	kv         store.KVStore
	ttlSeconds int
}

// NewCachingProvider builds the cache layer. TTL can be overridden with the
// WEATHER_CACHE_TTL env var (seconds).
func NewCachingProvider(inner Provider, kv store.KVStore) *CachingProvider {
	ttl := defaultCacheTTLSeconds
	if v := os.Getenv("WEATHER_CACHE_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return &CachingProvider{inner: inner, kv: kv, ttlSeconds: ttl}
}

func cacheKey(station string) string {
	return cacheKeyPrefix + station
}

// Fetch implements Provider. Cache writes are best-effort; a cache failure
// never fails a successful fetch. When the upstream fetch fails but a cached
// observation exists, Fetch returns the cached snapshot together with the
// fetch error so callers that can run degraded still see the failure.
func (p *CachingProvider) Fetch(ctx context.Context, airportCode string) (*flightdeck.WeatherSnapshot, error) {
	station := NormalizeStation(airportCode)

	snapshot, err := p.inner.Fetch(ctx, airportCode)
	if err == nil && snapshot != nil {
		if data, merr := json.Marshal(snapshot); merr == nil {
			if serr := p.kv.SetValueWithTTL(ctx, cacheKey(station), string(data), p.ttlSeconds); serr != nil {
				slog.Warn("Failed to cache weather observation", "station", station, "error", serr)
			}
		}
		return snapshot, nil
	}
	if err == nil {
		// Valid station, no data. Do not mask with a stale observation.
		return nil, nil
	}

	cached, cerr := p.Cached(ctx, station)
	if cerr != nil {
		return nil, err
	}
	slog.Warn("Weather fetch failed, serving cached observation",
		"station", station, "fetched_at", cached.FetchedAt, "error", err)
	return cached, err
}

// Cached returns the stored observation for a station, or an error when none
// is cached.
func (p *CachingProvider) Cached(ctx context.Context, station string) (*flightdeck.WeatherSnapshot, error) {
	value, err := p.kv.GetValue(ctx, cacheKey(NormalizeStation(station)))
	if err != nil {
		return nil, fmt.Errorf("no cached weather for %s: %w", station, err)
	}

	var snapshot flightdeck.WeatherSnapshot
	if err := json.Unmarshal([]byte(value), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached weather for %s: %w", station, err)
	}
	return &snapshot, nil
}
