// Package geo resolves coordinates to human-readable addresses through a
// Nominatim-compatible reverse geocoding endpoint, with caching and rate
// limiting so the upstream usage policy is respected.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
)

// Geocoder reverse-geocodes coordinates with a TTL cache in front of the
// upstream service. Lookups for the same rounded coordinates within the TTL
// never hit the network twice.
type Geocoder struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	cache   *cache
	log     *logrus.Logger
}

// NewGeocoder creates a geocoder against the given Nominatim-compatible base
// URL. Upstream calls are limited to one per second.
func NewGeocoder(baseURL string, logger *logrus.Logger) *Geocoder {
	return &Geocoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		cache:   newCache(24 * time.Hour),
		log:     logger,
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseGeocode returns an address for the given point. Coordinates are
// rounded to four decimals (roughly 11 meters) before lookup so nearby
// points share a cache entry.
func (g *Geocoder) ReverseGeocode(ctx context.Context, point models.GeoPoint) (string, error) {
	key := cacheKey(point)
	if addr, ok := g.cache.get(key); ok {
		return addr, nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/reverse?format=json&lat=%s&lon=%s",
		g.baseURL,
		url.QueryEscape(fmt.Sprintf("%.4f", point.Lat)),
		url.QueryEscape(fmt.Sprintf("%.4f", point.Lng)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "dispatch-server/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode returned status %d", resp.StatusCode)
	}

	var result nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}
	if result.DisplayName == "" {
		return "", fmt.Errorf("no address found for %.4f,%.4f", point.Lat, point.Lng)
	}

	g.cache.put(key, result.DisplayName)

	g.log.WithFields(logrus.Fields{
		"lat": point.Lat,
		"lng": point.Lng,
	}).Debug("Reverse geocoded coordinates")

	return result.DisplayName, nil
}

func cacheKey(p models.GeoPoint) string {
	return fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lng)
}
