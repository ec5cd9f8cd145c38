// Package flights looks up live flight status for airport pickups through an
// external aviation data API.
package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Status is the normalized flight state reported to dispatchers.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusLanded    Status = "landed"
	StatusCancelled Status = "cancelled"
	StatusDiverted  Status = "diverted"
	StatusUnknown   Status = "unknown"
)

// ErrNotConfigured is returned when no flight API credentials are set.
var ErrNotConfigured = errors.New("flight status lookup is not configured")

// FlightInfo is the subset of upstream data the dispatcher cares about.
type FlightInfo struct {
	FlightNumber     string     `json:"flight_number"`
	Status           Status     `json:"status"`
	DepartureAirport string     `json:"departure_airport,omitempty"`
	ArrivalAirport   string     `json:"arrival_airport,omitempty"`
	ScheduledArrival *time.Time `json:"scheduled_arrival,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
}

// Client queries an aviationstack-compatible flight status endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

// NewClient creates a flight status client. An empty baseURL or apiKey
// produces a client whose lookups fail with ErrNotConfigured, which lets
// companies without a flight data subscription run the rest of the system.
func NewClient(baseURL, apiKey string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     logger,
	}
}

// Configured reports whether flight lookups can be made.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type upstreamResponse struct {
	Data []struct {
		FlightStatus string `json:"flight_status"`
		Departure    struct {
			IATA string `json:"iata"`
		} `json:"departure"`
		Arrival struct {
			IATA      string `json:"iata"`
			Scheduled string `json:"scheduled"`
			Estimated string `json:"estimated"`
		} `json:"arrival"`
	} `json:"data"`
}

// Lookup fetches the current status for a flight number.
func (c *Client) Lookup(ctx context.Context, flightNumber string) (*FlightInfo, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/flights?access_key=%s&flight_iata=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(flightNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flight status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight status API returned status %d", resp.StatusCode)
	}

	var result upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode flight status response: %w", err)
	}
	if len(result.Data) == 0 {
		c.log.WithField("flight_number", flightNumber).Info("No flight data returned")
		return &FlightInfo{FlightNumber: flightNumber, Status: StatusUnknown}, nil
	}

	d := result.Data[0]
	info := &FlightInfo{
		FlightNumber:     flightNumber,
		Status:           mapStatus(d.FlightStatus),
		DepartureAirport: d.Departure.IATA,
		ArrivalAirport:   d.Arrival.IATA,
	}
	if t := parseUpstreamTime(d.Arrival.Scheduled); t != nil {
		info.ScheduledArrival = t
	}
	if t := parseUpstreamTime(d.Arrival.Estimated); t != nil {
		info.EstimatedArrival = t
	}
	return info, nil
}

func mapStatus(s string) Status {
	switch strings.ToLower(s) {
	case "scheduled":
		return StatusScheduled
	case "active", "en-route":
		return StatusActive
	case "landed":
		return StatusLanded
	case "cancelled":
		return StatusCancelled
	case "diverted":
		return StatusDiverted
	default:
		return StatusUnknown
	}
}

func parseUpstreamTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
