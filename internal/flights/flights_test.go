package flights

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/flights", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("access_key"))
		assert.Equal(t, "UA100", r.URL.Query().Get("flight_iata"))
		w.Write([]byte(`{
			"data": [{
				"flight_status": "active",
				"departure": {"iata": "SFO"},
				"arrival": {"iata": "JFK", "scheduled": "2025-06-01T14:30:00+00:00"}
			}]
		}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", testLogger())

	info, err := c.Lookup(context.Background(), "UA100")
	assert.NoError(t, err)
	assert.Equal(t, StatusActive, info.Status)
	assert.Equal(t, "SFO", info.DepartureAirport)
	assert.Equal(t, "JFK", info.ArrivalAirport)
	assert.NotNil(t, info.ScheduledArrival)
}

func TestLookupNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", testLogger())

	info, err := c.Lookup(context.Background(), "ZZ999")
	assert.NoError(t, err)
	assert.Equal(t, StatusUnknown, info.Status)
}

func TestLookupNotConfigured(t *testing.T) {
	c := NewClient("", "", testLogger())
	assert.False(t, c.Configured())

	_, err := c.Lookup(context.Background(), "UA100")
	assert.Equal(t, ErrNotConfigured, err)
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		upstream string
		want     Status
	}{
		{"scheduled", StatusScheduled},
		{"active", StatusActive},
		{"en-route", StatusActive},
		{"landed", StatusLanded},
		{"cancelled", StatusCancelled},
		{"diverted", StatusDiverted},
		{"", StatusUnknown},
		{"incident", StatusUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapStatus(tt.upstream), "status %q", tt.upstream)
	}
}
