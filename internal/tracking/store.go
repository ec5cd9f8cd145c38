// Package tracking ingests live GPS reports from driver devices over MQTT
// and keeps the latest position per driver for lifecycle GPS capture and the
// portal's live trip view.
package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
)

// ErrNoPosition is returned when no fresh position is known for a driver.
var ErrNoPosition = errors.New("no recent position for driver")

// maxAge is how long a position stays usable. Anything older is treated as
// unknown rather than served stale.
const maxAge = 5 * time.Minute

type position struct {
	point      models.GeoPoint
	recordedAt time.Time
}

// Store holds the latest known position per (company, driver).
type Store struct {
	mu        sync.RWMutex
	positions map[string]position
	now       func() time.Time
}

// NewStore creates an empty position store.
func NewStore() *Store {
	return &Store{
		positions: make(map[string]position),
		now:       time.Now,
	}
}

func key(companyID, driverID string) string {
	return companyID + "\x00" + driverID
}

// Record stores a position report. Out-of-order reports older than the
// stored one are ignored.
func (s *Store) Record(companyID string, update models.GPSUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(companyID, update.DriverID)
	if existing, ok := s.positions[k]; ok && update.RecordedAt.Before(existing.recordedAt) {
		return
	}
	s.positions[k] = position{point: update.Location, recordedAt: update.RecordedAt}
}

// LatestPosition returns the driver's most recent position if it is fresh
// enough. Satisfies the trip service's location provider.
func (s *Store) LatestPosition(ctx context.Context, companyID, driverID string) (*models.GeoPoint, error) {
	s.mu.RLock()
	p, ok := s.positions[key(companyID, driverID)]
	s.mu.RUnlock()

	if !ok || s.now().Sub(p.recordedAt) > maxAge {
		return nil, ErrNoPosition
	}
	point := p.point
	return &point, nil
}
