// Package trips implements the trip lifecycle: booking, driver assignment,
// pickup and dropoff with GPS capture, recurring series expansion, and
// flight status checks for airport runs.
package trips

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/db"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/flights"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
)

var (
	ErrInvalidTransition = errors.New("invalid trip status transition")
	ErrDriverMismatch    = errors.New("trip is assigned to a different driver")
	ErrPickupRequired    = errors.New("dropoff requires a recorded pickup")
	ErrPlanRequired      = errors.New("flight status lookups require a paid plan")

	// Flight lookups hit a metered third-party API, so callers must opt in
	// explicitly and only trips departing today qualify.
	ErrConfirmationRequired = errors.New("flight status lookup requires explicit confirmation")
	ErrFlightNotToday       = errors.New("flight status is only available on the pickup date")
)

// locationTimeout bounds how long a lifecycle transition waits for a GPS
// fix. Position capture is best-effort: a slow or failed lookup never blocks
// the driver.
const locationTimeout = 10 * time.Second

// LocationProvider supplies the latest known position of a driver's vehicle.
type LocationProvider interface {
	LatestPosition(ctx context.Context, companyID, driverID string) (*models.GeoPoint, error)
}

// FlightLookup fetches live status for a flight number.
type FlightLookup interface {
	Lookup(ctx context.Context, flightNumber string) (*flights.FlightInfo, error)
}

// Service coordinates trip lifecycle operations over the data layer.
type Service struct {
	trips     db.TripCollection
	companies db.CompanyCollection
	locations LocationProvider
	flights   FlightLookup
	log       *logrus.Logger
	now       func() time.Time
}

// NewService creates a trip service. locations and flightAPI may be nil when
// the corresponding integration is not configured.
func NewService(trips db.TripCollection, companies db.CompanyCollection, locations LocationProvider, flightAPI FlightLookup, logger *logrus.Logger) *Service {
	return &Service{
		trips:     trips,
		companies: companies,
		locations: locations,
		flights:   flightAPI,
		log:       logger,
		now:       time.Now,
	}
}

// NewBookingRef generates a short human-quotable booking reference.
func NewBookingRef() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// AssignDriver returns a copy of the trip with the driver changed, enforcing
// the status invariant: a trip with a driver is at least assigned, and a
// trip without one is unassigned. An empty driverID unassigns.
//
// This is the only code path that moves a trip between unassigned and
// assigned.
func AssignDriver(trip models.Trip, driverID string) (models.Trip, error) {
	if driverID == "" {
		switch trip.Status {
		case models.StatusUnassigned, models.StatusAssigned:
			trip.DriverID = ""
			trip.Status = models.StatusUnassigned
			return trip, nil
		default:
			return trip, ErrInvalidTransition
		}
	}

	switch trip.Status {
	case models.StatusUnassigned:
		trip.DriverID = driverID
		trip.Status = models.StatusAssigned
		return trip, nil
	case models.StatusAssigned:
		// reassignment before the trip starts
		trip.DriverID = driverID
		return trip, nil
	default:
		return trip, ErrInvalidTransition
	}
}

// CreateTrip validates invariants, stamps a booking reference, and persists
// the trip. If the trip is a recurring root, its children are expanded and
// persisted as well; the returned trip carries the stored id.
func (s *Service) CreateTrip(ctx context.Context, trip models.Trip) (*models.Trip, error) {
	if trip.ParentTripID != "" && trip.IsRecurring {
		return nil, errors.New("a recurrence child cannot itself be recurring")
	}
	if trip.IsRecurring {
		if !models.IsValidRecurringPattern(trip.RecurringPattern) {
			return nil, errors.New("unsupported recurring pattern")
		}
		if trip.RecurringEndDate == nil {
			return nil, errors.New("recurring trips require an end date")
		}
	}
	if trip.BookingRef == "" {
		trip.BookingRef = NewBookingRef()
	}
	if trip.DriverID != "" && trip.Status == models.StatusUnassigned {
		trip.Status = models.StatusAssigned
	}

	id, err := s.trips.InsertTrip(ctx, trip)
	if err != nil {
		return nil, err
	}

	created, err := s.trips.FindTripByID(ctx, trip.CompanyID, id)
	if err != nil {
		return nil, err
	}

	if created.IsRecurring {
		result := s.Reconcile(ctx, *created)
		s.log.WithFields(logrus.Fields{
			"company_id": created.CompanyID,
			"trip_id":    id,
			"created":    result.Created,
			"failed":     result.Failed,
		}).Info("Expanded recurring trip series")
	}

	return created, nil
}

// capturePosition asks the location provider for the driver's position,
// bounded by locationTimeout. Any failure degrades to a nil position.
func (s *Service) capturePosition(ctx context.Context, companyID, driverID string) *models.GeoPoint {
	if s.locations == nil || driverID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, locationTimeout)
	defer cancel()

	point, err := s.locations.LatestPosition(ctx, companyID, driverID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"company_id": companyID,
			"driver_id":  driverID,
			"error":      err.Error(),
		}).Warn("GPS capture failed, recording transition without coordinates")
		return nil
	}
	return point
}

// RecordPickup moves an assigned trip to in_progress, stamping the actual
// pickup time and, when available, the vehicle's position. driverID must
// match the trip's assignment; staff callers pass an empty driverID.
func (s *Service) RecordPickup(ctx context.Context, companyID, tripID, driverID string) (*models.Trip, error) {
	trip, err := s.trips.FindTripByID(ctx, companyID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.StatusAssigned {
		return nil, ErrInvalidTransition
	}
	if driverID != "" && trip.DriverID != driverID {
		return nil, ErrDriverMismatch
	}

	now := s.now()
	trip.Status = models.StatusInProgress
	trip.ActualPickupTime = &now
	trip.StartCoords = s.capturePosition(ctx, companyID, trip.DriverID)

	if err := s.trips.UpdateTrip(ctx, companyID, tripID, *trip); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"company_id": companyID,
		"trip_id":    tripID,
		"driver_id":  trip.DriverID,
		"has_coords": trip.StartCoords != nil,
	}).Info("Pickup recorded")

	return trip, nil
}

// RecordDropoff completes an in-progress trip. A dropoff without a recorded
// pickup is rejected regardless of what the client sent.
func (s *Service) RecordDropoff(ctx context.Context, companyID, tripID, driverID string) (*models.Trip, error) {
	trip, err := s.trips.FindTripByID(ctx, companyID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.StatusInProgress {
		return nil, ErrInvalidTransition
	}
	if trip.ActualPickupTime == nil {
		return nil, ErrPickupRequired
	}
	if driverID != "" && trip.DriverID != driverID {
		return nil, ErrDriverMismatch
	}

	now := s.now()
	trip.Status = models.StatusCompleted
	trip.ActualDropoffTime = &now
	trip.EndCoords = s.capturePosition(ctx, companyID, trip.DriverID)

	if err := s.trips.UpdateTrip(ctx, companyID, tripID, *trip); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"company_id": companyID,
		"trip_id":    tripID,
		"driver_id":  trip.DriverID,
		"has_coords": trip.EndCoords != nil,
	}).Info("Dropoff recorded")

	return trip, nil
}

// Cancel marks a trip cancelled. Completed trips cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, companyID, tripID string) (*models.Trip, error) {
	trip, err := s.trips.FindTripByID(ctx, companyID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status == models.StatusCompleted || trip.Status == models.StatusCancelled {
		return nil, ErrInvalidTransition
	}

	trip.Status = models.StatusCancelled
	if err := s.trips.UpdateTrip(ctx, companyID, tripID, *trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// CheckFlightStatus looks up the flight attached to a trip. External flight
// data is metered: the caller must confirm explicitly, the trip must depart
// today, and the company needs a paid plan. No gate failure makes an
// external call.
func (s *Service) CheckFlightStatus(ctx context.Context, companyID, tripID string, confirmed bool) (*flights.FlightInfo, error) {
	if s.flights == nil {
		return nil, flights.ErrNotConfigured
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	company, err := s.companies.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company.PlanTier == "free" {
		return nil, ErrPlanRequired
	}

	trip, err := s.trips.FindTripByID(ctx, companyID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.FlightNumber == "" {
		return nil, errors.New("trip has no flight number")
	}
	if !sameDay(trip.PickupTime, s.now()) {
		return nil, ErrFlightNotToday
	}

	return s.flights.Lookup(ctx, trip.FlightNumber)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
