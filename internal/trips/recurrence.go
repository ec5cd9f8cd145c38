package trips

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
)

// Occurrences computes the pickup times of a recurring root's children. The
// series starts one interval after the root's own pickup and runs through
// the end date inclusive. The root itself is not part of the result.
func Occurrences(root models.Trip) []time.Time {
	if !root.IsRecurring || root.RecurringEndDate == nil {
		return nil
	}

	end := *root.RecurringEndDate
	var out []time.Time
	for t := next(root.PickupTime, root.RecurringPattern); !t.After(end); t = next(t, root.RecurringPattern) {
		out = append(out, t)
	}
	return out
}

func next(t time.Time, pattern models.RecurringPattern) time.Time {
	switch pattern {
	case models.RecurDaily:
		return t.AddDate(0, 0, 1)
	case models.RecurWeekly:
		return t.AddDate(0, 0, 7)
	case models.RecurMonthly:
		return t.AddDate(0, 1, 0)
	default:
		// unreachable for validated patterns; stop iteration
		return t.AddDate(100, 0, 0)
	}
}

// childFromRoot builds a child trip for one occurrence. Children copy the
// root's booking details but never the recurrence flags, and they start
// their own lifecycle unassigned.
func childFromRoot(root models.Trip, pickup time.Time) models.Trip {
	return models.Trip{
		CompanyID:       root.CompanyID,
		CustomerID:      root.CustomerID,
		BookingRef:      NewBookingRef(),
		PickupTime:      pickup,
		PickupLocation:  root.PickupLocation,
		DropoffLocation: root.DropoffLocation,
		Passengers:      root.Passengers,
		FlightNumber:    root.FlightNumber,
		JobNumber:       root.JobNumber,
		Status:          models.StatusUnassigned,
		ParentTripID:    root.ID.Hex(),
		TripRate:        root.TripRate,
		DriverPay:       root.DriverPay,
		Notes:           root.Notes,
		CustomFields:    root.CustomFields,
	}
}

// ReconcileResult reports what a reconciliation pass changed.
type ReconcileResult struct {
	Created int `json:"created"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Reconcile diffs a recurring root's stored children against the occurrence
// set implied by its current pattern and end date, creating the missing
// children and deleting the surplus ones. Children a driver has already
// started are left alone even if the schedule no longer includes them.
func (s *Service) Reconcile(ctx context.Context, root models.Trip) ReconcileResult {
	var result ReconcileResult

	wanted := make(map[time.Time]bool)
	for _, t := range Occurrences(root) {
		wanted[t.UTC()] = true
	}

	existing, err := s.trips.FindChildTrips(ctx, root.CompanyID, root.ID.Hex())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"company_id": root.CompanyID,
			"trip_id":    root.ID.Hex(),
			"error":      err.Error(),
		}).Error("Failed to list recurrence children")
		result.Failed++
		return result
	}

	have := make(map[time.Time]bool)
	for _, child := range existing {
		key := child.PickupTime.UTC()
		if wanted[key] {
			have[key] = true
			continue
		}
		if child.Status != models.StatusUnassigned {
			continue
		}
		if err := s.trips.DeleteTrip(ctx, root.CompanyID, child.ID.Hex()); err != nil {
			result.Failed++
			continue
		}
		result.Deleted++
	}

	for _, t := range Occurrences(root) {
		if have[t.UTC()] {
			continue
		}
		if _, err := s.trips.InsertTrip(ctx, childFromRoot(root, t)); err != nil {
			result.Failed++
			continue
		}
		result.Created++
	}

	return result
}
