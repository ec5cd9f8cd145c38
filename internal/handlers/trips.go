package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/db"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/flights"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/middleware"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/trips"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/validation"
)

// TripHandler handles staff trip operations.
type TripHandler struct {
	trips   db.TripCollection
	notes   db.TripNoteCollection
	fields  db.CustomFieldCollection
	service *trips.Service
	log     *logrus.Logger
}

// NewTripHandler creates a trip handler.
func NewTripHandler(tripCollection db.TripCollection, notes db.TripNoteCollection, fields db.CustomFieldCollection, service *trips.Service, logger *logrus.Logger) *TripHandler {
	return &TripHandler{trips: tripCollection, notes: notes, fields: fields, service: service, log: logger}
}

// List handles GET /api/trips. Drivers only ever see their own trips,
// whatever filters they send.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	q := r.URL.Query()
	filter := db.TripFilter{
		CustomerID: q.Get("customer_id"),
		DriverID:   q.Get("driver_id"),
		Status:     models.TripStatus(q.Get("status")),
	}
	if claims.Role == models.RoleDriver {
		filter.DriverID = claims.DriverID
	}

	result, err := h.trips.FindTrips(r.Context(), claims.CompanyID, filter)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trips": result})
}

// tripInput is the staff trip create/update payload.
type tripInput struct {
	CustomerID       string      `json:"customer_id"`
	DriverID         string      `json:"driver_id"`
	VehicleID        string      `json:"vehicle_id"`
	PickupTime       string      `json:"pickup_time"`
	PickupLocation   string      `json:"pickup_location"`
	DropoffLocation  string      `json:"dropoff_location"`
	Passengers       interface{} `json:"passengers"`
	FlightNumber     string      `json:"flight_number"`
	JobNumber        string      `json:"job_number"`
	TripRate         float64     `json:"trip_rate"`
	DriverPay        float64     `json:"driver_pay"`
	Notes            string      `json:"notes"`
	IsRecurring      bool        `json:"is_recurring"`
	RecurringPattern string      `json:"recurring_pattern"`
	RecurringEndDate string      `json:"recurring_end_date"`

	CustomFields map[string]string `json:"custom_fields"`
}

// validate maps a tripInput onto a trip, returning a user-facing message on
// the first failed field.
func (in tripInput) validate(trip *models.Trip) string {
	pickupDate := validation.PickupDate(in.PickupTime, time.Now())
	if !pickupDate.IsValid {
		return pickupDate.Err
	}
	pickupLoc := validation.LocationText(in.PickupLocation)
	if !pickupLoc.IsValid {
		return pickupLoc.Err
	}
	dropoffLoc := validation.LocationText(in.DropoffLocation)
	if !dropoffLoc.IsValid {
		return dropoffLoc.Err
	}
	passengers := validation.Passengers(in.Passengers)
	if !passengers.IsValid {
		return passengers.Err
	}

	trip.CustomerID = in.CustomerID
	trip.DriverID = in.DriverID
	trip.VehicleID = in.VehicleID
	trip.PickupTime = pickupDate.Time
	trip.PickupLocation = pickupLoc.Sanitized
	trip.DropoffLocation = dropoffLoc.Sanitized
	trip.Passengers = passengers.Value
	trip.JobNumber = validation.Sanitize(in.JobNumber)
	trip.TripRate = in.TripRate
	trip.DriverPay = in.DriverPay
	trip.Notes = validation.Sanitize(in.Notes)

	if in.FlightNumber != "" {
		flight := validation.FlightNumber(in.FlightNumber)
		if !flight.IsValid {
			return flight.Err
		}
		trip.FlightNumber = flight.Sanitized
	} else {
		trip.FlightNumber = ""
	}

	if in.IsRecurring {
		pattern := models.RecurringPattern(in.RecurringPattern)
		if !models.IsValidRecurringPattern(pattern) {
			return "unsupported recurring pattern"
		}
		endDate := validation.RecurringEndDate(in.RecurringEndDate, pickupDate.Time)
		if !endDate.IsValid {
			return endDate.Err
		}
		trip.IsRecurring = true
		trip.RecurringPattern = pattern
		end := endDate.Time
		trip.RecurringEndDate = &end
	} else {
		trip.IsRecurring = false
		trip.RecurringPattern = ""
		trip.RecurringEndDate = nil
	}
	return ""
}

// Create handles POST /api/trips.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in tripInput
	if !decodeBody(w, r, &in) {
		return
	}

	trip := models.Trip{CompanyID: claims.CompanyID}
	if msg := in.validate(&trip); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if in.CustomFields == nil {
		in.CustomFields = map[string]string{}
	}
	if msg := validateCustomFields(r.Context(), h.fields, claims.CompanyID, models.EntityTrip, in.CustomFields); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	trip.CustomFields = in.CustomFields

	created, err := h.service.CreateTrip(r.Context(), trip)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/trips/{id}.
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	trip, err := h.trips.FindTripByID(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}
	if claims.Role == models.RoleDriver && trip.DriverID != claims.DriverID {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// Update handles PUT /api/trips/{id}. Lifecycle fields (status, actual
// times, coordinates, driver) are not editable here; assignment and the
// driver actions own those.
func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	trip, err := h.trips.FindTripByID(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}

	var in tripInput
	if !decodeBody(w, r, &in) {
		return
	}

	driverID := trip.DriverID
	wasRecurring := trip.IsRecurring
	if msg := in.validate(trip); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	trip.DriverID = driverID
	if in.CustomFields == nil {
		in.CustomFields = map[string]string{}
	}
	if msg := validateCustomFields(r.Context(), h.fields, claims.CompanyID, models.EntityTrip, in.CustomFields); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	trip.CustomFields = in.CustomFields

	if err := h.trips.UpdateTrip(r.Context(), claims.CompanyID, trip.ID.Hex(), *trip); err != nil {
		writeDBError(w, err)
		return
	}

	// a root that just stopped recurring still reconciles so its now
	// out-of-schedule children are cleaned up
	if trip.IsRecurring || wasRecurring {
		result := h.service.Reconcile(r.Context(), *trip)
		h.log.WithFields(logrus.Fields{
			"company_id": claims.CompanyID,
			"trip_id":    trip.ID.Hex(),
			"created":    result.Created,
			"deleted":    result.Deleted,
			"failed":     result.Failed,
		}).Info("Reconciled recurring series after edit")
	}

	writeJSON(w, http.StatusOK, trip)
}

// Delete handles DELETE /api/trips/{id}. Deleting a recurring root also
// removes its unstarted children.
func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}
	id := r.PathValue("id")

	trip, err := h.trips.FindTripByID(r.Context(), claims.CompanyID, id)
	if err != nil {
		writeDBError(w, err)
		return
	}

	// child deletions are independent operations, failures are counted
	// rather than rolled back
	childrenDeleted, childrenFailed := 0, 0
	if trip.IsRecurring {
		children, err := h.trips.FindChildTrips(r.Context(), claims.CompanyID, id)
		if err == nil {
			for _, child := range children {
				if child.Status != models.StatusUnassigned {
					continue
				}
				if err := h.trips.DeleteTrip(r.Context(), claims.CompanyID, child.ID.Hex()); err != nil {
					childrenFailed++
				} else {
					childrenDeleted++
				}
			}
		}
	}

	if err := h.trips.DeleteTrip(r.Context(), claims.CompanyID, id); err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":          "Trip deleted",
		"children_deleted": childrenDeleted,
		"children_failed":  childrenFailed,
	})
}

// Assign handles POST /api/trips/{id}/assign. An empty driver_id unassigns.
func (h *TripHandler) Assign(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in struct {
		DriverID  string `json:"driver_id"`
		VehicleID string `json:"vehicle_id"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	trip, err := h.trips.FindTripByID(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}

	updated, err := trips.AssignDriver(*trip, in.DriverID)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if in.VehicleID != "" {
		updated.VehicleID = in.VehicleID
	}

	if err := h.trips.UpdateTrip(r.Context(), claims.CompanyID, updated.ID.Hex(), updated); err != nil {
		writeDBError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"company_id": claims.CompanyID,
		"trip_id":    updated.ID.Hex(),
		"driver_id":  in.DriverID,
	}).Info("Trip assignment changed")

	writeJSON(w, http.StatusOK, updated)
}

// Pickup handles POST /api/trips/{id}/pickup.
func (h *TripHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.RecordPickup)
}

// Dropoff handles POST /api/trips/{id}/dropoff.
func (h *TripHandler) Dropoff(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.RecordDropoff)
}

func (h *TripHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, companyID, tripID, driverID string) (*models.Trip, error)) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	// drivers act as themselves; managers act unconstrained
	driverID := ""
	if claims.Role == models.RoleDriver {
		driverID = claims.DriverID
	}

	trip, err := fn(r.Context(), claims.CompanyID, r.PathValue("id"), driverID)
	if err != nil {
		switch {
		case errors.Is(err, trips.ErrInvalidTransition), errors.Is(err, trips.ErrPickupRequired):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, trips.ErrDriverMismatch):
			writeError(w, http.StatusForbidden, err.Error())
		default:
			writeDBError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// Cancel handles POST /api/trips/{id}/cancel.
func (h *TripHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	trip, err := h.service.Cancel(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, trips.ErrInvalidTransition) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// FlightStatus handles GET /api/trips/{id}/flight-status.
func (h *TripHandler) FlightStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	confirmed := r.URL.Query().Get("confirm") == "true"
	info, err := h.service.CheckFlightStatus(r.Context(), claims.CompanyID, r.PathValue("id"), confirmed)
	if err != nil {
		switch {
		case errors.Is(err, trips.ErrConfirmationRequired), errors.Is(err, trips.ErrFlightNotToday):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, trips.ErrPlanRequired):
			writeError(w, http.StatusPaymentRequired, err.Error())
		case errors.Is(err, flights.ErrNotConfigured):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeDBError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Reconcile handles POST /api/trips/{id}/reconcile for a recurring root.
func (h *TripHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	trip, err := h.trips.FindTripByID(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}
	if !trip.IsRecurring {
		writeError(w, http.StatusBadRequest, "trip is not a recurring root")
		return
	}

	writeJSON(w, http.StatusOK, h.service.Reconcile(r.Context(), *trip))
}

// CreateNote handles POST /api/trips/{id}/notes.
func (h *TripHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in struct {
		Body string `json:"body"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	body := validation.Sanitize(in.Body)
	if body == "" {
		writeError(w, http.StatusBadRequest, "note body is required")
		return
	}

	trip, err := h.trips.FindTripByID(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}

	id, err := h.notes.InsertNote(r.Context(), models.TripNote{
		CompanyID: claims.CompanyID,
		TripID:    trip.ID.Hex(),
		AuthorID:  claims.UserID,
		Body:      body,
	})
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// ListNotes handles GET /api/trips/{id}/notes.
func (h *TripHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	notes, err := h.notes.FindNotesByTrip(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notes": notes})
}
