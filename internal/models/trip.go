package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	StatusUnassigned TripStatus = "unassigned"
	StatusAssigned   TripStatus = "assigned"
	StatusInProgress TripStatus = "in_progress"
	StatusCompleted  TripStatus = "completed"
	StatusCancelled  TripStatus = "cancelled" // manager-only terminal, outside the driver flow
)

// IsValidTripStatus checks if a status is one of the known lifecycle states.
func IsValidTripStatus(s TripStatus) bool {
	switch s {
	case StatusUnassigned, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// RecurringPattern describes how a recurring trip series repeats.
type RecurringPattern string

const (
	RecurDaily   RecurringPattern = "daily"
	RecurWeekly  RecurringPattern = "weekly"
	RecurMonthly RecurringPattern = "monthly"
)

// IsValidRecurringPattern checks if a pattern is supported.
func IsValidRecurringPattern(p RecurringPattern) bool {
	switch p {
	case RecurDaily, RecurWeekly, RecurMonthly:
		return true
	default:
		return false
	}
}

// Trip is one scheduled transportation job.
//
// Invariants: DriverID set implies Status is at least assigned; a recurrence
// child carries ParentTripID and never sets IsRecurring itself (only the
// series root does); ActualPickupTime must be set before ActualDropoffTime.
type Trip struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID  string             `json:"company_id" bson:"company_id"`
	CustomerID string             `json:"customer_id,omitempty" bson:"customer_id,omitempty"`
	DriverID   string             `json:"driver_id,omitempty" bson:"driver_id,omitempty"`
	VehicleID  string             `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`

	BookingRef      string    `json:"booking_ref,omitempty" bson:"booking_ref,omitempty"`
	PickupTime      time.Time `json:"pickup_time" bson:"pickup_time"`
	PickupLocation  string    `json:"pickup_location" bson:"pickup_location"`
	DropoffLocation string    `json:"dropoff_location" bson:"dropoff_location"`
	Passengers      int       `json:"passengers" bson:"passengers"`

	// FlightNumber for airport trips, free-form job/PO number otherwise.
	FlightNumber string `json:"flight_number,omitempty" bson:"flight_number,omitempty"`
	JobNumber    string `json:"job_number,omitempty" bson:"job_number,omitempty"`

	Status TripStatus `json:"status" bson:"status"`

	IsRecurring      bool             `json:"is_recurring" bson:"is_recurring"`
	RecurringPattern RecurringPattern `json:"recurring_pattern,omitempty" bson:"recurring_pattern,omitempty"`
	RecurringEndDate *time.Time       `json:"recurring_end_date,omitempty" bson:"recurring_end_date,omitempty"`
	ParentTripID     string           `json:"parent_trip_id,omitempty" bson:"parent_trip_id,omitempty"`

	ActualPickupTime  *time.Time `json:"actual_pickup_time,omitempty" bson:"actual_pickup_time,omitempty"`
	ActualDropoffTime *time.Time `json:"actual_dropoff_time,omitempty" bson:"actual_dropoff_time,omitempty"`
	StartCoords       *GeoPoint  `json:"start_coords,omitempty" bson:"start_coords,omitempty"`
	EndCoords         *GeoPoint  `json:"end_coords,omitempty" bson:"end_coords,omitempty"`

	TripRate  float64 `json:"trip_rate,omitempty" bson:"trip_rate,omitempty"`   // in USD
	DriverPay float64 `json:"driver_pay,omitempty" bson:"driver_pay,omitempty"` // in USD

	Notes        string            `json:"notes" bson:"notes"`
	CustomFields map[string]string `json:"custom_fields,omitempty" bson:"custom_fields,omitempty"` // custom field id -> encoded value

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
