package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripNote is a staff-authored note attached to a trip.
type TripNote struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID string             `json:"company_id" bson:"company_id"`
	TripID    string             `json:"trip_id" bson:"trip_id"`
	AuthorID  string             `json:"author_id" bson:"author_id"`
	Body      string             `json:"body" bson:"body"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// TripTemplate pre-fills the trip form with a company's frequent runs.
type TripTemplate struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID       string             `json:"company_id" bson:"company_id"`
	Name            string             `json:"name" bson:"name"`
	PickupLocation  string             `json:"pickup_location" bson:"pickup_location"`
	DropoffLocation string             `json:"dropoff_location" bson:"dropoff_location"`
	Passengers      int                `json:"passengers" bson:"passengers"`
	TripRate        float64            `json:"trip_rate,omitempty" bson:"trip_rate,omitempty"`
	Notes           string             `json:"notes" bson:"notes"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// ReportConfiguration is a saved report definition (columns + filters) for
// the export screens.
type ReportConfiguration struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID string             `json:"company_id" bson:"company_id"`
	Name      string             `json:"name" bson:"name"`
	Entity    string             `json:"entity" bson:"entity"` // "trips", "drivers", "customers"
	Columns   []string           `json:"columns" bson:"columns"`
	Filters   map[string]string  `json:"filters,omitempty" bson:"filters,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// GPSUpdate is one driver position report from the tracking feed.
type GPSUpdate struct {
	DriverID   string    `json:"driver_id" bson:"driver_id"`
	Location   GeoPoint  `json:"location" bson:"location"`
	Speed      float64   `json:"speed" bson:"speed"` // km/h
	RecordedAt time.Time `json:"recorded_at" bson:"recorded_at"`
}
