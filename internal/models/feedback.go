package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModificationRequestType categorizes what a customer wants changed.
type ModificationRequestType string

const (
	ModifyDateTime   ModificationRequestType = "datetime"
	ModifyLocation   ModificationRequestType = "location"
	ModifyPassengers ModificationRequestType = "passengers"
	ModifyOther      ModificationRequestType = "other"
)

// ModificationRequest is a customer-submitted change proposal against one of
// their own trips. Requests are recorded for manager triage, never applied
// automatically.
type ModificationRequest struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID  string             `json:"company_id" bson:"company_id"`
	CustomerID string             `json:"customer_id" bson:"customer_id"`
	TripID     string             `json:"trip_id" bson:"trip_id"`

	RequestType ModificationRequestType `json:"request_type" bson:"request_type"`
	// RequestedChanges carries a snapshot of the original trip fields plus the
	// requested new details, as submitted by the customer.
	RequestedChanges map[string]string `json:"requested_changes" bson:"requested_changes"`
	Reason           string            `json:"reason" bson:"reason"`

	Status    string    `json:"status" bson:"status"` // "pending" or "reviewed"
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// TripRating is customer-submitted post-trip feedback. One rating per
// (customer, trip); resubmission overwrites.
type TripRating struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID  string             `json:"company_id" bson:"company_id"`
	CustomerID string             `json:"customer_id" bson:"customer_id"`
	TripID     string             `json:"trip_id" bson:"trip_id"`

	Rating         int    `json:"rating" bson:"rating"` // 1-5
	DriverRating   int    `json:"driver_rating,omitempty" bson:"driver_rating,omitempty"`
	VehicleRating  int    `json:"vehicle_rating,omitempty" bson:"vehicle_rating,omitempty"`
	Review         string `json:"review,omitempty" bson:"review,omitempty"`
	WouldRecommend bool   `json:"would_recommend" bson:"would_recommend"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
