package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Driver is a company driver who can be assigned to trips.
type Driver struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID     string             `json:"company_id" bson:"company_id"`
	UserID        string             `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Email         string             `json:"email,omitempty" bson:"email,omitempty"`
	Phone         string             `json:"phone,omitempty" bson:"phone,omitempty"`
	LicenseNumber string             `json:"license_number,omitempty" bson:"license_number,omitempty"`
	VehicleID     string             `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	IsActive      bool               `json:"is_active" bson:"is_active"`
	CustomFields  map[string]string  `json:"custom_fields,omitempty" bson:"custom_fields,omitempty"` // custom field id -> encoded value
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
