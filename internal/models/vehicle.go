package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents a company vehicle.
type Vehicle struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID    string             `bson:"company_id" json:"company_id"`
	Make         string             `bson:"make" json:"make"`
	Model        string             `bson:"model" json:"model"`
	Year         int                `bson:"year" json:"year"`
	LicensePlate string             `bson:"license_plate" json:"license_plate"`
	Capacity     int                `bson:"capacity" json:"capacity"` // passenger seats
	Status       string             `bson:"status" json:"status"`     // "active" or "inactive"
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
