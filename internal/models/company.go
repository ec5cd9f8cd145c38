package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company is the tenant: the unit of data isolation. Every other record
// carries the owning company's id and every query filters on it.
type Company struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	ContactEmail string             `json:"contact_email" bson:"contact_email"`
	ContactPhone string             `json:"contact_phone" bson:"contact_phone"`
	PlanTier     string             `json:"plan_tier" bson:"plan_tier"` // "free", "standard", "premium"
	IsActive     bool               `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
