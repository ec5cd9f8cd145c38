package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is one person or organization a company serves. Customers with
// trip history are soft-disabled via IsActive rather than deleted.
type Customer struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID    string             `json:"company_id" bson:"company_id"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email,omitempty" bson:"email,omitempty"`
	Phone        string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Organization string             `json:"organization,omitempty" bson:"organization,omitempty"`
	Notes        string             `json:"notes" bson:"notes"`
	IsActive     bool               `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
