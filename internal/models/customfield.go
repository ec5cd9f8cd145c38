package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomFieldType is the declared value kind of a tenant-defined field.
type CustomFieldType string

const (
	FieldText     CustomFieldType = "text"
	FieldNumber   CustomFieldType = "number"
	FieldDate     CustomFieldType = "date"
	FieldDateTime CustomFieldType = "datetime"
	FieldBoolean  CustomFieldType = "boolean"
	FieldSelect   CustomFieldType = "select"
	FieldTextarea CustomFieldType = "textarea"
)

// IsValidCustomFieldType checks if a field type is supported.
func IsValidCustomFieldType(t CustomFieldType) bool {
	switch t {
	case FieldText, FieldNumber, FieldDate, FieldDateTime, FieldBoolean, FieldSelect, FieldTextarea:
		return true
	default:
		return false
	}
}

// CustomFieldEntity is the record kind a custom field attaches to.
type CustomFieldEntity string

const (
	EntityTrip   CustomFieldEntity = "trip"
	EntityDriver CustomFieldEntity = "driver"
)

// CustomField declares a tenant-defined schema extension for trips or drivers.
type CustomField struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID    string             `json:"company_id" bson:"company_id"`
	EntityType   CustomFieldEntity  `json:"entity_type" bson:"entity_type"`
	FieldType    CustomFieldType    `json:"field_type" bson:"field_type"`
	Label        string             `json:"label" bson:"label"`
	Required     bool               `json:"required" bson:"required"`
	DefaultValue string             `json:"default_value" bson:"default_value"`
	Options      []string           `json:"options,omitempty" bson:"options,omitempty"` // for select fields
	DisplayOrder int                `json:"display_order" bson:"display_order"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// CustomFieldValue binds one custom field to one concrete trip or driver.
type CustomFieldValue struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID string             `json:"company_id" bson:"company_id"`
	FieldID   string             `json:"field_id" bson:"field_id"`
	EntityID  string             `json:"entity_id" bson:"entity_id"`
	Value     string             `json:"value" bson:"value"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
