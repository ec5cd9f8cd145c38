package validation

import (
	"strconv"
	"strings"
	"time"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
)

// customFieldCheckers dispatches on the declared field type. Each checker
// receives an already-sanitized non-empty value.
var customFieldCheckers = map[models.CustomFieldType]func(field models.CustomField, value string) Result{
	models.FieldText:     checkText,
	models.FieldTextarea: checkText,
	models.FieldNumber:   checkNumber,
	models.FieldDate:     checkDate,
	models.FieldDateTime: checkDateTime,
	models.FieldBoolean:  checkBoolean,
	models.FieldSelect:   checkSelect,
}

// CustomFieldValue validates one string-encoded value against its declared
// field schema. Required fields reject empty values; optional empty values
// pass through untouched.
func CustomFieldValue(field models.CustomField, raw string) Result {
	s := sanitize(raw)
	if s == "" {
		if field.Required {
			return invalid(field.Label + " is required")
		}
		return Result{IsValid: true, Sanitized: ""}
	}
	check, ok := customFieldCheckers[field.FieldType]
	if !ok {
		return invalid("unknown field type")
	}
	return check(field, s)
}

func checkText(field models.CustomField, value string) Result {
	if len(value) > 1000 {
		return invalid(field.Label + " must be at most 1000 characters")
	}
	return Result{IsValid: true, Sanitized: value}
}

func checkNumber(field models.CustomField, value string) Result {
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return invalid(field.Label + " must be a number")
	}
	return Result{IsValid: true, Sanitized: value}
}

func checkDate(field models.CustomField, value string) Result {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return invalid(field.Label + " must be a date (YYYY-MM-DD)")
	}
	return Result{IsValid: true, Sanitized: value}
}

func checkDateTime(field models.CustomField, value string) Result {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04"} {
		if _, err := time.Parse(layout, value); err == nil {
			return Result{IsValid: true, Sanitized: value}
		}
	}
	return invalid(field.Label + " must be a date and time")
}

func checkBoolean(field models.CustomField, value string) Result {
	switch strings.ToLower(value) {
	case "true", "false":
		return Result{IsValid: true, Sanitized: strings.ToLower(value)}
	default:
		return invalid(field.Label + " must be true or false")
	}
}

func checkSelect(field models.CustomField, value string) Result {
	for _, opt := range field.Options {
		if value == opt {
			return Result{IsValid: true, Sanitized: value}
		}
	}
	return invalid(field.Label + " must be one of the configured options")
}
