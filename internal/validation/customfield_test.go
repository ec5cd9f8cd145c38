package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
)

func TestCustomFieldValue_Required(t *testing.T) {
	field := models.CustomField{Label: "Badge number", FieldType: models.FieldText, Required: true}

	res := CustomFieldValue(field, "")
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Err, "required")

	res = CustomFieldValue(field, "   ")
	assert.False(t, res.IsValid)

	res = CustomFieldValue(field, "B-1042")
	assert.True(t, res.IsValid)
	assert.Equal(t, "B-1042", res.Sanitized)
}

func TestCustomFieldValue_OptionalEmpty(t *testing.T) {
	field := models.CustomField{Label: "Gate", FieldType: models.FieldText, Required: false}
	res := CustomFieldValue(field, "")
	assert.True(t, res.IsValid)
	assert.Equal(t, "", res.Sanitized)
}

func TestCustomFieldValue_TypeDispatch(t *testing.T) {
	tests := []struct {
		name  string
		field models.CustomField
		value string
		valid bool
	}{
		{"number ok", models.CustomField{Label: "Weight", FieldType: models.FieldNumber}, "12.5", true},
		{"number bad", models.CustomField{Label: "Weight", FieldType: models.FieldNumber}, "heavy", false},
		{"date ok", models.CustomField{Label: "Due", FieldType: models.FieldDate}, "2025-03-01", true},
		{"date bad", models.CustomField{Label: "Due", FieldType: models.FieldDate}, "03/01/2025", false},
		{"datetime ok", models.CustomField{Label: "Window", FieldType: models.FieldDateTime}, "2025-03-01T14:30", true},
		{"datetime bad", models.CustomField{Label: "Window", FieldType: models.FieldDateTime}, "sometime", false},
		{"boolean true", models.CustomField{Label: "VIP", FieldType: models.FieldBoolean}, "TRUE", true},
		{"boolean bad", models.CustomField{Label: "VIP", FieldType: models.FieldBoolean}, "yes", false},
		{"select ok", models.CustomField{Label: "Class", FieldType: models.FieldSelect, Options: []string{"economy", "business"}}, "business", true},
		{"select bad", models.CustomField{Label: "Class", FieldType: models.FieldSelect, Options: []string{"economy", "business"}}, "first", false},
		{"textarea ok", models.CustomField{Label: "Instructions", FieldType: models.FieldTextarea}, "ring twice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CustomFieldValue(tt.field, tt.value)
			assert.Equal(t, tt.valid, res.IsValid, res.Err)
		})
	}
}

func TestCustomFieldValue_BooleanNormalized(t *testing.T) {
	field := models.CustomField{Label: "VIP", FieldType: models.FieldBoolean}
	res := CustomFieldValue(field, "True")
	assert.True(t, res.IsValid)
	assert.Equal(t, "true", res.Sanitized)
}
