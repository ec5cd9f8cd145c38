package handlers

import (
	"context"
	"net/http"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/db"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/middleware"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/validation"
)

// CustomFieldHandler handles tenant-defined field schemas and values.
type CustomFieldHandler struct {
	fields db.CustomFieldCollection
}

// NewCustomFieldHandler creates a custom field handler.
func NewCustomFieldHandler(fields db.CustomFieldCollection) *CustomFieldHandler {
	return &CustomFieldHandler{fields: fields}
}

type fieldInput struct {
	EntityType   models.CustomFieldEntity `json:"entity_type"`
	FieldType    models.CustomFieldType   `json:"field_type"`
	Label        string                   `json:"label"`
	Required     bool                     `json:"required"`
	DefaultValue string                   `json:"default_value"`
	Options      []string                 `json:"options"`
	DisplayOrder int                      `json:"display_order"`
}

func (in fieldInput) validate(field *models.CustomField) string {
	if in.EntityType != models.EntityTrip && in.EntityType != models.EntityDriver {
		return "entity_type must be trip or driver"
	}
	if !models.IsValidCustomFieldType(in.FieldType) {
		return "unsupported field type"
	}
	label := validation.Name(in.Label)
	if !label.IsValid {
		return label.Err
	}
	if in.FieldType == models.FieldSelect && len(in.Options) == 0 {
		return "select fields require options"
	}

	field.EntityType = in.EntityType
	field.FieldType = in.FieldType
	field.Label = label.Sanitized
	field.Required = in.Required
	field.DefaultValue = validation.Sanitize(in.DefaultValue)
	field.Options = in.Options
	field.DisplayOrder = in.DisplayOrder

	// the default must satisfy the field's own schema
	if field.DefaultValue != "" {
		if res := validation.CustomFieldValue(*field, field.DefaultValue); !res.IsValid {
			return "default value: " + res.Err
		}
	}
	return ""
}

// validateCustomFields checks submitted custom-field values against the
// company's field schemas for one entity kind: required fields must be
// present, every value must satisfy its field's type, and unknown field ids
// are rejected. Values are sanitized in place. Returns a user-facing message
// on the first failure, empty on success.
func validateCustomFields(ctx context.Context, fields db.CustomFieldCollection, companyID string, entity models.CustomFieldEntity, values map[string]string) string {
	defs, err := fields.FindFields(ctx, companyID, entity)
	if err != nil {
		return "could not load custom field definitions"
	}

	known := make(map[string]bool, len(defs))
	for _, def := range defs {
		id := def.ID.Hex()
		known[id] = true

		raw, ok := values[id]
		if !ok || raw == "" {
			if def.DefaultValue != "" {
				values[id] = def.DefaultValue
				continue
			}
			if def.Required {
				return def.Label + " is required"
			}
			continue
		}

		res := validation.CustomFieldValue(def, raw)
		if !res.IsValid {
			return def.Label + ": " + res.Err
		}
		values[id] = res.Sanitized
	}

	for id := range values {
		if !known[id] {
			return "unknown custom field " + id
		}
	}
	return ""
}

// List handles GET /api/custom-fields?entity_type=trip.
func (h *CustomFieldHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	entityType := models.CustomFieldEntity(r.URL.Query().Get("entity_type"))
	fields, err := h.fields.FindFields(r.Context(), claims.CompanyID, entityType)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"fields": fields})
}

// Create handles POST /api/custom-fields.
func (h *CustomFieldHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in fieldInput
	if !decodeBody(w, r, &in) {
		return
	}

	field := models.CustomField{CompanyID: claims.CompanyID}
	if msg := in.validate(&field); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := h.fields.InsertField(r.Context(), field)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Update handles PUT /api/custom-fields/{id}.
func (h *CustomFieldHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in fieldInput
	if !decodeBody(w, r, &in) {
		return
	}

	field := models.CustomField{CompanyID: claims.CompanyID}
	if msg := in.validate(&field); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.fields.UpdateField(r.Context(), claims.CompanyID, r.PathValue("id"), field); err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, field)
}

// Delete handles DELETE /api/custom-fields/{id}. Values cascade.
func (h *CustomFieldHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.fields.DeleteField(r.Context(), claims.CompanyID, r.PathValue("id")); err != nil {
		writeDBError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Field deleted")
}

// SetValue handles PUT /api/custom-fields/{id}/values/{entityID}: validates
// the submitted value against the field schema and upserts it.
func (h *CustomFieldHandler) SetValue(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	fieldID := r.PathValue("id")
	entityID := r.PathValue("entityID")

	fields, err := h.fields.FindFields(r.Context(), claims.CompanyID, "")
	if err != nil {
		writeDBError(w, err)
		return
	}
	var field *models.CustomField
	for i := range fields {
		if fields[i].ID.Hex() == fieldID {
			field = &fields[i]
			break
		}
	}
	if field == nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	var in struct {
		Value string `json:"value"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	res := validation.CustomFieldValue(*field, in.Value)
	if !res.IsValid {
		writeError(w, http.StatusBadRequest, res.Err)
		return
	}

	err = h.fields.UpsertValue(r.Context(), models.CustomFieldValue{
		CompanyID: claims.CompanyID,
		FieldID:   fieldID,
		EntityID:  entityID,
		Value:     res.Sanitized,
	})
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Value saved")
}

// ListValues handles GET /api/custom-field-values/{entityID}.
func (h *CustomFieldHandler) ListValues(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	values, err := h.fields.FindValuesByEntity(r.Context(), claims.CompanyID, r.PathValue("entityID"))
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"values": values})
}
