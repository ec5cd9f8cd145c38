package handlers

import (
	"net/http"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/db"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/middleware"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/validation"
)

// ExtrasHandler handles trip templates and saved report configurations.
type ExtrasHandler struct {
	templates db.TripTemplateCollection
	reports   db.ReportConfigurationCollection
}

// NewExtrasHandler creates an extras handler.
func NewExtrasHandler(templates db.TripTemplateCollection, reports db.ReportConfigurationCollection) *ExtrasHandler {
	return &ExtrasHandler{templates: templates, reports: reports}
}

// ---- trip templates ----

type templateInput struct {
	Name            string  `json:"name"`
	PickupLocation  string  `json:"pickup_location"`
	DropoffLocation string  `json:"dropoff_location"`
	Passengers      int     `json:"passengers"`
	TripRate        float64 `json:"trip_rate"`
	Notes           string  `json:"notes"`
}

func (in templateInput) validate(tpl *models.TripTemplate) string {
	name := validation.Name(in.Name)
	if !name.IsValid {
		return name.Err
	}
	pickup := validation.LocationText(in.PickupLocation)
	if !pickup.IsValid {
		return pickup.Err
	}
	dropoff := validation.LocationText(in.DropoffLocation)
	if !dropoff.IsValid {
		return dropoff.Err
	}
	passengers := validation.Passengers(in.Passengers)
	if !passengers.IsValid {
		return passengers.Err
	}

	tpl.Name = name.Sanitized
	tpl.PickupLocation = pickup.Sanitized
	tpl.DropoffLocation = dropoff.Sanitized
	tpl.Passengers = passengers.Value
	tpl.TripRate = in.TripRate
	tpl.Notes = validation.Sanitize(in.Notes)
	return ""
}

// ListTemplates handles GET /api/templates.
func (h *ExtrasHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	templates, err := h.templates.FindTemplates(r.Context(), claims.CompanyID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}

// CreateTemplate handles POST /api/templates.
func (h *ExtrasHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in templateInput
	if !decodeBody(w, r, &in) {
		return
	}

	tpl := models.TripTemplate{CompanyID: claims.CompanyID}
	if msg := in.validate(&tpl); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := h.templates.InsertTemplate(r.Context(), tpl)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// DeleteTemplate handles DELETE /api/templates/{id}.
func (h *ExtrasHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.templates.DeleteTemplate(r.Context(), claims.CompanyID, r.PathValue("id")); err != nil {
		writeDBError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Template deleted")
}

// ---- report configurations ----

type reportInput struct {
	Name    string            `json:"name"`
	Entity  string            `json:"entity"`
	Columns []string          `json:"columns"`
	Filters map[string]string `json:"filters"`
}

func (in reportInput) validate(rep *models.ReportConfiguration) string {
	name := validation.Name(in.Name)
	if !name.IsValid {
		return name.Err
	}
	switch in.Entity {
	case "trips", "drivers", "customers":
	default:
		return "entity must be trips, drivers, or customers"
	}
	if len(in.Columns) == 0 {
		return "at least one column is required"
	}

	rep.Name = name.Sanitized
	rep.Entity = in.Entity
	rep.Columns = in.Columns
	rep.Filters = in.Filters
	return ""
}

// ListReports handles GET /api/reports.
func (h *ExtrasHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	reports, err := h.reports.FindReports(r.Context(), claims.CompanyID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

// CreateReport handles POST /api/reports.
func (h *ExtrasHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in reportInput
	if !decodeBody(w, r, &in) {
		return
	}

	rep := models.ReportConfiguration{CompanyID: claims.CompanyID}
	if msg := in.validate(&rep); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := h.reports.InsertReport(r.Context(), rep)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// DeleteReport handles DELETE /api/reports/{id}.
func (h *ExtrasHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.reports.DeleteReport(r.Context(), claims.CompanyID, r.PathValue("id")); err != nil {
		writeDBError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Report deleted")
}
