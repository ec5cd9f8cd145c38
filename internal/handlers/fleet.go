package handlers

import (
	"net/http"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/db"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/middleware"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/validation"
)

// FleetHandler handles drivers, vehicles, and saved locations.
type FleetHandler struct {
	drivers   db.DriverCollection
	vehicles  db.VehicleCollection
	locations db.SavedLocationCollection
	fields    db.CustomFieldCollection
}

// NewFleetHandler creates a fleet handler.
func NewFleetHandler(drivers db.DriverCollection, vehicles db.VehicleCollection, locations db.SavedLocationCollection, fields db.CustomFieldCollection) *FleetHandler {
	return &FleetHandler{drivers: drivers, vehicles: vehicles, locations: locations, fields: fields}
}

// ---- drivers ----

type driverInput struct {
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	LicenseNumber string            `json:"license_number"`
	VehicleID     string            `json:"vehicle_id"`
	CustomFields  map[string]string `json:"custom_fields"`
}

func (in driverInput) validate(driver *models.Driver) string {
	name := validation.Name(in.Name)
	if !name.IsValid {
		return name.Err
	}
	email := validation.Email(in.Email)
	if !email.IsValid {
		return email.Err
	}
	phone := validation.Phone(in.Phone)
	if !phone.IsValid {
		return phone.Err
	}

	driver.Name = name.Sanitized
	driver.Email = email.Sanitized
	driver.Phone = phone.Sanitized
	driver.LicenseNumber = validation.Sanitize(in.LicenseNumber)
	driver.VehicleID = in.VehicleID
	return ""
}

// ListDrivers handles GET /api/drivers.
func (h *FleetHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	drivers, err := h.drivers.FindDrivers(r.Context(), claims.CompanyID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"drivers": drivers})
}

// CreateDriver handles POST /api/drivers.
func (h *FleetHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in driverInput
	if !decodeBody(w, r, &in) {
		return
	}

	driver := models.Driver{CompanyID: claims.CompanyID}
	if msg := in.validate(&driver); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if in.CustomFields == nil {
		in.CustomFields = map[string]string{}
	}
	if msg := validateCustomFields(r.Context(), h.fields, claims.CompanyID, models.EntityDriver, in.CustomFields); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	driver.CustomFields = in.CustomFields

	id, err := h.drivers.InsertDriver(r.Context(), driver)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// GetDriver handles GET /api/drivers/{id}.
func (h *FleetHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	driver, err := h.drivers.FindDriverByID(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, driver)
}

// UpdateDriver handles PUT /api/drivers/{id}.
func (h *FleetHandler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	driver, err := h.drivers.FindDriverByID(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}

	var in driverInput
	if !decodeBody(w, r, &in) {
		return
	}
	if msg := in.validate(driver); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if in.CustomFields == nil {
		in.CustomFields = map[string]string{}
	}
	if msg := validateCustomFields(r.Context(), h.fields, claims.CompanyID, models.EntityDriver, in.CustomFields); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	driver.CustomFields = in.CustomFields

	if err := h.drivers.UpdateDriver(r.Context(), claims.CompanyID, driver.ID.Hex(), *driver); err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, driver)
}

// DeleteDriver handles DELETE /api/drivers/{id}.
func (h *FleetHandler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.drivers.DeleteDriver(r.Context(), claims.CompanyID, r.PathValue("id")); err != nil {
		writeDBError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Driver deleted")
}

// ---- vehicles ----

type vehicleInput struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	LicensePlate string `json:"license_plate"`
	Capacity     int    `json:"capacity"`
	Status       string `json:"status"`
}

func (in vehicleInput) validate(vehicle *models.Vehicle) string {
	if in.Make == "" || in.Model == "" {
		return "make and model are required"
	}
	if in.Capacity < 1 || in.Capacity > 100 {
		return "capacity must be between 1 and 100"
	}
	if in.Status != "" && in.Status != "active" && in.Status != "inactive" {
		return "status must be active or inactive"
	}

	vehicle.Make = validation.Sanitize(in.Make)
	vehicle.Model = validation.Sanitize(in.Model)
	vehicle.Year = in.Year
	vehicle.LicensePlate = validation.Sanitize(in.LicensePlate)
	vehicle.Capacity = in.Capacity
	if in.Status == "" {
		vehicle.Status = "active"
	} else {
		vehicle.Status = in.Status
	}
	return ""
}

// ListVehicles handles GET /api/vehicles.
func (h *FleetHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	vehicles, err := h.vehicles.FindVehicles(r.Context(), claims.CompanyID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vehicles": vehicles})
}

// CreateVehicle handles POST /api/vehicles.
func (h *FleetHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in vehicleInput
	if !decodeBody(w, r, &in) {
		return
	}

	vehicle := models.Vehicle{CompanyID: claims.CompanyID}
	if msg := in.validate(&vehicle); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := h.vehicles.InsertVehicle(r.Context(), vehicle)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// UpdateVehicle handles PUT /api/vehicles/{id}.
func (h *FleetHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}

	var in vehicleInput
	if !decodeBody(w, r, &in) {
		return
	}
	if msg := in.validate(vehicle); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.vehicles.UpdateVehicle(r.Context(), claims.CompanyID, vehicle.ID.Hex(), *vehicle); err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// DeleteVehicle handles DELETE /api/vehicles/{id}.
func (h *FleetHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.vehicles.DeleteVehicle(r.Context(), claims.CompanyID, r.PathValue("id")); err != nil {
		writeDBError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Vehicle deleted")
}

// ---- saved locations ----

type locationInput struct {
	Name    string           `json:"name"`
	Address string           `json:"address"`
	Coords  *models.GeoPoint `json:"coords"`
}

func (in locationInput) validate(loc *models.SavedLocation) string {
	name := validation.Name(in.Name)
	if !name.IsValid {
		return name.Err
	}
	address := validation.LocationText(in.Address)
	if !address.IsValid {
		return address.Err
	}

	loc.Name = name.Sanitized
	loc.Address = address.Sanitized
	loc.Coords = in.Coords
	return ""
}

// ListLocations handles GET /api/locations.
func (h *FleetHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	locations, err := h.locations.FindLocations(r.Context(), claims.CompanyID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"locations": locations})
}

// CreateLocation handles POST /api/locations.
func (h *FleetHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in locationInput
	if !decodeBody(w, r, &in) {
		return
	}

	loc := models.SavedLocation{CompanyID: claims.CompanyID}
	if msg := in.validate(&loc); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := h.locations.InsertLocation(r.Context(), loc)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// UpdateLocation handles PUT /api/locations/{id}.
func (h *FleetHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in locationInput
	if !decodeBody(w, r, &in) {
		return
	}

	loc := models.SavedLocation{CompanyID: claims.CompanyID}
	if msg := in.validate(&loc); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.locations.UpdateLocation(r.Context(), claims.CompanyID, r.PathValue("id"), loc); err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// DeleteLocation handles DELETE /api/locations/{id}.
func (h *FleetHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.locations.DeleteLocation(r.Context(), claims.CompanyID, r.PathValue("id")); err != nil {
		writeDBError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Location deleted")
}
