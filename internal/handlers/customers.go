package handlers

import (
	"net/http"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/db"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/middleware"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/validation"
)

// CustomerHandler handles staff customer management.
type CustomerHandler struct {
	customers db.CustomerCollection
}

// NewCustomerHandler creates a customer handler.
func NewCustomerHandler(customers db.CustomerCollection) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type customerInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
	Notes        string `json:"notes"`
}

func (in customerInput) validate(customer *models.Customer) string {
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

	customer.Name = name.Sanitized
	customer.Email = email.Sanitized
	customer.Phone = phone.Sanitized
	customer.Organization = validation.Sanitize(in.Organization)
	customer.Notes = validation.Sanitize(in.Notes)
	return ""
}

// List handles GET /api/customers.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	customers, err := h.customers.FindCustomers(r.Context(), claims.CompanyID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"customers": customers})
}

// Create handles POST /api/customers.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in customerInput
	if !decodeBody(w, r, &in) {
		return
	}

	customer := models.Customer{CompanyID: claims.CompanyID, IsActive: true}
	if msg := in.validate(&customer); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := h.customers.InsertCustomer(r.Context(), customer)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Get handles GET /api/customers/{id}.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	customer, err := h.customers.FindCustomerByID(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Update handles PUT /api/customers/{id}.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	customer, err := h.customers.FindCustomerByID(r.Context(), claims.CompanyID, r.PathValue("id"))
	if err != nil {
		writeDBError(w, err)
		return
	}

	var in customerInput
	if !decodeBody(w, r, &in) {
		return
	}
	if msg := in.validate(customer); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.customers.UpdateCustomer(r.Context(), claims.CompanyID, customer.ID.Hex(), *customer); err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Delete handles DELETE /api/customers/{id}. Customers are soft-disabled,
// never hard-deleted: their trip history must survive.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.customers.DeactivateCustomer(r.Context(), claims.CompanyID, r.PathValue("id")); err != nil {
		writeDBError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Customer deactivated")
}
