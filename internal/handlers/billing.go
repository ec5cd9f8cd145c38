package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/billing"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/middleware"
)

// BillingHandler creates hosted payment sessions for plan management.
// Routes using it are admin-gated by the middleware.
type BillingHandler struct {
	client *billing.Client
	log    *logrus.Logger
}

// NewBillingHandler creates a billing handler.
func NewBillingHandler(client *billing.Client, logger *logrus.Logger) *BillingHandler {
	return &BillingHandler{client: client, log: logger}
}

// Checkout handles POST /api/billing/checkout.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var in struct {
		PlanTier string `json:"plan_tier"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.PlanTier != "standard" && in.PlanTier != "premium" {
		writeError(w, http.StatusBadRequest, "plan_tier must be standard or premium")
		return
	}

	url, err := h.client.CheckoutURL(r.Context(), claims.CompanyID, in.PlanTier)
	if err != nil {
		h.writeBillingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Portal handles POST /api/billing/portal.
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	url, err := h.client.PortalURL(r.Context(), claims.CompanyID)
	if err != nil {
		h.writeBillingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *BillingHandler) writeBillingError(w http.ResponseWriter, err error) {
	if errors.Is(err, billing.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "Billing is not configured")
		return
	}
	h.log.WithError(err).Error("Billing session request failed")
	writeError(w, http.StatusBadGateway, "Payment provider unavailable")
}
