package handlers

import (
	"net/http"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/db"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/middleware"
)

// FeedbackHandler gives staff visibility into customer-submitted change
// requests and trip ratings. Submission happens on the portal side.
type FeedbackHandler struct {
	requests db.ModificationRequestCollection
	ratings  db.TripRatingCollection
}

// NewFeedbackHandler creates a feedback handler.
func NewFeedbackHandler(requests db.ModificationRequestCollection, ratings db.TripRatingCollection) *FeedbackHandler {
	return &FeedbackHandler{requests: requests, ratings: ratings}
}

// ListRequests handles GET /api/modification-requests. An optional
// customer_id query param narrows to one customer.
func (h *FeedbackHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	customerID := r.URL.Query().Get("customer_id")
	var (
		requests interface{}
		err      error
	)
	if customerID != "" {
		requests, err = h.requests.FindRequestsByCustomer(r.Context(), claims.CompanyID, customerID)
	} else {
		requests, err = h.requests.FindRequests(r.Context(), claims.CompanyID)
	}
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// ReviewRequest handles POST /api/modification-requests/{id}/review. The
// request stays on record; reviewing only flips its status so dispatchers
// can tell what still needs a call back.
func (h *FeedbackHandler) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.requests.MarkReviewed(r.Context(), claims.CompanyID, r.PathValue("id")); err != nil {
		writeDBError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Request marked as reviewed")
}

// ListRatings handles GET /api/ratings.
func (h *FeedbackHandler) ListRatings(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	ratings, err := h.ratings.FindRatings(r.Context(), claims.CompanyID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ratings": ratings})
}
