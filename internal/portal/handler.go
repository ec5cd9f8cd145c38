package portal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/access"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/auth"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/db"
)

// Handler serves the portal's single action-dispatch endpoint.
type Handler struct {
	service *Service
	auth    *auth.Service
	log     *logrus.Logger
}

// NewHandler creates a portal handler.
func NewHandler(service *Service, authService *auth.Service, logger *logrus.Logger) *Handler {
	return &Handler{service: service, auth: authService, log: logger}
}

// ServeHTTP handles POST /api/portal. Every request carries an action field
// selecting the operation; the remaining fields are decoded per action.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var env struct {
		Action string `json:"action"`
		Token  string `json:"token"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Action == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}

	switch env.Action {
	case "findCustomer":
		h.findCustomer(w, r, body)
	case "verifyCode":
		h.verifyCode(w, r, body)
	case "getTrips":
		h.withClaims(w, r, env.Token, body, h.getTrips)
	case "createModificationRequest":
		h.withClaims(w, r, env.Token, body, h.createModificationRequest)
	case "createRating":
		h.withClaims(w, r, env.Token, body, h.createRating)
	case "createBooking":
		h.createBooking(w, r, env.Token, body)
	case "getTripLocation":
		h.withClaims(w, r, env.Token, body, h.getTripLocation)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

type claimsHandler func(w http.ResponseWriter, r *http.Request, claims *auth.PortalClaims, body json.RawMessage)

// withClaims validates the portal token before dispatching to an
// authenticated action.
func (h *Handler) withClaims(w http.ResponseWriter, r *http.Request, token string, body json.RawMessage, next claimsHandler) {
	if token == "" {
		token = r.Header.Get("Authorization")
	}
	claims, err := h.auth.ValidatePortalToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}
	next(w, r, claims, body)
}

func (h *Handler) findCustomer(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	var req FindCustomerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.FindCustomer(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) verifyCode(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	var req VerifyCodeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.VerifyCode(r.Context(), req)
	if err != nil {
		if errors.Is(err, access.ErrInvalidCode) {
			writeError(w, http.StatusUnauthorized, access.ErrInvalidCode.Error())
			return
		}
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getTrips(w http.ResponseWriter, r *http.Request, claims *auth.PortalClaims, _ json.RawMessage) {
	trips, err := h.service.GetTrips(r.Context(), claims)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trips": trips})
}

func (h *Handler) createModificationRequest(w http.ResponseWriter, r *http.Request, claims *auth.PortalClaims, body json.RawMessage) {
	var input ModificationRequestInput
	if err := json.Unmarshal(body, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.service.CreateModificationRequest(r.Context(), claims, input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) createRating(w http.ResponseWriter, r *http.Request, claims *auth.PortalClaims, body json.RawMessage) {
	var input RatingInput
	if err := json.Unmarshal(body, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.CreateRating(r.Context(), claims, input); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "rating recorded"})
}

// createBooking accepts both session-backed and public submissions: a token,
// if sent, must be valid and binds the booking to its customer.
func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request, token string, body json.RawMessage) {
	if token == "" {
		token = r.Header.Get("Authorization")
	}
	var claims *auth.PortalClaims
	if token != "" {
		var err error
		claims, err = h.auth.ValidatePortalToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
	}

	var input BookingInput
	if err := json.Unmarshal(body, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trip, err := h.service.CreateBooking(r.Context(), claims, input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

func (h *Handler) getTripLocation(w http.ResponseWriter, r *http.Request, claims *auth.PortalClaims, body json.RawMessage) {
	var input struct {
		TripID string `json:"trip_id"`
	}
	if err := json.Unmarshal(body, &input); err != nil || input.TripID == "" {
		writeError(w, http.StatusBadRequest, "trip_id is required")
		return
	}

	loc, err := h.service.GetTripLocation(r.Context(), claims, input.TripID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr *ErrValidation
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrInvalidID):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.log.WithField("error", err.Error()).Error("Portal request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON writes the portal response envelope: the payload's fields plus
// a success flag derived from the status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	envelope := make(map[string]interface{})
	if v != nil {
		if raw, err := json.Marshal(v); err == nil {
			json.Unmarshal(raw, &envelope)
		}
	}
	envelope["success"] = status < http.StatusBadRequest

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
