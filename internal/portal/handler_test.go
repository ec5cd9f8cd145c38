package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
)

func newTestHandler(t *testing.T) (*Handler, *fixture) {
	t.Helper()
	f := newFixture(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHandler(f.service, f.auth, logger), f
}

func post(h *Handler, payload map[string]interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/portal", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandlerRejectsNonPost(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/portal", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandlerUnknownAction(t *testing.T) {
	h, _ := newTestHandler(t)

	w := post(h, map[string]interface{}{"action": "dropTables"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerMissingAction(t *testing.T) {
	h, _ := newTestHandler(t)

	w := post(h, map[string]interface{}{"company_id": "company-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerFindCustomer(t *testing.T) {
	h, f := newTestHandler(t)
	f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})

	w := post(h, map[string]interface{}{
		"action":     "findCustomer",
		"company_id": "company-1",
		"email":      "ada@example.com",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp FindCustomerResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, codeSentMessage, resp.Message)
	assert.NotEmpty(t, resp.CustomerID)
	assert.Len(t, resp.AccessCode, 6)
}

func TestHandlerEnvelopeCarriesSuccess(t *testing.T) {
	h, f := newTestHandler(t)
	f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})

	w := post(h, map[string]interface{}{
		"action":     "findCustomer",
		"company_id": "company-1",
		"email":      "ada@example.com",
	})
	var ok map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &ok)
	assert.Equal(t, true, ok["success"])
	assert.NotEmpty(t, ok["customer_id"])

	w = post(h, map[string]interface{}{"action": "dropTables"})
	var failed map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &failed)
	assert.Equal(t, false, failed["success"])
	assert.NotEmpty(t, failed["error"])
}

func TestHandlerFindCustomerMissIsGenericNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	w := post(h, map[string]interface{}{
		"action":     "findCustomer",
		"company_id": "company-1",
		"email":      "nobody@example.com",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestHandlerAuthenticatedActionRequiresToken(t *testing.T) {
	h, _ := newTestHandler(t)

	w := post(h, map[string]interface{}{"action": "getTrips"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerStaffTokenRejected(t *testing.T) {
	h, f := newTestHandler(t)

	user := &models.User{CompanyID: "company-1", Username: "manager", Role: models.RoleManager}
	staffToken, _ := f.auth.GenerateToken(user)

	w := post(h, map[string]interface{}{
		"action": "getTrips",
		"token":  staffToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerFullLoginAndTripsFlow(t *testing.T) {
	h, f := newTestHandler(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Name: "Ada", Email: "ada@example.com"})
	f.trips.InsertTrip(context.Background(), models.Trip{CompanyID: "company-1", CustomerID: ada.ID.Hex()})

	// request a code
	w := post(h, map[string]interface{}{
		"action":     "findCustomer",
		"company_id": "company-1",
		"email":      "ada@example.com",
	})
	var found FindCustomerResponse
	json.Unmarshal(w.Body.Bytes(), &found)

	// verify it
	w = post(h, map[string]interface{}{
		"action":     "verifyCode",
		"company_id": "company-1",
		"email":      "ada@example.com",
		"code":       found.AccessCode,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var verified VerifyCodeResponse
	json.Unmarshal(w.Body.Bytes(), &verified)
	assert.NotEmpty(t, verified.Token)

	// list trips with the session token
	w = post(h, map[string]interface{}{
		"action": "getTrips",
		"token":  verified.Token,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Trips []models.Trip `json:"trips"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Len(t, resp.Trips, 1)
}

func TestHandlerVerifyCodeWrongCode(t *testing.T) {
	h, f := newTestHandler(t)
	f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})

	w := post(h, map[string]interface{}{
		"action":     "verifyCode",
		"company_id": "company-1",
		"email":      "ada@example.com",
		"code":       "WRONG2",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerPublicBooking(t *testing.T) {
	h, f := newTestHandler(t)

	w := post(h, map[string]interface{}{
		"action":           "createBooking",
		"company_id":       "company-1",
		"name":             "Grace Hopper",
		"email":            "grace@example.com",
		"pickup_time":      "2099-06-01",
		"pickup_location":  "123 Main St",
		"dropoff_location": "SFO Terminal 2",
		"passengers":       2,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var trip models.Trip
	json.Unmarshal(w.Body.Bytes(), &trip)
	assert.NotEmpty(t, trip.BookingRef)

	customer, err := f.customers.FindCustomerByContact(context.Background(), "company-1", "grace@example.com", "")
	assert.NoError(t, err)
	assert.Equal(t, customer.ID.Hex(), trip.CustomerID)
}

func TestHandlerBookingBadTokenRejected(t *testing.T) {
	h, _ := newTestHandler(t)

	// a token, once sent, must be valid even though bookings allow none
	w := post(h, map[string]interface{}{
		"action":           "createBooking",
		"token":            "not-a-token",
		"company_id":       "company-1",
		"pickup_time":      "2099-06-01",
		"pickup_location":  "123 Main St",
		"dropoff_location": "SFO Terminal 2",
		"passengers":       1,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerOwnershipFailureLooksLikeNotFound(t *testing.T) {
	h, f := newTestHandler(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	tripID, _ := f.trips.InsertTrip(context.Background(), models.Trip{
		CompanyID:  "company-1",
		CustomerID: "someone-else",
		Status:     models.StatusAssigned,
	})

	token, _ := f.auth.GeneratePortalToken(&ada)

	w := post(h, map[string]interface{}{
		"action":       "createModificationRequest",
		"token":        token,
		"trip_id":      tripID,
		"request_type": "other",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
