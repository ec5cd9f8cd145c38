package portal

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/access"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/auth"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/db"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/notify"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/trips"
)

// ---- in-memory fakes ----

type fakeCustomers struct {
	customers map[string]models.Customer
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{customers: make(map[string]models.Customer)}
}

func (f *fakeCustomers) add(customer models.Customer) models.Customer {
	customer.ID = primitive.NewObjectID()
	customer.IsActive = true
	f.customers[customer.ID.Hex()] = customer
	return customer
}

func (f *fakeCustomers) InsertCustomer(ctx context.Context, customer models.Customer) (string, error) {
	return f.add(customer).ID.Hex(), nil
}

func (f *fakeCustomers) FindCustomerByID(ctx context.Context, companyID, id string) (*models.Customer, error) {
	c, ok := f.customers[id]
	if !ok || c.CompanyID != companyID {
		return nil, db.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCustomers) FindCustomerByContact(ctx context.Context, companyID, email, phone string) (*models.Customer, error) {
	if email == "" && phone == "" {
		return nil, db.ErrNotFound
	}
	for _, c := range f.customers {
		if c.CompanyID != companyID || !c.IsActive {
			continue
		}
		if (email != "" && c.Email == email) || (phone != "" && c.Phone == phone) {
			return &c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeCustomers) FindCustomers(ctx context.Context, companyID string) ([]models.Customer, error) {
	return nil, nil
}

func (f *fakeCustomers) UpdateCustomer(ctx context.Context, companyID, id string, customer models.Customer) error {
	return nil
}

func (f *fakeCustomers) DeactivateCustomer(ctx context.Context, companyID, id string) error {
	c, ok := f.customers[id]
	if !ok || c.CompanyID != companyID {
		return db.ErrNotFound
	}
	c.IsActive = false
	f.customers[id] = c
	return nil
}

type fakeTrips struct {
	trips map[string]models.Trip
}

func newFakeTrips() *fakeTrips {
	return &fakeTrips{trips: make(map[string]models.Trip)}
}

func (f *fakeTrips) InsertTrip(ctx context.Context, trip models.Trip) (string, error) {
	trip.ID = primitive.NewObjectID()
	if trip.Status == "" {
		trip.Status = models.StatusUnassigned
	}
	f.trips[trip.ID.Hex()] = trip
	return trip.ID.Hex(), nil
}

func (f *fakeTrips) FindTripByID(ctx context.Context, companyID, id string) (*models.Trip, error) {
	t, ok := f.trips[id]
	if !ok || t.CompanyID != companyID {
		return nil, db.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTrips) FindTrips(ctx context.Context, companyID string, filter db.TripFilter) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range f.trips {
		if t.CompanyID != companyID {
			continue
		}
		if filter.CustomerID != "" && t.CustomerID != filter.CustomerID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTrips) FindChildTrips(ctx context.Context, companyID, parentTripID string) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range f.trips {
		if t.CompanyID == companyID && t.ParentTripID == parentTripID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTrips) UpdateTrip(ctx context.Context, companyID, id string, trip models.Trip) error {
	existing, ok := f.trips[id]
	if !ok || existing.CompanyID != companyID {
		return db.ErrNotFound
	}
	trip.ID = existing.ID
	f.trips[id] = trip
	return nil
}

func (f *fakeTrips) DeleteTrip(ctx context.Context, companyID, id string) error {
	delete(f.trips, id)
	return nil
}

type fakeCompanies struct{}

func (fakeCompanies) InsertCompany(ctx context.Context, company models.Company) (string, error) {
	return "", nil
}

func (fakeCompanies) FindCompanyByID(ctx context.Context, id string) (*models.Company, error) {
	if id != "company-1" && id != "company-2" {
		return nil, db.ErrNotFound
	}
	return &models.Company{PlanTier: "free", ContactEmail: "dispatch@example.com"}, nil
}

func (fakeCompanies) UpdateCompanyPlan(ctx context.Context, id, planTier string) error {
	return nil
}

type fakeModReqs struct {
	requests []models.ModificationRequest
}

func (f *fakeModReqs) InsertRequest(ctx context.Context, req models.ModificationRequest) (string, error) {
	req.ID = primitive.NewObjectID()
	req.Status = "pending"
	f.requests = append(f.requests, req)
	return req.ID.Hex(), nil
}

func (f *fakeModReqs) FindRequests(ctx context.Context, companyID string) ([]models.ModificationRequest, error) {
	return f.requests, nil
}

func (f *fakeModReqs) FindRequestsByCustomer(ctx context.Context, companyID, customerID string) ([]models.ModificationRequest, error) {
	return f.requests, nil
}

func (f *fakeModReqs) MarkReviewed(ctx context.Context, companyID, id string) error {
	return nil
}

type fakeRatings struct {
	ratings map[string]models.TripRating
}

func newFakeRatings() *fakeRatings {
	return &fakeRatings{ratings: make(map[string]models.TripRating)}
}

func (f *fakeRatings) UpsertRating(ctx context.Context, rating models.TripRating) error {
	f.ratings[rating.CustomerID+"/"+rating.TripID] = rating
	return nil
}

func (f *fakeRatings) FindRatings(ctx context.Context, companyID string) ([]models.TripRating, error) {
	return nil, nil
}

func (f *fakeRatings) FindRatingByTrip(ctx context.Context, companyID, customerID, tripID string) (*models.TripRating, error) {
	r, ok := f.ratings[customerID+"/"+tripID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &r, nil
}

type fakeLocations struct {
	point *models.GeoPoint
	err   error
}

func (f *fakeLocations) LatestPosition(ctx context.Context, companyID, driverID string) (*models.GeoPoint, error) {
	return f.point, f.err
}

// ---- fixture ----

type fixture struct {
	service   *Service
	customers *fakeCustomers
	trips     *fakeTrips
	modReqs   *fakeModReqs
	ratings   *fakeRatings
	auth      *auth.Service
	locations *fakeLocations
	nowFn     func() time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	authService, err := auth.NewService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("auth.NewService: %v", err)
	}

	customers := newFakeCustomers()
	tripStore := newFakeTrips()
	modReqs := &fakeModReqs{}
	ratings := newFakeRatings()
	locations := &fakeLocations{}

	tripSvc := trips.NewService(tripStore, fakeCompanies{}, locations, nil, logger)

	f := &fixture{
		customers: customers,
		trips:     tripStore,
		modReqs:   modReqs,
		ratings:   ratings,
		auth:      authService,
		locations: locations,
		nowFn:     time.Now,
	}

	f.service = NewService(Deps{
		Customers: customers,
		Companies: fakeCompanies{},
		Trips:     tripStore,
		ModReqs:   modReqs,
		Ratings:   ratings,
		TripSvc:   tripSvc,
		Access:    access.NewService(logger),
		Auth:      authService,
		Mailer:    notify.NewSender("", "", "", logger),
		Locations: locations,
		EchoCode:  true,
		Now:       func() time.Time { return f.nowFn() },
		Logger:    logger,
	})

	return f
}

func (f *fixture) claimsFor(t *testing.T, customer models.Customer) *auth.PortalClaims {
	t.Helper()
	token, err := f.auth.GeneratePortalToken(&customer)
	if err != nil {
		t.Fatalf("GeneratePortalToken: %v", err)
	}
	claims, err := f.auth.ValidatePortalToken(token)
	if err != nil {
		t.Fatalf("ValidatePortalToken: %v", err)
	}
	return claims
}

// ---- tests ----

func TestFindCustomerUnknownContactGenericNotFound(t *testing.T) {
	f := newFixture(t)

	// same generic miss whether the email or the phone is wrong
	for _, req := range []FindCustomerRequest{
		{CompanyID: "company-1", Email: "nobody@example.com"},
		{CompanyID: "company-1", Phone: "+1 (555) 000-0000"},
	} {
		_, err := f.service.FindCustomer(context.Background(), req)
		assert.Equal(t, db.ErrNotFound, err)
	}
}

func TestFindCustomerIssuesCode(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Name: "Ada", Email: "ada@example.com"})

	resp, err := f.service.FindCustomer(context.Background(), FindCustomerRequest{
		CompanyID: "company-1",
		Email:     "ada@example.com",
	})
	assert.NoError(t, err)
	assert.Equal(t, codeSentMessage, resp.Message)
	assert.Equal(t, ada.ID.Hex(), resp.CustomerID)
	// echo mode is on in tests
	assert.Len(t, resp.AccessCode, 6)
	assert.NotNil(t, resp.ExpiresAt)
}

func TestFindCustomerRequiresContact(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.FindCustomer(context.Background(), FindCustomerRequest{CompanyID: "company-1"})
	var verr *ErrValidation
	assert.ErrorAs(t, err, &verr)
}

func TestVerifyCodeFlow(t *testing.T) {
	f := newFixture(t)
	f.customers.add(models.Customer{CompanyID: "company-1", Name: "Ada", Email: "ada@example.com"})

	found, err := f.service.FindCustomer(context.Background(), FindCustomerRequest{
		CompanyID: "company-1",
		Email:     "ada@example.com",
	})
	assert.NoError(t, err)

	resp, err := f.service.VerifyCode(context.Background(), VerifyCodeRequest{
		CompanyID: "company-1",
		Email:     "ada@example.com",
		Code:      found.AccessCode,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Ada", resp.CustomerName)

	claims, err := f.auth.ValidatePortalToken(resp.Token)
	assert.NoError(t, err)
	assert.Equal(t, "company-1", claims.CompanyID)
}

func TestVerifyCodeLowercaseAccepted(t *testing.T) {
	f := newFixture(t)
	f.customers.add(models.Customer{CompanyID: "company-1", Name: "Ada", Email: "ada@example.com"})

	found, err := f.service.FindCustomer(context.Background(), FindCustomerRequest{
		CompanyID: "company-1",
		Email:     "ada@example.com",
	})
	assert.NoError(t, err)

	resp, err := f.service.VerifyCode(context.Background(), VerifyCodeRequest{
		CompanyID: "company-1",
		Email:     "ada@example.com",
		Code:      strings.ToLower(found.AccessCode),
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestVerifyCodeWrongCode(t *testing.T) {
	f := newFixture(t)
	f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})

	f.service.FindCustomer(context.Background(), FindCustomerRequest{
		CompanyID: "company-1",
		Email:     "ada@example.com",
	})

	_, err := f.service.VerifyCode(context.Background(), VerifyCodeRequest{
		CompanyID: "company-1",
		Email:     "ada@example.com",
		Code:      "WRONG2",
	})
	assert.Equal(t, access.ErrInvalidCode, err)
}

func TestVerifyCodeByCustomerID(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Name: "Ada", Email: "ada@example.com"})

	found, err := f.service.FindCustomer(context.Background(), FindCustomerRequest{
		CompanyID: "company-1",
		Email:     "ada@example.com",
	})
	assert.NoError(t, err)

	resp, err := f.service.VerifyCode(context.Background(), VerifyCodeRequest{
		CompanyID:  "company-1",
		CustomerID: ada.ID.Hex(),
		Code:       found.AccessCode,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	// single use
	_, err = f.service.VerifyCode(context.Background(), VerifyCodeRequest{
		CompanyID:  "company-1",
		CustomerID: ada.ID.Hex(),
		Code:       found.AccessCode,
	})
	assert.Equal(t, access.ErrInvalidCode, err)
}

func TestVerifyCodeWrongCustomerRejected(t *testing.T) {
	f := newFixture(t)
	f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	bob := f.customers.add(models.Customer{CompanyID: "company-1", Email: "bob@example.com"})

	found, err := f.service.FindCustomer(context.Background(), FindCustomerRequest{
		CompanyID: "company-1",
		Email:     "ada@example.com",
	})
	assert.NoError(t, err)

	// ada's code never authenticates bob
	_, err = f.service.VerifyCode(context.Background(), VerifyCodeRequest{
		CompanyID:  "company-1",
		CustomerID: bob.ID.Hex(),
		Code:       found.AccessCode,
	})
	assert.Equal(t, access.ErrInvalidCode, err)
}

func TestVerifyCodeUnknownCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.VerifyCode(context.Background(), VerifyCodeRequest{
		CompanyID: "company-1",
		Email:     "nobody@example.com",
		Code:      "ABC234",
	})
	assert.Equal(t, access.ErrInvalidCode, err)
}

func TestGetTripsReturnsOnlyOwnTrips(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	f.trips.InsertTrip(context.Background(), models.Trip{CompanyID: "company-1", CustomerID: ada.ID.Hex()})
	f.trips.InsertTrip(context.Background(), models.Trip{CompanyID: "company-1", CustomerID: "someone-else"})
	f.trips.InsertTrip(context.Background(), models.Trip{CompanyID: "company-2", CustomerID: ada.ID.Hex()})

	result, err := f.service.GetTrips(context.Background(), claims)
	assert.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestCreateModificationRequest(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	tripID, _ := f.trips.InsertTrip(context.Background(), models.Trip{
		CompanyID:  "company-1",
		CustomerID: ada.ID.Hex(),
		Status:     models.StatusAssigned,
	})

	id, err := f.service.CreateModificationRequest(context.Background(), claims, ModificationRequestInput{
		TripID:           tripID,
		RequestType:      models.ModifyDateTime,
		RequestedChanges: map[string]string{"pickup_time": "2025-07-01T10:00"},
		Reason:           "meeting moved",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, f.modReqs.requests, 1)
	assert.Equal(t, "pending", f.modReqs.requests[0].Status)
}

func TestCreateModificationRequestOwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	// another customer's trip in the same company
	tripID, _ := f.trips.InsertTrip(context.Background(), models.Trip{
		CompanyID:  "company-1",
		CustomerID: "someone-else",
		Status:     models.StatusAssigned,
	})

	_, err := f.service.CreateModificationRequest(context.Background(), claims, ModificationRequestInput{
		TripID:      tripID,
		RequestType: models.ModifyOther,
	})
	assert.Equal(t, db.ErrNotFound, err)
}

func TestCreateModificationRequestCompletedTripRejected(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	tripID, _ := f.trips.InsertTrip(context.Background(), models.Trip{
		CompanyID:  "company-1",
		CustomerID: ada.ID.Hex(),
		Status:     models.StatusCompleted,
	})

	_, err := f.service.CreateModificationRequest(context.Background(), claims, ModificationRequestInput{
		TripID:      tripID,
		RequestType: models.ModifyOther,
	})
	var verr *ErrValidation
	assert.ErrorAs(t, err, &verr)
}

func TestCreateRating(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	tripID, _ := f.trips.InsertTrip(context.Background(), models.Trip{
		CompanyID:  "company-1",
		CustomerID: ada.ID.Hex(),
		Status:     models.StatusCompleted,
	})

	err := f.service.CreateRating(context.Background(), claims, RatingInput{
		TripID: tripID,
		Rating: 5,
		Review: "great <script>ride</script>",
	})
	assert.NoError(t, err)

	stored, err := f.ratings.FindRatingByTrip(context.Background(), "company-1", ada.ID.Hex(), tripID)
	assert.NoError(t, err)
	assert.Equal(t, 5, stored.Rating)
	assert.NotContains(t, stored.Review, "<")

	// resubmission overwrites
	err = f.service.CreateRating(context.Background(), claims, RatingInput{TripID: tripID, Rating: 3})
	assert.NoError(t, err)
	stored, _ = f.ratings.FindRatingByTrip(context.Background(), "company-1", ada.ID.Hex(), tripID)
	assert.Equal(t, 3, stored.Rating)
}

func TestCreateRatingRequiresCompletedTrip(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	tripID, _ := f.trips.InsertTrip(context.Background(), models.Trip{
		CompanyID:  "company-1",
		CustomerID: ada.ID.Hex(),
		Status:     models.StatusInProgress,
	})

	err := f.service.CreateRating(context.Background(), claims, RatingInput{TripID: tripID, Rating: 4})
	var verr *ErrValidation
	assert.ErrorAs(t, err, &verr)
}

func TestCreateRatingBounds(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	for _, rating := range []int{0, 6, -1} {
		err := f.service.CreateRating(context.Background(), claims, RatingInput{TripID: "any", Rating: rating})
		var verr *ErrValidation
		assert.ErrorAs(t, err, &verr, "rating %d", rating)
	}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	pickup := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	trip, err := f.service.CreateBooking(context.Background(), claims, BookingInput{
		PickupTime:      pickup,
		PickupLocation:  "123 Main St",
		DropoffLocation: "SFO Terminal 2",
		Passengers:      float64(2), // as decoded from JSON
		FlightNumber:    "ua100",
	})
	assert.NoError(t, err)
	assert.Equal(t, ada.ID.Hex(), trip.CustomerID)
	assert.Equal(t, models.StatusUnassigned, trip.Status)
	assert.Equal(t, "UA100", trip.FlightNumber)
	assert.NotEmpty(t, trip.BookingRef)
}

func TestCreateBookingInvalidPassengers(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	pickup := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	_, err := f.service.CreateBooking(context.Background(), claims, BookingInput{
		PickupTime:      pickup,
		PickupLocation:  "123 Main St",
		DropoffLocation: "SFO Terminal 2",
		Passengers:      "abc",
	})
	var verr *ErrValidation
	assert.ErrorAs(t, err, &verr)
}

func TestCreateBookingRecurring(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	pickup := time.Now().AddDate(0, 0, 7)
	end := pickup.AddDate(0, 0, 21)

	trip, err := f.service.CreateBooking(context.Background(), claims, BookingInput{
		PickupTime:       pickup.Format("2006-01-02"),
		PickupLocation:   "123 Main St",
		DropoffLocation:  "Office Park",
		Passengers:       1,
		IsRecurring:      true,
		RecurringPattern: "weekly",
		RecurringEndDate: end.Format("2006-01-02"),
	})
	assert.NoError(t, err)
	assert.True(t, trip.IsRecurring)

	children, _ := f.trips.FindChildTrips(context.Background(), "company-1", trip.ID.Hex())
	assert.Len(t, children, 3)
	for _, child := range children {
		assert.Equal(t, ada.ID.Hex(), child.CustomerID)
	}
}

func TestCreateBookingPublicRegistersCustomer(t *testing.T) {
	f := newFixture(t)

	pickup := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	trip, err := f.service.CreateBooking(context.Background(), nil, BookingInput{
		CompanyID:       "company-1",
		Name:            "Grace Hopper",
		Email:           "Grace@Example.com",
		PickupTime:      pickup,
		PickupLocation:  "123 Main St",
		DropoffLocation: "SFO Terminal 2",
		Passengers:      2,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusUnassigned, trip.Status)
	assert.Equal(t, "company-1", trip.CompanyID)

	// contact is registered, email lowercased by sanitization
	customer, err := f.customers.FindCustomerByContact(context.Background(), "company-1", "grace@example.com", "")
	assert.NoError(t, err)
	assert.Equal(t, "Grace Hopper", customer.Name)
	assert.Equal(t, customer.ID.Hex(), trip.CustomerID)
}

func TestCreateBookingPublicMatchesExistingCustomer(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Name: "Ada", Email: "ada@example.com"})

	pickup := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	trip, err := f.service.CreateBooking(context.Background(), nil, BookingInput{
		CompanyID:       "company-1",
		Name:            "Ada Lovelace",
		Email:           "ada@example.com",
		PickupTime:      pickup,
		PickupLocation:  "123 Main St",
		DropoffLocation: "SFO Terminal 2",
		Passengers:      1,
	})
	assert.NoError(t, err)
	assert.Equal(t, ada.ID.Hex(), trip.CustomerID)
	assert.Len(t, f.customers.customers, 1)
}

func TestCreateBookingPublicRequiresContact(t *testing.T) {
	f := newFixture(t)

	pickup := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	_, err := f.service.CreateBooking(context.Background(), nil, BookingInput{
		CompanyID:       "company-1",
		Name:            "Grace Hopper",
		PickupTime:      pickup,
		PickupLocation:  "123 Main St",
		DropoffLocation: "SFO Terminal 2",
		Passengers:      1,
	})
	var verr *ErrValidation
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "contact", verr.Field)
}

func TestCreateBookingPublicUnknownCompany(t *testing.T) {
	f := newFixture(t)

	pickup := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	_, err := f.service.CreateBooking(context.Background(), nil, BookingInput{
		CompanyID:       "company-999",
		Name:            "Grace Hopper",
		Email:           "grace@example.com",
		PickupTime:      pickup,
		PickupLocation:  "123 Main St",
		DropoffLocation: "SFO Terminal 2",
		Passengers:      1,
	})
	var verr *ErrValidation
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "company_id", verr.Field)
}

func TestGetTripLocation(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	tripID, _ := f.trips.InsertTrip(context.Background(), models.Trip{
		CompanyID:  "company-1",
		CustomerID: ada.ID.Hex(),
		DriverID:   "driver-1",
		Status:     models.StatusInProgress,
	})

	f.locations.point = &models.GeoPoint{Lat: 40.7, Lng: -74.0}

	loc, err := f.service.GetTripLocation(context.Background(), claims, tripID)
	assert.NoError(t, err)
	assert.NotNil(t, loc.Position)
	assert.Equal(t, 40.7, loc.Position.Lat)
}

func TestGetTripLocationTrackerOffline(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	tripID, _ := f.trips.InsertTrip(context.Background(), models.Trip{
		CompanyID:  "company-1",
		CustomerID: ada.ID.Hex(),
		DriverID:   "driver-1",
		Status:     models.StatusInProgress,
	})

	f.locations.err = db.ErrNotFound

	loc, err := f.service.GetTripLocation(context.Background(), claims, tripID)
	assert.NoError(t, err)
	assert.Nil(t, loc.Position)
}

func TestGetTripLocationNoPositionRecorded(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	tripID, _ := f.trips.InsertTrip(context.Background(), models.Trip{
		CompanyID:  "company-1",
		CustomerID: ada.ID.Hex(),
		DriverID:   "driver-1",
		Status:     models.StatusInProgress,
	})

	// tracker connected but nothing received yet: no error, no position
	loc, err := f.service.GetTripLocation(context.Background(), claims, tripID)
	assert.NoError(t, err)
	assert.Nil(t, loc.Position)
	assert.Empty(t, loc.Address)
}

func TestCreateBookingUsesInjectedClock(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	frozen := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	f.nowFn = func() time.Time { return frozen }

	trip, err := f.service.CreateBooking(context.Background(), claims, BookingInput{
		PickupTime:      "2030-01-02",
		PickupLocation:  "123 Main St",
		DropoffLocation: "SFO Terminal 2",
		Passengers:      1,
	})
	assert.NoError(t, err)
	assert.Equal(t, 2030, trip.PickupTime.Year())

	// the day before the frozen clock is in the past
	_, err = f.service.CreateBooking(context.Background(), claims, BookingInput{
		PickupTime:      "2029-12-31",
		PickupLocation:  "123 Main St",
		DropoffLocation: "SFO Terminal 2",
		Passengers:      1,
	})
	var verr *ErrValidation
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "pickup_time", verr.Field)
}

func TestGetTripLocationRequiresInProgress(t *testing.T) {
	f := newFixture(t)
	ada := f.customers.add(models.Customer{CompanyID: "company-1", Email: "ada@example.com"})
	claims := f.claimsFor(t, ada)

	tripID, _ := f.trips.InsertTrip(context.Background(), models.Trip{
		CompanyID:  "company-1",
		CustomerID: ada.ID.Hex(),
		Status:     models.StatusAssigned,
	})

	_, err := f.service.GetTripLocation(context.Background(), claims, tripID)
	var verr *ErrValidation
	assert.ErrorAs(t, err, &verr)
}
