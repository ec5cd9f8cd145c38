// Package portal implements the passwordless customer portal: access-code
// login, trip history, live trip location, bookings, modification requests,
// and ratings. Authenticated operations are scoped to the customer identified
// by the portal token, never a client-supplied customer id; public bookings
// resolve their customer by contact match instead.
package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/access"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/auth"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/db"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/notify"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/trips"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/validation"
)

// codeSentMessage confirms issuance without echoing the code itself.
const codeSentMessage = "An access code has been sent."

// ErrValidation wraps a field-level validation failure for 400 responses.
type ErrValidation struct {
	Field  string
	Reason string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// AddressResolver turns coordinates into a display address.
type AddressResolver interface {
	ReverseGeocode(ctx context.Context, point models.GeoPoint) (string, error)
}

// Service implements the portal operations.
type Service struct {
	customers db.CustomerCollection
	companies db.CompanyCollection
	trips     db.TripCollection
	modReqs   db.ModificationRequestCollection
	ratings   db.TripRatingCollection

	tripSvc   *trips.Service
	access    *access.Service
	auth      *auth.Service
	mailer    *notify.Sender
	locations trips.LocationProvider
	geocoder  AddressResolver

	// echoCode returns freshly issued access codes in the findCustomer
	// response. Testing environments only; production keeps it off.
	echoCode bool
	now      func() time.Time
	log      *logrus.Logger
}

// Deps bundles the service's collaborators.
type Deps struct {
	Customers db.CustomerCollection
	Companies db.CompanyCollection
	Trips     db.TripCollection
	ModReqs   db.ModificationRequestCollection
	Ratings   db.TripRatingCollection
	TripSvc   *trips.Service
	Access    *access.Service
	Auth      *auth.Service
	Mailer    *notify.Sender
	Locations trips.LocationProvider
	Geocoder  AddressResolver
	EchoCode  bool
	Now       func() time.Time
	Logger    *logrus.Logger
}

// NewService creates a portal service.
func NewService(deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		customers: deps.Customers,
		companies: deps.Companies,
		trips:     deps.Trips,
		modReqs:   deps.ModReqs,
		ratings:   deps.Ratings,
		tripSvc:   deps.TripSvc,
		access:    deps.Access,
		auth:      deps.Auth,
		mailer:    deps.Mailer,
		locations: deps.Locations,
		geocoder:  deps.Geocoder,
		echoCode:  deps.EchoCode,
		now:       deps.Now,
		log:       deps.Logger,
	}
}

// FindCustomerRequest identifies a customer by contact details.
type FindCustomerRequest struct {
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// FindCustomerResponse identifies the matched customer for the follow-up
// verify call. AccessCode is echoed in testing configurations only.
type FindCustomerResponse struct {
	Message    string     `json:"message"`
	CustomerID string     `json:"customer_id"`
	AccessCode string     `json:"access_code,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// FindCustomer issues an access code to the customer matching the contact
// details and emails it to them. A miss is one generic not-found regardless
// of which contact field missed, so the portal cannot be used to probe
// whether a particular email or phone is on file.
func (s *Service) FindCustomer(ctx context.Context, req FindCustomerRequest) (*FindCustomerResponse, error) {
	if req.CompanyID == "" {
		return nil, &ErrValidation{Field: "company_id", Reason: "required"}
	}

	emailRes := validation.Email(req.Email)
	if !emailRes.IsValid {
		return nil, &ErrValidation{Field: "email", Reason: emailRes.Err}
	}
	phoneRes := validation.Phone(req.Phone)
	if !phoneRes.IsValid {
		return nil, &ErrValidation{Field: "phone", Reason: phoneRes.Err}
	}
	if emailRes.Sanitized == "" && phoneRes.Sanitized == "" {
		return nil, &ErrValidation{Field: "contact", Reason: "email or phone is required"}
	}

	customer, err := s.customers.FindCustomerByContact(ctx, req.CompanyID, emailRes.Sanitized, phoneRes.Sanitized)
	if err != nil {
		return nil, err
	}

	resp := &FindCustomerResponse{
		Message:    codeSentMessage,
		CustomerID: customer.ID.Hex(),
	}

	code, expiresAt, err := s.access.Issue(customer.CompanyID, customer.ID.Hex())
	if err != nil {
		return nil, err
	}

	if customer.Email != "" {
		if _, err := s.mailer.SendAccessCode(ctx, customer.Email, code, expiresAt); err != nil {
			s.log.WithFields(logrus.Fields{
				"company_id":  customer.CompanyID,
				"customer_id": customer.ID.Hex(),
				"error":       err.Error(),
			}).Warn("Failed to email access code")
		}
	}

	if s.echoCode {
		resp.AccessCode = code
		resp.ExpiresAt = &expiresAt
	}
	return resp, nil
}

// VerifyCodeRequest submits an access code for the customer identified by
// id or, failing that, by contact details.
type VerifyCodeRequest struct {
	CompanyID  string `json:"company_id"`
	CustomerID string `json:"customer_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Code       string `json:"code"`
}

// VerifyCodeResponse carries the portal session token.
type VerifyCodeResponse struct {
	Token        string `json:"token"`
	CustomerName string `json:"customer_name"`
}

// VerifyCode checks the code and mints a portal token. All failures return
// access.ErrInvalidCode so a caller cannot tell a wrong code from a
// nonexistent customer.
func (s *Service) VerifyCode(ctx context.Context, req VerifyCodeRequest) (*VerifyCodeResponse, error) {
	if req.CompanyID == "" || req.Code == "" {
		return nil, access.ErrInvalidCode
	}

	var customer *models.Customer
	var err error
	if req.CustomerID != "" {
		customer, err = s.customers.FindCustomerByID(ctx, req.CompanyID, req.CustomerID)
	} else {
		emailRes := validation.Email(req.Email)
		phoneRes := validation.Phone(req.Phone)
		if !emailRes.IsValid || !phoneRes.IsValid {
			return nil, access.ErrInvalidCode
		}
		customer, err = s.customers.FindCustomerByContact(ctx, req.CompanyID, emailRes.Sanitized, phoneRes.Sanitized)
	}
	if err != nil {
		return nil, access.ErrInvalidCode
	}

	if err := s.access.Verify(customer.CompanyID, customer.ID.Hex(), req.Code); err != nil {
		return nil, access.ErrInvalidCode
	}

	token, err := s.auth.GeneratePortalToken(customer)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"company_id":  customer.CompanyID,
		"customer_id": customer.ID.Hex(),
	}).Info("Portal session started")

	return &VerifyCodeResponse{Token: token, CustomerName: customer.Name}, nil
}

// GetTrips lists the authenticated customer's trips, most recent booking
// window first per the data layer's pickup-time ordering.
func (s *Service) GetTrips(ctx context.Context, claims *auth.PortalClaims) ([]models.Trip, error) {
	return s.trips.FindTrips(ctx, claims.CompanyID, db.TripFilter{CustomerID: claims.CustomerID})
}

// ownedTrip loads a trip and enforces that it belongs to the authenticated
// customer. Ownership failures look identical to missing trips.
func (s *Service) ownedTrip(ctx context.Context, claims *auth.PortalClaims, tripID string) (*models.Trip, error) {
	trip, err := s.trips.FindTripByID(ctx, claims.CompanyID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.CustomerID != claims.CustomerID {
		return nil, db.ErrNotFound
	}
	return trip, nil
}

// ModificationRequestInput is a customer's change proposal.
type ModificationRequestInput struct {
	TripID           string                         `json:"trip_id"`
	RequestType      models.ModificationRequestType `json:"request_type"`
	RequestedChanges map[string]string              `json:"requested_changes"`
	Reason           string                         `json:"reason"`
}

// CreateModificationRequest records a change request against one of the
// customer's own trips for manager triage.
func (s *Service) CreateModificationRequest(ctx context.Context, claims *auth.PortalClaims, input ModificationRequestInput) (string, error) {
	switch input.RequestType {
	case models.ModifyDateTime, models.ModifyLocation, models.ModifyPassengers, models.ModifyOther:
	default:
		return "", &ErrValidation{Field: "request_type", Reason: "unknown request type"}
	}

	trip, err := s.ownedTrip(ctx, claims, input.TripID)
	if err != nil {
		return "", err
	}
	if trip.Status == models.StatusCompleted || trip.Status == models.StatusCancelled {
		return "", &ErrValidation{Field: "trip_id", Reason: "trip can no longer be modified"}
	}

	return s.modReqs.InsertRequest(ctx, models.ModificationRequest{
		CompanyID:        claims.CompanyID,
		CustomerID:       claims.CustomerID,
		TripID:           trip.ID.Hex(),
		RequestType:      input.RequestType,
		RequestedChanges: input.RequestedChanges,
		Reason:           input.Reason,
	})
}

// RatingInput is a customer's post-trip feedback.
type RatingInput struct {
	TripID         string `json:"trip_id"`
	Rating         int    `json:"rating"`
	DriverRating   int    `json:"driver_rating"`
	VehicleRating  int    `json:"vehicle_rating"`
	Review         string `json:"review"`
	WouldRecommend bool   `json:"would_recommend"`
}

// CreateRating records feedback on a completed trip. Resubmitting replaces
// the earlier rating.
func (s *Service) CreateRating(ctx context.Context, claims *auth.PortalClaims, input RatingInput) error {
	if input.Rating < 1 || input.Rating > 5 {
		return &ErrValidation{Field: "rating", Reason: "rating must be between 1 and 5"}
	}
	for _, optional := range []int{input.DriverRating, input.VehicleRating} {
		if optional != 0 && (optional < 1 || optional > 5) {
			return &ErrValidation{Field: "rating", Reason: "sub-ratings must be between 1 and 5"}
		}
	}

	trip, err := s.ownedTrip(ctx, claims, input.TripID)
	if err != nil {
		return err
	}
	if trip.Status != models.StatusCompleted {
		return &ErrValidation{Field: "trip_id", Reason: "only completed trips can be rated"}
	}

	return s.ratings.UpsertRating(ctx, models.TripRating{
		CompanyID:      claims.CompanyID,
		CustomerID:     claims.CustomerID,
		TripID:         trip.ID.Hex(),
		Rating:         input.Rating,
		DriverRating:   input.DriverRating,
		VehicleRating:  input.VehicleRating,
		Review:         validation.Sanitize(input.Review),
		WouldRecommend: input.WouldRecommend,
	})
}

// BookingInput is a customer-submitted trip request. The contact fields are
// only read for public submissions, where no portal session identifies the
// customer.
type BookingInput struct {
	CompanyID        string      `json:"company_id"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Phone            string      `json:"phone"`
	PickupTime       string      `json:"pickup_time"`
	PickupLocation   string      `json:"pickup_location"`
	DropoffLocation  string      `json:"dropoff_location"`
	Passengers       interface{} `json:"passengers"`
	FlightNumber     string      `json:"flight_number"`
	Notes            string      `json:"notes"`
	IsRecurring      bool        `json:"is_recurring"`
	RecurringPattern string      `json:"recurring_pattern"`
	RecurringEndDate string      `json:"recurring_end_date"`
}

// CreateBooking validates and creates an unassigned trip, emailing the
// customer a confirmation with the booking reference. With a portal session
// the trip belongs to the authenticated customer; without one the booking is
// a public submission and the contact fields soft-match an existing customer
// or register a new one.
func (s *Service) CreateBooking(ctx context.Context, claims *auth.PortalClaims, input BookingInput) (*models.Trip, error) {
	pickupDate := validation.PickupDate(input.PickupTime, s.now())
	if !pickupDate.IsValid {
		return nil, &ErrValidation{Field: "pickup_time", Reason: pickupDate.Err}
	}
	pickupLoc := validation.LocationText(input.PickupLocation)
	if !pickupLoc.IsValid {
		return nil, &ErrValidation{Field: "pickup_location", Reason: pickupLoc.Err}
	}
	dropoffLoc := validation.LocationText(input.DropoffLocation)
	if !dropoffLoc.IsValid {
		return nil, &ErrValidation{Field: "dropoff_location", Reason: dropoffLoc.Err}
	}
	passengers := validation.Passengers(input.Passengers)
	if !passengers.IsValid {
		return nil, &ErrValidation{Field: "passengers", Reason: passengers.Err}
	}

	trip := models.Trip{
		PickupTime:      pickupDate.Time,
		PickupLocation:  pickupLoc.Sanitized,
		DropoffLocation: dropoffLoc.Sanitized,
		Passengers:      passengers.Value,
		Notes:           validation.Sanitize(input.Notes),
	}

	if input.FlightNumber != "" {
		flight := validation.FlightNumber(input.FlightNumber)
		if !flight.IsValid {
			return nil, &ErrValidation{Field: "flight_number", Reason: flight.Err}
		}
		trip.FlightNumber = flight.Sanitized
	}

	if input.IsRecurring {
		pattern := models.RecurringPattern(input.RecurringPattern)
		if !models.IsValidRecurringPattern(pattern) {
			return nil, &ErrValidation{Field: "recurring_pattern", Reason: "unsupported pattern"}
		}
		endDate := validation.RecurringEndDate(input.RecurringEndDate, pickupDate.Time)
		if !endDate.IsValid {
			return nil, &ErrValidation{Field: "recurring_end_date", Reason: endDate.Err}
		}
		trip.IsRecurring = true
		trip.RecurringPattern = pattern
		trip.RecurringEndDate = &endDate.Time
	}

	// resolving the customer can register a record, so it runs only after
	// every field validates
	var customer *models.Customer
	var err error
	if claims != nil {
		customer, err = s.customers.FindCustomerByID(ctx, claims.CompanyID, claims.CustomerID)
	} else {
		customer, err = s.bookingCustomer(ctx, input)
	}
	if err != nil {
		return nil, err
	}
	trip.CompanyID = customer.CompanyID
	trip.CustomerID = customer.ID.Hex()

	created, err := s.tripSvc.CreateTrip(ctx, trip)
	if err != nil {
		return nil, err
	}

	if customer.Email != "" {
		if _, err := s.mailer.SendBookingConfirmation(ctx, customer.Email, created.BookingRef, created.PickupTime); err != nil {
			s.log.WithFields(logrus.Fields{
				"company_id": created.CompanyID,
				"trip_id":    created.ID.Hex(),
				"error":      err.Error(),
			}).Warn("Failed to email booking confirmation")
		}
	}
	s.notifyDispatch(ctx, customer, created)

	return created, nil
}

// bookingCustomer resolves a public booking's customer from its contact
// fields, registering a new customer record when no active one matches.
func (s *Service) bookingCustomer(ctx context.Context, input BookingInput) (*models.Customer, error) {
	if input.CompanyID == "" {
		return nil, &ErrValidation{Field: "company_id", Reason: "required"}
	}
	if _, err := s.companies.FindCompanyByID(ctx, input.CompanyID); err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			return nil, &ErrValidation{Field: "company_id", Reason: "unknown company"}
		}
		return nil, err
	}

	nameRes := validation.Name(input.Name)
	if !nameRes.IsValid {
		return nil, &ErrValidation{Field: "name", Reason: nameRes.Err}
	}
	emailRes := validation.Email(input.Email)
	if !emailRes.IsValid {
		return nil, &ErrValidation{Field: "email", Reason: emailRes.Err}
	}
	phoneRes := validation.Phone(input.Phone)
	if !phoneRes.IsValid {
		return nil, &ErrValidation{Field: "phone", Reason: phoneRes.Err}
	}
	if emailRes.Sanitized == "" && phoneRes.Sanitized == "" {
		return nil, &ErrValidation{Field: "contact", Reason: "email or phone is required"}
	}

	existing, err := s.customers.FindCustomerByContact(ctx, input.CompanyID, emailRes.Sanitized, phoneRes.Sanitized)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	customer := models.Customer{
		CompanyID: input.CompanyID,
		Name:      nameRes.Sanitized,
		Email:     emailRes.Sanitized,
		Phone:     phoneRes.Sanitized,
	}
	id, err := s.customers.InsertCustomer(ctx, customer)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	customer.ID = oid

	s.log.WithFields(logrus.Fields{
		"company_id":  customer.CompanyID,
		"customer_id": id,
	}).Info("Customer registered via booking portal")
	return &customer, nil
}

// notifyDispatch emails the company's dispatch contact about a new booking.
// Best effort: managers also see new unassigned trips on the dispatch list.
func (s *Service) notifyDispatch(ctx context.Context, customer *models.Customer, trip *models.Trip) {
	if s.companies == nil {
		return
	}
	company, err := s.companies.FindCompanyByID(ctx, trip.CompanyID)
	if err != nil || company.ContactEmail == "" {
		return
	}

	if _, err := s.mailer.SendBookingNotification(ctx, company.ContactEmail, customer.Name,
		trip.BookingRef, trip.PickupLocation, trip.DropoffLocation, trip.PickupTime); err != nil {
		s.log.WithFields(logrus.Fields{
			"company_id": trip.CompanyID,
			"trip_id":    trip.ID.Hex(),
			"error":      err.Error(),
		}).Warn("Failed to email booking notification")
	}
}

// TripLocation is the live position of an in-progress trip's vehicle.
type TripLocation struct {
	TripID   string            `json:"trip_id"`
	Status   models.TripStatus `json:"status"`
	Position *models.GeoPoint  `json:"position,omitempty"`
	Address  string            `json:"address,omitempty"`
}

// GetTripLocation returns the vehicle's latest position for an in-progress
// trip the customer owns. No position data is an empty result, not an
// error: trackers drop out routinely.
func (s *Service) GetTripLocation(ctx context.Context, claims *auth.PortalClaims, tripID string) (*TripLocation, error) {
	trip, err := s.ownedTrip(ctx, claims, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.StatusInProgress {
		return nil, &ErrValidation{Field: "trip_id", Reason: "trip is not in progress"}
	}

	loc := &TripLocation{TripID: trip.ID.Hex(), Status: trip.Status}
	if s.locations == nil || trip.DriverID == "" {
		return loc, nil
	}

	point, err := s.locations.LatestPosition(ctx, claims.CompanyID, trip.DriverID)
	if err != nil || point == nil {
		return loc, nil
	}
	loc.Position = point

	if s.geocoder != nil {
		if addr, err := s.geocoder.ReverseGeocode(ctx, *point); err == nil {
			loc.Address = addr
		}
	}
	return loc, nil
}
