package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/access"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/auth"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/billing"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/config"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/db"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/flights"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/geo"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/handlers"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/middleware"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/notify"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/portal"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/tracking"
	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/trips"
)

func main() {
	cfg := config.Load()
	logger := log.StandardLogger()

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	store := db.NewStore(client, cfg.MongoDB)
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")

	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize auth service")
	}

	accessService := access.NewService(logger)
	geocoder := geo.NewGeocoder(cfg.GeocoderBaseURL, logger)
	mailer := notify.NewSender(cfg.EmailPrimaryURL, cfg.EmailFallbackURL, cfg.EmailAPIKey, logger)
	billingClient := billing.NewClient(cfg.PaymentAPIURL, cfg.PaymentAPIKey, logger)

	positions := tracking.NewStore()
	subscriber, err := tracking.NewSubscriber(cfg.MQTTBrokerURL, positions, logger)
	if err != nil {
		// trips degrade to no coordinates when the feed is down
		log.WithError(err).Warn("GPS feed unavailable, continuing without live positions")
	} else {
		defer subscriber.Close()
	}

	var flightAPI trips.FlightLookup
	flightClient := flights.NewClient(cfg.FlightAPIBaseURL, cfg.FlightAPIKey, logger)
	if flightClient.Configured() {
		flightAPI = flightClient
	} else {
		log.Info("Flight status lookups disabled: no flight API configured")
	}

	tripService := trips.NewService(store.Trips, store.Companies, positions, flightAPI, logger)

	portalService := portal.NewService(portal.Deps{
		Customers: store.Customers,
		Companies: store.Companies,
		Trips:     store.Trips,
		ModReqs:   store.Requests,
		Ratings:   store.Ratings,
		TripSvc:   tripService,
		Access:    accessService,
		Auth:      authService,
		Mailer:    mailer,
		Locations: positions,
		Geocoder:  geocoder,
		EchoCode:  cfg.PortalEchoAccessCode,
		Logger:    logger,
	})

	authHandler := handlers.NewAuthHandler(authService, store.Users)
	tripHandler := handlers.NewTripHandler(store.Trips, store.Notes, store.Fields, tripService, logger)
	customerHandler := handlers.NewCustomerHandler(store.Customers)
	fleetHandler := handlers.NewFleetHandler(store.Drivers, store.Vehicles, store.Locations, store.Fields)
	fieldHandler := handlers.NewCustomFieldHandler(store.Fields)
	feedbackHandler := handlers.NewFeedbackHandler(store.Requests, store.Ratings)
	extrasHandler := handlers.NewExtrasHandler(store.Templates, store.Reports)
	billingHandler := handlers.NewBillingHandler(billingClient, logger)
	portalHandler := portal.NewHandler(portalService, authService, logger)

	authMW := middleware.NewAuthMiddleware(authService)
	rateMW := middleware.NewRateLimitMiddleware()
	manager := authMW.RequireRole(models.RoleManager)
	admin := authMW.RequireRole(models.RoleAdmin)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/users", manager(http.HandlerFunc(authHandler.Register)))
	mux.HandleFunc("GET /api/auth/profile", authHandler.GetProfile)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)

	mux.HandleFunc("GET /api/trips", tripHandler.List)
	mux.Handle("POST /api/trips", manager(http.HandlerFunc(tripHandler.Create)))
	mux.HandleFunc("GET /api/trips/{id}", tripHandler.Get)
	mux.Handle("PUT /api/trips/{id}", manager(http.HandlerFunc(tripHandler.Update)))
	mux.Handle("DELETE /api/trips/{id}", manager(http.HandlerFunc(tripHandler.Delete)))
	mux.Handle("POST /api/trips/{id}/assign", manager(http.HandlerFunc(tripHandler.Assign)))
	mux.Handle("POST /api/trips/{id}/cancel", manager(http.HandlerFunc(tripHandler.Cancel)))
	mux.Handle("POST /api/trips/{id}/pickup", authMW.RequirePermission("record_pickup")(http.HandlerFunc(tripHandler.Pickup)))
	mux.Handle("POST /api/trips/{id}/dropoff", authMW.RequirePermission("record_dropoff")(http.HandlerFunc(tripHandler.Dropoff)))
	mux.HandleFunc("GET /api/trips/{id}/flight-status", tripHandler.FlightStatus)
	mux.Handle("POST /api/trips/{id}/reconcile", manager(http.HandlerFunc(tripHandler.Reconcile)))
	mux.HandleFunc("GET /api/trips/{id}/notes", tripHandler.ListNotes)
	mux.HandleFunc("POST /api/trips/{id}/notes", tripHandler.CreateNote)

	mux.HandleFunc("GET /api/customers", customerHandler.List)
	mux.Handle("POST /api/customers", manager(http.HandlerFunc(customerHandler.Create)))
	mux.HandleFunc("GET /api/customers/{id}", customerHandler.Get)
	mux.Handle("PUT /api/customers/{id}", manager(http.HandlerFunc(customerHandler.Update)))
	mux.Handle("DELETE /api/customers/{id}", manager(http.HandlerFunc(customerHandler.Delete)))

	mux.HandleFunc("GET /api/drivers", fleetHandler.ListDrivers)
	mux.Handle("POST /api/drivers", manager(http.HandlerFunc(fleetHandler.CreateDriver)))
	mux.HandleFunc("GET /api/drivers/{id}", fleetHandler.GetDriver)
	mux.Handle("PUT /api/drivers/{id}", manager(http.HandlerFunc(fleetHandler.UpdateDriver)))
	mux.Handle("DELETE /api/drivers/{id}", manager(http.HandlerFunc(fleetHandler.DeleteDriver)))

	mux.HandleFunc("GET /api/vehicles", fleetHandler.ListVehicles)
	mux.Handle("POST /api/vehicles", manager(http.HandlerFunc(fleetHandler.CreateVehicle)))
	mux.Handle("PUT /api/vehicles/{id}", manager(http.HandlerFunc(fleetHandler.UpdateVehicle)))
	mux.Handle("DELETE /api/vehicles/{id}", manager(http.HandlerFunc(fleetHandler.DeleteVehicle)))

	mux.HandleFunc("GET /api/locations", fleetHandler.ListLocations)
	mux.Handle("POST /api/locations", manager(http.HandlerFunc(fleetHandler.CreateLocation)))
	mux.Handle("PUT /api/locations/{id}", manager(http.HandlerFunc(fleetHandler.UpdateLocation)))
	mux.Handle("DELETE /api/locations/{id}", manager(http.HandlerFunc(fleetHandler.DeleteLocation)))

	mux.HandleFunc("GET /api/custom-fields", fieldHandler.List)
	mux.Handle("POST /api/custom-fields", manager(http.HandlerFunc(fieldHandler.Create)))
	mux.Handle("PUT /api/custom-fields/{id}", manager(http.HandlerFunc(fieldHandler.Update)))
	mux.Handle("DELETE /api/custom-fields/{id}", manager(http.HandlerFunc(fieldHandler.Delete)))
	mux.HandleFunc("PUT /api/custom-fields/{id}/values/{entityID}", fieldHandler.SetValue)
	mux.HandleFunc("GET /api/custom-field-values/{entityID}", fieldHandler.ListValues)

	mux.HandleFunc("GET /api/modification-requests", feedbackHandler.ListRequests)
	mux.Handle("POST /api/modification-requests/{id}/review", manager(http.HandlerFunc(feedbackHandler.ReviewRequest)))
	mux.HandleFunc("GET /api/ratings", feedbackHandler.ListRatings)

	mux.HandleFunc("GET /api/templates", extrasHandler.ListTemplates)
	mux.Handle("POST /api/templates", manager(http.HandlerFunc(extrasHandler.CreateTemplate)))
	mux.Handle("DELETE /api/templates/{id}", manager(http.HandlerFunc(extrasHandler.DeleteTemplate)))

	mux.HandleFunc("GET /api/reports", extrasHandler.ListReports)
	mux.Handle("POST /api/reports", manager(http.HandlerFunc(extrasHandler.CreateReport)))
	mux.Handle("DELETE /api/reports/{id}", manager(http.HandlerFunc(extrasHandler.DeleteReport)))

	mux.Handle("POST /api/billing/checkout", admin(http.HandlerFunc(billingHandler.Checkout)))
	mux.Handle("POST /api/billing/portal", admin(http.HandlerFunc(billingHandler.Portal)))

	// the portal authenticates its own customer tokens
	mux.Handle("POST /api/portal", portalHandler)

	handler := rateMW.RateLimit(300, 60)(authMW.Authenticate(mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// expired access codes only matter when verified, purging just caps memory
	purgeDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := accessService.Purge(); n > 0 {
					log.WithField("purged", n).Debug("Dropped expired access codes")
				}
			case <-purgeDone:
				return
			}
		}
	}()

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")
	close(purgeDone)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
}
