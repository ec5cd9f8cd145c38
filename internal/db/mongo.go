package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects to MongoDB and verifies the connection.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Store bundles the typed collections of one database. Every read and write
// that touches tenant data requires the owning companyID; the tenant filter
// is applied here, never by callers.
type Store struct {
	Users      UserCollection
	Companies  CompanyCollection
	Customers  CustomerCollection
	Drivers    DriverCollection
	Vehicles   VehicleCollection
	Locations  SavedLocationCollection
	Trips      TripCollection
	Fields     CustomFieldCollection
	Requests   ModificationRequestCollection
	Ratings    TripRatingCollection
	Notes      TripNoteCollection
	Templates  TripTemplateCollection
	Reports    ReportConfigurationCollection
}

// NewStore wires the Mongo-backed collections for the named database.
func NewStore(client *mongo.Client, dbName string) *Store {
	d := client.Database(dbName)
	return &Store{
		Users:     &MongoUserCollection{Collection: d.Collection("users")},
		Companies: &MongoCompanyCollection{Collection: d.Collection("companies")},
		Customers: &MongoCustomerCollection{Collection: d.Collection("customers")},
		Drivers:   &MongoDriverCollection{Collection: d.Collection("drivers")},
		Vehicles:  &MongoVehicleCollection{Collection: d.Collection("vehicles")},
		Locations: &MongoSavedLocationCollection{Collection: d.Collection("locations")},
		Trips:     &MongoTripCollection{Collection: d.Collection("trips")},
		Fields: &MongoCustomFieldCollection{
			Fields: d.Collection("custom_fields"),
			Values: d.Collection("custom_field_values"),
		},
		Requests:  &MongoModificationRequestCollection{Collection: d.Collection("modification_requests")},
		Ratings:   &MongoTripRatingCollection{Collection: d.Collection("trip_ratings")},
		Notes:     &MongoTripNoteCollection{Collection: d.Collection("trip_notes")},
		Templates: &MongoTripTemplateCollection{Collection: d.Collection("trip_templates")},
		Reports:   &MongoReportConfigurationCollection{Collection: d.Collection("report_configurations")},
	}
}
