package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
)

// TripFilter narrows trip list queries. Zero values mean "any".
type TripFilter struct {
	CustomerID string
	DriverID   string
	Status     models.TripStatus
}

// TripCollection defines the interface for trip data operations.
type TripCollection interface {
	InsertTrip(ctx context.Context, trip models.Trip) (string, error)
	FindTripByID(ctx context.Context, companyID, id string) (*models.Trip, error)
	FindTrips(ctx context.Context, companyID string, filter TripFilter) ([]models.Trip, error)
	// FindChildTrips lists the recurrence children of a root trip, ordered by
	// pickup time.
	FindChildTrips(ctx context.Context, companyID, parentTripID string) ([]models.Trip, error)
	UpdateTrip(ctx context.Context, companyID, id string, trip models.Trip) error
	DeleteTrip(ctx context.Context, companyID, id string) error
}

// MongoTripCollection implements TripCollection for MongoDB
type MongoTripCollection struct {
	Collection *mongo.Collection
}

// InsertTrip inserts a trip and returns its id
func (c *MongoTripCollection) InsertTrip(ctx context.Context, trip models.Trip) (string, error) {
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = time.Now()
	if trip.Status == "" {
		trip.Status = models.StatusUnassigned
	}

	res, err := c.Collection.InsertOne(ctx, trip)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// FindTripByID finds a trip within a company
func (c *MongoTripCollection) FindTripByID(ctx context.Context, companyID, id string) (*models.Trip, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var trip models.Trip
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID, "company_id": companyID}).Decode(&trip)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// FindTrips lists trips within a company, optionally narrowed by filter
func (c *MongoTripCollection) FindTrips(ctx context.Context, companyID string, filter TripFilter) ([]models.Trip, error) {
	q := bson.M{"company_id": companyID}
	if filter.CustomerID != "" {
		q["customer_id"] = filter.CustomerID
	}
	if filter.DriverID != "" {
		q["driver_id"] = filter.DriverID
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}

	opts := options.Find().SetSort(bson.M{"pickup_time": 1})
	cursor, err := c.Collection.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// FindChildTrips lists the recurrence children of a root trip
func (c *MongoTripCollection) FindChildTrips(ctx context.Context, companyID, parentTripID string) ([]models.Trip, error) {
	opts := options.Find().SetSort(bson.M{"pickup_time": 1})
	cursor, err := c.Collection.Find(ctx, bson.M{"company_id": companyID, "parent_trip_id": parentTripID}, opts)
	if err != nil {
		return nil, err
	}
	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// UpdateTrip replaces a trip within a company
func (c *MongoTripCollection) UpdateTrip(ctx context.Context, companyID, id string, trip models.Trip) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	trip.ID = objectID
	trip.CompanyID = companyID
	trip.UpdatedAt = time.Now()

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID, "company_id": companyID}, trip)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTrip deletes a trip within a company
func (c *MongoTripCollection) DeleteTrip(ctx context.Context, companyID, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID, "company_id": companyID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
