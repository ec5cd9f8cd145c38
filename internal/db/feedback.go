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

// ModificationRequestCollection defines the interface for customer change
// requests awaiting manager triage.
type ModificationRequestCollection interface {
	InsertRequest(ctx context.Context, req models.ModificationRequest) (string, error)
	FindRequests(ctx context.Context, companyID string) ([]models.ModificationRequest, error)
	FindRequestsByCustomer(ctx context.Context, companyID, customerID string) ([]models.ModificationRequest, error)
	MarkReviewed(ctx context.Context, companyID, id string) error
}

// MongoModificationRequestCollection implements ModificationRequestCollection for MongoDB
type MongoModificationRequestCollection struct {
	Collection *mongo.Collection
}

func (c *MongoModificationRequestCollection) InsertRequest(ctx context.Context, req models.ModificationRequest) (string, error) {
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()
	req.Status = "pending"

	res, err := c.Collection.InsertOne(ctx, req)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (c *MongoModificationRequestCollection) FindRequests(ctx context.Context, companyID string) ([]models.ModificationRequest, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := c.Collection.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	var reqs []models.ModificationRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (c *MongoModificationRequestCollection) FindRequestsByCustomer(ctx context.Context, companyID, customerID string) ([]models.ModificationRequest, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"company_id": companyID, "customer_id": customerID})
	if err != nil {
		return nil, err
	}
	var reqs []models.ModificationRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (c *MongoModificationRequestCollection) MarkReviewed(ctx context.Context, companyID, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID, "company_id": companyID},
		bson.M{"$set": bson.M{"status": "reviewed", "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TripRatingCollection defines the interface for post-trip feedback. One
// rating per (customer, trip): UpsertRating overwrites on resubmission.
type TripRatingCollection interface {
	UpsertRating(ctx context.Context, rating models.TripRating) error
	FindRatings(ctx context.Context, companyID string) ([]models.TripRating, error)
	FindRatingByTrip(ctx context.Context, companyID, customerID, tripID string) (*models.TripRating, error)
}

// MongoTripRatingCollection implements TripRatingCollection for MongoDB
type MongoTripRatingCollection struct {
	Collection *mongo.Collection
}

func (c *MongoTripRatingCollection) UpsertRating(ctx context.Context, rating models.TripRating) error {
	now := time.Now()
	filter := bson.M{
		"company_id":  rating.CompanyID,
		"customer_id": rating.CustomerID,
		"trip_id":     rating.TripID,
	}
	update := bson.M{
		"$set": bson.M{
			"rating":          rating.Rating,
			"driver_rating":   rating.DriverRating,
			"vehicle_rating":  rating.VehicleRating,
			"review":          rating.Review,
			"would_recommend": rating.WouldRecommend,
			"updated_at":      now,
		},
		"$setOnInsert": bson.M{
			"company_id":  rating.CompanyID,
			"customer_id": rating.CustomerID,
			"trip_id":     rating.TripID,
			"created_at":  now,
		},
	}
	_, err := c.Collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (c *MongoTripRatingCollection) FindRatings(ctx context.Context, companyID string) ([]models.TripRating, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := c.Collection.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	var ratings []models.TripRating
	if err := cursor.All(ctx, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (c *MongoTripRatingCollection) FindRatingByTrip(ctx context.Context, companyID, customerID, tripID string) (*models.TripRating, error) {
	var rating models.TripRating
	err := c.Collection.FindOne(ctx, bson.M{
		"company_id":  companyID,
		"customer_id": customerID,
		"trip_id":     tripID,
	}).Decode(&rating)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}
