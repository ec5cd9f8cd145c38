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

// TripNoteCollection defines the interface for staff trip notes.
type TripNoteCollection interface {
	InsertNote(ctx context.Context, note models.TripNote) (string, error)
	FindNotesByTrip(ctx context.Context, companyID, tripID string) ([]models.TripNote, error)
}

// MongoTripNoteCollection implements TripNoteCollection for MongoDB
type MongoTripNoteCollection struct {
	Collection *mongo.Collection
}

func (c *MongoTripNoteCollection) InsertNote(ctx context.Context, note models.TripNote) (string, error) {
	note.CreatedAt = time.Now()
	res, err := c.Collection.InsertOne(ctx, note)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (c *MongoTripNoteCollection) FindNotesByTrip(ctx context.Context, companyID, tripID string) ([]models.TripNote, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := c.Collection.Find(ctx, bson.M{"company_id": companyID, "trip_id": tripID}, opts)
	if err != nil {
		return nil, err
	}
	var notes []models.TripNote
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// TripTemplateCollection defines the interface for trip templates.
type TripTemplateCollection interface {
	InsertTemplate(ctx context.Context, tpl models.TripTemplate) (string, error)
	FindTemplates(ctx context.Context, companyID string) ([]models.TripTemplate, error)
	DeleteTemplate(ctx context.Context, companyID, id string) error
}

// MongoTripTemplateCollection implements TripTemplateCollection for MongoDB
type MongoTripTemplateCollection struct {
	Collection *mongo.Collection
}

func (c *MongoTripTemplateCollection) InsertTemplate(ctx context.Context, tpl models.TripTemplate) (string, error) {
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = time.Now()
	res, err := c.Collection.InsertOne(ctx, tpl)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (c *MongoTripTemplateCollection) FindTemplates(ctx context.Context, companyID string) ([]models.TripTemplate, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return nil, err
	}
	var tpls []models.TripTemplate
	if err := cursor.All(ctx, &tpls); err != nil {
		return nil, err
	}
	return tpls, nil
}

func (c *MongoTripTemplateCollection) DeleteTemplate(ctx context.Context, companyID, id string) error {
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

// ReportConfigurationCollection defines the interface for saved report
// definitions.
type ReportConfigurationCollection interface {
	InsertReport(ctx context.Context, rep models.ReportConfiguration) (string, error)
	FindReports(ctx context.Context, companyID string) ([]models.ReportConfiguration, error)
	DeleteReport(ctx context.Context, companyID, id string) error
}

// MongoReportConfigurationCollection implements ReportConfigurationCollection for MongoDB
type MongoReportConfigurationCollection struct {
	Collection *mongo.Collection
}

func (c *MongoReportConfigurationCollection) InsertReport(ctx context.Context, rep models.ReportConfiguration) (string, error) {
	rep.CreatedAt = time.Now()
	rep.UpdatedAt = time.Now()
	res, err := c.Collection.InsertOne(ctx, rep)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (c *MongoReportConfigurationCollection) FindReports(ctx context.Context, companyID string) ([]models.ReportConfiguration, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return nil, err
	}
	var reps []models.ReportConfiguration
	if err := cursor.All(ctx, &reps); err != nil {
		return nil, err
	}
	return reps, nil
}

func (c *MongoReportConfigurationCollection) DeleteReport(ctx context.Context, companyID, id string) error {
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
