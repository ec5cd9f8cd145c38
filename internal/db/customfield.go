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

// CustomFieldCollection defines the interface for tenant-defined field
// schemas and their values.
type CustomFieldCollection interface {
	InsertField(ctx context.Context, field models.CustomField) (string, error)
	FindFields(ctx context.Context, companyID string, entityType models.CustomFieldEntity) ([]models.CustomField, error)
	UpdateField(ctx context.Context, companyID, id string, field models.CustomField) error
	// DeleteField removes a field definition and cascade-deletes its values.
	// Values are deleted first so an interrupted delete never leaves values
	// without a schema.
	DeleteField(ctx context.Context, companyID, id string) error

	UpsertValue(ctx context.Context, value models.CustomFieldValue) error
	FindValuesByEntity(ctx context.Context, companyID, entityID string) ([]models.CustomFieldValue, error)
	DeleteValuesByEntity(ctx context.Context, companyID, entityID string) error
}

// MongoCustomFieldCollection implements CustomFieldCollection for MongoDB
type MongoCustomFieldCollection struct {
	Fields *mongo.Collection
	Values *mongo.Collection
}

func (c *MongoCustomFieldCollection) InsertField(ctx context.Context, field models.CustomField) (string, error) {
	field.CreatedAt = time.Now()
	field.UpdatedAt = time.Now()

	res, err := c.Fields.InsertOne(ctx, field)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (c *MongoCustomFieldCollection) FindFields(ctx context.Context, companyID string, entityType models.CustomFieldEntity) ([]models.CustomField, error) {
	q := bson.M{"company_id": companyID}
	if entityType != "" {
		q["entity_type"] = entityType
	}
	opts := options.Find().SetSort(bson.M{"display_order": 1})
	cursor, err := c.Fields.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	var fields []models.CustomField
	if err := cursor.All(ctx, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (c *MongoCustomFieldCollection) UpdateField(ctx context.Context, companyID, id string, field models.CustomField) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	field.ID = objectID
	field.CompanyID = companyID
	field.UpdatedAt = time.Now()

	result, err := c.Fields.ReplaceOne(ctx, bson.M{"_id": objectID, "company_id": companyID}, field)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoCustomFieldCollection) DeleteField(ctx context.Context, companyID, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	// values first
	if _, err := c.Values.DeleteMany(ctx, bson.M{"company_id": companyID, "field_id": id}); err != nil {
		return err
	}

	result, err := c.Fields.DeleteOne(ctx, bson.M{"_id": objectID, "company_id": companyID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoCustomFieldCollection) UpsertValue(ctx context.Context, value models.CustomFieldValue) error {
	now := time.Now()
	filter := bson.M{
		"company_id": value.CompanyID,
		"field_id":   value.FieldID,
		"entity_id":  value.EntityID,
	}
	update := bson.M{
		"$set":         bson.M{"value": value.Value, "updated_at": now},
		"$setOnInsert": bson.M{"company_id": value.CompanyID, "field_id": value.FieldID, "entity_id": value.EntityID, "created_at": now},
	}
	_, err := c.Values.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (c *MongoCustomFieldCollection) FindValuesByEntity(ctx context.Context, companyID, entityID string) ([]models.CustomFieldValue, error) {
	cursor, err := c.Values.Find(ctx, bson.M{"company_id": companyID, "entity_id": entityID})
	if err != nil {
		return nil, err
	}
	var values []models.CustomFieldValue
	if err := cursor.All(ctx, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (c *MongoCustomFieldCollection) DeleteValuesByEntity(ctx context.Context, companyID, entityID string) error {
	_, err := c.Values.DeleteMany(ctx, bson.M{"company_id": companyID, "entity_id": entityID})
	return err
}
