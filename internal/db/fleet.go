package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
)

// DriverCollection defines the interface for driver data operations.
type DriverCollection interface {
	InsertDriver(ctx context.Context, driver models.Driver) (string, error)
	FindDriverByID(ctx context.Context, companyID, id string) (*models.Driver, error)
	FindDrivers(ctx context.Context, companyID string) ([]models.Driver, error)
	UpdateDriver(ctx context.Context, companyID, id string, driver models.Driver) error
	DeleteDriver(ctx context.Context, companyID, id string) error
}

// MongoDriverCollection implements DriverCollection for MongoDB
type MongoDriverCollection struct {
	Collection *mongo.Collection
}

func (c *MongoDriverCollection) InsertDriver(ctx context.Context, driver models.Driver) (string, error) {
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = time.Now()
	driver.IsActive = true

	res, err := c.Collection.InsertOne(ctx, driver)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (c *MongoDriverCollection) FindDriverByID(ctx context.Context, companyID, id string) (*models.Driver, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var driver models.Driver
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID, "company_id": companyID}).Decode(&driver)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (c *MongoDriverCollection) FindDrivers(ctx context.Context, companyID string) ([]models.Driver, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return nil, err
	}
	var drivers []models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (c *MongoDriverCollection) UpdateDriver(ctx context.Context, companyID, id string, driver models.Driver) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	driver.ID = objectID
	driver.CompanyID = companyID
	driver.UpdatedAt = time.Now()

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID, "company_id": companyID}, driver)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoDriverCollection) DeleteDriver(ctx context.Context, companyID, id string) error {
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

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error)
	FindVehicleByID(ctx context.Context, companyID, id string) (*models.Vehicle, error)
	FindVehicles(ctx context.Context, companyID string) ([]models.Vehicle, error)
	UpdateVehicle(ctx context.Context, companyID, id string, vehicle models.Vehicle) error
	DeleteVehicle(ctx context.Context, companyID, id string) error
}

// MongoVehicleCollection implements VehicleCollection for MongoDB
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()

	res, err := c.Collection.InsertOne(ctx, vehicle)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, companyID, id string) (*models.Vehicle, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var vehicle models.Vehicle
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID, "company_id": companyID}).Decode(&vehicle)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (c *MongoVehicleCollection) FindVehicles(ctx context.Context, companyID string) ([]models.Vehicle, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return nil, err
	}
	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, companyID, id string, vehicle models.Vehicle) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	vehicle.ID = objectID
	vehicle.CompanyID = companyID
	vehicle.UpdatedAt = time.Now()

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID, "company_id": companyID}, vehicle)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, companyID, id string) error {
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

// SavedLocationCollection defines the interface for saved location operations.
type SavedLocationCollection interface {
	InsertLocation(ctx context.Context, loc models.SavedLocation) (string, error)
	FindLocations(ctx context.Context, companyID string) ([]models.SavedLocation, error)
	UpdateLocation(ctx context.Context, companyID, id string, loc models.SavedLocation) error
	DeleteLocation(ctx context.Context, companyID, id string) error
}

// MongoSavedLocationCollection implements SavedLocationCollection for MongoDB
type MongoSavedLocationCollection struct {
	Collection *mongo.Collection
}

func (c *MongoSavedLocationCollection) InsertLocation(ctx context.Context, loc models.SavedLocation) (string, error) {
	loc.CreatedAt = time.Now()
	loc.UpdatedAt = time.Now()

	res, err := c.Collection.InsertOne(ctx, loc)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (c *MongoSavedLocationCollection) FindLocations(ctx context.Context, companyID string) ([]models.SavedLocation, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return nil, err
	}
	var locs []models.SavedLocation
	if err := cursor.All(ctx, &locs); err != nil {
		return nil, err
	}
	return locs, nil
}

func (c *MongoSavedLocationCollection) UpdateLocation(ctx context.Context, companyID, id string, loc models.SavedLocation) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	loc.ID = objectID
	loc.CompanyID = companyID
	loc.UpdatedAt = time.Now()

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID, "company_id": companyID}, loc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoSavedLocationCollection) DeleteLocation(ctx context.Context, companyID, id string) error {
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

// CompanyCollection defines the interface for company (tenant) operations.
type CompanyCollection interface {
	InsertCompany(ctx context.Context, company models.Company) (string, error)
	FindCompanyByID(ctx context.Context, id string) (*models.Company, error)
	UpdateCompanyPlan(ctx context.Context, id, planTier string) error
}

// MongoCompanyCollection implements CompanyCollection for MongoDB
type MongoCompanyCollection struct {
	Collection *mongo.Collection
}

func (c *MongoCompanyCollection) InsertCompany(ctx context.Context, company models.Company) (string, error) {
	company.CreatedAt = time.Now()
	company.UpdatedAt = time.Now()
	company.IsActive = true
	if company.PlanTier == "" {
		company.PlanTier = "free"
	}

	res, err := c.Collection.InsertOne(ctx, company)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (c *MongoCompanyCollection) FindCompanyByID(ctx context.Context, id string) (*models.Company, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var company models.Company
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&company)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (c *MongoCompanyCollection) UpdateCompanyPlan(ctx context.Context, id, planTier string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"plan_tier": planTier, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
