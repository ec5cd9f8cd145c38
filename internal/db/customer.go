package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/electronictaz-netizen/aircrew-transportation-app-sub000/internal/models"
)

// CustomerCollection defines the interface for customer data operations.
type CustomerCollection interface {
	InsertCustomer(ctx context.Context, customer models.Customer) (string, error)
	FindCustomerByID(ctx context.Context, companyID, id string) (*models.Customer, error)
	// FindCustomerByContact matches an active customer on email or phone
	// within one company. At least one contact field must be non-empty.
	FindCustomerByContact(ctx context.Context, companyID, email, phone string) (*models.Customer, error)
	FindCustomers(ctx context.Context, companyID string) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, companyID, id string, customer models.Customer) error
	// DeactivateCustomer soft-disables a customer; customers with trip
	// history are never hard-deleted.
	DeactivateCustomer(ctx context.Context, companyID, id string) error
}

// MongoCustomerCollection implements CustomerCollection for MongoDB
type MongoCustomerCollection struct {
	Collection *mongo.Collection
}

// InsertCustomer inserts a customer and returns its id
func (c *MongoCustomerCollection) InsertCustomer(ctx context.Context, customer models.Customer) (string, error) {
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()
	customer.IsActive = true

	res, err := c.Collection.InsertOne(ctx, customer)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// FindCustomerByID finds a customer within a company
func (c *MongoCustomerCollection) FindCustomerByID(ctx context.Context, companyID, id string) (*models.Customer, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var customer models.Customer
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID, "company_id": companyID}).Decode(&customer)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindCustomerByContact matches an active customer on email or phone
func (c *MongoCustomerCollection) FindCustomerByContact(ctx context.Context, companyID, email, phone string) (*models.Customer, error) {
	if email == "" && phone == "" {
		return nil, ErrNotFound
	}

	var contact []bson.M
	if email != "" {
		contact = append(contact, bson.M{"email": email})
	}
	if phone != "" {
		contact = append(contact, bson.M{"phone": phone})
	}

	filter := bson.M{
		"company_id": companyID,
		"is_active":  true,
		"$or":        contact,
	}

	var customer models.Customer
	err := c.Collection.FindOne(ctx, filter).Decode(&customer)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindCustomers lists the customers of one company
func (c *MongoCustomerCollection) FindCustomers(ctx context.Context, companyID string) ([]models.Customer, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return nil, err
	}
	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// UpdateCustomer replaces a customer within a company
func (c *MongoCustomerCollection) UpdateCustomer(ctx context.Context, companyID, id string, customer models.Customer) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	customer.ID = objectID
	customer.CompanyID = companyID
	customer.UpdatedAt = time.Now()

	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID, "company_id": companyID}, customer)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateCustomer soft-disables a customer
func (c *MongoCustomerCollection) DeactivateCustomer(ctx context.Context, companyID, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID, "company_id": companyID},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
