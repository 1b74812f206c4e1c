package repository

import (
	"context"
	"errors"
	"fmt"

	"retentionos/internal/domain"
	"retentionos/internal/infrastructure/repository/entity"
	"retentionos/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCustomerRepository implements CustomerRepository using MongoDB
type MongoCustomerRepository struct {
	collection *mongo.Collection
}

func NewMongoCustomerRepository(db *mongo.Database) ports.CustomerRepository {
	return &MongoCustomerRepository{collection: db.Collection(customersCollection)}
}

func (r *MongoCustomerRepository) FindBySourceID(ctx context.Context, ownerID string, sourceID int64) (*domain.Customer, error) {
	var doc entity.MongoCustomerDoc
	filter := bson.M{"owner_account_id": ownerID, "source_id": sourceID}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return doc.ToDomain(), nil
}

// Insert stores a new customer and assigns its local id
func (r *MongoCustomerRepository) Insert(ctx context.Context, customer *domain.Customer) error {
	doc := entity.MongoCustomerDocFromDomain(customer)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	customer.ID = doc.ID.Hex()
	return nil
}

func (r *MongoCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	doc := entity.MongoCustomerDocFromDomain(customer)
	if doc.ID.IsZero() {
		return fmt.Errorf("failed to update customer: missing id")
	}
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID, "owner_account_id": doc.OwnerAccountID}, doc)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to update customer: %s not found", customer.ID)
	}
	return nil
}

func (r *MongoCustomerRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"owner_account_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return n, nil
}

func (r *MongoCustomerRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Customer, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_account_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer cursor.Close(ctx)

	var customers []*domain.Customer
	for cursor.Next(ctx) {
		var doc entity.MongoCustomerDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode customer: %w", err)
		}
		customers = append(customers, doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return customers, nil
}
