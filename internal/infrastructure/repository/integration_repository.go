package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"retentionos/internal/domain"
	"retentionos/internal/infrastructure/repository/entity"
	"retentionos/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoIntegrationRepository implements IntegrationRepository using MongoDB
type MongoIntegrationRepository struct {
	collection *mongo.Collection
}

// NewMongoIntegrationRepository creates a new MongoDB integration repository
func NewMongoIntegrationRepository(db *mongo.Database) ports.IntegrationRepository {
	return &MongoIntegrationRepository{
		collection: db.Collection(integrationsCollection),
	}
}

// Create creates a new integration
func (r *MongoIntegrationRepository) Create(ctx context.Context, integration *domain.Integration) error {
	doc := entity.MongoIntegrationDocFromDomain(integration)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.UpdatedAt
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create integration: %w", err)
	}
	return nil
}

// GetByKey retrieves an integration by its key
func (r *MongoIntegrationRepository) GetByKey(ctx context.Context, key string) (*domain.Integration, error) {
	return r.findOne(ctx, bson.M{"key": key})
}

// GetByOwner retrieves the integration issued to an owner
func (r *MongoIntegrationRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Integration, error) {
	return r.findOne(ctx, bson.M{"owner_id": ownerID})
}

// DeleteByOwner removes every integration issued to an owner
func (r *MongoIntegrationRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"owner_id": ownerID}); err != nil {
		return fmt.Errorf("failed to delete integrations: %w", err)
	}
	return nil
}

func (r *MongoIntegrationRepository) findOne(ctx context.Context, filter bson.M) (*domain.Integration, error) {
	var doc entity.MongoIntegrationDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	return doc.ToDomain(), nil
}
