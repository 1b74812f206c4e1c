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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOrderRepository implements OrderRepository using MongoDB
type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) ports.OrderRepository {
	return &MongoOrderRepository{collection: db.Collection(ordersCollection)}
}

func (r *MongoOrderRepository) FindBySourceID(ctx context.Context, ownerID string, sourceID int64) (*domain.Order, error) {
	var doc entity.MongoOrderDoc
	filter := bson.M{"owner_account_id": ownerID, "source_id": sourceID}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return doc.ToDomain(), nil
}

// Insert stores a new order and assigns its local id
func (r *MongoOrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	doc := entity.MongoOrderDocFromDomain(order)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	order.ID = doc.ID.Hex()
	return nil
}

func (r *MongoOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	doc := entity.MongoOrderDocFromDomain(order)
	if doc.ID.IsZero() {
		return fmt.Errorf("failed to update order: missing id")
	}
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID, "owner_account_id": doc.OwnerAccountID}, doc)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to update order: %s not found", order.ID)
	}
	return nil
}

func (r *MongoOrderRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"owner_account_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

func (r *MongoOrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "source_created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_account_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	for cursor.Next(ctx) {
		var doc entity.MongoOrderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		orders = append(orders, doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return orders, nil
}
