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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoConnectionRepository implements ConnectionRepository using MongoDB
type MongoConnectionRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoConnectionRepository creates a new MongoDB connection repository.
// ReplaceActive needs a replica set or sharded cluster for transactions.
func NewMongoConnectionRepository(client *mongo.Client, db *mongo.Database) ports.ConnectionRepository {
	return &MongoConnectionRepository{
		client:     client,
		collection: db.Collection(connectionsCollection),
	}
}

// GetActive returns the owner's active connection for the platform
func (r *MongoConnectionRepository) GetActive(ctx context.Context, ownerID string, platform domain.Platform) (*domain.Connection, error) {
	var doc entity.MongoConnectionDoc
	filter := bson.M{"owner_id": ownerID, "platform": string(platform), "is_active": true}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return doc.ToDomain(), nil
}

// ListActiveByDomain returns every active connection pointing at a store
func (r *MongoConnectionRepository) ListActiveByDomain(ctx context.Context, platform domain.Platform, platformDomain string) ([]*domain.Connection, error) {
	filter := bson.M{"platform": string(platform), "platform_domain": platformDomain, "is_active": true}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer cursor.Close(ctx)

	var conns []*domain.Connection
	for cursor.Next(ctx) {
		var doc entity.MongoConnectionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode connection: %w", err)
		}
		conns = append(conns, doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return conns, nil
}

// ReplaceActive deactivates the owner's active connections and inserts conn in one transaction
func (r *MongoConnectionRepository) ReplaceActive(ctx context.Context, conn *domain.Connection) error {
	doc := entity.MongoConnectionDocFromDomain(conn)
	doc.IsActive = true
	doc.DeactivatedAt = nil
	if doc.ConnectedAt.IsZero() {
		doc.ConnectedAt = time.Now().UTC()
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	res, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"owner_id": conn.OwnerID, "platform": string(conn.Platform), "is_active": true}
		update := bson.M{"$set": bson.M{"is_active": false, "deactivated_at": doc.ConnectedAt}}
		if _, err := r.collection.UpdateMany(sc, filter, update); err != nil {
			return nil, fmt.Errorf("failed to deactivate previous connections: %w", err)
		}
		return r.collection.InsertOne(sc, doc)
	})
	if err != nil {
		return fmt.Errorf("failed to replace connection: %w", err)
	}

	if inserted, ok := res.(*mongo.InsertOneResult); ok {
		if id, ok := inserted.InsertedID.(primitive.ObjectID); ok {
			conn.ID = id.Hex()
		}
	}
	conn.IsActive = true
	conn.ConnectedAt = doc.ConnectedAt
	return nil
}

// Deactivate soft-deletes the owner's active connections for the platform
func (r *MongoConnectionRepository) Deactivate(ctx context.Context, ownerID string, platform domain.Platform) (int64, error) {
	return r.deactivate(ctx, bson.M{"owner_id": ownerID, "platform": string(platform), "is_active": true})
}

// DeactivateByDomain soft-deletes every active connection pointing at a store
func (r *MongoConnectionRepository) DeactivateByDomain(ctx context.Context, platform domain.Platform, platformDomain string) (int64, error) {
	return r.deactivate(ctx, bson.M{"platform": string(platform), "platform_domain": platformDomain, "is_active": true})
}

func (r *MongoConnectionRepository) deactivate(ctx context.Context, filter bson.M) (int64, error) {
	update := bson.M{"$set": bson.M{"is_active": false, "deactivated_at": time.Now().UTC()}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate connection: %w", err)
	}
	return result.ModifiedCount, nil
}
