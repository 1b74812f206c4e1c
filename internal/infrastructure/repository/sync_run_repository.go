package repository

import (
	"context"
	"errors"
	"fmt"

	"retentionos/internal/domain"
	"retentionos/internal/infrastructure/repository/entity"
	"retentionos/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrSyncRunNotRunning is returned when finishing a run that already finished
var ErrSyncRunNotRunning = errors.New("sync run is not running")

// MongoSyncRunRepository implements SyncRunRepository using MongoDB
type MongoSyncRunRepository struct {
	collection *mongo.Collection
}

func NewMongoSyncRunRepository(db *mongo.Database) ports.SyncRunRepository {
	return &MongoSyncRunRepository{collection: db.Collection(syncRunsCollection)}
}

func (r *MongoSyncRunRepository) Create(ctx context.Context, run *domain.SyncRun) error {
	if _, err := r.collection.InsertOne(ctx, entity.MongoSyncRunDocFromDomain(run)); err != nil {
		return fmt.Errorf("failed to create sync run: %w", err)
	}
	return nil
}

// Finish writes the terminal state. The status guard keeps the record append-only.
func (r *MongoSyncRunRepository) Finish(ctx context.Context, run *domain.SyncRun) error {
	doc := entity.MongoSyncRunDocFromDomain(run)
	filter := bson.M{"_id": run.ID, "status": string(domain.SyncStatusRunning)}

	result, err := r.collection.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return fmt.Errorf("failed to finish sync run: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to finish sync run %s: %w", run.ID, ErrSyncRunNotRunning)
	}
	return nil
}

func (r *MongoSyncRunRepository) Get(ctx context.Context, id string) (*domain.SyncRun, error) {
	var doc entity.MongoSyncRunDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync run: %w", err)
	}
	return doc.ToDomain(), nil
}

// ListByOwner returns the owner's most recent runs, newest first
func (r *MongoSyncRunRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.SyncRun, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"owner_account_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	defer cursor.Close(ctx)

	var runs []*domain.SyncRun
	for cursor.Next(ctx) {
		var doc entity.MongoSyncRunDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode sync run: %w", err)
		}
		runs = append(runs, doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return runs, nil
}
