package repository

import (
	"context"
	"fmt"
	"time"

	"retentionos/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type accountSaltDoc struct {
	OwnerAccountID string    `bson:"owner_account_id"`
	Salt           []byte    `bson:"salt"`
	CreatedAt      time.Time `bson:"created_at"`
}

// MongoAccountSaltRepository implements AccountSaltRepository using MongoDB
type MongoAccountSaltRepository struct {
	collection *mongo.Collection
}

func NewMongoAccountSaltRepository(db *mongo.Database) ports.AccountSaltRepository {
	return &MongoAccountSaltRepository{collection: db.Collection(accountSaltsCollection)}
}

// GetOrCreate upserts with $setOnInsert so concurrent first calls agree on one salt
func (r *MongoAccountSaltRepository) GetOrCreate(ctx context.Context, ownerID string, candidate []byte) ([]byte, error) {
	filter := bson.M{"owner_account_id": ownerID}
	update := bson.M{"$setOnInsert": bson.M{
		"owner_account_id": ownerID,
		"salt":             candidate,
		"created_at":       time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc accountSaltDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to get account salt: %w", err)
	}
	return doc.Salt, nil
}
