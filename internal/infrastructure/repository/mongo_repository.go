package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	connectionsCollection  = "connections"
	customersCollection    = "customers"
	ordersCollection       = "orders"
	syncRunsCollection     = "sync_runs"
	accountSaltsCollection = "account_salts"
	integrationsCollection = "integrations"
)

// EnsureIndexes creates the indexes the repositories rely on for uniqueness.
// It is idempotent and safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		connectionsCollection: {
			{
				Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "platform", Value: 1}},
				Options: options.Index().
					SetName("one_active_per_owner_platform").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"is_active": true}),
			},
			{Keys: bson.D{{Key: "platform", Value: 1}, {Key: "platform_domain", Value: 1}, {Key: "is_active", Value: 1}}},
		},
		customersCollection: {
			{
				Keys:    bson.D{{Key: "owner_account_id", Value: 1}, {Key: "source_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		ordersCollection: {
			{
				Keys:    bson.D{{Key: "owner_account_id", Value: 1}, {Key: "source_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "owner_account_id", Value: 1}, {Key: "source_created_at", Value: 1}}},
		},
		syncRunsCollection: {
			{Keys: bson.D{{Key: "owner_account_id", Value: 1}, {Key: "started_at", Value: -1}}},
		},
		accountSaltsCollection: {
			{
				Keys:    bson.D{{Key: "owner_account_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		integrationsCollection: {
			{
				Keys:    bson.D{{Key: "key", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
