package entity

import (
	"time"

	"retentionos/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoIntegrationDoc represents an integration in MongoDB
type MongoIntegrationDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Key        string             `bson:"key"`
	OwnerID    string             `bson:"owner_id"`
	ShopDomain string             `bson:"shop_domain"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoIntegrationDoc) ToDomain() *domain.Integration {
	return &domain.Integration{
		ID:         idHex(d.ID),
		Key:        d.Key,
		OwnerID:    d.OwnerID,
		ShopDomain: d.ShopDomain,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// MongoIntegrationDocFromDomain converts a domain entity to a MongoDB document
func MongoIntegrationDocFromDomain(integration *domain.Integration) *MongoIntegrationDoc {
	return &MongoIntegrationDoc{
		ID:         objectIDFromHex(integration.ID),
		Key:        integration.Key,
		OwnerID:    integration.OwnerID,
		ShopDomain: integration.ShopDomain,
		CreatedAt:  integration.CreatedAt,
		UpdatedAt:  integration.UpdatedAt,
	}
}
