package entity

import (
	"time"

	"retentionos/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoConnectionDoc represents a platform connection in MongoDB
type MongoConnectionDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID        string             `bson:"owner_id"`
	Platform       string             `bson:"platform"`
	PlatformDomain string             `bson:"platform_domain"`
	AccessToken    string             `bson:"access_token"`
	Scope          string             `bson:"scope,omitempty"`
	ShopName       string             `bson:"shop_name,omitempty"`
	ConnectedAt    time.Time          `bson:"connected_at"`
	DeactivatedAt  *time.Time         `bson:"deactivated_at,omitempty"`
	IsActive       bool               `bson:"is_active"`
}

func (d *MongoConnectionDoc) ToDomain() *domain.Connection {
	return &domain.Connection{
		ID:             idHex(d.ID),
		OwnerID:        d.OwnerID,
		Platform:       domain.Platform(d.Platform),
		PlatformDomain: d.PlatformDomain,
		AccessToken:    d.AccessToken,
		Scope:          d.Scope,
		ShopName:       d.ShopName,
		ConnectedAt:    d.ConnectedAt,
		DeactivatedAt:  d.DeactivatedAt,
		IsActive:       d.IsActive,
	}
}

func MongoConnectionDocFromDomain(conn *domain.Connection) *MongoConnectionDoc {
	return &MongoConnectionDoc{
		ID:             objectIDFromHex(conn.ID),
		OwnerID:        conn.OwnerID,
		Platform:       string(conn.Platform),
		PlatformDomain: conn.PlatformDomain,
		AccessToken:    conn.AccessToken,
		Scope:          conn.Scope,
		ShopName:       conn.ShopName,
		ConnectedAt:    conn.ConnectedAt,
		DeactivatedAt:  conn.DeactivatedAt,
		IsActive:       conn.IsActive,
	}
}
