package domain

import "time"

// Integration is a server-to-server API key that authenticates its caller as
// the owner that connected the store. It is issued after a successful OAuth
// exchange so backend jobs can trigger syncs without a dashboard session.
type Integration struct {
	ID         string    `json:"id" bson:"_id"`
	Key        string    `json:"key" bson:"key"`
	OwnerID    string    `json:"owner_id" bson:"owner_id"`
	ShopDomain string    `json:"shop_domain" bson:"shop_domain"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}
