package domain

import "time"

// WebhookEvent is a verified webhook delivery from Shopify
type WebhookEvent struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Shop       string    `json:"shop"`
	Payload    []byte    `json:"-"`
	ReceivedAt time.Time `json:"received_at"`
}
