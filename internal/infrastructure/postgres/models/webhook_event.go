package models

import "time"

// WebhookEventModel records every inbound provider notification. The unique
// provider_event_id index is the delivery idempotency key: a redelivered
// event fails the insert instead of reaching the reconciliation engine twice.
type WebhookEventModel struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	Provider        string `gorm:"index;not null"`
	ProviderEventID string `gorm:"uniqueIndex;not null"`
	EventType       string `gorm:"not null"`
	SignatureValid  bool   `gorm:"not null"`
	RawPayload      string `gorm:"type:jsonb"`
	Outcome         string `gorm:"index"`
	ProcessedAt     time.Time
}

func (WebhookEventModel) TableName() string {
	return "webhook_events"
}
