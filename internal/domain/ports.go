package domain

import (
	"context"
	"time"
)

// SecretsProvider resolves the shared secret used to authenticate provider
// webhooks. A missing secret is a configuration error, never a reason to
// skip verification.
type SecretsProvider interface {
	WebhookSecret(provider string) ([]byte, error)
}

type InventoryService interface {
	Reserve(ctx context.Context, items []OrderItem) error
	Release(ctx context.Context, items []OrderItem) error
}

// PaymentEventMessage is the notification fan-out payload. Amount travels as
// a decimal string, never a binary float.
type PaymentEventMessage struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	BusinessID  string    `json:"business_id"`
	Status      string    `json:"status"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NotificationPublisher delivers fire-and-forget notifications. Failures are
// logged, never propagated into the reconciliation transaction.
type NotificationPublisher interface {
	PublishPaymentEvent(event PaymentEventMessage) error
}

type Identity struct {
	ClientID   string
	BusinessID string
}

type IdentityResolver interface {
	Resolve(ctx context.Context, apiKey string) (Identity, bool)
}
