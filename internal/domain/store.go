package domain

import (
	"context"
	"time"
)

// Store bundles the repositories that share one backing database. WithinTx
// runs fn against a Store bound to a single transaction; the reconciliation
// engine relies on it to commit the state write, the side effects and the
// audit append atomically.
type Store interface {
	Orders() OrderRepository
	Payments() PaymentRepository
	WebhookEvents() WebhookEventRepository
	Audit() AuditLog

	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	// UpdateStatus performs the version-checked write. It returns
	// ErrVersionConflict when expectedVersion no longer matches the row.
	UpdateStatus(ctx context.Context, orderID string, expectedVersion int64, newStatus OrderStatus) error
	FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*Order, error)
}

type PaymentRepository interface {
	// Create returns ErrDuplicatePayment when the provider payment id is
	// already recorded for a charge.
	Create(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, paymentID string) (*Payment, error)
	GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*Payment, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*Payment, error)
	UpdateStatus(ctx context.Context, paymentID string, expectedVersion int64, newStatus PaymentStatus) error
}

type WebhookEventRepository interface {
	// Insert returns ErrDuplicateEvent when the provider event id has
	// already been recorded.
	Insert(ctx context.Context, event *WebhookEvent) error
	SetOutcome(ctx context.Context, providerEventID string, outcome WebhookOutcome) error
}

// AuditLog is append-only. No update or delete API exists.
type AuditLog interface {
	Append(ctx context.Context, entry *AuditEntry) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*AuditEntry, error)
}
