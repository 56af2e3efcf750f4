package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WebhookOutcome string

const (
	WebhookOutcomeApplied   WebhookOutcome = "APPLIED"
	WebhookOutcomeDuplicate WebhookOutcome = "DUPLICATE"
	WebhookOutcomeStale     WebhookOutcome = "STALE"
	WebhookOutcomeRejected  WebhookOutcome = "REJECTED"
	WebhookOutcomeFailed    WebhookOutcome = "FAILED"
)

// WebhookEvent is the persisted record of an inbound provider notification.
// ProviderEventID carries a unique constraint: inserting it inside the same
// transaction that applies the event makes duplicate delivery a structural
// no-op rather than an application-level check.
type WebhookEvent struct {
	ID              string
	Provider        string
	ProviderEventID string
	EventType       string
	SignatureValid  bool
	RawPayload      string
	Outcome         WebhookOutcome
	ProcessedAt     time.Time
}

// EventType classifies a normalized provider notification or user command
// for the transition table.
type EventType string

const (
	EventPaymentApproved EventType = "payment.approved"
	EventPaymentRejected EventType = "payment.rejected"
	EventPaymentRefunded EventType = "payment.refunded"

	EventOrderConfirm  EventType = "order.confirm"
	EventOrderComplete EventType = "order.complete"
	EventOrderCancel   EventType = "order.cancel"
	EventOrderRefund   EventType = "order.refund"
)

// NormalizedEvent is what the webhook gateway hands to the reconciliation
// engine after signature verification and payload parsing.
type NormalizedEvent struct {
	Provider          string
	ProviderEventID   string
	ProviderPaymentID string
	OrderID           string
	Type              EventType
	Amount            decimal.Decimal
	SignatureValid    bool
	RawPayload        []byte
	ReceivedAt        time.Time
}
