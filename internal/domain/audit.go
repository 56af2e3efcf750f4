package domain

import "time"

type AuditActor string

const (
	ActorUser    AuditActor = "USER"
	ActorWebhook AuditActor = "WEBHOOK"
	ActorSystem  AuditActor = "SYSTEM"
)

// AuditEntry is an immutable ledger row. Entries are only ever appended;
// there is no update or delete path anywhere in the service.
type AuditEntry struct {
	ID         string
	EntityType string
	EntityID   string
	FromState  string
	ToState    string
	Actor      AuditActor
	Reason     string
	Timestamp  time.Time
}

const (
	EntityOrder   = "order"
	EntityPayment = "payment"
)

const (
	ReasonIgnoredStaleEvent = "ignored_stale_event"
	ReasonExpired           = "expired"
)
