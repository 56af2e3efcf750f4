package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusApproved PaymentStatus = "APPROVED"
	PaymentStatusRejected PaymentStatus = "REJECTED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type PaymentKind string

const (
	PaymentKindCharge PaymentKind = "CHARGE"
	PaymentKindRefund PaymentKind = "REFUND"
)

type Payment struct {
	ID      string
	OrderID string
	// ProviderPaymentID is the provider-side payment identifier. Its unique
	// index is the economic idempotency anchor: a second charge row for the
	// same provider payment cannot be inserted.
	ProviderPaymentID string
	Kind              PaymentKind
	Status            PaymentStatus
	Amount            decimal.Decimal
	// RefundOf references the original charge for kind=REFUND rows.
	RefundOf string
	// RawProviderPayload keeps the provider notification verbatim for audit.
	RawProviderPayload string
	Version            int64
	ReceivedAt         time.Time
	UpdatedAt          time.Time
}
