package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentModel struct {
	ID                string `gorm:"primaryKey;type:uuid"`
	OrderID           string `gorm:"type:uuid;index;not null"`
	ProviderPaymentID string `gorm:"uniqueIndex;not null"`
	Kind              string `gorm:"not null"`
	Status            string `gorm:"index;not null"`
	Amount            decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	RefundOf          string          `gorm:"type:uuid;default:null"`
	// RawProviderPayload is the provider notification verbatim, kept for audit.
	RawProviderPayload string `gorm:"type:jsonb"`
	Version            int64  `gorm:"not null;default:1"`
	ReceivedAt         time.Time
	UpdatedAt          time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}
