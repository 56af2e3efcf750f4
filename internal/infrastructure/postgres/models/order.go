package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderModel struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	Number      string `gorm:"uniqueIndex;not null"`
	BusinessID  string `gorm:"index;not null"`
	CustomerID  string `gorm:"index;not null"`
	Status      string `gorm:"index;not null"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Currency    string          `gorm:"not null"`
	CallbackURL string
	Version     int64            `gorm:"not null;default:1"`
	Items       []OrderItemModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"index"`
	UpdatedAt   time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

type OrderItemModel struct {
	ID        string          `gorm:"primaryKey;type:uuid"`
	OrderID   string          `gorm:"type:uuid;index;not null"`
	ProductID string          `gorm:"not null"`
	Quantity  int32           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(18,2);not null"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}
