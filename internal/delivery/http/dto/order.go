package dto

import "time"

type CreateOrderRequest struct {
	BusinessID  string             `json:"business_id" binding:"required"`
	CustomerID  string             `json:"customer_id" binding:"required"`
	Currency    string             `json:"currency" binding:"required"`
	CallbackURL string             `json:"callback_url"`
	Items       []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int32  `json:"quantity" binding:"required,gt=0"`
	// UnitPrice is a decimal string ("199.90"); floats are never accepted.
	UnitPrice string `json:"unit_price" binding:"required"`
}

type OrderResponse struct {
	ID          string              `json:"id"`
	Number      string              `json:"number"`
	BusinessID  string              `json:"business_id"`
	CustomerID  string              `json:"customer_id"`
	Status      string              `json:"status"`
	TotalAmount string              `json:"total_amount"`
	Currency    string              `json:"currency"`
	Items       []OrderItemResponse `json:"items,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type AuditEntryResponse struct {
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	FromState  string    `json:"from_state"`
	ToState    string    `json:"to_state"`
	Actor      string    `json:"actor"`
	Reason     string    `json:"reason,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
