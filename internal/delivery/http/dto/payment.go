package dto

import "time"

type RefundRequest struct {
	// Amount is a decimal string.
	Amount string `json:"amount" binding:"required"`
}

type PaymentResponse struct {
	ID                string    `json:"id"`
	OrderID           string    `json:"order_id"`
	ProviderPaymentID string    `json:"provider_payment_id"`
	Kind              string    `json:"kind"`
	Status            string    `json:"status"`
	Amount            string    `json:"amount"`
	RefundOf          string    `json:"refund_of,omitempty"`
	ReceivedAt        time.Time `json:"received_at"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
