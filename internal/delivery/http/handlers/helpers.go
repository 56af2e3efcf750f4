package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/merchkit/payment-service/internal/delivery/http/dto"
	"github.com/merchkit/payment-service/internal/domain"
)

// respondError maps domain error kinds onto stable API error codes. Internal
// detail (stack traces, provider payloads) never leaves the service.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: "not_found", Message: "resource not found"})
	case errors.Is(err, domain.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "invalid_reference", Message: "referenced entity not found"})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Code: "invalid_transition", Message: "operation not allowed in current state"})
	case errors.Is(err, domain.ErrVersionConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Code: "conflict", Message: "concurrent modification, retry"})
	case errors.Is(err, domain.ErrOverRefund):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "over_refund", Message: "refund exceeds refundable amount"})
	case errors.Is(err, domain.ErrAmountMismatch):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "amount_mismatch", Message: "amount is invalid"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "internal", Message: "internal error"})
	}
}

func toOrderResponse(order *domain.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = dto.OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Subtotal:  item.Subtotal.StringFixed(2),
		}
	}
	return dto.OrderResponse{
		ID:          order.ID,
		Number:      order.Number,
		BusinessID:  order.BusinessID,
		CustomerID:  order.CustomerID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount.StringFixed(2),
		Currency:    order.Currency,
		Items:       items,
		CreatedAt:   order.CreatedAt,
	}
}

func toPaymentResponse(payment *domain.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:                payment.ID,
		OrderID:           payment.OrderID,
		ProviderPaymentID: payment.ProviderPaymentID,
		Kind:              string(payment.Kind),
		Status:            string(payment.Status),
		Amount:            payment.Amount.StringFixed(2),
		RefundOf:          payment.RefundOf,
		ReceivedAt:        payment.ReceivedAt,
	}
}
