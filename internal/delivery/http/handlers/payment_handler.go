package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/merchkit/payment-service/internal/delivery/http/dto"
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/usecase/reconcile"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	engine reconcile.Engine
}

func NewPaymentHandler(engine reconcile.Engine) *PaymentHandler {
	return &PaymentHandler{engine: engine}
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.engine.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (h *PaymentHandler) RequestRefund(c *gin.Context) {
	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "bad_request", Message: "invalid request body"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "bad_request", Message: "amount must be a decimal string"})
		return
	}

	refund, err := h.engine.RequestRefund(c.Request.Context(), &reconcile.RefundInput{
		PaymentID: c.Param("id"),
		Amount:    amount,
		Actor:     domain.ActorUser,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPaymentResponse(refund))
}
