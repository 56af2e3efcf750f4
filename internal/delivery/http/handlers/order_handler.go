package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/merchkit/payment-service/internal/delivery/http/dto"
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/usecase/reconcile"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	engine reconcile.Engine
}

func NewOrderHandler(engine reconcile.Engine) *OrderHandler {
	return &OrderHandler{engine: engine}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "bad_request", Message: "invalid request body"})
		return
	}

	items := make([]reconcile.CreateOrderItem, len(req.Items))
	for i, item := range req.Items {
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "bad_request", Message: "unit_price must be a decimal string"})
			return
		}
		items[i] = reconcile.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: price,
		}
	}

	order, err := h.engine.CreateOrder(c.Request.Context(), &reconcile.CreateOrderInput{
		BusinessID:  req.BusinessID,
		CustomerID:  req.CustomerID,
		Currency:    req.Currency,
		CallbackURL: req.CallbackURL,
		Items:       items,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	order, err := h.engine.ConfirmOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	order, err := h.engine.CompleteOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	order, err := h.engine.CancelOrder(c.Request.Context(), c.Param("id"), domain.ActorUser, "")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.engine.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// GetOrderAudit exposes the ledger to the administrative read path only.
func (h *OrderHandler) GetOrderAudit(c *gin.Context) {
	entries, err := h.engine.ListAudit(c.Request.Context(), domain.EntityOrder, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.AuditEntryResponse, len(entries))
	for i, entry := range entries {
		resp[i] = dto.AuditEntryResponse{
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			FromState:  entry.FromState,
			ToState:    entry.ToState,
			Actor:      string(entry.Actor),
			Reason:     entry.Reason,
			Timestamp:  entry.Timestamp,
		}
	}
	c.JSON(http.StatusOK, resp)
}
