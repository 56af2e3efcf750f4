package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/merchkit/payment-service/internal/delivery/http/dto"
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/usecase/reconcile"
	"github.com/shopspring/decimal"
)

func paymentRouter(engine reconcile.Engine) *gin.Engine {
	h := NewPaymentHandler(engine)
	r := gin.New()
	r.GET("/payments/:id", h.GetPayment)
	r.POST("/payments/:id/refund", h.RequestRefund)
	return r
}

func TestGetPaymentHandler(t *testing.T) {
	engine := &fakeEngine{
		getPayment: func(ctx context.Context, paymentID string) (*domain.Payment, error) {
			return &domain.Payment{
				ID:                paymentID,
				OrderID:           "ord-1",
				ProviderPaymentID: "pay-1",
				Kind:              domain.PaymentKindCharge,
				Status:            domain.PaymentStatusApproved,
				Amount:            decimal.RequireFromString("44.98"),
				ReceivedAt:        time.Now(),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/payments/pm-1", nil)
	w := httptest.NewRecorder()
	paymentRouter(engine).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp dto.PaymentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Amount != "44.98" || resp.Status != "APPROVED" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestRequestRefundHandler(t *testing.T) {
	engine := &fakeEngine{
		requestRefund: func(ctx context.Context, input *reconcile.RefundInput) (*domain.Payment, error) {
			if input.PaymentID != "pm-1" {
				t.Fatalf("payment id = %s, want pm-1", input.PaymentID)
			}
			if !input.Amount.Equal(decimal.RequireFromString("10.00")) {
				t.Fatalf("amount = %s, want 10.00", input.Amount)
			}
			return &domain.Payment{
				ID:       "pm-2",
				OrderID:  "ord-1",
				Kind:     domain.PaymentKindRefund,
				Status:   domain.PaymentStatusRefunded,
				Amount:   input.Amount,
				RefundOf: input.PaymentID,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/payments/pm-1/refund", bytes.NewBufferString(`{"amount":"10.00"}`))
	w := httptest.NewRecorder()
	paymentRouter(engine).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var resp dto.PaymentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Kind != "REFUND" || resp.RefundOf != "pm-1" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestRequestRefundHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"amount not a decimal", `{"amount":"lots"}`, nil, http.StatusBadRequest},
		{"missing amount", `{}`, nil, http.StatusBadRequest},
		{"over refund", `{"amount":"999.00"}`, domain.ErrOverRefund, http.StatusBadRequest},
		{"unknown payment", `{"amount":"1.00"}`, domain.ErrPaymentNotFound, http.StatusNotFound},
		{"not refundable", `{"amount":"1.00"}`, domain.ErrInvalidTransition, http.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := &fakeEngine{
				requestRefund: func(context.Context, *reconcile.RefundInput) (*domain.Payment, error) {
					return nil, tc.err
				},
			}
			req := httptest.NewRequest(http.MethodPost, "/payments/pm-1/refund", bytes.NewBufferString(tc.body))
			w := httptest.NewRecorder()
			paymentRouter(engine).ServeHTTP(w, req)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}
