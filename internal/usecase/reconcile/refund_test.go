package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/merchkit/payment-service/internal/domain"
	"github.com/shopspring/decimal"
)

// paidOrder drives an order to PAID via an approved provider event and
// returns it with the recorded charge.
func paidOrder(t *testing.T, engine *DefaultEngine, store *memStore) (*domain.Order, *domain.Payment) {
	t.Helper()

	order := confirmedOrder(t, engine)
	if _, err := engine.ApplyEvent(context.Background(), approvedEvent(order, "evt-charge", "pay-charge")); err != nil {
		t.Fatalf("apply approved: %v", err)
	}

	order, err := engine.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	charge, err := store.Payments().GetByProviderPaymentID(context.Background(), "pay-charge")
	if err != nil {
		t.Fatalf("charge lookup: %v", err)
	}
	return order, charge
}

func TestRequestRefund_Full(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	order, charge := paidOrder(t, engine, store)

	refund, err := engine.RequestRefund(context.Background(), &RefundInput{
		PaymentID: charge.ID,
		Amount:    charge.Amount,
		Actor:     domain.ActorUser,
	})
	if err != nil {
		t.Fatalf("RequestRefund: %v", err)
	}

	if refund.Kind != domain.PaymentKindRefund || refund.Status != domain.PaymentStatusRefunded {
		t.Fatalf("refund row = %s/%s, want REFUND/REFUNDED", refund.Kind, refund.Status)
	}
	if refund.RefundOf != charge.ID {
		t.Fatalf("refund.RefundOf = %s, want %s", refund.RefundOf, charge.ID)
	}

	got, _ := engine.GetOrder(context.Background(), order.ID)
	if got.Status != domain.OrderStatusRefunded {
		t.Fatalf("order status = %s, want REFUNDED", got.Status)
	}

	// Full reversal flips the original charge; its row is never deleted.
	reloaded, _ := store.Payments().GetByID(context.Background(), charge.ID)
	if reloaded.Status != domain.PaymentStatusRefunded {
		t.Fatalf("charge status = %s, want REFUNDED", reloaded.Status)
	}
	if !reloaded.Amount.Equal(charge.Amount) {
		t.Fatalf("charge amount rewritten: %s, want %s", reloaded.Amount, charge.Amount)
	}
}

func TestRequestRefund_Partial(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	order, charge := paidOrder(t, engine, store)

	amount := decimal.RequireFromString("10.00")
	refund, err := engine.RequestRefund(context.Background(), &RefundInput{
		PaymentID: charge.ID,
		Amount:    amount,
	})
	if err != nil {
		t.Fatalf("RequestRefund: %v", err)
	}
	if !refund.Amount.Equal(amount) {
		t.Fatalf("refund amount = %s, want %s", refund.Amount, amount)
	}

	got, _ := engine.GetOrder(context.Background(), order.ID)
	if got.Status != domain.OrderStatusRefunded {
		t.Fatalf("order status = %s, want REFUNDED", got.Status)
	}

	// A partial reversal leaves the charge approved.
	reloaded, _ := store.Payments().GetByID(context.Background(), charge.ID)
	if reloaded.Status != domain.PaymentStatusApproved {
		t.Fatalf("charge status = %s, want APPROVED", reloaded.Status)
	}
}

func TestRequestRefund_RemainderAfterPartial(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	order, charge := paidOrder(t, engine, store)

	if _, err := engine.RequestRefund(context.Background(), &RefundInput{
		PaymentID: charge.ID,
		Amount:    decimal.RequireFromString("10.00"),
	}); err != nil {
		t.Fatalf("partial refund: %v", err)
	}

	// The remaining balance stays refundable after the order moved to
	// REFUNDED on the first partial.
	remainder := charge.Amount.Sub(decimal.RequireFromString("10.00"))
	if _, err := engine.RequestRefund(context.Background(), &RefundInput{
		PaymentID: charge.ID,
		Amount:    remainder,
	}); err != nil {
		t.Fatalf("remainder refund: %v", err)
	}

	reloaded, _ := store.Payments().GetByID(context.Background(), charge.ID)
	if reloaded.Status != domain.PaymentStatusRefunded {
		t.Fatalf("charge status = %s, want REFUNDED after full reversal", reloaded.Status)
	}
	got, _ := engine.GetOrder(context.Background(), order.ID)
	if got.Status != domain.OrderStatusRefunded {
		t.Fatalf("order status = %s, want REFUNDED", got.Status)
	}

	// Conservation still bounds the total: nothing is left to refund.
	_, err := engine.RequestRefund(context.Background(), &RefundInput{
		PaymentID: charge.ID,
		Amount:    decimal.RequireFromString("0.01"),
	})
	if !errors.Is(err, domain.ErrOverRefund) {
		t.Fatalf("err = %v, want ErrOverRefund", err)
	}
}

func TestRequestRefund_OverRefundRejected(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	order, charge := paidOrder(t, engine, store)

	_, err := engine.RequestRefund(context.Background(), &RefundInput{
		PaymentID: charge.ID,
		Amount:    charge.Amount.Add(decimal.RequireFromString("0.01")),
	})
	if !errors.Is(err, domain.ErrOverRefund) {
		t.Fatalf("err = %v, want ErrOverRefund", err)
	}

	// The rejection leaves no trace on the money state.
	got, _ := engine.GetOrder(context.Background(), order.ID)
	if got.Status != domain.OrderStatusPaid {
		t.Fatalf("order status = %s, want PAID", got.Status)
	}
	payments, _ := store.Payments().ListByOrderID(context.Background(), order.ID)
	if len(payments) != 1 {
		t.Fatalf("payments = %d, want the single charge", len(payments))
	}
}

func TestRequestRefund_NonPositiveAmount(t *testing.T) {
	engine := newTestEngine(newMemStore())

	for _, raw := range []string{"0", "-5.00"} {
		_, err := engine.RequestRefund(context.Background(), &RefundInput{
			PaymentID: "whatever",
			Amount:    decimal.RequireFromString(raw),
		})
		if !errors.Is(err, domain.ErrAmountMismatch) {
			t.Fatalf("amount %s: err = %v, want ErrAmountMismatch", raw, err)
		}
	}
}

func TestRequestRefund_UnknownPayment(t *testing.T) {
	engine := newTestEngine(newMemStore())

	_, err := engine.RequestRefund(context.Background(), &RefundInput{
		PaymentID: "no-such-payment",
		Amount:    decimal.RequireFromString("1.00"),
	})
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("err = %v, want ErrPaymentNotFound", err)
	}
}

func TestRequestRefund_RefundRowIsNotRefundable(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	_, charge := paidOrder(t, engine, store)

	first, err := engine.RequestRefund(context.Background(), &RefundInput{
		PaymentID: charge.ID,
		Amount:    decimal.RequireFromString("5.00"),
	})
	if err != nil {
		t.Fatalf("first refund: %v", err)
	}

	_, err = engine.RequestRefund(context.Background(), &RefundInput{
		PaymentID: first.ID,
		Amount:    decimal.RequireFromString("1.00"),
	})
	if !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("err = %v, want ErrInvalidReference", err)
	}
}

func TestRequestRefund_FromCompletedOrder(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	order, charge := paidOrder(t, engine, store)

	if _, err := engine.CompleteOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("CompleteOrder: %v", err)
	}

	if _, err := engine.RequestRefund(context.Background(), &RefundInput{
		PaymentID: charge.ID,
		Amount:    charge.Amount,
	}); err != nil {
		t.Fatalf("refund from completed order: %v", err)
	}

	got, _ := engine.GetOrder(context.Background(), order.ID)
	if got.Status != domain.OrderStatusRefunded {
		t.Fatalf("order status = %s, want REFUNDED", got.Status)
	}
}

func TestRequestRefund_PendingChargeRejected(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(store)
	order := confirmedOrder(t, engine)

	pending := &domain.Payment{
		ID:                "pm-pending",
		OrderID:           order.ID,
		ProviderPaymentID: "pay-pending",
		Kind:              domain.PaymentKindCharge,
		Status:            domain.PaymentStatusPending,
		Amount:            order.TotalAmount,
		Version:           1,
	}
	if err := store.Payments().Create(context.Background(), pending); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	_, err := engine.RequestRefund(context.Background(), &RefundInput{
		PaymentID: pending.ID,
		Amount:    pending.Amount,
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}
