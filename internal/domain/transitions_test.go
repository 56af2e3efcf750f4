package domain

import "testing"

func TestNextTransition(t *testing.T) {
	tests := []struct {
		from  OrderStatus
		event EventType
		want  OrderStatus
		ok    bool
	}{
		{OrderStatusPending, EventOrderConfirm, OrderStatusConfirmed, true},
		{OrderStatusPending, EventOrderCancel, OrderStatusCancelled, true},
		{OrderStatusConfirmed, EventPaymentApproved, OrderStatusPaid, true},
		{OrderStatusConfirmed, EventOrderCancel, OrderStatusCancelled, true},
		{OrderStatusPaid, EventOrderComplete, OrderStatusCompleted, true},
		{OrderStatusPaid, EventOrderRefund, OrderStatusRefunded, true},
		{OrderStatusCompleted, EventPaymentRefunded, OrderStatusRefunded, true},
		{OrderStatusRefunded, EventOrderRefund, OrderStatusRefunded, true},
		{OrderStatusRefunded, EventPaymentRefunded, OrderStatusRefunded, true},

		{OrderStatusPending, EventPaymentApproved, "", false},
		{OrderStatusPending, EventOrderComplete, "", false},
		{OrderStatusPaid, EventOrderCancel, "", false},
		{OrderStatusCancelled, EventOrderConfirm, "", false},
		{OrderStatusCompleted, EventOrderCancel, "", false},
	}

	for _, tc := range tests {
		got, ok := NextTransition(tc.from, tc.event)
		if ok != tc.ok {
			t.Fatalf("NextTransition(%s, %s) ok = %v, want %v", tc.from, tc.event, ok, tc.ok)
		}
		if ok && got.Next != tc.want {
			t.Fatalf("NextTransition(%s, %s) = %s, want %s", tc.from, tc.event, got.Next, tc.want)
		}
	}
}

func TestTerminalStatesHaveNoOutgoingEvents(t *testing.T) {
	events := []EventType{
		EventPaymentApproved, EventPaymentRejected,
		EventOrderConfirm, EventOrderComplete, EventOrderCancel,
	}

	for _, status := range []OrderStatus{OrderStatusCancelled, OrderStatusRefunded} {
		if !status.Terminal() {
			t.Fatalf("%s not marked terminal", status)
		}
		for _, event := range events {
			if _, ok := NextTransition(status, event); ok {
				t.Fatalf("terminal state %s accepts %s", status, event)
			}
		}
	}
}

func TestNextPaymentStatus(t *testing.T) {
	tests := []struct {
		from  PaymentStatus
		event EventType
		want  PaymentStatus
		ok    bool
	}{
		{PaymentStatusPending, EventPaymentApproved, PaymentStatusApproved, true},
		{PaymentStatusPending, EventPaymentRejected, PaymentStatusRejected, true},
		{PaymentStatusApproved, EventPaymentRefunded, PaymentStatusRefunded, true},
		{PaymentStatusApproved, EventOrderRefund, PaymentStatusRefunded, true},

		{PaymentStatusApproved, EventPaymentApproved, "", false},
		{PaymentStatusRejected, EventPaymentApproved, "", false},
		{PaymentStatusRefunded, EventPaymentRefunded, "", false},
	}

	for _, tc := range tests {
		got, ok := NextPaymentStatus(tc.from, tc.event)
		if ok != tc.ok {
			t.Fatalf("NextPaymentStatus(%s, %s) ok = %v, want %v", tc.from, tc.event, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("NextPaymentStatus(%s, %s) = %s, want %s", tc.from, tc.event, got, tc.want)
		}
	}
}
