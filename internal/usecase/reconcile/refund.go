package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/shopspring/decimal"
)

// RequestRefund reverses up to the refundable remainder of an approved
// payment. The conservation check and the refund row share the transaction
// with the order transition, so an over-refund can never slip in between a
// check and a write.
func (uc *DefaultEngine) RequestRefund(ctx context.Context, input *RefundInput) (*domain.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: refund amount must be positive", domain.ErrAmountMismatch)
	}
	actor := input.Actor
	if actor == "" {
		actor = domain.ActorUser
	}

	var refund *domain.Payment
	var err error

	for attempt := 0; attempt < maxApplyRetries; attempt++ {
		if attempt > 0 {
			if uc.Metrics != nil {
				uc.Metrics.RecordApplyRetry()
			}
			backoff(ctx, attempt)
		}

		refund, err = uc.requestRefundOnce(ctx, input, actor)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		break
	}

	if errors.Is(err, domain.ErrVersionConflict) && uc.Metrics != nil {
		uc.Metrics.RecordVersionConflict(domain.EntityPayment)
	}
	return refund, err
}

func (uc *DefaultEngine) requestRefundOnce(ctx context.Context, input *RefundInput, actor domain.AuditActor) (*domain.Payment, error) {
	var refund *domain.Payment
	var order *domain.Order

	err := uc.Store.WithinTx(ctx, func(tx domain.Store) error {
		payment, err := tx.Payments().GetByID(ctx, input.PaymentID)
		if err != nil {
			return err
		}
		if payment.Kind != domain.PaymentKindCharge {
			return fmt.Errorf("%w: payment %s is not a charge", domain.ErrInvalidReference, payment.ID)
		}
		if payment.Status != domain.PaymentStatusApproved && payment.Status != domain.PaymentStatusRefunded {
			return fmt.Errorf("%w: payment %s + %s", domain.ErrInvalidTransition, payment.Status, domain.EventOrderRefund)
		}

		order, err = tx.Orders().GetByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}

		transition, ok := domain.NextTransition(order.Status, domain.EventOrderRefund)
		if !ok {
			if uc.Metrics != nil {
				uc.Metrics.RecordInvalidTransition(string(order.Status), string(domain.EventOrderRefund))
			}
			return fmt.Errorf("%w: %s + %s", domain.ErrInvalidTransition, order.Status, domain.EventOrderRefund)
		}

		refund, err = uc.writeRefund(ctx, tx, order, payment, input.Amount, "")
		if err != nil {
			return err
		}

		return uc.commitOrderTransition(ctx, tx, order, transition, actor, "")
	})
	if err != nil {
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.RecordRefund(order.BusinessID, order.Currency)
	}
	uc.notifyTransition(order, order.Status)
	return refund, nil
}

// recordRefund is the provider-confirmed variant used by ApplyEvent.
func (uc *DefaultEngine) recordRefund(ctx context.Context, tx domain.Store, order *domain.Order, payment *domain.Payment, amount decimal.Decimal, rawPayload string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: refund amount must be positive", domain.ErrAmountMismatch)
	}
	_, err := uc.writeRefund(ctx, tx, order, payment, amount, rawPayload)
	return err
}

// writeRefund enforces conservation and appends the refund payment row.
// Refunds never rewrite history: the original charge keeps its row and the
// reversal is a new kind=REFUND payment.
func (uc *DefaultEngine) writeRefund(ctx context.Context, tx domain.Store, order *domain.Order, payment *domain.Payment, amount decimal.Decimal, rawPayload string) (*domain.Payment, error) {
	payments, err := tx.Payments().ListByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	approved := decimal.Zero
	refunded := decimal.Zero
	for _, p := range payments {
		switch {
		case p.Kind == domain.PaymentKindCharge &&
			(p.Status == domain.PaymentStatusApproved || p.Status == domain.PaymentStatusRefunded):
			approved = approved.Add(p.Amount)
		case p.Kind == domain.PaymentKindRefund:
			refunded = refunded.Add(p.Amount)
		}
	}

	refundable := approved.Sub(refunded)
	if amount.GreaterThan(refundable) {
		if uc.Metrics != nil {
			uc.Metrics.RecordOverRefundRejected()
		}
		return nil, fmt.Errorf("%w: requested %s, refundable %s", domain.ErrOverRefund, amount, refundable)
	}

	refund := &domain.Payment{
		ID:                 uuid.NewString(),
		OrderID:            order.ID,
		ProviderPaymentID:  uuid.NewString(),
		Kind:               domain.PaymentKindRefund,
		Status:             domain.PaymentStatusRefunded,
		Amount:             amount,
		RefundOf:           payment.ID,
		RawProviderPayload: rawPayload,
		Version:            1,
		ReceivedAt:         time.Now(),
	}
	if err := tx.Payments().Create(ctx, refund); err != nil {
		return nil, err
	}

	// The original charge flips to REFUNDED once fully reversed.
	if payment.Status == domain.PaymentStatusApproved && refunded.Add(amount).GreaterThanOrEqual(payment.Amount) {
		next, ok := domain.NextPaymentStatus(payment.Status, domain.EventOrderRefund)
		if ok {
			if err := tx.Payments().UpdateStatus(ctx, payment.ID, payment.Version, next); err != nil {
				return nil, err
			}
		}
	}

	return refund, nil
}
