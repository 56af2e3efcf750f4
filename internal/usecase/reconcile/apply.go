package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/merchkit/payment-service/internal/domain"
)

// maxApplyRetries bounds the internal retry loop after a version conflict.
const maxApplyRetries = 3

// ApplyEvent drives a normalized provider event through the state machine.
// The webhook event row is inserted inside the same transaction that applies
// the event, so duplicate delivery fails the unique constraint instead of
// producing a second economic effect. Deterministic rejections (stale,
// unknown reference, undefined transition, amount mismatch) commit the event
// record with its outcome and surface the error; only transient failures
// roll back so the provider can retry.
func (uc *DefaultEngine) ApplyEvent(ctx context.Context, event *domain.NormalizedEvent) (*ApplyResult, error) {
	var result *ApplyResult
	var err error

	for attempt := 0; attempt < maxApplyRetries; attempt++ {
		if attempt > 0 {
			if uc.Metrics != nil {
				uc.Metrics.RecordApplyRetry()
			}
			backoff(ctx, attempt)
		}

		result, err = uc.applyEventOnce(ctx, event)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		break
	}

	if errors.Is(err, domain.ErrVersionConflict) && uc.Metrics != nil {
		uc.Metrics.RecordVersionConflict(domain.EntityOrder)
	}
	if result != nil && uc.Metrics != nil {
		uc.Metrics.RecordWebhook(event.Provider, string(result.Outcome))
	}
	return result, err
}

func (uc *DefaultEngine) applyEventOnce(ctx context.Context, event *domain.NormalizedEvent) (*ApplyResult, error) {
	var outcome domain.WebhookOutcome
	var order *domain.Order
	var notify bool
	var applyErr error

	txErr := uc.Store.WithinTx(ctx, func(tx domain.Store) error {
		record := &domain.WebhookEvent{
			ID:              uuid.NewString(),
			Provider:        event.Provider,
			ProviderEventID: event.ProviderEventID,
			EventType:       string(event.Type),
			SignatureValid:  event.SignatureValid,
			RawPayload:      string(event.RawPayload),
			Outcome:         domain.WebhookOutcomeFailed,
			ProcessedAt:     time.Now(),
		}
		if err := tx.WebhookEvents().Insert(ctx, record); err != nil {
			return err
		}

		var err error
		outcome, order, notify, err = uc.reconcileEvent(ctx, tx, event)
		if err != nil {
			if !deterministic(err) {
				return err
			}
			// Keep the event record and its outcome; the caller still
			// sees the rejection, the provider gets a final answer.
			applyErr = err
		}

		return tx.WebhookEvents().SetOutcome(ctx, event.ProviderEventID, outcome)
	})

	if txErr != nil {
		if errors.Is(txErr, domain.ErrDuplicateEvent) {
			// Redelivery of an already-processed event: idempotent success.
			return &ApplyResult{Outcome: domain.WebhookOutcomeDuplicate}, nil
		}
		return nil, txErr
	}

	// Notifications go out only after the commit; a rolled-back transition
	// must never be announced.
	if notify {
		uc.notifyTransition(order, order.Status)
	}

	return &ApplyResult{Outcome: outcome, Order: order}, applyErr
}

// reconcileEvent runs inside the apply transaction and returns the webhook
// outcome to persist alongside any state it wrote. notify reports whether an
// order transition committed; the caller announces it after the commit.
func (uc *DefaultEngine) reconcileEvent(ctx context.Context, tx domain.Store, event *domain.NormalizedEvent) (domain.WebhookOutcome, *domain.Order, bool, error) {
	order, err := tx.Orders().GetByID(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return domain.WebhookOutcomeRejected, nil, false, fmt.Errorf("%w: order %s", domain.ErrInvalidReference, event.OrderID)
		}
		return domain.WebhookOutcomeFailed, nil, false, err
	}

	switch event.Type {
	case domain.EventPaymentApproved:
		return uc.reconcileApproved(ctx, tx, order, event)
	case domain.EventPaymentRejected:
		return uc.reconcileRejected(ctx, tx, order, event)
	case domain.EventPaymentRefunded:
		return uc.reconcileProviderRefund(ctx, tx, order, event)
	default:
		return domain.WebhookOutcomeRejected, order, false, fmt.Errorf("%w: event %s", domain.ErrInvalidTransition, event.Type)
	}
}

func (uc *DefaultEngine) reconcileApproved(ctx context.Context, tx domain.Store, order *domain.Order, event *domain.NormalizedEvent) (domain.WebhookOutcome, *domain.Order, bool, error) {
	payment, err := tx.Payments().GetByProviderPaymentID(ctx, event.ProviderPaymentID)
	if err != nil && !errors.Is(err, domain.ErrPaymentNotFound) {
		return domain.WebhookOutcomeFailed, order, false, err
	}

	// Defense in depth beyond event-level dedupe: a second "approved" for a
	// payment that is already approved is a no-op even when it arrives under
	// a fresh provider event id.
	if payment != nil && payment.Status == domain.PaymentStatusApproved {
		return domain.WebhookOutcomeDuplicate, order, false, nil
	}

	if !event.Amount.Equal(order.TotalAmount) {
		rejected := uc.paymentFromEvent(order, event, domain.PaymentStatusRejected)
		if payment == nil {
			if err := tx.Payments().Create(ctx, rejected); err != nil {
				return domain.WebhookOutcomeFailed, order, false, err
			}
		}
		return domain.WebhookOutcomeRejected, order, false,
			fmt.Errorf("%w: got %s, order total %s", domain.ErrAmountMismatch, event.Amount, order.TotalAmount)
	}

	transition, ok := domain.NextTransition(order.Status, domain.EventPaymentApproved)
	if !ok {
		if uc.Metrics != nil {
			uc.Metrics.RecordInvalidTransition(string(order.Status), string(event.Type))
		}
		return domain.WebhookOutcomeRejected, order, false,
			fmt.Errorf("%w: %s + %s", domain.ErrInvalidTransition, order.Status, event.Type)
	}

	if payment == nil {
		payment = uc.paymentFromEvent(order, event, domain.PaymentStatusPending)
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return domain.WebhookOutcomeFailed, order, false, err
		}
	}

	next, ok := domain.NextPaymentStatus(payment.Status, domain.EventPaymentApproved)
	if !ok {
		return domain.WebhookOutcomeRejected, order, false,
			fmt.Errorf("%w: payment %s + %s", domain.ErrInvalidTransition, payment.Status, event.Type)
	}
	if err := tx.Payments().UpdateStatus(ctx, payment.ID, payment.Version, next); err != nil {
		return domain.WebhookOutcomeFailed, order, false, err
	}

	if err := uc.commitOrderTransition(ctx, tx, order, transition, domain.ActorWebhook, ""); err != nil {
		return domain.WebhookOutcomeFailed, order, false, err
	}

	return domain.WebhookOutcomeApplied, order, true, nil
}

func (uc *DefaultEngine) reconcileRejected(ctx context.Context, tx domain.Store, order *domain.Order, event *domain.NormalizedEvent) (domain.WebhookOutcome, *domain.Order, bool, error) {
	payment, err := tx.Payments().GetByProviderPaymentID(ctx, event.ProviderPaymentID)
	if err != nil && !errors.Is(err, domain.ErrPaymentNotFound) {
		return domain.WebhookOutcomeFailed, order, false, err
	}

	// Out-of-order delivery: a late "rejected" after a locally recorded
	// "approved" never downgrades a paid order. Only an explicit refund
	// command reverses it.
	if payment != nil && payment.Status != domain.PaymentStatusPending {
		entry := &domain.AuditEntry{
			ID:         uuid.NewString(),
			EntityType: domain.EntityOrder,
			EntityID:   order.ID,
			FromState:  string(order.Status),
			ToState:    string(order.Status),
			Actor:      domain.ActorWebhook,
			Reason:     domain.ReasonIgnoredStaleEvent,
			Timestamp:  time.Now(),
		}
		if err := tx.Audit().Append(ctx, entry); err != nil {
			return domain.WebhookOutcomeFailed, order, false, err
		}
		return domain.WebhookOutcomeStale, order, false, domain.ErrStaleEvent
	}

	if payment == nil {
		rejected := uc.paymentFromEvent(order, event, domain.PaymentStatusRejected)
		if err := tx.Payments().Create(ctx, rejected); err != nil {
			return domain.WebhookOutcomeFailed, order, false, err
		}
		return domain.WebhookOutcomeApplied, order, false, nil
	}

	next, ok := domain.NextPaymentStatus(payment.Status, domain.EventPaymentRejected)
	if !ok {
		return domain.WebhookOutcomeRejected, order, false,
			fmt.Errorf("%w: payment %s + %s", domain.ErrInvalidTransition, payment.Status, event.Type)
	}
	if err := tx.Payments().UpdateStatus(ctx, payment.ID, payment.Version, next); err != nil {
		return domain.WebhookOutcomeFailed, order, false, err
	}
	return domain.WebhookOutcomeApplied, order, false, nil
}

func (uc *DefaultEngine) reconcileProviderRefund(ctx context.Context, tx domain.Store, order *domain.Order, event *domain.NormalizedEvent) (domain.WebhookOutcome, *domain.Order, bool, error) {
	payment, err := tx.Payments().GetByProviderPaymentID(ctx, event.ProviderPaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return domain.WebhookOutcomeRejected, order, false,
				fmt.Errorf("%w: payment %s", domain.ErrInvalidReference, event.ProviderPaymentID)
		}
		return domain.WebhookOutcomeFailed, order, false, err
	}

	if payment.Status == domain.PaymentStatusRefunded {
		return domain.WebhookOutcomeDuplicate, order, false, nil
	}

	transition, ok := domain.NextTransition(order.Status, domain.EventPaymentRefunded)
	if !ok {
		if uc.Metrics != nil {
			uc.Metrics.RecordInvalidTransition(string(order.Status), string(event.Type))
		}
		return domain.WebhookOutcomeRejected, order, false,
			fmt.Errorf("%w: %s + %s", domain.ErrInvalidTransition, order.Status, event.Type)
	}

	if err := uc.recordRefund(ctx, tx, order, payment, event.Amount, string(event.RawPayload)); err != nil {
		if deterministic(err) {
			return domain.WebhookOutcomeRejected, order, false, err
		}
		return domain.WebhookOutcomeFailed, order, false, err
	}

	if err := uc.commitOrderTransition(ctx, tx, order, transition, domain.ActorWebhook, ""); err != nil {
		return domain.WebhookOutcomeFailed, order, false, err
	}

	return domain.WebhookOutcomeApplied, order, true, nil
}

func (uc *DefaultEngine) paymentFromEvent(order *domain.Order, event *domain.NormalizedEvent, status domain.PaymentStatus) *domain.Payment {
	return &domain.Payment{
		ID:                 uuid.NewString(),
		OrderID:            order.ID,
		ProviderPaymentID:  event.ProviderPaymentID,
		Kind:               domain.PaymentKindCharge,
		Status:             status,
		Amount:             event.Amount,
		RawProviderPayload: string(event.RawPayload),
		Version:            1,
		ReceivedAt:         event.ReceivedAt,
	}
}

// deterministic reports whether the error is a final verdict on the event
// rather than a transient failure worth a provider retry.
func deterministic(err error) bool {
	return errors.Is(err, domain.ErrStaleEvent) ||
		errors.Is(err, domain.ErrInvalidReference) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrAmountMismatch) ||
		errors.Is(err, domain.ErrOverRefund) ||
		errors.Is(err, domain.ErrDuplicatePayment)
}

func backoff(ctx context.Context, attempt int) {
	d := time.Duration(attempt) * 50 * time.Millisecond
	d += time.Duration(rand.Int63n(int64(25 * time.Millisecond)))
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
