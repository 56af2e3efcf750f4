package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/merchkit/payment-service/internal/domain"
)

// commitOrderTransition performs the version-checked state write, the
// inventory effects and the audit append. It must be called inside the apply
// transaction; payment-side effects are executed by the caller that owns the
// payment rows.
func (uc *DefaultEngine) commitOrderTransition(ctx context.Context, tx domain.Store, order *domain.Order, transition domain.Transition, actor domain.AuditActor, reason string) error {
	for _, effect := range transition.Effects {
		if effect == domain.EffectReleaseInventory && uc.Inventory != nil {
			if err := uc.Inventory.Release(ctx, order.Items); err != nil {
				return fmt.Errorf("releasing inventory: %w", err)
			}
		}
	}

	if err := tx.Orders().UpdateStatus(ctx, order.ID, order.Version, transition.Next); err != nil {
		return err
	}

	entry := &domain.AuditEntry{
		ID:         uuid.NewString(),
		EntityType: domain.EntityOrder,
		EntityID:   order.ID,
		FromState:  string(order.Status),
		ToState:    string(transition.Next),
		Actor:      actor,
		Reason:     reason,
		Timestamp:  time.Now(),
	}
	if err := tx.Audit().Append(ctx, entry); err != nil {
		return err
	}

	if uc.Metrics != nil {
		uc.Metrics.RecordTransition(string(order.Status), string(transition.Next), string(actor))
	}

	order.Status = transition.Next
	order.Version++
	return nil
}

// applyCommand is the shared path for user and system commands. It reloads
// the order and retries the whole transaction on version conflict, bounded
// by maxApplyRetries.
func (uc *DefaultEngine) applyCommand(ctx context.Context, orderID string, event domain.EventType, actor domain.AuditActor, reason string) (*domain.Order, error) {
	var order *domain.Order
	var err error

	for attempt := 0; attempt < maxApplyRetries; attempt++ {
		if attempt > 0 {
			if uc.Metrics != nil {
				uc.Metrics.RecordApplyRetry()
			}
			backoff(ctx, attempt)
		}

		order, err = uc.applyCommandOnce(ctx, orderID, event, actor, reason)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		break
	}

	if errors.Is(err, domain.ErrVersionConflict) && uc.Metrics != nil {
		uc.Metrics.RecordVersionConflict(domain.EntityOrder)
	}
	return order, err
}

func (uc *DefaultEngine) applyCommandOnce(ctx context.Context, orderID string, event domain.EventType, actor domain.AuditActor, reason string) (*domain.Order, error) {
	var order *domain.Order

	err := uc.Store.WithinTx(ctx, func(tx domain.Store) error {
		var err error
		order, err = tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		transition, ok := domain.NextTransition(order.Status, event)
		if !ok {
			if uc.Metrics != nil {
				uc.Metrics.RecordInvalidTransition(string(order.Status), string(event))
			}
			return fmt.Errorf("%w: %s + %s", domain.ErrInvalidTransition, order.Status, event)
		}

		return uc.commitOrderTransition(ctx, tx, order, transition, actor, reason)
	})
	if err != nil {
		return nil, err
	}

	uc.notifyTransition(order, order.Status)
	return order, nil
}

func (uc *DefaultEngine) ConfirmOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return uc.applyCommand(ctx, orderID, domain.EventOrderConfirm, domain.ActorUser, "")
}

func (uc *DefaultEngine) CompleteOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return uc.applyCommand(ctx, orderID, domain.EventOrderComplete, domain.ActorUser, "")
}

func (uc *DefaultEngine) CancelOrder(ctx context.Context, orderID string, actor domain.AuditActor, reason string) (*domain.Order, error) {
	return uc.applyCommand(ctx, orderID, domain.EventOrderCancel, actor, reason)
}

// CancelExpiredOrders sweeps orders stuck in PENDING past the configured TTL.
func (uc *DefaultEngine) CancelExpiredOrders(ctx context.Context) error {
	cutoff := time.Now().Add(-uc.PendingTTL)
	orders, err := uc.Store.Orders().FindExpiredPending(ctx, cutoff, 100)
	if err != nil {
		return err
	}

	for _, order := range orders {
		if _, err := uc.CancelOrder(ctx, order.ID, domain.ActorSystem, domain.ReasonExpired); err != nil {
			slog.Error("failed to cancel expired order", "order_id", order.ID, "error", err.Error())
			continue
		}
		slog.Info("order cancelled due to timeout", "order_id", order.ID)
	}
	return nil
}
