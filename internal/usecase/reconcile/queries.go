package reconcile

import (
	"context"

	"github.com/merchkit/payment-service/internal/domain"
)

func (uc *DefaultEngine) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return uc.Store.Orders().GetByID(ctx, orderID)
}

func (uc *DefaultEngine) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return uc.Store.Payments().GetByID(ctx, paymentID)
}

func (uc *DefaultEngine) ListAudit(ctx context.Context, entityType, entityID string) ([]*domain.AuditEntry, error) {
	return uc.Store.Audit().ListByEntity(ctx, entityType, entityID)
}
