package reconcile

import (
	"log/slog"
	"time"

	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/infrastructure/notifier"
)

// notifyTransition fans the new status out to kafka and the business
// callback URL. Both are fire-and-forget: they run outside the reconciliation
// transaction and never fail it.
func (uc *DefaultEngine) notifyTransition(order *domain.Order, status domain.OrderStatus) {
	if uc.Publisher != nil {
		go func(event domain.PaymentEventMessage) {
			if err := uc.Publisher.PublishPaymentEvent(event); err != nil {
				slog.Error("failed to publish payment event", "order_id", event.OrderID, "error", err.Error())
			}
		}(domain.PaymentEventMessage{
			OrderID:     order.ID,
			OrderNumber: order.Number,
			BusinessID:  order.BusinessID,
			Status:      string(status),
			Amount:      order.TotalAmount.StringFixed(2),
			Currency:    order.Currency,
			OccurredAt:  time.Now(),
		})
	}

	if order.CallbackURL != "" {
		notifier.SendCallback(order.CallbackURL, notifier.CallbackPayload{
			OrderID:     order.ID,
			OrderNumber: order.Number,
			Status:      string(status),
			Amount:      order.TotalAmount.StringFixed(2),
			Currency:    order.Currency,
			OccurredAt:  time.Now(),
		})
	}
}
