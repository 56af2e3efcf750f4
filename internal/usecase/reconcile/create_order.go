package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/shopspring/decimal"
)

func (uc *DefaultEngine) CreateOrder(ctx context.Context, input *CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	orderID := uuid.NewString()
	items := make([]domain.OrderItem, len(input.Items))
	total := decimal.Zero
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item %s: quantity must be positive", item.ProductID)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("item %s: unit price must not be negative", item.ProductID)
		}
		subtotal := item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		items[i] = domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  subtotal,
		}
		total = total.Add(subtotal)
	}

	if uc.Inventory != nil {
		if err := uc.Inventory.Reserve(ctx, items); err != nil {
			return nil, fmt.Errorf("reserving inventory: %w", err)
		}
	}

	order := &domain.Order{
		ID:          orderID,
		Number:      uc.newNumber(),
		BusinessID:  input.BusinessID,
		CustomerID:  input.CustomerID,
		Status:      domain.OrderStatusPending,
		TotalAmount: total,
		Currency:    input.Currency,
		CallbackURL: input.CallbackURL,
		Version:     1,
		Items:       items,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	err := uc.Store.WithinTx(ctx, func(tx domain.Store) error {
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		entry := &domain.AuditEntry{
			ID:         uuid.NewString(),
			EntityType: domain.EntityOrder,
			EntityID:   order.ID,
			FromState:  "",
			ToState:    string(domain.OrderStatusPending),
			Actor:      domain.ActorUser,
			Timestamp:  time.Now(),
		}
		return tx.Audit().Append(ctx, entry)
	})
	if err != nil {
		// Keep reservation and persistence symmetric.
		if uc.Inventory != nil {
			_ = uc.Inventory.Release(ctx, items)
		}
		return nil, err
	}

	if uc.Metrics != nil {
		amount, _ := total.Float64()
		uc.Metrics.RecordOrderCreated(order.BusinessID, order.Currency, amount)
	}
	uc.notifyTransition(order, domain.OrderStatusPending)

	return order, nil
}
