package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/merchkit/payment-service/internal/domain"
)

// MemoryInventory is the in-process InventoryService implementation. Stock
// management itself lives in another service; this keeps per-product
// reservation counters so order creation and cancellation stay symmetric.
type MemoryInventory struct {
	mu       sync.Mutex
	stock    map[string]int32
	reserved map[string]int32
}

func NewMemoryInventory(stock map[string]int32) *MemoryInventory {
	if stock == nil {
		stock = make(map[string]int32)
	}
	return &MemoryInventory{
		stock:    stock,
		reserved: make(map[string]int32),
	}
}

func (inv *MemoryInventory) Reserve(_ context.Context, items []domain.OrderItem) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	for _, item := range items {
		available, tracked := inv.stock[item.ProductID]
		if tracked && available-inv.reserved[item.ProductID] < item.Quantity {
			return fmt.Errorf("insufficient stock for product %s", item.ProductID)
		}
	}
	for _, item := range items {
		inv.reserved[item.ProductID] += item.Quantity
	}
	return nil
}

func (inv *MemoryInventory) Release(_ context.Context, items []domain.OrderItem) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	for _, item := range items {
		inv.reserved[item.ProductID] -= item.Quantity
		if inv.reserved[item.ProductID] < 0 {
			inv.reserved[item.ProductID] = 0
		}
	}
	return nil
}
