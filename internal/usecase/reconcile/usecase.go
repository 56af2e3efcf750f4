package reconcile

import (
	"context"
	"log"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/infrastructure/metrics"
	"github.com/shopspring/decimal"
)

type Engine interface {
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*domain.Order, error)
	ConfirmOrder(ctx context.Context, orderID string) (*domain.Order, error)
	CompleteOrder(ctx context.Context, orderID string) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID string, actor domain.AuditActor, reason string) (*domain.Order, error)
	RequestRefund(ctx context.Context, input *RefundInput) (*domain.Payment, error)
	CancelExpiredOrders(ctx context.Context) error

	ApplyEvent(ctx context.Context, event *domain.NormalizedEvent) (*ApplyResult, error)

	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	ListAudit(ctx context.Context, entityType, entityID string) ([]*domain.AuditEntry, error)
}

type CreateOrderInput struct {
	BusinessID  string
	CustomerID  string
	Currency    string
	CallbackURL string
	Items       []CreateOrderItem
}

type CreateOrderItem struct {
	ProductID string
	Quantity  int32
	UnitPrice decimal.Decimal
}

type RefundInput struct {
	PaymentID string
	Amount    decimal.Decimal
	Actor     domain.AuditActor
}

type ApplyResult struct {
	Outcome domain.WebhookOutcome
	Order   *domain.Order
}

// DefaultEngine is the sole writer of order and payment state. All
// mutations funnel through the transition table and a version-checked
// transactional commit.
type DefaultEngine struct {
	Store      domain.Store
	Inventory  domain.InventoryService
	Publisher  domain.NotificationPublisher
	Metrics    *metrics.ReconciliationMetrics
	PendingTTL time.Duration

	newNumber func() string
}

func NewDefaultEngine(
	store domain.Store,
	inventoryService domain.InventoryService,
	publisher domain.NotificationPublisher,
	reconciliationMetrics *metrics.ReconciliationMetrics,
	pendingTTL time.Duration) *DefaultEngine {

	numberGen, err := nanoid.CustomASCII("0123456789ABCDEFGHJKMNPQRSTVWXYZ", 14)
	if err != nil {
		log.Fatalf("failed to init order number generator: %v", err)
	}

	return &DefaultEngine{
		Store:      store,
		Inventory:  inventoryService,
		Publisher:  publisher,
		Metrics:    reconciliationMetrics,
		PendingTTL: pendingTTL,
		newNumber:  numberGen,
	}
}
