package postgres

import (
	"context"

	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/infrastructure/postgres/repository"
	"gorm.io/gorm"
)

// Store implements domain.Store over a gorm connection. The same type wraps
// a transaction handle inside WithinTx, so repositories obtained from the
// callback argument all share one database transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Orders() domain.OrderRepository {
	return repository.NewDefaultOrderRepository(s.db)
}

func (s *Store) Payments() domain.PaymentRepository {
	return repository.NewDefaultPaymentRepository(s.db)
}

func (s *Store) WebhookEvents() domain.WebhookEventRepository {
	return repository.NewDefaultWebhookEventRepository(s.db)
}

func (s *Store) Audit() domain.AuditLog {
	return repository.NewDefaultAuditRepository(s.db)
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
