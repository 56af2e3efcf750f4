package repository

import (
	"context"

	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/infrastructure/postgres/mappers"
	"github.com/merchkit/payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

// DefaultAuditRepository only ever inserts. There is intentionally no update
// or delete method.
type DefaultAuditRepository struct {
	DB *gorm.DB
}

func NewDefaultAuditRepository(db *gorm.DB) *DefaultAuditRepository {
	return &DefaultAuditRepository{DB: db}
}

func (r *DefaultAuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	entryModel := mappers.ToGORMAuditEntry(entry)
	return r.DB.WithContext(ctx).Create(entryModel).Error
}

func (r *DefaultAuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditEntry, error) {
	var entryModels []models.AuditEntryModel
	err := r.DB.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("timestamp ASC").
		Find(&entryModels).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.AuditEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = mappers.ToDomainAuditEntry(&entryModels[i])
	}
	return entries, nil
}
