package repository

import (
	"context"
	"errors"

	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/infrastructure/postgres/mappers"
	"github.com/merchkit/payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultWebhookEventRepository struct {
	DB *gorm.DB
}

func NewDefaultWebhookEventRepository(db *gorm.DB) *DefaultWebhookEventRepository {
	return &DefaultWebhookEventRepository{DB: db}
}

// Insert records the delivery. The unique provider_event_id index turns a
// redelivered event into ErrDuplicateEvent at constraint level.
func (r *DefaultWebhookEventRepository) Insert(ctx context.Context, event *domain.WebhookEvent) error {
	eventModel := mappers.ToGORMWebhookEvent(event)
	if err := r.DB.WithContext(ctx).Create(eventModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEvent
		}
		return err
	}
	return nil
}

func (r *DefaultWebhookEventRepository) SetOutcome(ctx context.Context, providerEventID string, outcome domain.WebhookOutcome) error {
	return r.DB.WithContext(ctx).Model(&models.WebhookEventModel{}).
		Where("provider_event_id = ?", providerEventID).
		Update("outcome", string(outcome)).Error
}
