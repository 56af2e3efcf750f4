package mappers

import (
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/infrastructure/postgres/models"
)

func ToGORMWebhookEvent(event *domain.WebhookEvent) *models.WebhookEventModel {
	return &models.WebhookEventModel{
		ID:              event.ID,
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.EventType,
		SignatureValid:  event.SignatureValid,
		RawPayload:      event.RawPayload,
		Outcome:         string(event.Outcome),
		ProcessedAt:     event.ProcessedAt,
	}
}

func ToDomainWebhookEvent(model *models.WebhookEventModel) *domain.WebhookEvent {
	return &domain.WebhookEvent{
		ID:              model.ID,
		Provider:        model.Provider,
		ProviderEventID: model.ProviderEventID,
		EventType:       model.EventType,
		SignatureValid:  model.SignatureValid,
		RawPayload:      model.RawPayload,
		Outcome:         domain.WebhookOutcome(model.Outcome),
		ProcessedAt:     model.ProcessedAt,
	}
}
