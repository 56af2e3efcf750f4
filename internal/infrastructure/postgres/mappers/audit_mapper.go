package mappers

import (
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/infrastructure/postgres/models"
)

func ToGORMAuditEntry(entry *domain.AuditEntry) *models.AuditEntryModel {
	return &models.AuditEntryModel{
		ID:         entry.ID,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		FromState:  entry.FromState,
		ToState:    entry.ToState,
		Actor:      string(entry.Actor),
		Reason:     entry.Reason,
		Timestamp:  entry.Timestamp,
	}
}

func ToDomainAuditEntry(model *models.AuditEntryModel) *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:         model.ID,
		EntityType: model.EntityType,
		EntityID:   model.EntityID,
		FromState:  model.FromState,
		ToState:    model.ToState,
		Actor:      domain.AuditActor(model.Actor),
		Reason:     model.Reason,
		Timestamp:  model.Timestamp,
	}
}
