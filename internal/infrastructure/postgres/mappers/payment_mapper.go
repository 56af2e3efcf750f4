package mappers

import (
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/infrastructure/postgres/models"
)

func ToGORMPayment(payment *domain.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:                 payment.ID,
		OrderID:            payment.OrderID,
		ProviderPaymentID:  payment.ProviderPaymentID,
		Kind:               string(payment.Kind),
		Status:             string(payment.Status),
		Amount:             payment.Amount,
		RefundOf:           payment.RefundOf,
		RawProviderPayload: payment.RawProviderPayload,
		Version:            payment.Version,
		ReceivedAt:         payment.ReceivedAt,
		UpdatedAt:          payment.UpdatedAt,
	}
}

func ToDomainPayment(model *models.PaymentModel) *domain.Payment {
	return &domain.Payment{
		ID:                 model.ID,
		OrderID:            model.OrderID,
		ProviderPaymentID:  model.ProviderPaymentID,
		Kind:               domain.PaymentKind(model.Kind),
		Status:             domain.PaymentStatus(model.Status),
		Amount:             model.Amount,
		RefundOf:           model.RefundOf,
		RawProviderPayload: model.RawProviderPayload,
		Version:            model.Version,
		ReceivedAt:         model.ReceivedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}
