package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/merchkit/payment-service/internal/config"
	"github.com/merchkit/payment-service/internal/delivery/http/dto"
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/infrastructure/metrics"
	"github.com/merchkit/payment-service/internal/usecase/reconcile"
	"github.com/merchkit/payment-service/internal/usecase/webhook"
)

// Deferrer accepts events that could not be applied synchronously. Defer
// reports false when the queue is full.
type Deferrer interface {
	Defer(event *domain.NormalizedEvent) bool
}

type WebhookHandler struct {
	gateway  *webhook.Gateway
	engine   reconcile.Engine
	deferrer Deferrer
	metrics  *metrics.ReconciliationMetrics
	cfg      config.Webhook
}

func NewWebhookHandler(
	gateway *webhook.Gateway,
	engine reconcile.Engine,
	deferrer Deferrer,
	reconciliationMetrics *metrics.ReconciliationMetrics,
	cfg config.Webhook) *WebhookHandler {

	return &WebhookHandler{
		gateway:  gateway,
		engine:   engine,
		deferrer: deferrer,
		metrics:  reconciliationMetrics,
		cfg:      cfg,
	}
}

// HandleProviderEvent receives one provider notification. The body is read
// raw before any parsing: the signature covers the exact bytes on the wire.
func (h *WebhookHandler) HandleProviderEvent(c *gin.Context) {
	provider := c.Param("provider")
	start := time.Now()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxBodyBytes)
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.metrics.RecordVerifyFailure(provider, "body_read")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "bad_request", Message: "unreadable body"})
		return
	}

	event, err := h.gateway.Verify(provider, rawBody, c.GetHeader(webhook.SignatureHeader))
	if err != nil {
		h.respondVerifyError(c, provider, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.ProcessTimeout)
	defer cancel()

	result, err := h.engine.ApplyEvent(ctx, event)
	h.metrics.RecordWebhookDuration(provider, time.Since(start).Seconds())

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"outcome": string(result.Outcome)})

	case errors.Is(err, domain.ErrStaleEvent):
		// Final answer: acknowledged so the provider stops retrying, but the
		// event changed nothing.
		c.JSON(http.StatusOK, gin.H{"outcome": string(domain.WebhookOutcomeStale)})

	case errors.Is(err, domain.ErrInvalidReference),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrOverRefund):
		c.JSON(http.StatusBadRequest, gin.H{"outcome": string(domain.WebhookOutcomeRejected)})

	case errors.Is(err, domain.ErrVersionConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Code: "conflict", Message: "event contended, retry"})

	default:
		// Transient failure or deadline: hand the event to the background
		// queue and acknowledge with 202 so the provider is not blocked on
		// our recovery.
		if h.deferrer != nil && h.deferrer.Defer(event) {
			slog.Warn("webhook apply deferred",
				"provider", provider,
				"event_id", event.ProviderEventID,
				"error", err)
			c.JSON(http.StatusAccepted, gin.H{"outcome": "deferred"})
			return
		}
		slog.Error("webhook apply failed",
			"provider", provider,
			"event_id", event.ProviderEventID,
			"error", err)
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Code: "unavailable", Message: "temporarily unable to process event"})
	}
}

func (h *WebhookHandler) respondVerifyError(c *gin.Context, provider string, err error) {
	switch {
	case errors.Is(err, domain.ErrSignatureInvalid):
		h.metrics.RecordVerifyFailure(provider, "signature")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Code: "invalid_signature", Message: "signature verification failed"})
	case errors.Is(err, domain.ErrSecretNotConfigured):
		h.metrics.RecordVerifyFailure(provider, "secret_missing")
		slog.Error("webhook secret not configured", "provider", provider)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "internal", Message: "internal error"})
	case errors.Is(err, domain.ErrMalformedPayload):
		h.metrics.RecordVerifyFailure(provider, "malformed")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "malformed_payload", Message: "payload could not be parsed"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "internal", Message: "internal error"})
	}
}
