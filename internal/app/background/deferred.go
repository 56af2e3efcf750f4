package background

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/usecase/reconcile"
)

// DeferredQueue buffers webhook events that failed transiently during the
// request so the provider gets an immediate acknowledgment. Events are
// re-applied by a single worker; deterministic rejections are dropped after
// logging because retrying cannot change the verdict.
type DeferredQueue struct {
	engine reconcile.Engine
	events chan *domain.NormalizedEvent
}

func NewDeferredQueue(engine reconcile.Engine, capacity int) *DeferredQueue {
	return &DeferredQueue{
		engine: engine,
		events: make(chan *domain.NormalizedEvent, capacity),
	}
}

// Defer enqueues the event without blocking. It reports false when the queue
// is full; the caller then fails the request so the provider retries.
func (q *DeferredQueue) Defer(event *domain.NormalizedEvent) bool {
	select {
	case q.events <- event:
		return true
	default:
		return false
	}
}

func (q *DeferredQueue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-q.events:
			q.replay(ctx, event)
		}
	}
}

func (q *DeferredQueue) replay(ctx context.Context, event *domain.NormalizedEvent) {
	const maxAttempts = 5

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		applyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		result, err := q.engine.ApplyEvent(applyCtx, event)
		cancel()

		switch {
		case err == nil:
			slog.Info("deferred webhook event applied",
				"provider", event.Provider,
				"event_id", event.ProviderEventID,
				"outcome", string(result.Outcome),
				"attempt", attempt)
			return
		case deterministicReplay(err):
			slog.Warn("deferred webhook event rejected, dropping",
				"provider", event.Provider,
				"event_id", event.ProviderEventID,
				"error", err)
			return
		}

		slog.Warn("deferred webhook event apply failed",
			"provider", event.Provider,
			"event_id", event.ProviderEventID,
			"attempt", attempt,
			"error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	slog.Error("deferred webhook event dropped after max attempts",
		"provider", event.Provider,
		"event_id", event.ProviderEventID)
}

func deterministicReplay(err error) bool {
	return errors.Is(err, domain.ErrStaleEvent) ||
		errors.Is(err, domain.ErrInvalidReference) ||
		errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrAmountMismatch) ||
		errors.Is(err, domain.ErrOverRefund)
}
