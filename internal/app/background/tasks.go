package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/merchkit/payment-service/internal/usecase/reconcile"
)

// BackgroundTasks owns the service's periodic jobs and the deferred webhook
// worker.
type BackgroundTasks struct {
	engine   reconcile.Engine
	deferred *DeferredQueue

	expireInterval time.Duration
}

func NewBackgroundTasks(engine reconcile.Engine, deferred *DeferredQueue, expireInterval time.Duration) *BackgroundTasks {
	return &BackgroundTasks{
		engine:         engine,
		deferred:       deferred,
		expireInterval: expireInterval,
	}
}

func (t *BackgroundTasks) StartAll(ctx context.Context) {
	go t.deferred.Run(ctx)
	go t.runExpiredOrderCancel(ctx)
}

func (t *BackgroundTasks) runExpiredOrderCancel(ctx context.Context) {
	ticker := time.NewTicker(t.expireInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.engine.CancelExpiredOrders(ctx); err != nil {
				slog.Error("expired order cancellation pass failed", "error", err)
			}
		}
	}
}
