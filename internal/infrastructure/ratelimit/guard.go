package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Class partitions endpoints for admission control. Each class has its own
// capacity/window configuration.
type Class string

const (
	ClassAuth            Class = "auth"
	ClassWebhook         Class = "webhook"
	ClassPaymentMutation Class = "payment_mutation"
	ClassGeneral         Class = "general"
)

type Limit struct {
	Capacity int
	Window   time.Duration
}

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// CounterStore is the shared atomic counter backend. Incr bumps the counter
// for key within the current window and returns the new count.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Guard is the admission limiter keyed by (client identity, endpoint class).
// When the shared store is unavailable it degrades to per-process token
// buckets; the webhook class fails open instead, because dropping legitimate
// provider retries would stall reconciliation.
type Guard struct {
	limits map[Class]Limit
	store  CounterStore

	mu    sync.Mutex
	local map[string]*localLimiter

	stop      chan struct{}
	closeOnce sync.Once

	onThrottled func(class string)
	onFailOpen  func()
}

type localLimiter struct {
	limiter *rate.Limiter
	last    time.Time
}

type Option func(*Guard)

func WithThrottleHook(fn func(class string)) Option {
	return func(g *Guard) { g.onThrottled = fn }
}

func WithFailOpenHook(fn func()) Option {
	return func(g *Guard) { g.onFailOpen = fn }
}

func NewGuard(limits map[Class]Limit, store CounterStore, opts ...Option) *Guard {
	g := &Guard{
		limits: limits,
		store:  store,
		local:  make(map[string]*localLimiter),
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	go g.evictIdle()
	return g
}

func (g *Guard) Allow(ctx context.Context, identity string, class Class) Decision {
	limit, ok := g.limits[class]
	if !ok || limit.Capacity <= 0 {
		return Decision{Allowed: true}
	}

	key := fmt.Sprintf("%s|%s", identity, class)

	if g.store != nil {
		count, err := g.store.Incr(ctx, key, limit.Window)
		if err == nil {
			if count > int64(limit.Capacity) {
				return g.throttled(class, limit)
			}
			return Decision{Allowed: true}
		}

		// Store down. Webhook deliveries must not be dropped: an
		// over-admission here is racy-tolerant, a false reject is not.
		if class == ClassWebhook {
			slog.Warn("admission counter store unavailable, failing open for webhook class", "error", err.Error())
			if g.onFailOpen != nil {
				g.onFailOpen()
			}
			return Decision{Allowed: true}
		}
		slog.Warn("admission counter store unavailable, using local limiter", "error", err.Error())
	}

	if g.localAllow(key, limit) {
		return Decision{Allowed: true}
	}
	return g.throttled(class, limit)
}

func (g *Guard) throttled(class Class, limit Limit) Decision {
	if g.onThrottled != nil {
		g.onThrottled(string(class))
	}
	return Decision{Allowed: false, RetryAfter: limit.Window}
}

func (g *Guard) localAllow(key string, limit Limit) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.local[key]
	if !ok {
		perSecond := float64(limit.Capacity) / limit.Window.Seconds()
		l = &localLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Capacity)}
		g.local[key] = l
	}
	l.last = time.Now()
	return l.limiter.Allow()
}

// Close stops the background eviction goroutine. Safe to call more than once.
func (g *Guard) Close() {
	g.closeOnce.Do(func() { close(g.stop) })
}

func (g *Guard) evictIdle() {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-t.C:
			now := time.Now()
			g.mu.Lock()
			for key, l := range g.local {
				if now.Sub(l.last) > 30*time.Minute {
					delete(g.local, key)
				}
			}
			g.mu.Unlock()
		}
	}
}
