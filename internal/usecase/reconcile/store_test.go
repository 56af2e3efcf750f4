package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/merchkit/payment-service/internal/domain"
)

// memStore is an in-memory domain.Store with snapshot rollback, enough to
// exercise the engine's transactional semantics without a database.
type memStore struct {
	mu   sync.Mutex
	data memData

	// orderUpdateHook runs before every order UpdateStatus; tests use it to
	// inject version conflicts and transient failures.
	orderUpdateHook func() error

	// eventOutcomeHook runs before every webhook event SetOutcome; tests use
	// it to fail the write at the tail of the apply transaction.
	eventOutcomeHook func() error
}

type memData struct {
	orders   map[string]*domain.Order
	payments map[string]*domain.Payment
	events   map[string]*domain.WebhookEvent
	audit    []*domain.AuditEntry
}

func newMemStore() *memStore {
	return &memStore{data: memData{
		orders:   make(map[string]*domain.Order),
		payments: make(map[string]*domain.Payment),
		events:   make(map[string]*domain.WebhookEvent),
	}}
}

func (d memData) clone() memData {
	out := memData{
		orders:   make(map[string]*domain.Order, len(d.orders)),
		payments: make(map[string]*domain.Payment, len(d.payments)),
		events:   make(map[string]*domain.WebhookEvent, len(d.events)),
		audit:    append([]*domain.AuditEntry(nil), d.audit...),
	}
	for id, o := range d.orders {
		cp := *o
		cp.Items = append([]domain.OrderItem(nil), o.Items...)
		out.orders[id] = &cp
	}
	for id, p := range d.payments {
		cp := *p
		out.payments[id] = &cp
	}
	for id, e := range d.events {
		cp := *e
		out.events[id] = &cp
	}
	return out
}

func (s *memStore) Orders() domain.OrderRepository   { return &memOrders{s: s, locking: true} }
func (s *memStore) Payments() domain.PaymentRepository {
	return &memPayments{s: s, locking: true}
}
func (s *memStore) WebhookEvents() domain.WebhookEventRepository {
	return &memEvents{s: s, locking: true}
}
func (s *memStore) Audit() domain.AuditLog { return &memAudit{s: s, locking: true} }

func (s *memStore) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&txStore{s: s}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// txStore operates under the lock already held by WithinTx.
type txStore struct{ s *memStore }

func (t *txStore) Orders() domain.OrderRepository               { return &memOrders{s: t.s} }
func (t *txStore) Payments() domain.PaymentRepository           { return &memPayments{s: t.s} }
func (t *txStore) WebhookEvents() domain.WebhookEventRepository { return &memEvents{s: t.s} }
func (t *txStore) Audit() domain.AuditLog                       { return &memAudit{s: t.s} }

func (t *txStore) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return fn(t)
}

type memOrders struct {
	s       *memStore
	locking bool
}

func (r *memOrders) unlock() func() {
	if r.locking {
		r.s.mu.Lock()
		return r.s.mu.Unlock
	}
	return func() {}
}

func (r *memOrders) Create(ctx context.Context, order *domain.Order) error {
	defer r.unlock()()
	cp := *order
	cp.Items = append([]domain.OrderItem(nil), order.Items...)
	r.s.data.orders[order.ID] = &cp
	return nil
}

func (r *memOrders) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	defer r.unlock()()
	o, ok := r.s.data.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (r *memOrders) UpdateStatus(ctx context.Context, orderID string, expectedVersion int64, newStatus domain.OrderStatus) error {
	defer r.unlock()()
	if r.s.orderUpdateHook != nil {
		if err := r.s.orderUpdateHook(); err != nil {
			return err
		}
	}
	o, ok := r.s.data.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	o.Status = newStatus
	o.Version++
	o.UpdatedAt = time.Now()
	return nil
}

func (r *memOrders) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	defer r.unlock()()
	var out []*domain.Order
	for _, o := range r.s.data.orders {
		if o.Status == domain.OrderStatusPending && o.CreatedAt.Before(cutoff) {
			cp := *o
			out = append(out, &cp)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

type memPayments struct {
	s       *memStore
	locking bool
}

func (r *memPayments) unlock() func() {
	if r.locking {
		r.s.mu.Lock()
		return r.s.mu.Unlock
	}
	return func() {}
}

func (r *memPayments) Create(ctx context.Context, payment *domain.Payment) error {
	defer r.unlock()()
	for _, p := range r.s.data.payments {
		if p.ProviderPaymentID == payment.ProviderPaymentID {
			return domain.ErrDuplicatePayment
		}
	}
	cp := *payment
	r.s.data.payments[payment.ID] = &cp
	return nil
}

func (r *memPayments) GetByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	defer r.unlock()()
	p, ok := r.s.data.payments[paymentID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPayments) GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*domain.Payment, error) {
	defer r.unlock()()
	for _, p := range r.s.data.payments {
		if p.ProviderPaymentID == providerPaymentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (r *memPayments) ListByOrderID(ctx context.Context, orderID string) ([]*domain.Payment, error) {
	defer r.unlock()()
	var out []*domain.Payment
	for _, p := range r.s.data.payments {
		if p.OrderID == orderID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memPayments) UpdateStatus(ctx context.Context, paymentID string, expectedVersion int64, newStatus domain.PaymentStatus) error {
	defer r.unlock()()
	p, ok := r.s.data.payments[paymentID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	if p.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	p.Status = newStatus
	p.Version++
	p.UpdatedAt = time.Now()
	return nil
}

type memEvents struct {
	s       *memStore
	locking bool
}

func (r *memEvents) unlock() func() {
	if r.locking {
		r.s.mu.Lock()
		return r.s.mu.Unlock
	}
	return func() {}
}

func (r *memEvents) Insert(ctx context.Context, event *domain.WebhookEvent) error {
	defer r.unlock()()
	if _, ok := r.s.data.events[event.ProviderEventID]; ok {
		return domain.ErrDuplicateEvent
	}
	cp := *event
	r.s.data.events[event.ProviderEventID] = &cp
	return nil
}

func (r *memEvents) SetOutcome(ctx context.Context, providerEventID string, outcome domain.WebhookOutcome) error {
	defer r.unlock()()
	if r.s.eventOutcomeHook != nil {
		if err := r.s.eventOutcomeHook(); err != nil {
			return err
		}
	}
	e, ok := r.s.data.events[providerEventID]
	if !ok {
		return errors.New("event not recorded")
	}
	e.Outcome = outcome
	return nil
}

type memAudit struct {
	s       *memStore
	locking bool
}

func (r *memAudit) unlock() func() {
	if r.locking {
		r.s.mu.Lock()
		return r.s.mu.Unlock
	}
	return func() {}
}

func (r *memAudit) Append(ctx context.Context, entry *domain.AuditEntry) error {
	defer r.unlock()()
	cp := *entry
	r.s.data.audit = append(r.s.data.audit, &cp)
	return nil
}

func (r *memAudit) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditEntry, error) {
	defer r.unlock()()
	var out []*domain.AuditEntry
	for _, e := range r.s.data.audit {
		if e.EntityType == entityType && e.EntityID == entityID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeInventory counts reservations and releases per product.
type fakeInventory struct {
	mu       sync.Mutex
	reserved map[string]int32
	released map[string]int32
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		reserved: make(map[string]int32),
		released: make(map[string]int32),
	}
}

func (f *fakeInventory) Reserve(ctx context.Context, items []domain.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		f.reserved[item.ProductID] += item.Quantity
	}
	return nil
}

func (f *fakeInventory) Release(ctx context.Context, items []domain.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		f.released[item.ProductID] += item.Quantity
	}
	return nil
}

// recordingPublisher captures every published message. Publishing happens on
// a separate goroutine, so reads go through messages().
type recordingPublisher struct {
	mu   sync.Mutex
	sent []domain.PaymentEventMessage
}

func (p *recordingPublisher) PublishPaymentEvent(event domain.PaymentEventMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, event)
	return nil
}

func (p *recordingPublisher) messages() []domain.PaymentEventMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.PaymentEventMessage(nil), p.sent...)
}

func newTestEngine(store domain.Store) *DefaultEngine {
	return &DefaultEngine{
		Store:      store,
		PendingTTL: 30 * time.Minute,
		newNumber:  func() string { return "ORDTESTNUMBER0" },
	}
}
