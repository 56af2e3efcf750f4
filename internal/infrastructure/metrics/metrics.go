package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReconciliationMetrics covers the webhook pipeline and the state machine.
type ReconciliationMetrics struct {
	WebhooksReceivedTotal     prometheus.CounterVec
	WebhookVerifyFailureTotal prometheus.CounterVec
	WebhookProcessDuration    prometheus.HistogramVec

	TransitionsTotal      prometheus.CounterVec
	InvalidTransitionsTotal prometheus.CounterVec
	VersionConflictsTotal prometheus.CounterVec
	ApplyRetriesTotal     prometheus.Counter

	OrdersCreatedTotal       prometheus.CounterVec
	OrdersCreatedAmountTotal prometheus.CounterVec
	RefundsTotal             prometheus.CounterVec
	OverRefundRejectedTotal  prometheus.Counter

	AdmissionThrottledTotal prometheus.CounterVec
	AdmissionFailOpenTotal  prometheus.Counter
}

func NewReconciliationMetrics() *ReconciliationMetrics {
	return &ReconciliationMetrics{
		WebhooksReceivedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhooks_received_total",
				Help: "Inbound provider webhooks by outcome",
			},
			[]string{"provider", "outcome"},
		),

		WebhookVerifyFailureTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_verify_failures_total",
				Help: "Webhook signature or payload verification failures",
			},
			[]string{"provider", "reason"},
		),

		WebhookProcessDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webhook_process_duration_seconds",
				Help:    "Wall-clock time spent applying a webhook event",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"provider"},
		),

		TransitionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_transitions_total",
				Help: "Applied order state transitions",
			},
			[]string{"from", "to", "actor"},
		),

		InvalidTransitionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_invalid_transitions_total",
				Help: "Rejected (state, event) pairs absent from the transition table",
			},
			[]string{"from", "event"},
		),

		VersionConflictsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_version_conflicts_total",
				Help: "Optimistic concurrency conflicts by entity",
			},
			[]string{"entity"},
		),

		ApplyRetriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reconcile_apply_retries_total",
				Help: "Internal apply retries after a version conflict",
			},
		),

		OrdersCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Created orders",
			},
			[]string{"business_id", "currency"},
		),

		OrdersCreatedAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_created_amount_total",
				Help: "Total amount of created orders",
			},
			[]string{"business_id", "currency"},
		),

		RefundsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refunds_total",
				Help: "Recorded refunds",
			},
			[]string{"business_id", "currency"},
		),

		OverRefundRejectedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "over_refund_rejected_total",
				Help: "Refund requests rejected by the conservation check",
			},
		),

		AdmissionThrottledTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admission_throttled_total",
				Help: "Requests throttled by the admission guard",
			},
			[]string{"class"},
		),

		AdmissionFailOpenTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "admission_fail_open_total",
				Help: "Webhook-class requests admitted while the counter store was unavailable",
			},
		),
	}
}

func (m *ReconciliationMetrics) RecordWebhook(provider, outcome string) {
	m.WebhooksReceivedTotal.WithLabelValues(provider, outcome).Inc()
}

func (m *ReconciliationMetrics) RecordVerifyFailure(provider, reason string) {
	m.WebhookVerifyFailureTotal.WithLabelValues(provider, reason).Inc()
}

func (m *ReconciliationMetrics) RecordWebhookDuration(provider string, seconds float64) {
	m.WebhookProcessDuration.WithLabelValues(provider).Observe(seconds)
}

func (m *ReconciliationMetrics) RecordTransition(from, to, actor string) {
	m.TransitionsTotal.WithLabelValues(from, to, actor).Inc()
}

func (m *ReconciliationMetrics) RecordInvalidTransition(from, event string) {
	m.InvalidTransitionsTotal.WithLabelValues(from, event).Inc()
}

func (m *ReconciliationMetrics) RecordVersionConflict(entity string) {
	m.VersionConflictsTotal.WithLabelValues(entity).Inc()
}

func (m *ReconciliationMetrics) RecordApplyRetry() {
	m.ApplyRetriesTotal.Inc()
}

func (m *ReconciliationMetrics) RecordOrderCreated(businessID, currency string, amount float64) {
	m.OrdersCreatedTotal.WithLabelValues(businessID, currency).Inc()
	m.OrdersCreatedAmountTotal.WithLabelValues(businessID, currency).Add(amount)
}

func (m *ReconciliationMetrics) RecordRefund(businessID, currency string) {
	m.RefundsTotal.WithLabelValues(businessID, currency).Inc()
}

func (m *ReconciliationMetrics) RecordOverRefundRejected() {
	m.OverRefundRejectedTotal.Inc()
}

func (m *ReconciliationMetrics) RecordThrottled(class string) {
	m.AdmissionThrottledTotal.WithLabelValues(class).Inc()
}

func (m *ReconciliationMetrics) RecordFailOpen() {
	m.AdmissionFailOpenTotal.Inc()
}
