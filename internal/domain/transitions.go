package domain

// Effect names a side effect the reconciliation engine must execute in the
// same transaction as the state write.
type Effect string

const (
	EffectReserveInventory Effect = "reserve_inventory"
	EffectReleaseInventory Effect = "release_inventory"
	EffectApprovePayment   Effect = "approve_payment"
	EffectRecordRefund     Effect = "record_refund"
)

type Transition struct {
	Next    OrderStatus
	Effects []Effect
}

type transitionKey struct {
	from  OrderStatus
	event EventType
}

// orderTransitions is the single source of truth for the order lifecycle.
// Every (status, event) pair absent from this table is rejected with
// ErrInvalidTransition; there are no silent no-ops for undefined pairs.
var orderTransitions = map[transitionKey]Transition{
	{OrderStatusPending, EventOrderConfirm}: {Next: OrderStatusConfirmed},
	{OrderStatusPending, EventOrderCancel}:  {Next: OrderStatusCancelled, Effects: []Effect{EffectReleaseInventory}},

	{OrderStatusConfirmed, EventOrderCancel}:     {Next: OrderStatusCancelled, Effects: []Effect{EffectReleaseInventory}},
	{OrderStatusConfirmed, EventPaymentApproved}: {Next: OrderStatusPaid, Effects: []Effect{EffectApprovePayment}},

	{OrderStatusPaid, EventOrderComplete}:   {Next: OrderStatusCompleted},
	{OrderStatusPaid, EventOrderRefund}:     {Next: OrderStatusRefunded, Effects: []Effect{EffectRecordRefund}},
	{OrderStatusPaid, EventPaymentRefunded}: {Next: OrderStatusRefunded, Effects: []Effect{EffectRecordRefund}},

	{OrderStatusCompleted, EventOrderRefund}:     {Next: OrderStatusRefunded, Effects: []Effect{EffectRecordRefund}},
	{OrderStatusCompleted, EventPaymentRefunded}: {Next: OrderStatusRefunded, Effects: []Effect{EffectRecordRefund}},

	// A partially refunded order keeps accepting refunds until the charge is
	// fully reversed; the conservation check bounds the total.
	{OrderStatusRefunded, EventOrderRefund}:     {Next: OrderStatusRefunded, Effects: []Effect{EffectRecordRefund}},
	{OrderStatusRefunded, EventPaymentRefunded}: {Next: OrderStatusRefunded, Effects: []Effect{EffectRecordRefund}},
}

// NextTransition looks up the transition for (from, event). ok is false for
// undefined pairs.
func NextTransition(from OrderStatus, event EventType) (Transition, bool) {
	t, ok := orderTransitions[transitionKey{from, event}]
	return t, ok
}

type paymentTransitionKey struct {
	from  PaymentStatus
	event EventType
}

var paymentTransitions = map[paymentTransitionKey]PaymentStatus{
	{PaymentStatusPending, EventPaymentApproved}:  PaymentStatusApproved,
	{PaymentStatusPending, EventPaymentRejected}:  PaymentStatusRejected,
	{PaymentStatusApproved, EventPaymentRefunded}: PaymentStatusRefunded,
	{PaymentStatusApproved, EventOrderRefund}:     PaymentStatusRefunded,
}

func NextPaymentStatus(from PaymentStatus, event EventType) (PaymentStatus, bool) {
	s, ok := paymentTransitions[paymentTransitionKey{from, event}]
	return s, ok
}
