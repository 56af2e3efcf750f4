package domain

import "errors"

var (
	ErrSignatureInvalid    = errors.New("webhook signature invalid")
	ErrSecretNotConfigured = errors.New("webhook secret not configured")
	ErrMalformedPayload    = errors.New("malformed webhook payload")
	ErrDuplicateEvent      = errors.New("event already processed")
	ErrDuplicatePayment    = errors.New("provider payment already recorded")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrVersionConflict     = errors.New("version conflict")
	ErrStaleEvent          = errors.New("stale event ignored")
	ErrOverRefund          = errors.New("refund exceeds refundable amount")
	ErrAmountMismatch      = errors.New("amount does not match order total")
	ErrInvalidReference    = errors.New("referenced entity not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrThrottled           = errors.New("request throttled")
)
