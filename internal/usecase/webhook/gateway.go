package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/merchkit/payment-service/internal/domain"
	"github.com/shopspring/decimal"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Webhook-Signature"

// Gateway authenticates and normalizes inbound provider notifications.
// Deduplication is not done here: the engine inserts the provider event id
// inside the transaction that applies the event, so the unique constraint is
// the dedup check.
type Gateway struct {
	secrets domain.SecretsProvider
	// allowUnverified skips signature verification when the secret is
	// absent. It is only honored outside production and must be switched on
	// explicitly in config; there is no implicit downgrade.
	allowUnverified bool
	production      bool
}

func NewGateway(secrets domain.SecretsProvider, allowUnverified, production bool) *Gateway {
	return &Gateway{
		secrets:         secrets,
		allowUnverified: allowUnverified && !production,
		production:      production,
	}
}

// providerPayload is the provider's wire format.
type providerPayload struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Payment struct {
		ID      string          `json:"id"`
		OrderID string          `json:"order_id"`
		Amount  decimal.Decimal `json:"amount"`
	} `json:"payment"`
}

// Verify computes the HMAC over the raw, unparsed bytes and compares it in
// constant time, then parses the payload into a NormalizedEvent.
func (g *Gateway) Verify(provider string, rawBody []byte, signature string) (*domain.NormalizedEvent, error) {
	signatureValid := false

	secret, err := g.secrets.WebhookSecret(provider)
	if err != nil {
		if !g.allowUnverified {
			return nil, fmt.Errorf("resolving secret for %s: %w", provider, domain.ErrSecretNotConfigured)
		}
		slog.Warn("webhook signature verification skipped: secret not configured", "provider", provider)
	} else {
		mac := hmac.New(sha256.New, secret)
		mac.Write(rawBody)
		expected := mac.Sum(nil)

		got, decodeErr := hex.DecodeString(signature)
		if decodeErr != nil || !hmac.Equal(expected, got) {
			return nil, domain.ErrSignatureInvalid
		}
		signatureValid = true
	}

	return g.normalize(provider, rawBody, signatureValid)
}

func (g *Gateway) normalize(provider string, rawBody []byte, signatureValid bool) (*domain.NormalizedEvent, error) {
	var payload providerPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if payload.EventID == "" || payload.Payment.ID == "" || payload.Payment.OrderID == "" {
		return nil, fmt.Errorf("%w: missing identifiers", domain.ErrMalformedPayload)
	}

	eventType, ok := eventTypes[payload.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unknown event type %q", domain.ErrMalformedPayload, payload.Type)
	}

	return &domain.NormalizedEvent{
		Provider:          provider,
		ProviderEventID:   payload.EventID,
		ProviderPaymentID: payload.Payment.ID,
		OrderID:           payload.Payment.OrderID,
		Type:              eventType,
		Amount:            payload.Payment.Amount,
		SignatureValid:    signatureValid,
		RawPayload:        rawBody,
		ReceivedAt:        time.Now(),
	}, nil
}

var eventTypes = map[string]domain.EventType{
	"payment.approved": domain.EventPaymentApproved,
	"payment.rejected": domain.EventPaymentRejected,
	"payment.refunded": domain.EventPaymentRefunded,
}

// Sign produces the signature the provider would send; used by tests and
// local tooling.
func Sign(secret, rawBody []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}
