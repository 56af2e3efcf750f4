package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/merchkit/payment-service/internal/domain"
)

// EnvSecretsProvider resolves webhook secrets from environment variables of
// the form WEBHOOK_SECRET_<PROVIDER>. An empty value yields
// ErrSecretNotConfigured; there is no silent skip-validation fallback.
type EnvSecretsProvider struct{}

func NewEnvSecretsProvider() *EnvSecretsProvider {
	return &EnvSecretsProvider{}
}

func (p *EnvSecretsProvider) WebhookSecret(provider string) ([]byte, error) {
	key := fmt.Sprintf("WEBHOOK_SECRET_%s", strings.ToUpper(strings.ReplaceAll(provider, "-", "_")))
	secret := os.Getenv(key)
	if secret == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrSecretNotConfigured, key)
	}
	return []byte(secret), nil
}

// StaticSecretsProvider serves fixed secrets; used in tests and local setups.
type StaticSecretsProvider struct {
	Secrets map[string][]byte
}

func (p *StaticSecretsProvider) WebhookSecret(provider string) ([]byte, error) {
	secret, ok := p.Secrets[provider]
	if !ok || len(secret) == 0 {
		return nil, domain.ErrSecretNotConfigured
	}
	return secret, nil
}
