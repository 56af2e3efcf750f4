package identity

import (
	"context"

	"github.com/merchkit/payment-service/internal/domain"
)

// StaticResolver maps API keys to client identities from configuration.
// Token issuance and role checks belong to the identity service; the
// reconciliation core only needs a stable admission key.
type StaticResolver struct {
	clients map[string]domain.Identity
}

func NewStaticResolver(clients map[string]domain.Identity) *StaticResolver {
	if clients == nil {
		clients = make(map[string]domain.Identity)
	}
	return &StaticResolver{clients: clients}
}

func (r *StaticResolver) Resolve(_ context.Context, apiKey string) (domain.Identity, bool) {
	id, ok := r.clients[apiKey]
	return id, ok
}
