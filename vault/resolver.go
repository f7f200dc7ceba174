package vault

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/nexus-hq/nexus/types"
)

// SecretClient is the vault backend the resolver reads from. The concrete
// implementation wraps the vault SDK bound to the operator's interactive
// token; tests substitute an in-memory map.
type SecretClient interface {
	// GetSecret returns the value of the named secret.
	GetSecret(ctx context.Context, name string) (string, error)
}

// Resolver resolves vendor credentials by name and caches them in process
// memory. A Resolver is scoped to a single run; the cache dies with it and
// is never written to disk. Safe for use from multiple goroutines.
type Resolver struct {
	client SecretClient
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]string
}

// NewResolver creates a resolver over the given backend. A nil logger
// discards debug output.
func NewResolver(client SecretClient, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		client: client,
		logger: logger,
		cache:  make(map[string]string),
	}
}

// Get resolves one vendor credential. The secret name is built from the
// normalized vendor id and purpose; repeat lookups for the same key are
// served from the cache without touching the backend.
func (r *Resolver) Get(ctx context.Context, vendorID string, purpose types.CredentialPurpose) (string, error) {
	key := types.CredentialKey{VendorID: vendorID, Purpose: purpose}
	return r.GetSecret(ctx, key.SecretName())
}

// GetSecret resolves a secret by its full vault name.
func (r *Resolver) GetSecret(ctx context.Context, name string) (string, error) {
	name = types.NormalizeSecretName(name)

	r.mu.Lock()
	if v, ok := r.cache[name]; ok {
		r.mu.Unlock()
		r.logger.Debug("credential served from cache", "secret", name)
		return v, nil
	}
	r.mu.Unlock()

	value, err := r.client.GetSecret(ctx, name)
	if err != nil {
		return "", classifyBackendError(name, err)
	}

	r.mu.Lock()
	r.cache[name] = value
	r.mu.Unlock()

	r.logger.Debug("credential retrieved from vault", "secret", name)
	return value, nil
}

// CachedNames returns the secret names currently held in the cache, in no
// particular order. Only names that were actually requested ever appear.
func (r *Resolver) CachedNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.cache))
	for name := range r.cache {
		names = append(names, name)
	}
	return names
}
