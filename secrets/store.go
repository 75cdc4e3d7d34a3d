package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/vault/api"

	"github.com/mpcops/node-provisioning/interfaces"
)

// Store resolves named secret references to their current values. The
// controller only ever reads: secret material is created and rotated by the
// provisioning layer or an operator.
type Store interface {
	Resolve(ctx context.Context, name interfaces.SecretName) (string, error)
}

// VaultStore reads secrets from a HashiCorp Vault KV v2 mount.
type VaultStore struct {
	client    *api.Client
	mountPath string
	dataPath  string
	log       *slog.Logger
}

// NewVaultStore creates a Vault-backed secret store.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - token: Vault token used for authentication
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: path within the mount holding this fleet's secrets
//   - log: structured logger for operational insights
func NewVaultStore(address, token, mountPath, dataPath string, log *slog.Logger) (*VaultStore, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.HttpClient = &http.Client{Timeout: 30 * time.Second}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	client.SetToken(token)

	return &VaultStore{
		client:    client,
		mountPath: strings.TrimSuffix(mountPath, "/"),
		dataPath:  strings.Trim(dataPath, "/"),
		log:       log,
	}, nil
}

// Resolve fetches the current value of the named secret. A missing secret or
// an unreachable Vault is reported as transient: callers poll with a bounded
// budget, so conditions expected to clear are not fatal here.
func (s *VaultStore) Resolve(ctx context.Context, name interfaces.SecretName) (string, error) {
	if err := name.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", interfaces.ErrMalformedInput, err)
	}

	path := fmt.Sprintf("%s/data/%s/%s", s.mountPath, s.dataPath, name)
	secret, err := s.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		s.log.Debug("Vault read failed", slog.String("secret", name.String()), "err", err)
		return "", fmt.Errorf("%w: %v", interfaces.ErrTransientInfra, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("%w: %s", interfaces.ErrSecretNotFound, name)
	}

	// KV v2 wraps the payload in a "data" object.
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("%w: unexpected Vault response shape for %s", interfaces.ErrMalformedInput, name)
	}
	value, ok := data["value"].(string)
	if !ok {
		return "", fmt.Errorf("%w: secret %s has no string value", interfaces.ErrMalformedInput, name)
	}

	return value, nil
}

// StaticStore is an in-memory secret store used in tests and local
// development. Values can be mutated while a waiter is polling, mirroring an
// operator filling in placeholder slots.
type StaticStore struct {
	mu     sync.Mutex
	values map[interfaces.SecretName]string
}

// NewStaticStore creates a store pre-populated with the given values.
func NewStaticStore(values map[interfaces.SecretName]string) *StaticStore {
	copied := make(map[interfaces.SecretName]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &StaticStore{values: copied}
}

// Resolve returns the stored value or ErrSecretNotFound.
func (s *StaticStore) Resolve(ctx context.Context, name interfaces.SecretName) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", interfaces.ErrSecretNotFound, name)
	}
	return value, nil
}

// Set stores a value, overwriting any previous one.
func (s *StaticStore) Set(name interfaces.SecretName, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}
