package credentials

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory credential store for tests and single-node
// development.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		creds: make(map[string]map[string]string),
	}
}

func credentialKey(tenantID, providerType string) string {
	return tenantID + ":" + providerType
}

// Set stores credentials for a tenant and provider.
func (s *MemoryStore) Set(tenantID, providerType string, values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds[credentialKey(tenantID, providerType)] = values
}

// GetIntegrationCredentials returns the stored credentials, or nil when
// absent.
func (s *MemoryStore) GetIntegrationCredentials(_ context.Context, tenantID, providerType string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.creds[credentialKey(tenantID, providerType)]
	if !ok {
		return nil, nil
	}

	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}

	return copied, nil
}
