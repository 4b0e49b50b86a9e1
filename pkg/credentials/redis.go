package credentials

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// RedisStore reads tenant integration credentials from Redis hashes under
// "credentials:{tenant}:{provider}". The CRM's credential service writes
// them there after decryption.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed credential store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// GetIntegrationCredentials returns all fields of the credential hash, or
// nil when the hash does not exist.
func (s *RedisStore) GetIntegrationCredentials(ctx context.Context, tenantID, providerType string) (map[string]string, error) {
	key := fmt.Sprintf("credentials:%s:%s", tenantID, providerType)

	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials %s: %w", key, err)
	}

	if len(values) == 0 {
		return nil, nil
	}

	return values, nil
}
