// Package credentials provides access to per-tenant integration credentials.
// Encryption and credential CRUD belong to the wider CRM; this boundary
// only reads already-decrypted values.
package credentials

import "context"

// Store resolves integration credentials for a tenant and provider type
// (e.g. "whatsapp", "telegram", "slack", "twilio", "openai"). A nil map with
// nil error means the tenant has no credentials for that provider.
type Store interface {
	GetIntegrationCredentials(ctx context.Context, tenantID, providerType string) (map[string]string, error)
}
