package web

// FireEventRequest is the ingress payload for a CRM domain event.
type FireEventRequest struct {
	Event    string         `json:"event"     validate:"required"`
	TenantID string         `json:"tenant_id" validate:"required"`
	Payload  map[string]any `json:"payload"`
}
