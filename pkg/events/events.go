// Package events defines the event types carried on the automation bus:
// inbound CRM domain events and outbound execution lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Bus topics. CRM business operations publish to the domain topic; the
// execution topic carries lifecycle events for audit consumers.
const (
	DomainTopic    = "litecrm.domain.events"
	ExecutionTopic = "litecrm.automation.events"
)

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Inbound domain events.
	DomainEventType EventType = "crm.domain.event"

	// Execution lifecycle events.
	ExecutionStartedEvent   EventType = "automation.execution.started"
	ExecutionCompletedEvent EventType = "automation.execution.completed"
	ExecutionFailedEvent    EventType = "automation.execution.failed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent builds the shared envelope for an event.
func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// DomainEvent is a CRM business event (lead created, task completed, ...)
// published fire-and-forget from unrelated operations. The event router
// consumes it; publishing never blocks or fails the originating request.
type DomainEvent struct {
	BaseEvent

	Name     string         `json:"name"`
	TenantID string         `json:"tenant_id"`
	Payload  map[string]any `json:"payload,omitempty"`
}

func (e DomainEvent) GetType() EventType {
	return DomainEventType
}

type ExecutionStarted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	WorkflowID  string `json:"workflow_id"`
	TenantID    string `json:"tenant_id"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	WorkflowID  string        `json:"workflow_id"`
	TenantID    string        `json:"tenant_id"`
	Output      any           `json:"output,omitempty"`
	Duration    time.Duration `json:"duration"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	WorkflowID  string        `json:"workflow_id"`
	TenantID    string        `json:"tenant_id"`
	Error       string        `json:"error"`
	Duration    time.Duration `json:"duration"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}
