package models

// ExecutionContext carries the mutable state of one traversal. It is created
// fresh per triggered execution, threaded through every node handler on a
// single goroutine, and discarded afterwards.
//
// Data starts as the event payload (a map) but loop iterations rebind it to
// the current item, which may be any JSON value. Variables holds
// "{nodeId}_output" entries, SetVariable writes and the loop-scoped
// loopIndex/loopItem keys; the map is shared across loop iterations, so a
// write in one iteration is visible in the next.
type ExecutionContext struct {
	Event     TriggerEventType `json:"event"`
	TenantID  string           `json:"tenant_id"`
	Data      any              `json:"data"`
	Variables map[string]any   `json:"variables"`
}

// NewExecutionContext builds a context for one firing of one workflow.
func NewExecutionContext(event TriggerEventType, tenantID string, data map[string]any) *ExecutionContext {
	return &ExecutionContext{
		Event:     event,
		TenantID:  tenantID,
		Data:      data,
		Variables: make(map[string]any),
	}
}

// DataMap returns Data as a map when it is one, otherwise nil.
func (c *ExecutionContext) DataMap() map[string]any {
	m, _ := c.Data.(map[string]any)

	return m
}

// WithData returns a copy of the context bound to different data. The
// Variables map is shared with the receiver, not copied: loop iterations see
// each other's variable writes.
func (c *ExecutionContext) WithData(data any) *ExecutionContext {
	return &ExecutionContext{
		Event:     c.Event,
		TenantID:  c.TenantID,
		Data:      data,
		Variables: c.Variables,
	}
}
