package models

import "time"

// ExecutionStatus is the lifecycle state of one execution record.
type ExecutionStatus string

const (
	ExecutionStatusRunning ExecutionStatus = "running"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
)

// Execution is the persisted audit record for one firing of one workflow.
// It is created with status running and receives exactly one terminal
// update (success or failed). User-visible failures surface here and
// nowhere else.
type Execution struct {
	ID         string          `json:"id"`
	WorkflowID string          `json:"workflow_id"`
	TenantID   string          `json:"tenant_id"`
	Status     ExecutionStatus `json:"status"`
	Input      any             `json:"input,omitempty"`
	Output     any             `json:"output,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
