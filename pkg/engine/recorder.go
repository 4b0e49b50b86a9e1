package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/eventbus"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/events"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/log"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence"
)

// Recorder writes the audit record around one traversal and announces
// lifecycle transitions on the event bus. Every started execution receives
// exactly one terminal update; the engine enforces that contract.
type Recorder struct {
	executions persistence.ExecutionRepository
	publisher  eventbus.EventPublisher
	logger     *slog.Logger
}

// NewRecorder creates a recorder. publisher may be nil; lifecycle events are
// then skipped entirely.
func NewRecorder(executions persistence.ExecutionRepository, publisher eventbus.EventPublisher) *Recorder {
	return &Recorder{
		executions: executions,
		publisher:  publisher,
		logger:     log.WithModule("recorder"),
	}
}

// Start opens a record with status running.
func (r *Recorder) Start(ctx context.Context, workflowID, tenantID string, input any) (*models.Execution, error) {
	execution := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		TenantID:   tenantID,
		Status:     models.ExecutionStatusRunning,
		Input:      input,
		StartedAt:  time.Now().UTC(),
	}

	err := r.executions.Create(ctx, execution)
	if err != nil {
		return nil, err
	}

	r.publish(ctx, execution.ID, events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent),
		ExecutionID: execution.ID,
		WorkflowID:  workflowID,
		TenantID:    tenantID,
	})

	return execution, nil
}

// Complete performs the terminal success update.
func (r *Recorder) Complete(ctx context.Context, execution *models.Execution, output any) {
	now := time.Now().UTC()
	execution.Status = models.ExecutionStatusSuccess
	execution.Output = output
	execution.FinishedAt = &now

	err := r.executions.Update(ctx, execution)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to persist execution success",
			"execution_id", execution.ID, "error", err)
	}

	r.publish(ctx, execution.ID, events.ExecutionCompleted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionCompletedEvent),
		ExecutionID: execution.ID,
		WorkflowID:  execution.WorkflowID,
		TenantID:    execution.TenantID,
		Output:      output,
		Duration:    now.Sub(execution.StartedAt),
	})
}

// Fail performs the terminal failure update.
func (r *Recorder) Fail(ctx context.Context, execution *models.Execution, errMsg string) {
	now := time.Now().UTC()
	execution.Status = models.ExecutionStatusFailed
	execution.Error = errMsg
	execution.FinishedAt = &now

	err := r.executions.Update(ctx, execution)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to persist execution failure",
			"execution_id", execution.ID, "error", err)
	}

	r.publish(ctx, execution.ID, events.ExecutionFailed{
		BaseEvent:   events.NewBaseEvent(events.ExecutionFailedEvent),
		ExecutionID: execution.ID,
		WorkflowID:  execution.WorkflowID,
		TenantID:    execution.TenantID,
		Error:       errMsg,
		Duration:    now.Sub(execution.StartedAt),
	})
}

// publish is fire-and-forget: the audit stream must never affect the
// execution outcome.
func (r *Recorder) publish(ctx context.Context, key string, event eventbus.Event) {
	if r.publisher == nil {
		return
	}

	err := r.publisher.Publish(ctx, key, event)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to publish lifecycle event",
			"event_type", event.GetType(), "error", err)
	}
}
