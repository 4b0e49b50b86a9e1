// Package persistence defines the repository boundary for workflow
// definitions and execution records, with standardized error types shared
// by all implementations.
package persistence

import (
	"context"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
)

// WorkflowRepository reads workflow definitions. Authoring lives in the
// wider CRM; the execution core only loads.
type WorkflowRepository interface {
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	ListActiveByTenant(ctx context.Context, tenantID string) ([]*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
}

// ExecutionRepository stores execution audit records.
type ExecutionRepository interface {
	Create(ctx context.Context, execution *models.Execution) error
	Update(ctx context.Context, execution *models.Execution) error
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error)
}

// Persistence aggregates the repositories of one backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
