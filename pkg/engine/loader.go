package engine

import (
	"context"
	"fmt"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/validation"
)

// Loader fetches workflow definitions, enforces the tenant boundary and
// validates the definition before it reaches the walker.
type Loader struct {
	workflows persistence.WorkflowRepository
	validator *validation.Validator
}

func NewLoader(workflows persistence.WorkflowRepository) *Loader {
	return &Loader{
		workflows: workflows,
		validator: validation.New(),
	}
}

// Load returns the workflow when it exists, belongs to the tenant, is active
// and passes definition validation. A tenant mismatch reports not-found
// rather than revealing that the workflow exists in another tenant.
func (l *Loader) Load(ctx context.Context, workflowID, tenantID string) (*models.Workflow, error) {
	workflow, err := l.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.TenantID != tenantID {
		return nil, fmt.Errorf("%w: %s", persistence.ErrWorkflowNotFound, workflowID)
	}

	if !workflow.Active {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowInactive, workflowID)
	}

	err = l.validator.ValidateWorkflow(workflow)
	if err != nil {
		return nil, err
	}

	return workflow, nil
}
