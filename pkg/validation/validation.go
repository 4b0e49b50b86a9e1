// Package validation checks workflow definitions before they are saved or
// executed: struct-level constraints, graph structure and per-node config
// schemas.
package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/schemas"
)

var ErrInvalidWorkflow = errors.New("invalid workflow")

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateWorkflow runs every check and returns the first failure.
func (v *Validator) ValidateWorkflow(workflow *models.Workflow) error {
	err := v.validate.Struct(workflow)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWorkflow, err)
	}

	return v.validateGraph(workflow)
}

func (v *Validator) validateGraph(workflow *models.Workflow) error {
	nodeIDs := make(map[string]struct{}, len(workflow.Nodes))
	triggers := 0

	for _, node := range workflow.Nodes {
		if _, duplicate := nodeIDs[node.ID]; duplicate {
			return fmt.Errorf("%w: duplicate node id %s", ErrInvalidWorkflow, node.ID)
		}

		nodeIDs[node.ID] = struct{}{}

		if !node.Type.Valid() {
			return fmt.Errorf("%w: node %s has unknown type %q", ErrInvalidWorkflow, node.ID, node.Type)
		}

		if node.IsTrigger() {
			triggers++

			if node.TriggerEvent == nil {
				return fmt.Errorf("%w: trigger node %s has no trigger event", ErrInvalidWorkflow, node.ID)
			}
		}

		err := schemas.ValidateNodeConfig(node)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidWorkflow, err)
		}
	}

	if triggers == 0 {
		return fmt.Errorf("%w: workflow has no trigger node", ErrInvalidWorkflow)
	}

	for _, edge := range workflow.Edges {
		if _, exists := nodeIDs[edge.Source]; !exists {
			return fmt.Errorf("%w: edge %s references unknown source %s", ErrInvalidWorkflow, edge.ID, edge.Source)
		}

		if _, exists := nodeIDs[edge.Target]; !exists {
			return fmt.Errorf("%w: edge %s references unknown target %s", ErrInvalidWorkflow, edge.ID, edge.Target)
		}
	}

	return nil
}
