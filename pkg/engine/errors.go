package engine

import (
	"errors"
	"fmt"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
)

// Standardized engine errors.
var (
	ErrWorkflowInactive  = errors.New("workflow is inactive")
	ErrTriggerMismatch   = errors.New("trigger event does not match firing event")
	ErrNoTriggerNode     = errors.New("workflow has no trigger node")
	ErrNodeConfigMissing = errors.New("node config missing required field")
	ErrUnknownNodeType   = errors.New("unknown node type")
	ErrMaxDepthExceeded  = errors.New("traversal depth limit exceeded")
)

// NodeExecutionError wraps a handler failure with the node it came from. The
// whole traversal aborts on the first one.
type NodeExecutionError struct {
	NodeID string
	Kind   models.NodeType
	Err    error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %s (%s) failed: %v", e.NodeID, e.Kind, e.Err)
}

func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}

// IsWorkflowInactive checks if an error indicates an inactive workflow.
func IsWorkflowInactive(err error) bool {
	return errors.Is(err, ErrWorkflowInactive)
}

// IsTriggerMismatch checks if an error indicates a trigger/event mismatch.
func IsTriggerMismatch(err error) bool {
	return errors.Is(err, ErrTriggerMismatch)
}

// IsNodeExecutionError extracts the node failure wrapper, if any.
func IsNodeExecutionError(err error) (*NodeExecutionError, bool) {
	var nodeErr *NodeExecutionError
	ok := errors.As(err, &nodeErr)

	return nodeErr, ok
}
