package models

import "time"

// Workflow is a tenant-authored automation graph. Definitions are read-only
// to the execution core; authoring and persistence live behind the
// repository boundary.
type Workflow struct {
	ID        string    `json:"id"         validate:"required"`
	TenantID  string    `json:"tenant_id"  validate:"required"`
	Name      string    `json:"name"       validate:"required,min=3"`
	Active    bool      `json:"active"`
	Nodes     []*Node   `json:"nodes"      validate:"required,dive"`
	Edges     []*Edge   `json:"edges"      validate:"dive"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Edge connects two nodes. Handle optionally labels the branch; for edges
// leaving a Condition node a handle containing "true" or "false" selects the
// branch that follows it.
type Edge struct {
	ID     string `json:"id"     validate:"required"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Handle string `json:"handle,omitempty"`
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// TriggerNode returns the first trigger node in the workflow, or nil.
func (w *Workflow) TriggerNode() *Node {
	for _, node := range w.Nodes {
		if node.IsTrigger() {
			return node
		}
	}

	return nil
}

// EdgesFrom returns the outgoing edges of a node in stored order. Traversal
// order is part of the execution contract, so this must never reorder.
func (w *Workflow) EdgesFrom(nodeID string) []*Edge {
	var edges []*Edge

	for _, edge := range w.Edges {
		if edge.Source == nodeID {
			edges = append(edges, edge)
		}
	}

	return edges
}

// HasTriggerFor reports whether any trigger node in the workflow listens for
// the given event.
func (w *Workflow) HasTriggerFor(event TriggerEventType) bool {
	for _, node := range w.Nodes {
		if node.IsTrigger() && node.TriggerEvent != nil && *node.TriggerEvent == event {
			return true
		}
	}

	return false
}
