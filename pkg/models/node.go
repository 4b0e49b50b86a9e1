// Package models defines the core domain models for node-based CRM automation.
package models

// NodeType identifies the behavior of an automation node. The set is closed:
// the interpreter dispatches on it and rejects anything else.
type NodeType string

const (
	NodeTypeTrigger      NodeType = "trigger"
	NodeTypeHTTPRequest  NodeType = "http_request"
	NodeTypeEmail        NodeType = "email"
	NodeTypeDelay        NodeType = "delay"
	NodeTypeCondition    NodeType = "condition"
	NodeTypeSetVariable  NodeType = "set_variable"
	NodeTypeWebhook      NodeType = "webhook"
	NodeTypeAICompletion NodeType = "ai_completion"
	NodeTypeWhatsApp     NodeType = "whatsapp"
	NodeTypeTelegram     NodeType = "telegram"
	NodeTypeSlack        NodeType = "slack"
	NodeTypeSMS          NodeType = "sms"
	NodeTypeLog          NodeType = "log"
	NodeTypeTransform    NodeType = "transform"
	NodeTypeFilter       NodeType = "filter"
	NodeTypeLoop         NodeType = "loop"
	NodeTypeMerge        NodeType = "merge"
	NodeTypeSplit        NodeType = "split"
)

var nodeTypes = map[NodeType]struct{}{
	NodeTypeTrigger:      {},
	NodeTypeHTTPRequest:  {},
	NodeTypeEmail:        {},
	NodeTypeDelay:        {},
	NodeTypeCondition:    {},
	NodeTypeSetVariable:  {},
	NodeTypeWebhook:      {},
	NodeTypeAICompletion: {},
	NodeTypeWhatsApp:     {},
	NodeTypeTelegram:     {},
	NodeTypeSlack:        {},
	NodeTypeSMS:          {},
	NodeTypeLog:          {},
	NodeTypeTransform:    {},
	NodeTypeFilter:       {},
	NodeTypeLoop:         {},
	NodeTypeMerge:        {},
	NodeTypeSplit:        {},
}

// Valid reports whether t is a member of the closed node type set.
func (t NodeType) Valid() bool {
	_, ok := nodeTypes[t]

	return ok
}

// Node is one step in a workflow graph. Config is interpreted per node type;
// TriggerEvent is meaningful only when Type is NodeTypeTrigger.
type Node struct {
	ID           string            `json:"id"            validate:"required"`
	Type         NodeType          `json:"type"          validate:"required"`
	Name         string            `json:"name"`
	Config       map[string]any    `json:"config"`
	TriggerEvent *TriggerEventType `json:"trigger_event,omitempty"`
}

// IsTrigger reports whether the node is a trigger node.
func (n *Node) IsTrigger() bool {
	return n.Type == NodeTypeTrigger
}

// ConfigString returns the string value for key, or "" when absent or not a
// string.
func (n *Node) ConfigString(key string) string {
	if n.Config == nil {
		return ""
	}

	s, _ := n.Config[key].(string)

	return s
}
