package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
)

func eventPtr(event models.TriggerEventType) *models.TriggerEventType {
	return &event
}

func validWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:       "wf-1",
		TenantID: "t1",
		Name:     "Lead alert",
		Active:   true,
		Nodes: []*models.Node{
			{ID: "trigger-1", Type: models.NodeTypeTrigger, TriggerEvent: eventPtr(models.TriggerEventLeadCreated)},
			{ID: "slack-1", Type: models.NodeTypeSlack, Config: map[string]any{"message": "hi"}},
		},
		Edges: []*models.Edge{
			{ID: "e1", Source: "trigger-1", Target: "slack-1"},
		},
	}
}

func TestValidateWorkflowAccepts(t *testing.T) {
	require.NoError(t, New().ValidateWorkflow(validWorkflow()))
}

func TestValidateWorkflowRejectsUnknownNodeType(t *testing.T) {
	workflow := validWorkflow()
	workflow.Nodes[1].Type = models.NodeType("quantum")

	err := New().ValidateWorkflow(workflow)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidWorkflow)
}

func TestValidateWorkflowRejectsMissingTrigger(t *testing.T) {
	workflow := validWorkflow()
	workflow.Nodes = workflow.Nodes[1:]
	workflow.Edges = nil

	err := New().ValidateWorkflow(workflow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no trigger node")
}

func TestValidateWorkflowRejectsTriggerWithoutEvent(t *testing.T) {
	workflow := validWorkflow()
	workflow.Nodes[0].TriggerEvent = nil

	require.Error(t, New().ValidateWorkflow(workflow))
}

func TestValidateWorkflowRejectsDanglingEdge(t *testing.T) {
	workflow := validWorkflow()
	workflow.Edges = append(workflow.Edges, &models.Edge{ID: "e2", Source: "slack-1", Target: "ghost"})

	err := New().ValidateWorkflow(workflow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target")
}

func TestValidateWorkflowRejectsBadNodeConfig(t *testing.T) {
	workflow := validWorkflow()
	workflow.Nodes[1].Config = map[string]any{}

	err := New().ValidateWorkflow(workflow)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidWorkflow)
}

func TestValidateWorkflowRejectsBadConditionOperator(t *testing.T) {
	workflow := validWorkflow()
	workflow.Nodes = append(workflow.Nodes, &models.Node{
		ID:   "cond-1",
		Type: models.NodeTypeCondition,
		Config: map[string]any{
			"leftValue":  "{{x}}",
			"operator":   "~=",
			"rightValue": "1",
		},
	})

	require.Error(t, New().ValidateWorkflow(workflow))
}
