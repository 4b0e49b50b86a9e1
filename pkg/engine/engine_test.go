package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/connectors"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/credentials"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence/memory"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/validation"
)

func newTestEngine(store *memory.Persistence, creds *credentials.MemoryStore) *Engine {
	conn := connectors.New(connectors.Options{
		Guard: &connectors.Guard{AllowLoopback: true},
	}, slog.Default())

	return New(store, creds, nil, conn, nil, Options{})
}

// leadAlertWorkflow notifies Slack about leads worth at least 10000.
func leadAlertWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:       "wf-lead-alert",
		TenantID: "t1",
		Name:     "High value lead alert",
		Active:   true,
		Nodes: []*models.Node{
			{ID: "trigger-1", Type: models.NodeTypeTrigger, TriggerEvent: eventPtr(models.TriggerEventLeadCreated)},
			{ID: "cond-1", Type: models.NodeTypeCondition, Config: map[string]any{
				"leftValue":  "{{value}}",
				"operator":   ">=",
				"rightValue": "10000",
			}},
			{ID: "slack-1", Type: models.NodeTypeSlack, Config: map[string]any{
				"message": "High value lead: {{name}}",
			}},
		},
		Edges: []*models.Edge{
			{ID: "e1", Source: "trigger-1", Target: "cond-1"},
			{ID: "e2", Source: "cond-1", Target: "slack-1", Handle: "true"},
		},
	}
}

func TestExecuteHighValueLeadNotifiesSlack(t *testing.T) {
	var texts []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		texts = append(texts, body["text"].(string))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := memory.NewPersistence()
	require.NoError(t, store.WorkflowRepository().Save(context.Background(), leadAlertWorkflow()))

	creds := credentials.NewMemoryStore()
	creds.Set("t1", "slack", map[string]string{"webhook_url": server.URL})

	eng := newTestEngine(store, creds)
	ectx := models.NewExecutionContext(models.TriggerEventLeadCreated, "t1", map[string]any{
		"value": 15000,
		"name":  "Acme Corp",
	})

	executionID, err := eng.Execute(context.Background(), "wf-lead-alert", ectx)
	require.NoError(t, err)

	require.Len(t, texts, 1)
	assert.Equal(t, "High value lead: Acme Corp", texts[0])

	execution, err := store.ExecutionRepository().GetByID(context.Background(), executionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, execution.Status)
	assert.NotNil(t, execution.FinishedAt)
	assert.Empty(t, execution.Error)
}

func TestExecuteLowValueLeadSkipsSlack(t *testing.T) {
	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := memory.NewPersistence()
	require.NoError(t, store.WorkflowRepository().Save(context.Background(), leadAlertWorkflow()))

	creds := credentials.NewMemoryStore()
	creds.Set("t1", "slack", map[string]string{"webhook_url": server.URL})

	eng := newTestEngine(store, creds)
	ectx := models.NewExecutionContext(models.TriggerEventLeadCreated, "t1", map[string]any{
		"value": 500,
		"name":  "Tiny LLC",
	})

	executionID, err := eng.Execute(context.Background(), "wf-lead-alert", ectx)
	require.NoError(t, err)

	// An unmet condition is not a failure.
	assert.Zero(t, requests)

	execution, err := store.ExecutionRepository().GetByID(context.Background(), executionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, execution.Status)
}

func TestExecuteInactiveWorkflowCreatesNoRecord(t *testing.T) {
	store := memory.NewPersistence()

	workflow := leadAlertWorkflow()
	workflow.Active = false
	require.NoError(t, store.WorkflowRepository().Save(context.Background(), workflow))

	eng := newTestEngine(store, credentials.NewMemoryStore())
	ectx := models.NewExecutionContext(models.TriggerEventLeadCreated, "t1", map[string]any{"value": 15000})

	_, err := eng.Execute(context.Background(), workflow.ID, ectx)
	require.Error(t, err)
	assert.True(t, IsWorkflowInactive(err))

	executions, err := store.ExecutionRepository().ListByWorkflow(context.Background(), workflow.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, executions)
}

func TestExecuteTenantMismatchReportsNotFound(t *testing.T) {
	store := memory.NewPersistence()
	require.NoError(t, store.WorkflowRepository().Save(context.Background(), leadAlertWorkflow()))

	eng := newTestEngine(store, credentials.NewMemoryStore())
	ectx := models.NewExecutionContext(models.TriggerEventLeadCreated, "other-tenant", map[string]any{})

	_, err := eng.Execute(context.Background(), "wf-lead-alert", ectx)
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestExecuteTriggerMismatchFailsRecord(t *testing.T) {
	store := memory.NewPersistence()
	require.NoError(t, store.WorkflowRepository().Save(context.Background(), leadAlertWorkflow()))

	eng := newTestEngine(store, credentials.NewMemoryStore())
	ectx := models.NewExecutionContext(models.TriggerEventTaskCreated, "t1", map[string]any{})

	executionID, err := eng.Execute(context.Background(), "wf-lead-alert", ectx)
	require.Error(t, err)
	assert.True(t, IsTriggerMismatch(err))

	execution, err := store.ExecutionRepository().GetByID(context.Background(), executionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.NotEmpty(t, execution.Error)
	assert.NotNil(t, execution.FinishedAt)
}

func TestExecuteNodeFailureFailsRecord(t *testing.T) {
	store := memory.NewPersistence()
	require.NoError(t, store.WorkflowRepository().Save(context.Background(), leadAlertWorkflow()))

	// No slack credentials for the tenant, so the slack node fails.
	eng := newTestEngine(store, credentials.NewMemoryStore())
	ectx := models.NewExecutionContext(models.TriggerEventLeadCreated, "t1", map[string]any{"value": 15000})

	executionID, err := eng.Execute(context.Background(), "wf-lead-alert", ectx)
	require.Error(t, err)

	nodeErr, ok := IsNodeExecutionError(err)
	require.True(t, ok)
	assert.Equal(t, "slack-1", nodeErr.NodeID)

	execution, getErr := store.ExecutionRepository().GetByID(context.Background(), executionID)
	require.NoError(t, getErr)
	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
}

func TestExecuteInvalidDefinitionRejectedBeforeExecution(t *testing.T) {
	store := memory.NewPersistence()

	workflow := leadAlertWorkflow()
	workflow.Nodes[1].Config["operator"] = "~="
	require.NoError(t, store.WorkflowRepository().Save(context.Background(), workflow))

	eng := newTestEngine(store, credentials.NewMemoryStore())
	ectx := models.NewExecutionContext(models.TriggerEventLeadCreated, "t1", map[string]any{"value": 15000})

	_, err := eng.Execute(context.Background(), workflow.ID, ectx)
	require.Error(t, err)
	assert.ErrorIs(t, err, validation.ErrInvalidWorkflow)

	executions, err := store.ExecutionRepository().ListByWorkflow(context.Background(), workflow.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, executions)
}
