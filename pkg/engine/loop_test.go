package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
)

func loopWorkflow(loopConfig map[string]any, bodyNodes []*models.Node, bodyEdges []*models.Edge) *models.Workflow {
	nodes := []*models.Node{
		{ID: "trigger-1", Type: models.NodeTypeTrigger, TriggerEvent: eventPtr(models.TriggerEventLeadCreated)},
		{ID: "loop-1", Type: models.NodeTypeLoop, Config: loopConfig},
	}
	nodes = append(nodes, bodyNodes...)

	edges := []*models.Edge{
		{ID: "e1", Source: "trigger-1", Target: "loop-1"},
	}
	edges = append(edges, bodyEdges...)

	return &models.Workflow{ID: "wf-1", TenantID: "t1", Active: true, Nodes: nodes, Edges: edges}
}

func TestForeachVisitsEachItemInOrder(t *testing.T) {
	var bodies []map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	workflow := loopWorkflow(
		map[string]any{"loopType": "foreach"},
		[]*models.Node{
			{ID: "hook-1", Type: models.NodeTypeWebhook, Config: map[string]any{
				"url": server.URL,
				"body": map[string]any{
					"index":  "{{loopIndex}}",
					"item":   "{{loopItem}}",
					"marker": "{{marker}}",
				},
			}},
			setVariableNode("set-marker", "marker", "written"),
		},
		[]*models.Edge{
			{ID: "e2", Source: "loop-1", Target: "hook-1"},
			{ID: "e3", Source: "hook-1", Target: "set-marker"},
		},
	)

	walker := newTestWalker(Options{})
	ectx := &models.ExecutionContext{
		Event:     models.TriggerEventLeadCreated,
		TenantID:  "t1",
		Data:      []any{"a", "b", "c"},
		Variables: map[string]any{},
	}

	result, err := walker.Walk(context.Background(), workflow, ectx)
	require.NoError(t, err)

	require.Len(t, bodies, 3)
	assert.Equal(t, "0", bodies[0]["index"])
	assert.Equal(t, "1", bodies[1]["index"])
	assert.Equal(t, "2", bodies[2]["index"])
	assert.Equal(t, "a", bodies[0]["item"])
	assert.Equal(t, "c", bodies[2]["item"])

	// A variable written in iteration 0 is visible from iteration 1 on; in
	// iteration 0 the token has nothing to resolve to and stays literal.
	assert.Equal(t, "{{marker}}", bodies[0]["marker"])
	assert.Equal(t, "written", bodies[1]["marker"])
	assert.Equal(t, "written", bodies[2]["marker"])

	summary, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, summary["iterations"])
}

func TestForeachWrapsScalarData(t *testing.T) {
	workflow := loopWorkflow(
		map[string]any{"loopType": "foreach"},
		[]*models.Node{setVariableNode("set-seen", "seen", "{{loopItem}}")},
		[]*models.Edge{{ID: "e2", Source: "loop-1", Target: "set-seen"}},
	)

	walker := newTestWalker(Options{})
	ectx := &models.ExecutionContext{
		Event:     models.TriggerEventLeadCreated,
		TenantID:  "t1",
		Data:      "only",
		Variables: map[string]any{},
	}

	result, err := walker.Walk(context.Background(), workflow, ectx)
	require.NoError(t, err)

	summary := result.(map[string]any)
	assert.Equal(t, 1, summary["iterations"])
	assert.Equal(t, "only", ectx.Variables["seen"])
}

func TestWhileStopsWhenConditionTurnsFalse(t *testing.T) {
	workflow := loopWorkflow(
		map[string]any{"loopType": "while", "condition": "{{keep}}"},
		[]*models.Node{setVariableNode("set-keep", "keep", "done")},
		[]*models.Edge{{ID: "e2", Source: "loop-1", Target: "set-keep"}},
	)

	walker := newTestWalker(Options{})
	ectx := models.NewExecutionContext(models.TriggerEventLeadCreated, "t1", map[string]any{})
	ectx.Variables["keep"] = "true"

	result, err := walker.Walk(context.Background(), workflow, ectx)
	require.NoError(t, err)

	// The body flipped the shared variable on the first pass.
	summary := result.(map[string]any)
	assert.Equal(t, 1, summary["iterations"])
}

func TestWhileHonorsIterationBound(t *testing.T) {
	workflow := loopWorkflow(
		map[string]any{"loopType": "while", "condition": "true", "maxIterations": 5},
		[]*models.Node{setVariableNode("set-x", "x", "y")},
		[]*models.Edge{{ID: "e2", Source: "loop-1", Target: "set-x"}},
	)

	walker := newTestWalker(Options{})
	ectx := models.NewExecutionContext(models.TriggerEventLeadCreated, "t1", map[string]any{})

	result, err := walker.Walk(context.Background(), workflow, ectx)
	require.NoError(t, err)

	summary := result.(map[string]any)
	assert.Equal(t, 5, summary["iterations"])
}

func TestLoopWithoutTypeFails(t *testing.T) {
	workflow := loopWorkflow(map[string]any{}, nil, nil)

	walker := newTestWalker(Options{})
	ectx := models.NewExecutionContext(models.TriggerEventLeadCreated, "t1", map[string]any{})

	_, err := walker.Walk(context.Background(), workflow, ectx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNodeConfigMissing)
}
