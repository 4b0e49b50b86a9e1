package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/eventbus"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence/memory"
)

type capturingPublisher struct {
	published []eventbus.Event
}

func (p *capturingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.published = append(p.published, event)

	return nil
}

func testApp(publisher *capturingPublisher, store *memory.Persistence) *fiber.App {
	handlers := NewAPIHandlers(publisher, store.ExecutionRepository(), validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	v1 := app.Group("/api/v1")
	v1.Post("/events", handlers.FireEvent)
	v1.Get("/executions/:id", handlers.GetExecution)
	v1.Get("/workflows/:id/executions", handlers.ListWorkflowExecutions)

	return app
}

func TestFireEventAccepted(t *testing.T) {
	publisher := &capturingPublisher{}
	app := testApp(publisher, memory.NewPersistence())

	body := `{"event":"lead.created","tenant_id":"t1","payload":{"value":100}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	require.Len(t, publisher.published, 1)
}

func TestFireEventRequiresFields(t *testing.T) {
	publisher := &capturingPublisher{}
	app := testApp(publisher, memory.NewPersistence())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(`{"payload":{}}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, publisher.published)
}

func TestGetExecution(t *testing.T) {
	store := memory.NewPersistence()
	execution := &models.Execution{
		ID:         "ex-1",
		WorkflowID: "wf-1",
		TenantID:   "t1",
		Status:     models.ExecutionStatusSuccess,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.ExecutionRepository().Create(context.Background(), execution))

	app := testApp(&capturingPublisher{}, store)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/executions/ex-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got models.Execution

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, models.ExecutionStatusSuccess, got.Status)
}

func TestGetExecutionNotFound(t *testing.T) {
	app := testApp(&capturingPublisher{}, memory.NewPersistence())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/executions/ghost", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetExecutionHidesOtherTenants(t *testing.T) {
	store := memory.NewPersistence()
	execution := &models.Execution{
		ID:         "ex-1",
		WorkflowID: "wf-1",
		TenantID:   "t1",
		Status:     models.ExecutionStatusSuccess,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.ExecutionRepository().Create(context.Background(), execution))

	app := testApp(&capturingPublisher{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/executions/ex-1", nil)
	req.Header.Set("X-Tenant-ID", "t2")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListWorkflowExecutions(t *testing.T) {
	store := memory.NewPersistence()

	for _, id := range []string{"ex-1", "ex-2"} {
		require.NoError(t, store.ExecutionRepository().Create(context.Background(), &models.Execution{
			ID:         id,
			WorkflowID: "wf-1",
			TenantID:   "t1",
			Status:     models.ExecutionStatusFailed,
			StartedAt:  time.Now().UTC(),
		}))
	}

	app := testApp(&capturingPublisher{}, store)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/workflows/wf-1/executions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Executions []models.Execution `json:"executions"`
		TotalCount int                `json:"total_count"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.TotalCount)
}
