// Package web provides the HTTP ingress for the automation engine: firing
// domain events and reading execution history. Execution history is the only
// place automation failures surface to users.
package web

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/eventbus"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/router"
)

const defaultHistoryLimit = 50

type APIHandlers struct {
	publisher  eventbus.EventPublisher
	executions persistence.ExecutionRepository
	validator  *validator.Validate
}

func NewAPIHandlers(publisher eventbus.EventPublisher, executions persistence.ExecutionRepository, validate *validator.Validate) *APIHandlers {
	return &APIHandlers{
		publisher:  publisher,
		executions: executions,
		validator:  validate,
	}
}

// FireEvent publishes a domain event and returns immediately. The event is
// fire-and-forget: automation outcomes never surface here.
func (h *APIHandlers) FireEvent(c fiber.Ctx) error {
	var req FireEventRequest

	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	router.Fire(c.Context(), h.publisher, req.Event, req.TenantID, req.Payload)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	execution, err := h.executions.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleRepositoryError(c, err)
	}

	if tenantID := c.Get("X-Tenant-ID"); tenantID != "" && execution.TenantID != tenantID {
		return notFound(c, "execution not found")
	}

	return c.JSON(execution)
}

func (h *APIHandlers) ListWorkflowExecutions(c fiber.Ctx) error {
	limit := defaultHistoryLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return badRequest(c, "Invalid limit parameter")
		}

		limit = parsed
	}

	executions, err := h.executions.ListByWorkflow(c.Context(), c.Params("id"), limit)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions":  executions,
		"total_count": len(executions),
	})
}
