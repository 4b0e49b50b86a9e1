// Package router maps CRM domain events onto the workflows they trigger.
// Triggering is fire-and-forget: the business operation that emitted the
// event must succeed regardless of what its automations do, so nothing in
// this package returns an error to that caller.
package router

import (
	"context"
	"log/slog"
	"sync"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/engine"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/eventbus"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/events"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/log"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence"
)

// Router fans one domain event out to every matching active workflow in the
// tenant. Matched workflows execute concurrently and independently: one
// failing, panicking or slow execution does not affect the others.
type Router struct {
	engine    *engine.Engine
	workflows persistence.WorkflowRepository
	logger    *slog.Logger
}

func New(eng *engine.Engine, workflows persistence.WorkflowRepository) *Router {
	return &Router{
		engine:    eng,
		workflows: workflows,
		logger:    log.WithModule("router"),
	}
}

// TriggerByEvent executes all active workflows in the tenant whose trigger
// node matches the named event. It blocks until every matched execution has
// settled and never returns an error; failures land in execution records
// and the log.
func (r *Router) TriggerByEvent(ctx context.Context, eventName, tenantID string, payload map[string]any) {
	logger := r.logger.With("event", eventName, "tenant_id", tenantID)

	event, known := models.TriggerEventFromName(eventName)
	if !known {
		logger.WarnContext(ctx, "Ignoring unknown event name")

		return
	}

	workflows, err := r.workflows.ListActiveByTenant(ctx, tenantID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list workflows for event", "error", err)

		return
	}

	matched := make([]*models.Workflow, 0, len(workflows))

	for _, workflow := range workflows {
		if workflow.HasTriggerFor(event) {
			matched = append(matched, workflow)
		}
	}

	if len(matched) == 0 {
		logger.InfoContext(ctx, "No workflows triggered by event")

		return
	}

	logger.InfoContext(ctx, "Triggering workflows", "count", len(matched))

	var wg sync.WaitGroup

	for _, workflow := range matched {
		wg.Add(1)

		go func(workflow *models.Workflow) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(ctx, "Workflow execution panicked",
						"workflow_id", workflow.ID, "panic", rec)
				}
			}()

			ectx := models.NewExecutionContext(event, tenantID, payload)

			executionID, err := r.engine.Execute(ctx, workflow.ID, ectx)
			if err != nil {
				logger.ErrorContext(ctx, "Workflow execution failed",
					"workflow_id", workflow.ID, "execution_id", executionID, "error", err)
			}
		}(workflow)
	}

	wg.Wait()
}

// Subscribe registers the router as the consumer of the domain event topic.
func (r *Router) Subscribe(ctx context.Context, bus eventbus.EventBus) error {
	err := bus.Handle(events.DomainEventType, func(ctx context.Context, event any) error {
		domainEvent, ok := event.(*events.DomainEvent)
		if !ok {
			r.logger.WarnContext(ctx, "Dropping malformed domain event")

			return nil
		}

		r.TriggerByEvent(ctx, domainEvent.Name, domainEvent.TenantID, domainEvent.Payload)

		// Execution failures are settled internally; the message is done.
		return nil
	})
	if err != nil {
		return err
	}

	return bus.Subscribe(ctx)
}

// Fire publishes a domain event to the bus. Callers treat it as
// fire-and-forget; publish failures are logged and dropped.
func Fire(ctx context.Context, publisher eventbus.EventPublisher, eventName, tenantID string, payload map[string]any) {
	event := events.DomainEvent{
		BaseEvent: events.NewBaseEvent(events.DomainEventType),
		Name:      eventName,
		TenantID:  tenantID,
		Payload:   payload,
	}

	err := publisher.Publish(ctx, tenantID, event)
	if err != nil {
		log.WithModule("router").WarnContext(ctx, "Failed to publish domain event",
			"event", eventName, "tenant_id", tenantID, "error", err)
	}
}
