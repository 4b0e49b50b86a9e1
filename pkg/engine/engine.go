// Package engine implements the workflow execution core: a synchronous,
// in-memory interpreter over tenant-authored graphs of typed automation
// nodes. One firing produces one traversal that completes or fails as a
// whole; there is no checkpointing, retry or resumption.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/connectors"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/credentials"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/eventbus"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/log"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/otelhelper"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence"
)

const (
	defaultMaxDepth           = 250
	defaultMaxWhileIterations = 100
	defaultMaxDelay           = 5 * time.Minute
	defaultAIModel            = "gpt-4o-mini"
)

// Options bounds one engine instance. Zero values take the defaults above.
type Options struct {
	MaxDepth           int
	MaxWhileIterations int
	MaxDelay           time.Duration
	AIModel            string
	AIAPIKey           string
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = defaultMaxDepth
	}

	if o.MaxWhileIterations <= 0 {
		o.MaxWhileIterations = defaultMaxWhileIterations
	}

	if o.MaxDelay <= 0 {
		o.MaxDelay = defaultMaxDelay
	}

	if o.AIModel == "" {
		o.AIModel = defaultAIModel
	}

	return o
}

// Engine ties loader, recorder and walker into the execution entrypoint.
type Engine struct {
	loader   *Loader
	recorder *Recorder
	walker   *Walker
	tracer   trace.Tracer
	logger   *slog.Logger
}

// New wires an engine. publisher may be nil (no lifecycle events); email may
// be nil (email nodes then fail at execution time).
func New(
	store persistence.Persistence,
	creds credentials.Store,
	email connectors.EmailSender,
	conn *connectors.Connectors,
	publisher eventbus.EventPublisher,
	opts Options,
) *Engine {
	opts = opts.withDefaults()

	interpreter := NewInterpreter(conn, creds, email, opts)
	loop := NewLoopController(opts)

	return &Engine{
		loader:   NewLoader(store.WorkflowRepository()),
		recorder: NewRecorder(store.ExecutionRepository(), publisher),
		walker:   NewWalker(interpreter, loop, opts),
		tracer:   otel.Tracer("engine"),
		logger:   log.WithModule("engine"),
	}
}

// Execute runs one workflow against one execution context and returns the
// execution record id. Loading failures (not found, tenant mismatch,
// inactive, invalid definition) return before any record is created; every
// later outcome is written to the record exactly once, including panics in
// node handlers.
func (e *Engine) Execute(ctx context.Context, workflowID string, ectx *models.ExecutionContext) (string, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.execute",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.TenantIDKey, ectx.TenantID),
		attribute.String(otelhelper.EventKey, string(ectx.Event)),
	)
	defer span.End()

	workflow, err := e.loader.Load(ctx, workflowID, ectx.TenantID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return "", err
	}

	execution, err := e.recorder.Start(ctx, workflow.ID, workflow.TenantID, ectx.Data)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return "", err
	}

	span.SetAttributes(attribute.String(otelhelper.ExecutionIDKey, execution.ID))

	logger := e.logger.With("workflow_id", workflow.ID, "execution_id", execution.ID)
	logger.InfoContext(ctx, "Starting workflow execution", "event", ectx.Event)

	output, err := e.run(ctx, workflow, ectx)
	if err != nil {
		e.recorder.Fail(ctx, execution, err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "Workflow execution failed", "error", err)

		return execution.ID, err
	}

	e.recorder.Complete(ctx, execution, output)
	logger.InfoContext(ctx, "Workflow execution completed")

	return execution.ID, nil
}

// run validates the trigger and walks the graph, converting handler panics
// into regular failures so the record still receives its terminal update.
func (e *Engine) run(ctx context.Context, workflow *models.Workflow, ectx *models.ExecutionContext) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("node handler panicked: %v", r)
		}
	}()

	trigger := workflow.TriggerNode()
	if trigger == nil {
		return nil, ErrNoTriggerNode
	}

	if trigger.TriggerEvent == nil || *trigger.TriggerEvent != ectx.Event {
		return nil, fmt.Errorf("%w: workflow %s does not trigger on %s",
			ErrTriggerMismatch, workflow.ID, ectx.Event)
	}

	return e.walker.Walk(ctx, workflow, ectx)
}
