package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/conditions"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/connectors"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/credentials"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/log"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/template"
)

type handlerFunc func(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error)

// Interpreter executes one node at a time. One handler per node type; the
// walker owns loop nodes, everything else dispatches through the table.
type Interpreter struct {
	connectors  *connectors.Connectors
	credentials credentials.Store
	email       connectors.EmailSender
	opts        Options
	logger      *slog.Logger
	handlers    map[models.NodeType]handlerFunc
}

func NewInterpreter(conn *connectors.Connectors, creds credentials.Store, email connectors.EmailSender, opts Options) *Interpreter {
	i := &Interpreter{
		connectors:  conn,
		credentials: creds,
		email:       email,
		opts:        opts,
		logger:      log.WithModule("interpreter"),
	}

	i.handlers = map[models.NodeType]handlerFunc{
		models.NodeTypeTrigger:      i.runTrigger,
		models.NodeTypeHTTPRequest:  i.runHTTPRequest,
		models.NodeTypeEmail:        i.runEmail,
		models.NodeTypeDelay:        i.runDelay,
		models.NodeTypeCondition:    i.runCondition,
		models.NodeTypeSetVariable:  i.runSetVariable,
		models.NodeTypeWebhook:      i.runWebhook,
		models.NodeTypeAICompletion: i.runAICompletion,
		models.NodeTypeWhatsApp:     i.runWhatsApp,
		models.NodeTypeTelegram:     i.runTelegram,
		models.NodeTypeSlack:        i.runSlack,
		models.NodeTypeSMS:          i.runSMS,
		models.NodeTypeLog:          i.runLog,
		models.NodeTypeTransform:    i.runTransform,
		models.NodeTypeFilter:       i.runFilter,
		models.NodeTypeMerge:        i.runMerge,
		models.NodeTypeSplit:        i.runSplit,
	}

	return i
}

// Run executes a single node. Handler failures come back wrapped in a
// NodeExecutionError naming the node.
func (i *Interpreter) Run(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	handler, exists := i.handlers[node.Type]
	if !exists {
		return nil, &NodeExecutionError{
			NodeID: node.ID,
			Kind:   node.Type,
			Err:    fmt.Errorf("%w: %s", ErrUnknownNodeType, node.Type),
		}
	}

	output, err := handler(ctx, node, ectx)
	if err != nil {
		return nil, &NodeExecutionError{NodeID: node.ID, Kind: node.Type, Err: err}
	}

	return output, nil
}

func (i *Interpreter) runTrigger(_ context.Context, _ *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	output := ectx.DataMap()
	if output == nil {
		output = map[string]any{}
	}

	return output, nil
}

func (i *Interpreter) runDelay(ctx context.Context, node *models.Node, _ *models.ExecutionContext) (map[string]any, error) {
	// A missing or negative delayMs means no wait at all.
	ms, ok := configNumber(node, "delayMs")
	if !ok || ms < 0 {
		ms = 0
	}

	delay := time.Duration(ms) * time.Millisecond
	if delay > i.opts.MaxDelay {
		delay = i.opts.MaxDelay
	}

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return map[string]any{"delayed_ms": delay.Milliseconds()}, nil
}

func (i *Interpreter) runCondition(_ context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	left := template.InterpolateValue(node.ConfigString("leftValue"), ectx)
	right := template.InterpolateValue(node.ConfigString("rightValue"), ectx)

	operator := node.ConfigString("operator")
	if operator == "" {
		return nil, fmt.Errorf("%w: operator", ErrNodeConfigMissing)
	}

	result, err := conditions.Evaluate(left, operator, right)
	if err != nil {
		return nil, err
	}

	return map[string]any{"result": result}, nil
}

func (i *Interpreter) runSetVariable(_ context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	name := node.ConfigString("variableName")
	if name == "" {
		return nil, fmt.Errorf("%w: variableName", ErrNodeConfigMissing)
	}

	var value any
	if raw, isString := node.Config["variableValue"].(string); isString {
		value = template.InterpolateValue(raw, ectx)
	} else {
		value = template.InterpolateObject(node.Config["variableValue"], ectx)
	}

	ectx.Variables[name] = value

	return map[string]any{name: value}, nil
}

func (i *Interpreter) runLog(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	message := template.InterpolateString(node.ConfigString("message"), ectx)

	switch node.ConfigString("level") {
	case "debug":
		i.logger.DebugContext(ctx, message, "tenant_id", ectx.TenantID)
	case "warn":
		i.logger.WarnContext(ctx, message, "tenant_id", ectx.TenantID)
	case "error":
		i.logger.ErrorContext(ctx, message, "tenant_id", ectx.TenantID)
	default:
		i.logger.InfoContext(ctx, message, "tenant_id", ectx.TenantID)
	}

	return map[string]any{"logged": message}, nil
}

// configNumber reads a numeric config value, accepting JSON numbers and
// numeric strings.
func configNumber(node *models.Node, key string) (float64, bool) {
	switch v := node.Config[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f, true
		}
	}

	return 0, false
}
