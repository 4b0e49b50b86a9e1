package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/log"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/template"
)

type walkFunc func(ctx context.Context, workflow *models.Workflow, node *models.Node, ectx *models.ExecutionContext, depth int) (any, error)

// LoopController drives loop nodes: foreach iterates the event data as a
// list, while re-evaluates a templated condition. Each pass re-walks the
// loop node's downstream subgraph sequentially.
type LoopController struct {
	maxWhileIterations int
	logger             *slog.Logger
}

func NewLoopController(opts Options) *LoopController {
	return &LoopController{
		maxWhileIterations: opts.MaxWhileIterations,
		logger:             log.WithModule("loop"),
	}
}

func (l *LoopController) Run(ctx context.Context, workflow *models.Workflow, node *models.Node, ectx *models.ExecutionContext, depth int, walk walkFunc) (map[string]any, error) {
	switch node.ConfigString("loopType") {
	case "foreach":
		return l.runForeach(ctx, workflow, node, ectx, depth, walk)
	case "while":
		return l.runWhile(ctx, workflow, node, ectx, depth, walk)
	default:
		return nil, &NodeExecutionError{
			NodeID: node.ID,
			Kind:   node.Type,
			Err:    fmt.Errorf("%w: loopType", ErrNodeConfigMissing),
		}
	}
}

// runForeach binds each item as the data of a derived context. The derived
// contexts share the outer Variables map, so loopIndex/loopItem are
// overwritten per pass and SetVariable writes carry across iterations.
func (l *LoopController) runForeach(ctx context.Context, workflow *models.Workflow, node *models.Node, ectx *models.ExecutionContext, depth int, walk walkFunc) (map[string]any, error) {
	items := asItems(ectx.Data)

	for index, item := range items {
		iterCtx := ectx.WithData(item)
		iterCtx.Variables["loopIndex"] = index
		iterCtx.Variables["loopItem"] = item

		err := l.walkBody(ctx, workflow, node, iterCtx, depth, walk)
		if err != nil {
			return nil, err
		}
	}

	return map[string]any{"iterations": len(items)}, nil
}

// runWhile evaluates the condition against the outer context before each
// pass. Body mutations to data are invisible to the condition; only shared
// variable writes can change it.
func (l *LoopController) runWhile(ctx context.Context, workflow *models.Workflow, node *models.Node, ectx *models.ExecutionContext, depth int, walk walkFunc) (map[string]any, error) {
	condition := node.ConfigString("condition")
	if condition == "" {
		return nil, fmt.Errorf("%w: condition", ErrNodeConfigMissing)
	}

	maxIterations := l.maxWhileIterations
	if configured, ok := configNumber(node, "maxIterations"); ok && configured > 0 {
		maxIterations = int(configured)
	}

	iterations := 0

	for iterations < maxIterations {
		if template.InterpolateString(condition, ectx) != "true" {
			break
		}

		err := l.walkBody(ctx, workflow, node, ectx, depth, walk)
		if err != nil {
			return nil, err
		}

		iterations++
	}

	if iterations == maxIterations {
		l.logger.WarnContext(ctx, "While loop hit iteration bound",
			"node_id", node.ID, "max_iterations", maxIterations)
	}

	return map[string]any{"iterations": iterations}, nil
}

func (l *LoopController) walkBody(ctx context.Context, workflow *models.Workflow, node *models.Node, ectx *models.ExecutionContext, depth int, walk walkFunc) error {
	for _, edge := range workflow.EdgesFrom(node.ID) {
		target := workflow.NodeByID(edge.Target)
		if target == nil {
			continue
		}

		_, err := walk(ctx, workflow, target, ectx, depth+1)
		if err != nil {
			return err
		}
	}

	return nil
}
