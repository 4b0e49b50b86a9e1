package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/log"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
)

// Walker drives the depth-first traversal: execute a node, record its output
// under "{nodeId}_output", then recurse along outgoing edges in stored order.
// Loop nodes hand control to the LoopController, which re-enters the walker
// once per iteration. Everything runs on the calling goroutine; there is no
// concurrency across branches.
type Walker struct {
	interpreter *Interpreter
	loop        *LoopController
	maxDepth    int
	logger      *slog.Logger
}

func NewWalker(interpreter *Interpreter, loop *LoopController, opts Options) *Walker {
	return &Walker{
		interpreter: interpreter,
		loop:        loop,
		maxDepth:    opts.MaxDepth,
		logger:      log.WithModule("walker"),
	}
}

// Walk runs the traversal from the workflow's trigger node and returns the
// value propagated by the first branch chain.
func (w *Walker) Walk(ctx context.Context, workflow *models.Workflow, ectx *models.ExecutionContext) (any, error) {
	trigger := workflow.TriggerNode()
	if trigger == nil {
		return nil, ErrNoTriggerNode
	}

	return w.walkNode(ctx, workflow, trigger, ectx, 0)
}

func (w *Walker) walkNode(ctx context.Context, workflow *models.Workflow, node *models.Node, ectx *models.ExecutionContext, depth int) (any, error) {
	if depth > w.maxDepth {
		return nil, fmt.Errorf("%w: %d at node %s", ErrMaxDepthExceeded, depth, node.ID)
	}

	if node.Type == models.NodeTypeLoop {
		output, err := w.loop.Run(ctx, workflow, node, ectx, depth, w.walkNode)
		if err != nil {
			return nil, err
		}

		ectx.Variables[node.ID+"_output"] = output

		// The controller already walked the downstream subgraph per
		// iteration; the loop node is a leaf for propagation purposes.
		return output, nil
	}

	output, err := w.interpreter.Run(ctx, node, ectx)
	if err != nil {
		return nil, err
	}

	ectx.Variables[node.ID+"_output"] = output

	conditionResult, _ := output["result"].(bool)

	var firstResult any

	followed := false

	for _, edge := range workflow.EdgesFrom(node.ID) {
		if node.Type == models.NodeTypeCondition && !edgeMatchesCondition(edge, conditionResult) {
			continue
		}

		target := workflow.NodeByID(edge.Target)
		if target == nil {
			w.logger.WarnContext(ctx, "Edge targets unknown node, skipping",
				"edge_id", edge.ID, "target", edge.Target)

			continue
		}

		result, err := w.walkNode(ctx, workflow, target, ectx, depth+1)
		if err != nil {
			return nil, err
		}

		if !followed {
			firstResult = result
			followed = true
		}
	}

	if !followed {
		return output, nil
	}

	return firstResult, nil
}

// edgeMatchesCondition decides whether an outgoing edge of a condition node
// is followed. A label containing "true" rides the true branch, "false" the
// false branch. An edge with no recognizable label is treated as the true
// branch; builders that label only the false edge rely on this.
func edgeMatchesCondition(edge *models.Edge, result bool) bool {
	label := strings.ToLower(edge.Handle)

	if strings.Contains(label, "true") {
		return result
	}

	if strings.Contains(label, "false") {
		return !result
	}

	return result
}
