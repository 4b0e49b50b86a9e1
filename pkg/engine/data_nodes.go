package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/conditions"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/template"
)

func (i *Interpreter) runTransform(_ context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	transformType := node.ConfigString("transformType")

	switch transformType {
	case "json":
		var parsed any

		err := json.Unmarshal([]byte(dataString(ectx.Data)), &parsed)
		if err != nil {
			return nil, fmt.Errorf("invalid JSON input: %w", err)
		}

		return map[string]any{"result": parsed}, nil

	case "stringify":
		encoded, err := json.Marshal(ectx.Data)
		if err != nil {
			return nil, err
		}

		return map[string]any{"result": string(encoded)}, nil

	case "uppercase":
		return map[string]any{"result": strings.ToUpper(dataString(ectx.Data))}, nil

	case "lowercase":
		return map[string]any{"result": strings.ToLower(dataString(ectx.Data))}, nil

	case "trim":
		return map[string]any{"result": strings.TrimSpace(dataString(ectx.Data))}, nil

	case "replace":
		search := template.InterpolateString(node.ConfigString("search"), ectx)
		replace := template.InterpolateString(node.ConfigString("replace"), ectx)

		return map[string]any{"result": strings.ReplaceAll(dataString(ectx.Data), search, replace)}, nil

	default:
		return nil, fmt.Errorf("%w: transformType %q", ErrNodeConfigMissing, transformType)
	}
}

func (i *Interpreter) runFilter(_ context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	operator := node.ConfigString("filterOperator")
	if operator == "" {
		return nil, fmt.Errorf("%w: filterOperator", ErrNodeConfigMissing)
	}

	field := node.ConfigString("filterField")
	right := template.InterpolateValue(node.ConfigString("filterValue"), ectx)

	filtered := make([]any, 0)

	for _, item := range asItems(ectx.Data) {
		left := item
		if field != "" {
			m, isMap := item.(map[string]any)
			if !isMap {
				continue
			}

			left = m[field]
		}

		keep, err := conditions.Evaluate(left, operator, right)
		if err != nil {
			return nil, err
		}

		if keep {
			filtered = append(filtered, item)
		}
	}

	return map[string]any{"result": filtered, "count": len(filtered)}, nil
}

func (i *Interpreter) runMerge(_ context.Context, _ *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	merged := make(map[string]any)

	for key, value := range ectx.DataMap() {
		merged[key] = value
	}

	for key, value := range ectx.Variables {
		merged[key] = value
	}

	return merged, nil
}

func (i *Interpreter) runSplit(_ context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	if items, isArray := ectx.Data.([]any); isArray {
		return map[string]any{"items": items, "count": len(items)}, nil
	}

	field := node.ConfigString("splitField")
	if field == "" {
		return nil, fmt.Errorf("%w: splitField", ErrNodeConfigMissing)
	}

	data := ectx.DataMap()
	if data == nil {
		return nil, fmt.Errorf("split input is neither an array nor an object")
	}

	items, isArray := data[field].([]any)
	if !isArray {
		return nil, fmt.Errorf("split field %q is not an array", field)
	}

	return map[string]any{"items": items, "count": len(items)}, nil
}

// asItems coerces data to a list, wrapping scalars and objects as a
// single-element slice.
func asItems(data any) []any {
	items, isArray := data.([]any)
	if isArray {
		return items
	}

	if data == nil {
		return nil
	}

	return []any{data}
}

// dataString renders data for string transforms: strings pass through,
// anything else is JSON-encoded.
func dataString(data any) string {
	if s, isString := data.(string); isString {
		return s
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return string(encoded)
}
