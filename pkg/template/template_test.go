package template

import (
	"testing"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/stretchr/testify/assert"
)

func ctxWith(data map[string]any, variables map[string]any) *models.ExecutionContext {
	if variables == nil {
		variables = make(map[string]any)
	}

	return &models.ExecutionContext{
		Event:     models.TriggerEventLeadCreated,
		TenantID:  "tenant-1",
		Data:      data,
		Variables: variables,
	}
}

func TestInterpolateString_DataKey(t *testing.T) {
	ectx := ctxWith(map[string]any{"x": "5"}, nil)

	assert.Equal(t, "5", InterpolateString("{{x}}", ectx))
}

func TestInterpolateString_UnresolvedTokenKeptLiteral(t *testing.T) {
	ectx := ctxWith(map[string]any{"x": "5"}, nil)

	assert.Equal(t, "{{y}}", InterpolateString("{{y}}", ectx))
	assert.Equal(t, "value: {{missing.path}}", InterpolateString("value: {{missing.path}}", ectx))
}

func TestInterpolateString_ResolutionOrder(t *testing.T) {
	// Exact data key wins over a variable of the same name.
	ectx := ctxWith(map[string]any{"name": "from-data"}, map[string]any{"name": "from-vars"})

	assert.Equal(t, "from-data", InterpolateString("{{name}}", ectx))
}

func TestInterpolateString_VariablesExactKeyOnly(t *testing.T) {
	ectx := ctxWith(map[string]any{}, map[string]any{
		"plain": "ok",
		"nested": map[string]any{
			"inner": "hidden",
		},
	})

	assert.Equal(t, "ok", InterpolateString("{{plain}}", ectx))
	// Variables are never path-walked.
	assert.Equal(t, "{{nested.inner}}", InterpolateString("{{nested.inner}}", ectx))
}

func TestInterpolateString_DottedPathThroughData(t *testing.T) {
	ectx := ctxWith(map[string]any{
		"lead": map[string]any{
			"contact": map[string]any{"email": "ana@example.com"},
		},
	}, nil)

	assert.Equal(t, "ana@example.com", InterpolateString("{{lead.contact.email}}", ectx))
}

func TestInterpolateString_MultipleTokensAndTrim(t *testing.T) {
	ectx := ctxWith(map[string]any{"a": "1", "b": "2"}, nil)

	assert.Equal(t, "1-2", InterpolateString("{{ a }}-{{b}}", ectx))
}

func TestInterpolateString_NumberFormatting(t *testing.T) {
	ectx := ctxWith(map[string]any{"value": float64(15000)}, nil)

	assert.Equal(t, "deal worth 15000", InterpolateString("deal worth {{value}}", ectx))
}

func TestInterpolateValue_NumericCoercion(t *testing.T) {
	ectx := ctxWith(map[string]any{}, nil)

	assert.Equal(t, float64(5), InterpolateValue("5", ectx))
	assert.Equal(t, "abc", InterpolateValue("abc", ectx))
	assert.Equal(t, "", InterpolateValue("", ectx))
	// Partial numbers are not coerced.
	assert.Equal(t, "5 items", InterpolateValue("5 items", ectx))
	// Whitespace-only strings stay strings.
	assert.Equal(t, "  ", InterpolateValue("  ", ectx))
}

func TestInterpolateObject_StructurePreserving(t *testing.T) {
	ectx := ctxWith(map[string]any{"name": "Ana"}, nil)

	input := map[string]any{
		"greeting": "hello {{name}}",
		"count":    float64(3),
		"tags":     []any{"{{name}}", "static"},
	}

	result, ok := InterpolateObject(input, ectx).(map[string]any)
	if !ok {
		t.Fatal("expected map result")
	}

	assert.Equal(t, "hello Ana", result["greeting"])
	assert.Equal(t, float64(3), result["count"])
	assert.Equal(t, []any{"Ana", "static"}, result["tags"])
}
