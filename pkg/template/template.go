// Package template resolves {{token}} expressions in node configuration
// against the live execution context.
//
// Resolution order for a token is fixed: an exact key in the event data, an
// exact key in the variables store, then a dotted-path walk through the
// event data. Variables are never path-walked; only their exact keys
// resolve. A token that resolves to nothing is left in the output verbatim,
// not replaced by an empty string.
package template

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
)

// InterpolateString substitutes every {{token}} in tmpl. Tokens are matched
// non-greedily and nested braces are not supported.
func InterpolateString(tmpl string, ectx *models.ExecutionContext) string {
	var out strings.Builder

	rest := tmpl

	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			out.WriteString(rest)

			break
		}

		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			out.WriteString(rest)

			break
		}

		out.WriteString(rest[:start])

		token := rest[start : start+2+end+2]
		key := strings.TrimSpace(rest[start+2 : start+2+end])

		if value, ok := resolve(key, ectx); ok {
			out.WriteString(stringify(value))
		} else {
			out.WriteString(token)
		}

		rest = rest[start+2+end+2:]
	}

	return out.String()
}

// InterpolateValue interpolates tmpl and then coerces the entire result to a
// number when it parses as one. The empty string stays a string; so do
// partial matches like "5 items".
func InterpolateValue(tmpl string, ectx *models.ExecutionContext) any {
	result := InterpolateString(tmpl, ectx)
	if result == "" {
		return result
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		if !math.IsInf(num, 0) && !math.IsNaN(num) {
			return num
		}
	}

	return result
}

// InterpolateObject applies string interpolation recursively through maps
// and slices, preserving structure. Non-string leaves pass through
// untouched.
func InterpolateObject(value any, ectx *models.ExecutionContext) any {
	switch v := value.(type) {
	case string:
		return InterpolateString(v, ectx)
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, item := range v {
			result[key] = InterpolateObject(item, ectx)
		}

		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = InterpolateObject(item, ectx)
		}

		return result
	default:
		return value
	}
}

// resolve looks up a token key against the execution context.
func resolve(key string, ectx *models.ExecutionContext) (any, bool) {
	if data := ectx.DataMap(); data != nil {
		if value, ok := data[key]; ok {
			return value, true
		}
	}

	if ectx.Variables != nil {
		if value, ok := ectx.Variables[key]; ok {
			return value, true
		}
	}

	// Dotted paths walk the event data only. Variables are exact-key
	// lookups by contract.
	if strings.Contains(key, ".") {
		return walkPath(ectx.Data, strings.Split(key, "."))
	}

	return nil, false
}

func walkPath(value any, path []string) (any, bool) {
	current := value

	for _, segment := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// stringify renders a resolved value for substitution into a string.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}
