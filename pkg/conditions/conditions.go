// Package conditions evaluates comparison operators on interpolated
// operands using loose, coercing semantics: when both sides parse as
// numbers the comparison is numeric, otherwise it falls back to the string
// representations.
package conditions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownOperator indicates an operator outside the supported set. This
// is a hard failure, never a silent false.
var ErrUnknownOperator = errors.New("unknown operator")

// Evaluate applies operator to left and right.
// Supported operators: ==, !=, >, <, >=, <=, contains.
func Evaluate(left any, operator string, right any) (bool, error) {
	switch operator {
	case "==":
		return looseEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	case ">":
		return compare(left, right, func(a, b float64) bool { return a > b }, func(a, b string) bool { return a > b }), nil
	case "<":
		return compare(left, right, func(a, b float64) bool { return a < b }, func(a, b string) bool { return a < b }), nil
	case ">=":
		return compare(left, right, func(a, b float64) bool { return a >= b }, func(a, b string) bool { return a >= b }), nil
	case "<=":
		return compare(left, right, func(a, b float64) bool { return a <= b }, func(a, b string) bool { return a <= b }), nil
	case "contains":
		return strings.Contains(asString(left), asString(right)), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownOperator, operator)
	}
}

func looseEqual(left, right any) bool {
	leftNum, leftOK := asNumber(left)
	rightNum, rightOK := asNumber(right)

	if leftOK && rightOK {
		return leftNum == rightNum
	}

	return asString(left) == asString(right)
}

func compare(left, right any, numCmp func(a, b float64) bool, strCmp func(a, b string) bool) bool {
	leftNum, leftOK := asNumber(left)
	rightNum, rightOK := asNumber(right)

	if leftOK && rightOK {
		return numCmp(leftNum, rightNum)
	}

	return strCmp(asString(left), asString(right))
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}

		return 0, true
	case string:
		num, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}

		return num, true
	default:
		return 0, false
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
