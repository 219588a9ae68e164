// Package condition implements the transition condition language: a single
// "field OP literal" clause evaluated against captured process data.
package condition

import (
	"strconv"
	"strings"
)

// Operator is a comparison operator of the condition language.
type Operator string

const (
	OpGreaterOrEqual Operator = ">="
	OpLessOrEqual    Operator = "<="
	OpNotEqual       Operator = "!="
	OpEqual          Operator = "="
	OpGreater        Operator = ">"
	OpLess           Operator = "<"
)

// operators in detection priority order: longer operators first so "=" never
// matches inside "!=", ">=" or "<=".
var operators = []Operator{OpGreaterOrEqual, OpLessOrEqual, OpNotEqual, OpEqual, OpGreater, OpLess}

// Clause is one parsed condition: field, operator, target literal.
type Clause struct {
	Field   string
	Op      Operator
	Literal string
}

// Parse splits a condition into its clause. The boolean is false when no
// recognized operator is present.
func Parse(conditionExpr string) (Clause, bool) {
	for _, op := range operators {
		idx := strings.Index(conditionExpr, string(op))
		if idx < 0 {
			continue
		}

		field := strings.TrimSpace(conditionExpr[:idx])
		literal := strings.TrimSpace(conditionExpr[idx+len(op):])

		return Clause{Field: field, Op: op, Literal: stripQuotes(literal)}, true
	}

	return Clause{}, false
}

// Evaluate evaluates a condition against a flat key/value data bag.
//
// Two deliberately asymmetric defaults, each its own branch:
//   - a malformed condition (no recognized operator) fails OPEN: it never
//     blocks a path;
//   - a field absent from the data fails CLOSED: an unset field never
//     satisfies a condition.
func Evaluate(conditionExpr string, data map[string]string) bool {
	if strings.TrimSpace(conditionExpr) == "" {
		return true
	}

	clause, ok := Parse(conditionExpr)
	if !ok {
		// fail-open: malformed syntax
		return true
	}

	actual, present := data[clause.Field]
	if !present {
		// fail-closed: missing field
		return false
	}

	return compare(actual, clause.Op, clause.Literal)
}

func compare(actual string, op Operator, target string) bool {
	actualNum, errA := strconv.ParseFloat(strings.TrimSpace(actual), 64)
	targetNum, errB := strconv.ParseFloat(target, 64)

	if errA == nil && errB == nil {
		return compareNumeric(actualNum, op, targetNum)
	}

	return compareString(actual, op, target)
}

func compareNumeric(actual float64, op Operator, target float64) bool {
	switch op {
	case OpEqual:
		return actual == target
	case OpNotEqual:
		return actual != target
	case OpGreater:
		return actual > target
	case OpLess:
		return actual < target
	case OpGreaterOrEqual:
		return actual >= target
	case OpLessOrEqual:
		return actual <= target
	}

	return false
}

func compareString(actual string, op Operator, target string) bool {
	switch op {
	case OpEqual:
		return strings.EqualFold(strings.TrimSpace(actual), target)
	case OpNotEqual:
		return !strings.EqualFold(strings.TrimSpace(actual), target)
	case OpGreater:
		return actual > target
	case OpLess:
		return actual < target
	case OpGreaterOrEqual:
		return actual >= target
	case OpLessOrEqual:
		return actual <= target
	}

	return false
}

// stripQuotes removes a single layer of matching surrounding quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return s[1 : len(s)-1]
		}
	}

	return s
}
