package condition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tramio/tramio/pkg/models"
)

// operator phrases shown in designer tooltips. Messages stay in Spanish to
// match the audit and automation texts surfaced to end users.
var opPhrases = map[Operator]string{
	OpEqual:          "es igual a",
	OpNotEqual:       "es diferente de",
	OpGreater:        "es mayor que",
	OpLess:           "es menor que",
	OpGreaterOrEqual: "es mayor o igual a",
	OpLessOrEqual:    "es menor o igual a",
}

// Translate renders a condition as a human-readable sentence. It reuses the
// evaluator's parse so tooltip and runtime always agree on the clause. Not
// safety-critical; approximate formatting is fine.
func Translate(conditionExpr string, fields []models.FieldDefinition) string {
	if strings.TrimSpace(conditionExpr) == "" {
		return "Sin condición"
	}

	clause, ok := Parse(conditionExpr)
	if !ok {
		return conditionExpr
	}

	label := clause.Field
	value := clause.Literal

	for _, field := range fields {
		if field.Name != clause.Field {
			continue
		}

		if field.Label != "" {
			label = field.Label
		}

		if field.Kind == models.FieldKindCurrency {
			value = formatCurrency(clause.Literal)
		}

		break
	}

	return fmt.Sprintf("%s %s %s", label, opPhrases[clause.Op], value)
}

// formatCurrency renders a numeric literal as currency with dot-separated
// thousands. Non-numeric literals pass through unchanged.
func formatCurrency(literal string) string {
	num, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return literal
	}

	whole := strconv.FormatInt(int64(num), 10)

	negative := strings.HasPrefix(whole, "-")
	if negative {
		whole = whole[1:]
	}

	var b strings.Builder

	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}

		b.WriteRune(digit)
	}

	formatted := "$" + b.String()
	if negative {
		formatted = "-" + formatted
	}

	return formatted
}
