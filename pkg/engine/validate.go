package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tramio/tramio/pkg/models"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateForm checks submitted values against the activity's field
// definitions and returns every violation as a user-facing message.
// Validation is advisory: callers decide whether to block on a non-empty
// result, the engine itself never rejects a save.
func (e *Engine) ValidateForm(ctx context.Context, fields []models.FieldDefinition, formData map[string]string) []string {
	var messages []string

	for _, field := range fields {
		value, present := formData[field.Name]
		trimmed := strings.TrimSpace(value)

		if field.Required && (!present || trimmed == "") {
			messages = append(messages, fmt.Sprintf("El campo '%s' es obligatorio", displayLabel(field)))

			continue
		}

		if trimmed == "" {
			continue
		}

		if field.Pattern != "" {
			pattern, err := regexp.Compile(field.Pattern)
			if err != nil {
				// A broken pattern must not block the form.
				e.logger.WarnContext(ctx, "invalid field pattern, skipping",
					"field", field.Name, "pattern", field.Pattern, "error", err)
			} else if !pattern.MatchString(value) {
				messages = append(messages, fmt.Sprintf("El campo '%s' no tiene un formato válido", displayLabel(field)))
			}
		}

		if field.Kind.IsNumeric() {
			messages = append(messages, validateNumeric(field, trimmed)...)
		}

		if field.Kind == models.FieldKindEmail && !emailPattern.MatchString(trimmed) {
			messages = append(messages, fmt.Sprintf("El campo '%s' debe ser un correo electrónico válido", displayLabel(field)))
		}
	}

	return messages
}

func validateNumeric(field models.FieldDefinition, value string) []string {
	number, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return []string{fmt.Sprintf("El campo '%s' debe ser numérico", displayLabel(field))}
	}

	var messages []string

	if field.Min != nil && number < *field.Min {
		messages = append(messages, fmt.Sprintf("El campo '%s' debe ser mayor o igual a %g", displayLabel(field), *field.Min))
	}

	if field.Max != nil && number > *field.Max {
		messages = append(messages, fmt.Sprintf("El campo '%s' debe ser menor o igual a %g", displayLabel(field), *field.Max))
	}

	return messages
}

func displayLabel(field models.FieldDefinition) string {
	if field.Label != "" {
		return field.Label
	}

	return field.Name
}
