package email

import (
	"context"

	"github.com/tramio/tramio/pkg/automation"
	"github.com/tramio/tramio/pkg/models"
)

// Factory creates email steps.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Kind() models.StepKind {
	return models.StepKindEmail
}

func (f *Factory) Create(_ context.Context, config map[string]any) (automation.Step, error) {
	return NewStep(config)
}

// Schema returns the JSON schema for the email step configuration. The
// recipient is deliberately not schema-required: a missing recipient must
// fail at execution time with its dedicated error, matching the history
// comment users expect.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Mail bridge endpoint.",
			},
			"token": map[string]any{
				"type":        "string",
				"description": "Bearer token for the mail bridge.",
			},
			"to":      map[string]any{"type": "string"},
			"cc":      map[string]any{"type": "string"},
			"subject": map[string]any{"type": "string"},
			"body":    map[string]any{"type": "string"},
			"smtp_host": map[string]any{
				"type":        "string",
				"description": "SMTP account override, usually drawn from organization settings.",
			},
			"smtp_port": map[string]any{"type": "string"},
			"smtp_user": map[string]any{"type": "string"},
			"smtp_pass": map[string]any{"type": "string"},
			"smtp_secure": map[string]any{
				"type": []string{"boolean", "string"},
			},
		},
		"required": []string{"url"},
	}
}
