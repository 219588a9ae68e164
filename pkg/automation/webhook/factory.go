package webhook

import (
	"context"

	"github.com/tramio/tramio/pkg/automation"
	"github.com/tramio/tramio/pkg/models"
)

// Factory creates webhook steps.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Kind() models.StepKind {
	return models.StepKindWebhook
}

func (f *Factory) Create(_ context.Context, config map[string]any) (automation.Step, error) {
	return NewStep(config)
}

// Schema returns the JSON schema for the webhook step configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Target URL. Supports {{var}} substitution.",
			},
			"method": map[string]any{
				"type":    "string",
				"default": "GET",
				"enum":    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"},
			},
			"headers": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "string",
				},
			},
			"body": map[string]any{
				"type": "string",
			},
			"auth_type": map[string]any{
				"type": "string",
				"enum": []string{"none", "bearer", "basic"},
			},
			"auth_token": map[string]any{"type": "string"},
			"auth_user":  map[string]any{"type": "string"},
			"auth_pass":  map[string]any{"type": "string"},
			"output_variable": map[string]any{
				"type":        "string",
				"description": "Variable name under which the response body is captured.",
			},
		},
		"required": []string{"url"},
	}
}
