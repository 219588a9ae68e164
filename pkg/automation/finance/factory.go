package finance

import (
	"context"

	"github.com/tramio/tramio/pkg/automation"
	"github.com/tramio/tramio/pkg/models"
)

// Factory creates finance steps.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Kind() models.StepKind {
	return models.StepKindFinance
}

func (f *Factory) Create(_ context.Context, config map[string]any) (automation.Step, error) {
	return NewStep(config)
}

// Schema returns the JSON schema for the finance step configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"project_url": map[string]any{
				"type":        "string",
				"description": "Base URL of the finance service project.",
			},
			"api_key": map[string]any{
				"type":        "string",
				"description": "API key sent both as header and payload credential.",
			},
			"date": map[string]any{
				"type":        "string",
				"description": "Movement date, passed through as-is.",
			},
			"amount": map[string]any{
				"type":        "string",
				"description": "Movement amount. Coerced to a number before posting.",
			},
			"description": map[string]any{
				"type": "string",
			},
			"type": map[string]any{
				"type":        "string",
				"description": "Movement type, income or expense.",
			},
			"category": map[string]any{
				"type": "string",
			},
			"provider_name": map[string]any{
				"type": "string",
			},
			"concept_id": map[string]any{
				"type": "string",
			},
		},
		"required": []string{"project_url", "api_key", "date", "amount", "description", "type", "category"},
	}
}
