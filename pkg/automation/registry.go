package automation

import (
	"context"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/tramio/tramio/pkg/models"
)

// Registry holds the step factories keyed by kind. Factories are registered at
// wiring time; the set is fixed once the runner starts serving.
type Registry struct {
	factories map[models.StepKind]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[models.StepKind]Factory)}
}

func (r *Registry) Register(factory Factory) {
	r.factories[factory.Kind()] = factory
}

// Kinds returns the registered step kinds.
func (r *Registry) Kinds() []models.StepKind {
	kinds := make([]models.StepKind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}

	return kinds
}

// Create validates config against the factory's schema and builds the step.
func (r *Registry) Create(ctx context.Context, kind models.StepKind, config map[string]any) (Step, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown step kind %q", kind)
	}

	err := validateSchema(config, factory.Schema())
	if err != nil {
		return nil, fmt.Errorf("invalid %s step configuration: %w", kind, err)
	}

	return factory.Create(ctx, config)
}

func validateSchema(config, schema map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	configLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, configLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(details, "; "))
	}

	return nil
}
