package automation

import (
	"context"
	"log/slog"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/template"
)

// RunResult is the outcome of one automation run. Outputs holds only the
// values produced by the steps themselves, even when the run failed partway:
// the caller decides what to persist.
type RunResult struct {
	Success      bool
	Outputs      map[string]string
	FailedStepID string
	Err          error
}

// Runner executes an activity's automation steps strictly in order. The first
// failure aborts the remaining steps.
type Runner struct {
	registry *Registry
	logger   *slog.Logger
}

func NewRunner(registry *Registry, logger *slog.Logger) *Runner {
	return &Runner{
		registry: registry,
		logger:   logger.With("module", "automation"),
	}
}

// Run executes steps against the process data and organization settings.
// Every string config value goes through {{var}} substitution before the step
// is built: the variable accumulator is seeded from processData and grows with
// each step's outputs, so later steps see earlier results. Organization
// settings resolve after the accumulator; unresolved tokens stay in place.
func (r *Runner) Run(ctx context.Context, steps []models.StepConfig, processData, orgSettings map[string]string) *RunResult {
	variables := make(map[string]string, len(processData))
	for k, v := range processData {
		variables[k] = v
	}

	outputs := make(map[string]string)

	for _, stepConfig := range steps {
		resolved := resolveConfig(stepConfig.Config, variables, orgSettings)

		step, err := r.registry.Create(ctx, stepConfig.Kind, withStepID(resolved, stepConfig.ID))
		if err != nil {
			r.logger.ErrorContext(ctx, "automation step construction failed",
				"step_id", stepConfig.ID, "kind", stepConfig.Kind, "error", err)

			return &RunResult{Outputs: outputs, FailedStepID: stepConfig.ID, Err: err}
		}

		stepOutputs, err := step.Execute(ctx)
		if err != nil {
			r.logger.ErrorContext(ctx, "automation step failed",
				"step_id", stepConfig.ID, "kind", stepConfig.Kind, "error", err)

			return &RunResult{Outputs: outputs, FailedStepID: stepConfig.ID, Err: err}
		}

		for key, value := range stepOutputs {
			variables[key] = value
			outputs[key] = value
		}
	}

	return &RunResult{Success: true, Outputs: outputs}
}

// resolveConfig substitutes {{var}} tokens in every string value, descending
// into nested maps such as webhook headers.
func resolveConfig(config map[string]any, sources ...map[string]string) map[string]any {
	resolved := make(map[string]any, len(config))
	for key, value := range config {
		resolved[key] = resolveValue(value, sources...)
	}

	return resolved
}

func resolveValue(value any, sources ...map[string]string) any {
	switch v := value.(type) {
	case string:
		return template.Substitute(v, sources...)
	case map[string]any:
		return resolveConfig(v, sources...)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = resolveValue(item, sources...)
		}

		return items
	default:
		return value
	}
}

func withStepID(config map[string]any, id string) map[string]any {
	config["id"] = id

	return config
}
