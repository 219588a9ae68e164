// Package automation executes the ordered integration steps configured on an
// activity: finance postings, email dispatch and generic webhooks.
package automation

import (
	"context"

	"github.com/tramio/tramio/pkg/models"
)

// Step is one executable automation unit, already configured with resolved
// values.
type Step interface {
	ID() string
	Execute(ctx context.Context) (map[string]string, error)
}

// Factory builds steps of one kind from raw configuration and declares the
// JSON schema that configuration must satisfy.
type Factory interface {
	Kind() models.StepKind
	Schema() map[string]any
	Create(ctx context.Context, config map[string]any) (Step, error)
}
