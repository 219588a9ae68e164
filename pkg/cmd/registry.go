package cmd

import (
	"github.com/tramio/tramio/pkg/automation"
	"github.com/tramio/tramio/pkg/automation/email"
	"github.com/tramio/tramio/pkg/automation/finance"
	"github.com/tramio/tramio/pkg/automation/webhook"
)

// NewStepRegistry returns a registry with all built-in automation steps.
func NewStepRegistry() *automation.Registry {
	registry := automation.NewRegistry()

	registry.Register(webhook.NewFactory())
	registry.Register(email.NewFactory())
	registry.Register(finance.NewFactory())

	return registry
}
