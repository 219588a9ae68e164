package models

// StepKind is the closed set of automation step types. Every consumption site
// switches exhaustively over it.
type StepKind string

const (
	StepKindFinance StepKind = "finance" // Ledger movement posted to the finance service
	StepKindEmail   StepKind = "email"   // Email dispatched through the mail bridge
	StepKindWebhook StepKind = "webhook" // Arbitrary HTTP call
)

// StepConfig is one configured automation step on an activity. Steps execute
// strictly in declaration order; the first failure aborts the remainder.
type StepConfig struct {
	ID     string         `json:"id"   validate:"required"`
	Kind   StepKind       `json:"kind" validate:"required"`
	Config map[string]any `json:"config"`
}
