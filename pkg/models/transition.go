package models

// Transition is a directed edge between two activities of the same workflow.
// An empty Condition makes the transition unconditional.
type Transition struct {
	ID         string `json:"id"          validate:"required"`
	WorkflowID string `json:"workflow_id" validate:"required"`
	SourceID   string `json:"source_id"   validate:"required"`
	TargetID   string `json:"target_id"   validate:"required"`
	Label      string `json:"label,omitempty"`

	// Condition is a "field OP literal" expression over captured process data,
	// where OP is one of >=, <=, !=, =, >, <.
	Condition string `json:"condition,omitempty"`
}
