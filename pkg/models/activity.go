package models

// ActivityType represents the role an activity plays within the workflow graph.
type ActivityType string

const (
	ActivityTypeStart    ActivityType = "start"    // Entry point, exactly one per workflow
	ActivityTypeTask     ActivityType = "task"     // Human task with a form
	ActivityTypeDecision ActivityType = "decision" // Routing point, outgoing transitions carry conditions
	ActivityTypeEnd      ActivityType = "end"      // Terminal activity
)

// AssignmentType determines how the responsible party for an activity is chosen.
type AssignmentType string

const (
	AssignmentTypeManual       AssignmentType = "manual"        // Lands in the shared group queue
	AssignmentTypeCreator      AssignmentType = "creator"       // Assigned to the instance creator
	AssignmentTypeSpecificUser AssignmentType = "specific_user" // Assigned to a configured user
	AssignmentTypeDepartment   AssignmentType = "department"    // Pool drawn from a department
	AssignmentTypePosition     AssignmentType = "position"      // Pool drawn from a position
)

// AssignmentStrategy selects a user within a department/position pool. It only
// applies when AssignmentType is department or position.
type AssignmentStrategy string

const (
	AssignmentStrategyManual     AssignmentStrategy = "manual"     // No selection, whole pool sees the task
	AssignmentStrategyWorkload   AssignmentStrategy = "workload"   // Fewest active instances wins
	AssignmentStrategyEfficiency AssignmentStrategy = "efficiency" // Most historical completions wins
	AssignmentStrategyRandom     AssignmentStrategy = "random"     // Uniform random pool member
)

// ActionType declares whether entering an activity triggers automation steps.
type ActionType string

const (
	ActionTypeNone       ActionType = "none"
	ActionTypeAutomation ActionType = "automation"
)

// Activity is a node in the workflow graph.
type Activity struct {
	ID          string       `json:"id"          validate:"required"`
	WorkflowID  string       `json:"workflow_id" validate:"required"`
	Name        string       `json:"name"        validate:"required,min=1"`
	Description string       `json:"description,omitempty"`
	Type        ActivityType `json:"type"        validate:"required"`

	Fields []FieldDefinition `json:"fields,omitempty"`

	AssignmentType       AssignmentType     `json:"assignment_type,omitempty"`
	AssignmentStrategy   AssignmentStrategy `json:"assignment_strategy,omitempty"`
	AssignedUserID       *string            `json:"assigned_user_id,omitempty"`
	AssignedDepartmentID *string            `json:"assigned_department_id,omitempty"`
	AssignedPositionID   *string            `json:"assigned_position_id,omitempty"`

	ActionType   ActionType   `json:"action_type,omitempty"`
	ActionConfig []StepConfig `json:"action_config,omitempty"`

	// SLA attributes. DueDateHours defaults to 24 when zero.
	DueDateHours           int  `json:"due_date_hours,omitempty"`
	SLAAlertHours          int  `json:"sla_alert_hours,omitempty"`
	EnableSupervisorAlerts bool `json:"enable_supervisor_alerts,omitempty"`

	PositionX int `json:"position_x,omitempty"`
	PositionY int `json:"position_y,omitempty"`
}

// HasAutomation reports whether entering this activity runs automation steps.
func (a *Activity) HasAutomation() bool {
	return a.ActionType != "" && a.ActionType != ActionTypeNone && len(a.ActionConfig) > 0
}

// FieldByName returns the field definition with the given name, if present.
func (a *Activity) FieldByName(name string) (FieldDefinition, bool) {
	for _, field := range a.Fields {
		if field.Name == name {
			return field, true
		}
	}

	return FieldDefinition{}, false
}

// DueHours returns the SLA deadline in hours, applying the 24h default.
func (a *Activity) DueHours() int {
	if a.DueDateHours <= 0 {
		return 24
	}

	return a.DueDateHours
}
