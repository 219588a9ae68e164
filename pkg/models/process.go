package models

import "time"

// ProcessStatus represents the lifecycle state of a process instance.
type ProcessStatus string

const (
	ProcessStatusActive    ProcessStatus = "active"
	ProcessStatusCompleted ProcessStatus = "completed"
)

// ProcessInstance is one live execution of a workflow. While active it sits on
// exactly one activity; completing retains the final activity for audit.
//
// At most a consistent subset of the assignment fields is non-nil: a specific
// user assignment clears the group fields and a group assignment clears the
// user field. All three nil means the task is fully public.
type ProcessInstance struct {
	ID             string        `json:"id"`
	WorkflowID     string        `json:"workflow_id"     validate:"required"`
	OrganizationID string        `json:"organization_id" validate:"required"`
	Name           string        `json:"name"`
	Status         ProcessStatus `json:"status"`

	CurrentActivityID string `json:"current_activity_id"`

	AssignedUserID       *string `json:"assigned_user_id,omitempty"`
	AssignedDepartmentID *string `json:"assigned_department_id,omitempty"`
	AssignedPositionID   *string `json:"assigned_position_id,omitempty"`

	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsPublic reports whether the task is visible to everyone: no user, no
// department and no position assigned.
func (p *ProcessInstance) IsPublic() bool {
	return p.AssignedUserID == nil && p.AssignedDepartmentID == nil && p.AssignedPositionID == nil
}

// ProcessDataEntry is one captured form value. Values are always strings;
// numeric/boolean typing is reconstructed by the consuming field renderer.
// Field names are unique per (process, activity): saving a draft replaces that
// activity's rows wholesale.
type ProcessDataEntry struct {
	ProcessID  string    `json:"process_id"`
	ActivityID string    `json:"activity_id"`
	FieldName  string    `json:"field_name"`
	Value      string    `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
}
