package models

// Directory models are read-only inputs to assignment resolution and the task
// inbox. The organization structure itself is maintained elsewhere.

// Department groups positions. SupervisorID receives SLA escalation notices.
type Department struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name" validate:"required"`
	SupervisorID   string `json:"supervisor_id,omitempty"`
}

// Position is a role within a department.
type Position struct {
	ID           string `json:"id"`
	DepartmentID string `json:"department_id" validate:"required"`
	Name         string `json:"name"          validate:"required"`
}

// EmployeePosition links a user to a position they currently hold. A user may
// hold several positions at once.
type EmployeePosition struct {
	UserID     string `json:"user_id"     validate:"required"`
	PositionID string `json:"position_id" validate:"required"`
}
