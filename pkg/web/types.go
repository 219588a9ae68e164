// Package web provides the HTTP surface of the process engine.
package web

// StartProcessRequest is the body for opening a new process instance.
type StartProcessRequest struct {
	WorkflowID     string `json:"workflow_id"     validate:"required"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id" validate:"required"`
	UserID         string `json:"user_id"         validate:"required"`
}

// AdvanceProcessRequest moves an instance along one transition.
type AdvanceProcessRequest struct {
	TransitionID string `json:"transition_id" validate:"required"`
	Comment      string `json:"comment"`
	UserID       string `json:"user_id"       validate:"required"`
}

// CompleteProcessRequest finalizes an instance on its current activity.
type CompleteProcessRequest struct {
	Comment string `json:"comment"`
	UserID  string `json:"user_id" validate:"required"`
}

// AttendAllRequest saves the form and advances along the first transition
// whose condition holds.
type AttendAllRequest struct {
	ActivityID string            `json:"activity_id" validate:"required"`
	Fields     map[string]string `json:"fields"`
	Comment    string            `json:"comment"`
	UserID     string            `json:"user_id"     validate:"required"`
}

// AttendAllResponse reports how many transitions were active; only the first
// was taken.
type AttendAllResponse struct {
	ActiveTransitions int `json:"active_transitions"`
}

// SaveDataRequest is the body for saving an activity's form draft.
type SaveDataRequest struct {
	Fields map[string]string `json:"fields" validate:"required"`
}

// SaveDataResponse echoes the advisory validation outcome. Saving succeeds
// regardless; callers decide whether to block on the messages.
type SaveDataResponse struct {
	ValidationMessages []string `json:"validation_messages,omitempty"`
}
