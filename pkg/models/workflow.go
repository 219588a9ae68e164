// Package models defines the core domain models for graph-based process execution.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow definition.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Editable, not executable
	WorkflowStatusActive   WorkflowStatus = "active"   // Executable
	WorkflowStatusArchived WorkflowStatus = "archived" // Historical, not executable
)

// Workflow is a named, versioned process definition: a directed graph of
// activities connected by transitions. ParentID is a lineage pointer linking a
// workflow to the version it was derived from; lineage is informational only
// and plays no part in execution.
type Workflow struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"            validate:"required,min=3"`
	Description    string         `json:"description"`
	Status         WorkflowStatus `json:"status"          validate:"required"`
	OrganizationID string         `json:"organization_id" validate:"required"`
	CreatedBy      string         `json:"created_by"`
	ParentID       *string        `json:"parent_id,omitempty"`

	// NameTemplate holds {{field}} placeholders resolved against the start
	// activity's captured data to derive a human-readable instance name.
	NameTemplate string `json:"name_template,omitempty"`

	Activities  []*Activity   `json:"activities"`
	Transitions []*Transition `json:"transitions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StartActivity returns the workflow's unique start activity. The boolean is
// false when the workflow has no start activity or more than one.
func (w *Workflow) StartActivity() (*Activity, bool) {
	var start *Activity

	for _, activity := range w.Activities {
		if activity.Type != ActivityTypeStart {
			continue
		}

		if start != nil {
			return nil, false
		}

		start = activity
	}

	return start, start != nil
}

// ActivityByID returns the activity with the given ID, if present.
func (w *Workflow) ActivityByID(id string) (*Activity, bool) {
	for _, activity := range w.Activities {
		if activity.ID == id {
			return activity, true
		}
	}

	return nil, false
}

// TransitionByID returns the transition with the given ID, if present.
func (w *Workflow) TransitionByID(id string) (*Transition, bool) {
	for _, transition := range w.Transitions {
		if transition.ID == id {
			return transition, true
		}
	}

	return nil, false
}

// OutgoingTransitions returns the transitions leaving the given activity, in
// declaration order.
func (w *Workflow) OutgoingTransitions(activityID string) []*Transition {
	out := make([]*Transition, 0)

	for _, transition := range w.Transitions {
		if transition.SourceID == activityID {
			out = append(out, transition)
		}
	}

	return out
}

// IsExecutable reports whether instances may be started from this workflow.
func (w *Workflow) IsExecutable() bool {
	return w.Status == WorkflowStatusActive
}
