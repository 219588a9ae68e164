// Package events defines the process lifecycle notifications published by the
// execution engine.
package events

import (
	"time"
)

type EventType string

// Topic carries every process lifecycle event.
const Topic = "tramio.process.events"

const EventTypeMetadataKey = "event_type"

const (
	ProcessStartedEvent   EventType = "process.started"
	ProcessAdvancedEvent  EventType = "process.advanced"
	ProcessCompletedEvent EventType = "process.completed"
	AutomationFailedEvent EventType = "automation.failed"
	TaskAssignedEvent     EventType = "task.assigned"
)

// Event is implemented by every published payload.
type Event interface {
	GetType() EventType
}

type BaseEvent struct {
	ID             string         `json:"id"`
	Type           EventType      `json:"type"`
	Timestamp      time.Time      `json:"timestamp"`
	ProcessID      string         `json:"process_id"`
	WorkflowID     string         `json:"workflow_id"`
	OrganizationID string         `json:"organization_id,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type ProcessStarted struct {
	BaseEvent

	Name      string `json:"name"`
	StartedBy string `json:"started_by"`
}

func (e ProcessStarted) GetType() EventType {
	return ProcessStartedEvent
}

type ProcessAdvanced struct {
	BaseEvent

	FromActivityID string  `json:"from_activity_id"`
	ToActivityID   string  `json:"to_activity_id"`
	TransitionID   string  `json:"transition_id"`
	AssignedUserID *string `json:"assigned_user_id,omitempty"`
	AdvancedBy     string  `json:"advanced_by"`
}

func (e ProcessAdvanced) GetType() EventType {
	return ProcessAdvancedEvent
}

type ProcessCompleted struct {
	BaseEvent

	FinalActivityID string `json:"final_activity_id"`
	CompletedBy     string `json:"completed_by"`
}

func (e ProcessCompleted) GetType() EventType {
	return ProcessCompletedEvent
}

type AutomationFailed struct {
	BaseEvent

	ActivityID   string `json:"activity_id"`
	FailedStepID string `json:"failed_step_id"`
	Error        string `json:"error"`
}

func (e AutomationFailed) GetType() EventType {
	return AutomationFailedEvent
}

type TaskAssigned struct {
	BaseEvent

	ActivityID   string  `json:"activity_id"`
	UserID       *string `json:"user_id,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	PositionID   *string `json:"position_id,omitempty"`
}

func (e TaskAssigned) GetType() EventType {
	return TaskAssignedEvent
}
