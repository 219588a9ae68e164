// Package engine orchestrates process execution: starting instances, saving
// form data, advancing through transitions, recording history and running the
// automation attached to activities.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tramio/tramio/pkg/assignment"
	"github.com/tramio/tramio/pkg/automation"
	"github.com/tramio/tramio/pkg/condition"
	"github.com/tramio/tramio/pkg/eventbus"
	"github.com/tramio/tramio/pkg/events"
	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
	"github.com/tramio/tramio/pkg/template"
)

// Engine drives process instances through their workflow graph. The graph
// itself is read-only here; only instance state, data rows and history rows
// are mutated.
type Engine struct {
	persistence persistence.Persistence
	resolver    *assignment.Resolver
	runner      *automation.Runner
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

func New(p persistence.Persistence, resolver *assignment.Resolver, runner *automation.Runner, publisher eventbus.EventPublisher, logger *slog.Logger) *Engine {
	return &Engine{
		persistence: p,
		resolver:    resolver,
		runner:      runner,
		publisher:   publisher,
		logger:      logger.With("module", "engine"),
	}
}

// StartProcess creates a new active instance at the workflow's start activity,
// owned by the caller, and records the started history entry.
func (e *Engine) StartProcess(ctx context.Context, workflowID, name, organizationID, userID string) (*models.ProcessInstance, error) {
	workflow, err := e.persistence.Workflows().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	start, ok := workflow.StartActivity()
	if !ok {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, ErrNoStartActivity)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate process ID: %w", err)
	}

	now := time.Now().UTC()
	instance := &models.ProcessInstance{
		ID:                id.String(),
		WorkflowID:        workflowID,
		OrganizationID:    organizationID,
		Name:              name,
		Status:            models.ProcessStatusActive,
		CurrentActivityID: start.ID,
		AssignedUserID:    &userID,
		CreatedBy:         userID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = e.persistence.Processes().Save(ctx, instance)
	if err != nil {
		return nil, err
	}

	err = e.persistence.History().Append(ctx, &models.HistoryEntry{
		ProcessID:  instance.ID,
		ActivityID: start.ID,
		Action:     models.HistoryActionStarted,
		UserID:     userID,
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, events.ProcessStarted{
		BaseEvent: e.baseEvent(events.ProcessStartedEvent, instance),
		Name:      instance.Name,
		StartedBy: userID,
	})

	return instance, nil
}

// FieldDefinitions returns the form declared on an activity.
func (e *Engine) FieldDefinitions(ctx context.Context, workflowID, activityID string) ([]models.FieldDefinition, error) {
	workflow, err := e.persistence.Workflows().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	activity, ok := workflow.ActivityByID(activityID)
	if !ok {
		return nil, fmt.Errorf("activity %s: %w", activityID, ErrActivityNotFound)
	}

	return activity.Fields, nil
}

// ProcessData returns the values captured at one activity.
func (e *Engine) ProcessData(ctx context.Context, processID, activityID string) (map[string]string, error) {
	entries, err := e.persistence.ProcessData().GetByActivity(ctx, processID, activityID)
	if err != nil {
		return nil, err
	}

	data := make(map[string]string, len(entries))
	for _, entry := range entries {
		data[entry.FieldName] = entry.Value
	}

	return data, nil
}

// SaveProcessData replaces the activity's captured values wholesale, then
// resolves the workflow's name template when the activity is the start
// activity. The new name is committed only if every template token resolved
// and the result differs from the current name.
func (e *Engine) SaveProcessData(ctx context.Context, processID, activityID string, fields map[string]string) error {
	entries := make([]models.ProcessDataEntry, 0, len(fields))
	for name, value := range fields {
		entries = append(entries, models.ProcessDataEntry{
			ProcessID:  processID,
			ActivityID: activityID,
			FieldName:  name,
			Value:      value,
		})
	}

	err := e.persistence.ProcessData().ReplaceForActivity(ctx, processID, activityID, entries)
	if err != nil {
		return err
	}

	return e.resolveInstanceName(ctx, processID, activityID, fields)
}

func (e *Engine) resolveInstanceName(ctx context.Context, processID, activityID string, fields map[string]string) error {
	instance, err := e.persistence.Processes().GetByID(ctx, processID)
	if err != nil {
		return err
	}

	workflow, err := e.persistence.Workflows().GetByID(ctx, instance.WorkflowID)
	if err != nil {
		return err
	}

	if workflow.NameTemplate == "" {
		return nil
	}

	start, ok := workflow.StartActivity()
	if !ok || start.ID != activityID {
		return nil
	}

	name, ok := template.ResolveName(workflow.NameTemplate, fields)
	if !ok || name == instance.Name {
		return nil
	}

	instance.Name = name

	return e.persistence.Processes().Update(ctx, instance)
}

// AdvanceProcess moves the instance along a transition: resolves the target,
// computes the next assignment using the instance's original creator, updates
// the instance, records arrival history and finally runs the target's
// automation. Automation failure never rolls the move back.
func (e *Engine) AdvanceProcess(ctx context.Context, processID, transitionID, comment, actorID string) (*models.ProcessInstance, error) {
	instance, err := e.persistence.Processes().GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}

	workflow, err := e.persistence.Workflows().GetByID(ctx, instance.WorkflowID)
	if err != nil {
		return nil, err
	}

	transition, ok := workflow.TransitionByID(transitionID)
	if !ok {
		return nil, fmt.Errorf("transition %s: %w", transitionID, ErrTransitionNotFound)
	}

	target, ok := workflow.ActivityByID(transition.TargetID)
	if !ok {
		return nil, fmt.Errorf("activity %s: %w", transition.TargetID, ErrActivityNotFound)
	}

	fromActivityID := instance.CurrentActivityID

	// Assignment always references the original creator, not the current
	// actor: "assign back to creator" keeps meaning the person who opened
	// the process.
	assigned := e.resolver.Resolve(ctx, target, instance.CreatedBy, instance.OrganizationID)
	applyAssignment(instance, assigned)

	instance.CurrentActivityID = target.ID
	instance.Status = models.ProcessStatusActive
	instance.UpdatedAt = time.Now().UTC()

	err = e.persistence.Processes().Update(ctx, instance)
	if err != nil {
		return nil, err
	}

	// History records where the process arrived, not where it left.
	err = e.persistence.History().Append(ctx, &models.HistoryEntry{
		ProcessID:  instance.ID,
		ActivityID: target.ID,
		Action:     models.HistoryActionCompleted,
		Comment:    comment,
		UserID:     actorID,
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, events.ProcessAdvanced{
		BaseEvent:      e.baseEvent(events.ProcessAdvancedEvent, instance),
		FromActivityID: fromActivityID,
		ToActivityID:   target.ID,
		TransitionID:   transitionID,
		AssignedUserID: instance.AssignedUserID,
		AdvancedBy:     actorID,
	})
	e.publish(ctx, events.TaskAssigned{
		BaseEvent:    e.baseEvent(events.TaskAssignedEvent, instance),
		ActivityID:   target.ID,
		UserID:       instance.AssignedUserID,
		DepartmentID: instance.AssignedDepartmentID,
		PositionID:   instance.AssignedPositionID,
	})

	if target.HasAutomation() {
		e.runAutomation(ctx, instance, target, actorID)
	}

	return instance, nil
}

// runAutomation executes the target activity's steps against the full process
// data and the organization settings. Outcomes land in history; errors never
// propagate to the caller because the transition has already happened.
func (e *Engine) runAutomation(ctx context.Context, instance *models.ProcessInstance, target *models.Activity, actorID string) {
	data, err := e.allProcessData(ctx, instance.ID)
	if err != nil {
		e.recordAutomationFailure(ctx, instance, target, "", err)

		return
	}

	settings := e.organizationSettings(ctx, instance.OrganizationID)

	result := e.runner.Run(ctx, target.ActionConfig, data, settings)
	if !result.Success {
		e.recordAutomationFailure(ctx, instance, target, result.FailedStepID, result.Err)

		return
	}

	// Only keys the automation produced on top of the existing data are
	// persisted, tagged to the activity that ran it.
	newEntries := make([]models.ProcessDataEntry, 0, len(result.Outputs))

	for key, value := range result.Outputs {
		if _, exists := data[key]; exists {
			continue
		}

		newEntries = append(newEntries, models.ProcessDataEntry{
			ProcessID:  instance.ID,
			ActivityID: target.ID,
			FieldName:  key,
			Value:      value,
		})
	}

	if len(newEntries) > 0 {
		err = e.persistence.ProcessData().Insert(ctx, newEntries)
		if err != nil {
			e.logger.ErrorContext(ctx, "failed to persist automation outputs",
				"process_id", instance.ID, "activity_id", target.ID, "error", err)
		}
	}

	err = e.persistence.History().Append(ctx, &models.HistoryEntry{
		ProcessID:  instance.ID,
		ActivityID: target.ID,
		Action:     models.HistoryActionCommented,
		Comment:    models.AutomationSuccessPrefix + "Acción Automática completada correctamente",
		UserID:     actorID,
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to record automation success",
			"process_id", instance.ID, "error", err)
	}
}

func (e *Engine) recordAutomationFailure(ctx context.Context, instance *models.ProcessInstance, target *models.Activity, stepID string, cause error) {
	detail := cause.Error()
	if stepID != "" {
		detail = fmt.Sprintf("paso %s: %s", stepID, detail)
	}

	err := e.persistence.History().Append(ctx, &models.HistoryEntry{
		ProcessID:  instance.ID,
		ActivityID: target.ID,
		Action:     models.HistoryActionCommented,
		Comment:    models.AutomationFailurePrefix + detail,
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to record automation failure",
			"process_id", instance.ID, "error", err)
	}

	e.publish(ctx, events.AutomationFailed{
		BaseEvent:    e.baseEvent(events.AutomationFailedEvent, instance),
		ActivityID:   target.ID,
		FailedStepID: stepID,
		Error:        cause.Error(),
	})
}

// CompleteProcess finalizes the instance on its current activity. Terminal
// action for end activities or activities with no outgoing transitions.
func (e *Engine) CompleteProcess(ctx context.Context, processID, comment, actorID string) (*models.ProcessInstance, error) {
	instance, err := e.persistence.Processes().GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	instance.Status = models.ProcessStatusCompleted
	instance.CompletedAt = &now
	instance.UpdatedAt = now

	err = e.persistence.Processes().Update(ctx, instance)
	if err != nil {
		return nil, err
	}

	err = e.persistence.History().Append(ctx, &models.HistoryEntry{
		ProcessID:  instance.ID,
		ActivityID: instance.CurrentActivityID,
		Action:     models.HistoryActionCompleted,
		Comment:    comment,
		UserID:     actorID,
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, events.ProcessCompleted{
		BaseEvent:       e.baseEvent(events.ProcessCompletedEvent, instance),
		FinalActivityID: instance.CurrentActivityID,
		CompletedBy:     actorID,
	})

	return instance, nil
}

// AttendAll saves the form once, evaluates every outgoing transition against
// it and advances along the first active one. Even when several transitions
// are nominally active only a single path is taken; the count of active
// transitions is returned so callers can surface the skipped ones.
func (e *Engine) AttendAll(ctx context.Context, processID, activityID string, fields map[string]string, comment, actorID string) (int, error) {
	err := e.SaveProcessData(ctx, processID, activityID, fields)
	if err != nil {
		return 0, err
	}

	instance, err := e.persistence.Processes().GetByID(ctx, processID)
	if err != nil {
		return 0, err
	}

	workflow, err := e.persistence.Workflows().GetByID(ctx, instance.WorkflowID)
	if err != nil {
		return 0, err
	}

	var active []*models.Transition

	for _, transition := range workflow.OutgoingTransitions(activityID) {
		if condition.Evaluate(transition.Condition, fields) {
			active = append(active, transition)
		}
	}

	if len(active) == 0 {
		return 0, nil
	}

	_, err = e.AdvanceProcess(ctx, processID, active[0].ID, comment, actorID)
	if err != nil {
		return len(active), err
	}

	return len(active), nil
}

// IsFieldVisible evaluates a field's visibility condition against the
// in-progress form.
func (e *Engine) IsFieldVisible(field models.FieldDefinition, formData map[string]string) bool {
	if field.VisibilityCondition == "" {
		return true
	}

	return condition.Evaluate(field.VisibilityCondition, formData)
}

func (e *Engine) allProcessData(ctx context.Context, processID string) (map[string]string, error) {
	entries, err := e.persistence.ProcessData().GetByProcess(ctx, processID)
	if err != nil {
		return nil, err
	}

	data := make(map[string]string, len(entries))
	for _, entry := range entries {
		data[entry.FieldName] = entry.Value
	}

	return data, nil
}

// organizationSettings degrades to an empty variable space when the
// organization cannot be read: steps whose tokens stay unresolved fail on
// their own terms instead of blocking the whole run upfront.
func (e *Engine) organizationSettings(ctx context.Context, organizationID string) map[string]string {
	org, err := e.persistence.Organizations().GetByID(ctx, organizationID)
	if err != nil {
		e.logger.WarnContext(ctx, "failed to load organization settings",
			"organization_id", organizationID, "error", err)

		return map[string]string{}
	}

	return org.Settings
}

// applyAssignment writes the resolved assignment onto the instance keeping
// the exclusivity invariant: a picked user clears the group fields.
func applyAssignment(instance *models.ProcessInstance, assigned assignment.Assignment) {
	if assigned.UserID != nil && *assigned.UserID != "" {
		instance.AssignedUserID = assigned.UserID
		instance.AssignedDepartmentID = nil
		instance.AssignedPositionID = nil

		return
	}

	instance.AssignedUserID = nil
	instance.AssignedDepartmentID = assigned.DepartmentID
	instance.AssignedPositionID = assigned.PositionID
}

func (e *Engine) baseEvent(eventType events.EventType, instance *models.ProcessInstance) events.BaseEvent {
	return events.BaseEvent{
		ID:             uuid.NewString(),
		Type:           eventType,
		Timestamp:      time.Now().UTC(),
		ProcessID:      instance.ID,
		WorkflowID:     instance.WorkflowID,
		OrganizationID: instance.OrganizationID,
	}
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if e.publisher == nil {
		return
	}

	err := e.publisher.Publish(ctx, event)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to publish event",
			"event_type", event.GetType(), "error", err)
	}
}
