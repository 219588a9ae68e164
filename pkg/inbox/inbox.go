// Package inbox builds the per-user task list: active instances a user may
// act on, enriched with their workflow, current activity and SLA urgency.
package inbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// nearDueWindowHours is how close to the deadline a task starts showing as
// near due.
const nearDueWindowHours = 4

// SLA carries the urgency flags computed on read. Escalation is a display
// and notification concern; nothing in the engine acts on it.
type SLA struct {
	Overdue      bool    `json:"overdue"`
	NearDue      bool    `json:"near_due"`
	Escalated    bool    `json:"escalated"`
	HoursElapsed float64 `json:"hours_elapsed"`
	DueInHours   float64 `json:"due_in_hours"`
}

// Task is one actionable inbox row.
type Task struct {
	Instance *models.ProcessInstance `json:"instance"`
	Workflow *models.Workflow        `json:"workflow"`
	Activity *models.Activity        `json:"activity"`
	SLA      SLA                     `json:"sla"`
}

// Inbox queries tasks for users.
type Inbox struct {
	persistence persistence.Persistence
	logger      *slog.Logger
	now         func() time.Time
}

func New(p persistence.Persistence, logger *slog.Logger) *Inbox {
	return &Inbox{
		persistence: p,
		logger:      logger.With("module", "inbox"),
		now:         time.Now,
	}
}

// WithClock replaces the time source, for deterministic SLA tests.
func (i *Inbox) WithClock(now func() time.Time) *Inbox {
	i.now = now

	return i
}

// ActiveTasks returns the active instances the user may act on, newest first.
// Eligibility is a union: directly assigned, fully public, assigned to a
// position the user holds, or assigned to a department containing one of the
// user's positions.
func (i *Inbox) ActiveTasks(ctx context.Context, userID string) ([]*Task, error) {
	positions, err := i.persistence.Directory().PositionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	positionIDs := make([]string, 0, len(positions))
	departmentIDs := make([]string, 0, len(positions))
	seenDepartments := make(map[string]bool)

	for _, position := range positions {
		positionIDs = append(positionIDs, position.ID)

		if !seenDepartments[position.DepartmentID] {
			seenDepartments[position.DepartmentID] = true

			departmentIDs = append(departmentIDs, position.DepartmentID)
		}
	}

	instances, err := i.persistence.Processes().ListEligible(ctx, userID, positionIDs, departmentIDs)
	if err != nil {
		return nil, err
	}

	tasks := make([]*Task, 0, len(instances))

	for _, instance := range instances {
		task, err := i.buildTask(ctx, instance)
		if err != nil {
			i.logger.WarnContext(ctx, "skipping task with unreadable workflow",
				"process_id", instance.ID, "error", err)

			continue
		}

		tasks = append(tasks, task)
	}

	return tasks, nil
}

func (i *Inbox) buildTask(ctx context.Context, instance *models.ProcessInstance) (*Task, error) {
	workflow, err := i.persistence.Workflows().GetByID(ctx, instance.WorkflowID)
	if err != nil {
		return nil, err
	}

	task := &Task{Instance: instance, Workflow: workflow}

	activity, ok := workflow.ActivityByID(instance.CurrentActivityID)
	if ok {
		task.Activity = activity
		task.SLA = computeSLA(activity, instance.CreatedAt, i.now())
	}

	return task, nil
}

// computeSLA derives the urgency flags from elapsed time since the instance
// was created.
func computeSLA(activity *models.Activity, createdAt, now time.Time) SLA {
	elapsed := now.Sub(createdAt).Hours()
	due := float64(activity.DueHours())
	remaining := due - elapsed

	sla := SLA{
		HoursElapsed: elapsed,
		DueInHours:   remaining,
		Overdue:      elapsed > due,
		NearDue:      remaining > 0 && remaining <= nearDueWindowHours,
	}

	if activity.EnableSupervisorAlerts && activity.SLAAlertHours > 0 && elapsed > float64(activity.SLAAlertHours) {
		sla.Escalated = true
	}

	return sla
}
