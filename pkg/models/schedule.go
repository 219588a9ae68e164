package models

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

// RecurrencePattern defines how a recurring scheduled process repeats.
type RecurrencePattern string

const (
	RecurrenceDaily      RecurrencePattern = "daily"
	RecurrenceWeekly     RecurrencePattern = "weekly"
	RecurrenceCustomDays RecurrencePattern = "custom_days"
)

var ErrInvalidRecurrence = errors.New("invalid recurrence configuration")

// ScheduledProcess is a template for future or recurring process
// instantiation. NextRunAt is precomputed so the poller can query due
// schedules without evaluating every recurrence rule on each tick.
type ScheduledProcess struct {
	ID             string `json:"id"`
	WorkflowID     string `json:"workflow_id"     validate:"required"`
	OrganizationID string `json:"organization_id" validate:"required"`
	Name           string `json:"name"`

	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	IsRecurring bool      `json:"is_recurring"`

	RecurrencePattern  RecurrencePattern `json:"recurrence_pattern,omitempty"`
	RecurrenceInterval int               `json:"recurrence_interval,omitempty"`

	// CronExpression applies only to the custom_days pattern, standard
	// 5-field format.
	CronExpression string `json:"cron_expression,omitempty"`

	NextRunAt time.Time `json:"next_run_at"`
	Active    bool      `json:"active"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NextAfter computes the next run time following the given moment, or an
// error when the schedule is one-shot or misconfigured.
func (s *ScheduledProcess) NextAfter(after time.Time) (time.Time, error) {
	if !s.IsRecurring {
		return time.Time{}, ErrInvalidRecurrence
	}

	interval := s.RecurrenceInterval
	if interval <= 0 {
		interval = 1
	}

	switch s.RecurrencePattern {
	case RecurrenceDaily:
		return after.Add(time.Duration(interval) * 24 * time.Hour), nil
	case RecurrenceWeekly:
		return after.Add(time.Duration(interval) * 7 * 24 * time.Hour), nil
	case RecurrenceCustomDays:
		schedule, err := cron.ParseStandard(s.CronExpression)
		if err != nil {
			return time.Time{}, err
		}

		return schedule.Next(after), nil
	default:
		return time.Time{}, ErrInvalidRecurrence
	}
}

// IsDue reports whether the schedule should fire at the given moment.
func (s *ScheduledProcess) IsDue(now time.Time) bool {
	return s.Active && !s.NextRunAt.After(now)
}
