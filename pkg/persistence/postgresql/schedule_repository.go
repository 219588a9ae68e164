package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// ScheduleRepository handles scheduled process database operations.
type ScheduleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const scheduleColumns = `
	id
  , workflow_id
  , organization_id
  , name
  , scheduled_at
  , is_recurring
  , recurrence_pattern
  , recurrence_interval
  , cron_expression
  , next_run_at
  , active
  , created_by
  , created_at
  , updated_at
`

func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*models.ScheduledProcess, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM scheduled_processes WHERE id = $1`, id)

	schedule, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrScheduleNotFound
		}

		return nil, fmt.Errorf("failed to scan schedule: %w", err)
	}

	return schedule, nil
}

func (r *ScheduleRepository) Save(ctx context.Context, schedule *models.ScheduledProcess) error {
	now := time.Now().UTC()

	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}

	schedule.UpdatedAt = now

	if schedule.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate schedule ID: %w", err)
		}

		schedule.ID = id.String()
	}

	if schedule.NextRunAt.IsZero() {
		schedule.NextRunAt = schedule.ScheduledAt
	}

	query := `
		INSERT INTO scheduled_processes (id, workflow_id, organization_id, name, scheduled_at, is_recurring, recurrence_pattern, recurrence_interval, cron_expression, next_run_at, active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		schedule.ID,
		schedule.WorkflowID,
		schedule.OrganizationID,
		schedule.Name,
		schedule.ScheduledAt,
		schedule.IsRecurring,
		schedule.RecurrencePattern,
		schedule.RecurrenceInterval,
		schedule.CronExpression,
		schedule.NextRunAt,
		schedule.Active,
		schedule.CreatedBy,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}

	return nil
}

func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.ScheduledProcess) error {
	schedule.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_processes SET
			name = $2
		  , next_run_at = $3
		  , active = $4
		  , updated_at = $5
		WHERE id = $1
	`, schedule.ID, schedule.Name, schedule.NextRunAt, schedule.Active, schedule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	if affected == 0 {
		return persistence.ErrScheduleNotFound
	}

	return nil
}

func (r *ScheduleRepository) Due(ctx context.Context, now time.Time) ([]*models.ScheduledProcess, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM scheduled_processes
		WHERE active = true AND next_run_at <= $1
		ORDER BY next_run_at
	`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due schedules: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	schedules := make([]*models.ScheduledProcess, 0)

	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}

		schedules = append(schedules, schedule)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return schedules, nil
}

func scanSchedule(row rowScanner) (*models.ScheduledProcess, error) {
	var schedule models.ScheduledProcess

	err := row.Scan(
		&schedule.ID,
		&schedule.WorkflowID,
		&schedule.OrganizationID,
		&schedule.Name,
		&schedule.ScheduledAt,
		&schedule.IsRecurring,
		&schedule.RecurrencePattern,
		&schedule.RecurrenceInterval,
		&schedule.CronExpression,
		&schedule.NextRunAt,
		&schedule.Active,
		&schedule.CreatedBy,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &schedule, nil
}
