package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// ProcessRepository handles process instance database operations.
type ProcessRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const processColumns = `
	id
  , workflow_id
  , organization_id
  , name
  , status
  , current_activity_id
  , assigned_user_id
  , assigned_department_id
  , assigned_position_id
  , created_by
  , created_at
  , updated_at
  , completed_at
`

func (r *ProcessRepository) GetByID(ctx context.Context, id string) (*models.ProcessInstance, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+processColumns+` FROM process_instances WHERE id = $1`, id)

	instance, err := scanProcess(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewProcessError("GetByID", id, persistence.ErrProcessNotFound)
		}

		return nil, persistence.NewProcessError("GetByID", id, err)
	}

	return instance, nil
}

func (r *ProcessRepository) Save(ctx context.Context, instance *models.ProcessInstance) error {
	now := time.Now().UTC()

	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = now
	}

	instance.UpdatedAt = now

	if instance.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate process ID: %w", err)
		}

		instance.ID = id.String()
	}

	query := `
		INSERT INTO process_instances (id, workflow_id, organization_id, name, status, current_activity_id, assigned_user_id, assigned_department_id, assigned_position_id, created_by, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		instance.ID,
		instance.WorkflowID,
		instance.OrganizationID,
		instance.Name,
		instance.Status,
		instance.CurrentActivityID,
		instance.AssignedUserID,
		instance.AssignedDepartmentID,
		instance.AssignedPositionID,
		instance.CreatedBy,
		instance.CreatedAt,
		instance.UpdatedAt,
		instance.CompletedAt,
	)
	if err != nil {
		return persistence.NewProcessError("Save", instance.ID, err)
	}

	return nil
}

func (r *ProcessRepository) Update(ctx context.Context, instance *models.ProcessInstance) error {
	instance.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE process_instances SET
			name = $2
		  , status = $3
		  , current_activity_id = $4
		  , assigned_user_id = $5
		  , assigned_department_id = $6
		  , assigned_position_id = $7
		  , updated_at = $8
		  , completed_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		instance.ID,
		instance.Name,
		instance.Status,
		instance.CurrentActivityID,
		instance.AssignedUserID,
		instance.AssignedDepartmentID,
		instance.AssignedPositionID,
		instance.UpdatedAt,
		instance.CompletedAt,
	)
	if err != nil {
		return persistence.NewProcessError("Update", instance.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewProcessError("Update", instance.ID, err)
	}

	if affected == 0 {
		return persistence.NewProcessError("Update", instance.ID, persistence.ErrProcessNotFound)
	}

	return nil
}

func (r *ProcessRepository) ListEligible(ctx context.Context, userID string, positionIDs, departmentIDs []string) ([]*models.ProcessInstance, error) {
	query := `SELECT ` + processColumns + `
		FROM process_instances
		WHERE status = 'active'
		  AND (
		    assigned_user_id = $1
		    OR (assigned_user_id IS NULL AND assigned_department_id IS NULL AND assigned_position_id IS NULL)
		    OR assigned_position_id = ANY($2)
		    OR assigned_department_id = ANY($3)
		  )
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, pq.Array(positionIDs), pq.Array(departmentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible processes: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	instances := make([]*models.ProcessInstance, 0)

	for rows.Next() {
		instance, err := scanProcess(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan process: %w", err)
		}

		instances = append(instances, instance)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating processes: %w", err)
	}

	return instances, nil
}

func (r *ProcessRepository) CountActiveByUser(ctx context.Context, organizationID, userID string) (int, error) {
	var count int

	query := `
		SELECT COUNT(*) FROM process_instances
		WHERE status = 'active' AND organization_id = $1 AND assigned_user_id = $2
	`

	err := r.db.QueryRowContext(ctx, query, organizationID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active processes: %w", err)
	}

	return count, nil
}

func scanProcess(row rowScanner) (*models.ProcessInstance, error) {
	var (
		instance     models.ProcessInstance
		userID       sql.NullString
		departmentID sql.NullString
		positionID   sql.NullString
		completedAt  sql.NullTime
	)

	err := row.Scan(
		&instance.ID,
		&instance.WorkflowID,
		&instance.OrganizationID,
		&instance.Name,
		&instance.Status,
		&instance.CurrentActivityID,
		&userID,
		&departmentID,
		&positionID,
		&instance.CreatedBy,
		&instance.CreatedAt,
		&instance.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		instance.AssignedUserID = &userID.String
	}

	if departmentID.Valid {
		instance.AssignedDepartmentID = &departmentID.String
	}

	if positionID.Valid {
		instance.AssignedPositionID = &positionID.String
	}

	if completedAt.Valid {
		instance.CompletedAt = &completedAt.Time
	}

	return &instance, nil
}
