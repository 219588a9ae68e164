package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// DirectoryRepository reads the organization structure. The execution engine
// never writes these tables.
type DirectoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *DirectoryRepository) UsersByPosition(ctx context.Context, positionID string) ([]string, error) {
	query := `SELECT user_id FROM employee_positions WHERE position_id = $1 ORDER BY user_id`

	return r.queryUsers(ctx, query, positionID)
}

func (r *DirectoryRepository) UsersByDepartment(ctx context.Context, departmentID string) ([]string, error) {
	query := `
		SELECT DISTINCT ep.user_id
		FROM employee_positions ep
		JOIN positions p ON p.id = ep.position_id
		WHERE p.department_id = $1
		ORDER BY ep.user_id
	`

	return r.queryUsers(ctx, query, departmentID)
}

func (r *DirectoryRepository) PositionsByUser(ctx context.Context, userID string) ([]*models.Position, error) {
	query := `
		SELECT p.id, p.department_id, p.name
		FROM positions p
		JOIN employee_positions ep ON ep.position_id = p.id
		WHERE ep.user_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	positions := make([]*models.Position, 0)

	for rows.Next() {
		var position models.Position

		err = rows.Scan(&position.ID, &position.DepartmentID, &position.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}

		positions = append(positions, &position)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

func (r *DirectoryRepository) DepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	var department models.Department

	err := r.db.QueryRowContext(ctx, `
		SELECT id, organization_id, name, supervisor_id FROM departments WHERE id = $1
	`, id).Scan(&department.ID, &department.OrganizationID, &department.Name, &department.SupervisorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrDepartmentNotFound
		}

		return nil, fmt.Errorf("failed to query department: %w", err)
	}

	return &department, nil
}

func (r *DirectoryRepository) queryUsers(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	users := make([]string, 0)

	for rows.Next() {
		var userID string

		err = rows.Scan(&userID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		users = append(users, userID)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
