package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// ProcessDataRepository handles captured form value database operations.
type ProcessDataRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *ProcessDataRepository) GetByActivity(ctx context.Context, processID, activityID string) ([]models.ProcessDataEntry, error) {
	query := `
		SELECT process_id, activity_id, field_name, value, created_at
		FROM process_data
		WHERE process_id = $1 AND activity_id = $2
		ORDER BY field_name
	`

	return r.query(ctx, query, processID, activityID)
}

func (r *ProcessDataRepository) GetByProcess(ctx context.Context, processID string) ([]models.ProcessDataEntry, error) {
	query := `
		SELECT process_id, activity_id, field_name, value, created_at
		FROM process_data
		WHERE process_id = $1
		ORDER BY created_at, field_name
	`

	return r.query(ctx, query, processID)
}

// ReplaceForActivity deletes then reinserts an activity's rows inside one
// transaction so a re-saved draft never leaves duplicates behind.
func (r *ProcessDataRepository) ReplaceForActivity(ctx context.Context, processID, activityID string, entries []models.ProcessDataEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `DELETE FROM process_data WHERE process_id = $1 AND activity_id = $2`, processID, activityID)
	if err != nil {
		return persistence.NewProcessError("ReplaceData", processID, err)
	}

	err = insertEntries(ctx, tx, entries)
	if err != nil {
		return persistence.NewProcessError("ReplaceData", processID, err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

func (r *ProcessDataRepository) Insert(ctx context.Context, entries []models.ProcessDataEntry) error {
	err := insertEntries(ctx, r.db, entries)
	if err != nil && len(entries) > 0 {
		return persistence.NewProcessError("InsertData", entries[0].ProcessID, err)
	}

	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEntries(ctx context.Context, db execer, entries []models.ProcessDataEntry) error {
	now := time.Now().UTC()

	for _, entry := range entries {
		createdAt := entry.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		_, err := db.ExecContext(ctx, `
			INSERT INTO process_data (process_id, activity_id, field_name, value, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (process_id, activity_id, field_name) DO UPDATE SET value = EXCLUDED.value
		`, entry.ProcessID, entry.ActivityID, entry.FieldName, entry.Value, createdAt)
		if err != nil {
			return fmt.Errorf("failed to insert data row %s: %w", entry.FieldName, err)
		}
	}

	return nil
}

func (r *ProcessDataRepository) query(ctx context.Context, query string, args ...any) ([]models.ProcessDataEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query process data: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	entries := make([]models.ProcessDataEntry, 0)

	for rows.Next() {
		var entry models.ProcessDataEntry

		err = rows.Scan(&entry.ProcessID, &entry.ActivityID, &entry.FieldName, &entry.Value, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan data row: %w", err)
		}

		entries = append(entries, entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating process data: %w", err)
	}

	return entries, nil
}
