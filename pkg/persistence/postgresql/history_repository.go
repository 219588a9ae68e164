package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// HistoryRepository handles audit log database operations. The log is
// append-only: there is no update or delete path.
type HistoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *HistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate history ID: %w", err)
		}

		entry.ID = id.String()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO process_history (id, process_id, activity_id, action, comment, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.ProcessID, entry.ActivityID, entry.Action, entry.Comment, entry.UserID, entry.CreatedAt)
	if err != nil {
		return persistence.NewProcessError("AppendHistory", entry.ProcessID, err)
	}

	return nil
}

func (r *HistoryRepository) ListByProcess(ctx context.Context, processID string) ([]*models.HistoryEntry, error) {
	query := `
		SELECT id, process_id, activity_id, action, comment, user_id, created_at
		FROM process_history
		WHERE process_id = $1
		ORDER BY created_at
	`

	return r.query(ctx, query, processID)
}

func (r *HistoryRepository) CountCompletedByUser(ctx context.Context, userID string) (int, error) {
	var count int

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM process_history WHERE action = 'completed' AND user_id = $1
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}

	return count, nil
}

func (r *HistoryRepository) AutomationFailures(ctx context.Context, organizationID string, since time.Time) ([]*models.HistoryEntry, error) {
	query := `
		SELECT h.id, h.process_id, h.activity_id, h.action, h.comment, h.user_id, h.created_at
		FROM process_history h
		JOIN process_instances p ON p.id = h.process_id
		WHERE h.action = 'commented'
		  AND h.comment LIKE $1 || '%'
		  AND p.organization_id = $2
		  AND h.created_at >= $3
		ORDER BY h.created_at DESC
	`

	return r.query(ctx, query, models.AutomationFailurePrefix, organizationID, since)
}

func (r *HistoryRepository) query(ctx context.Context, query string, args ...any) ([]*models.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	entries := make([]*models.HistoryEntry, 0)

	for rows.Next() {
		var entry models.HistoryEntry

		err = rows.Scan(&entry.ID, &entry.ProcessID, &entry.ActivityID, &entry.Action, &entry.Comment, &entry.UserID, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entries = append(entries, &entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}
