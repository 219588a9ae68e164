package file

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// HistoryRepository stores the audit log of a process in one JSON document per
// process. Entries are only ever appended.
type HistoryRepository struct {
	p *Persistence
}

func (r *HistoryRepository) path(processID string) string {
	return filepath.Join("history", processID+".json")
}

func (r *HistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

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

	entries, err := r.load(entry.ProcessID)
	if err != nil {
		return err
	}

	entries = append(entries, entry)

	err = r.p.writeJSON(r.path(entry.ProcessID), entries)
	if err != nil {
		return persistence.NewProcessError("AppendHistory", entry.ProcessID, err)
	}

	return nil
}

func (r *HistoryRepository) ListByProcess(ctx context.Context, processID string) ([]*models.HistoryEntry, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	entries, err := r.load(processID)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return entries, nil
}

func (r *HistoryRepository) CountCompletedByUser(ctx context.Context, userID string) (int, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	processIDs, err := r.p.listIDs("history")
	if err != nil {
		return 0, nil
	}

	count := 0

	for _, processID := range processIDs {
		entries, err := r.load(processID)
		if err != nil {
			return 0, err
		}

		for _, entry := range entries {
			if entry.Action == models.HistoryActionCompleted && entry.UserID == userID {
				count++
			}
		}
	}

	return count, nil
}

func (r *HistoryRepository) AutomationFailures(ctx context.Context, organizationID string, since time.Time) ([]*models.HistoryEntry, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	processIDs, err := r.p.listIDs("history")
	if err != nil {
		return []*models.HistoryEntry{}, nil
	}

	failures := make([]*models.HistoryEntry, 0)

	for _, processID := range processIDs {
		if organizationID != "" {
			instance, err := r.p.processRepo.getByID(processID)
			if err != nil || instance.OrganizationID != organizationID {
				continue
			}
		}

		entries, err := r.load(processID)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if entry.IsAutomationFailure() && !entry.CreatedAt.Before(since) {
				failures = append(failures, entry)
			}
		}
	}

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].CreatedAt.After(failures[j].CreatedAt)
	})

	return failures, nil
}

func (r *HistoryRepository) load(processID string) ([]*models.HistoryEntry, error) {
	entries := make([]*models.HistoryEntry, 0)

	_, err := r.p.readJSON(r.path(processID), &entries)
	if err != nil {
		return nil, persistence.NewProcessError("LoadHistory", processID, err)
	}

	return entries, nil
}
