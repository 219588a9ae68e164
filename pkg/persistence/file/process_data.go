package file

import (
	"context"
	"path/filepath"
	"time"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// ProcessDataRepository stores every captured value of a process in one JSON
// document per process.
type ProcessDataRepository struct {
	p *Persistence
}

func (r *ProcessDataRepository) path(processID string) string {
	return filepath.Join("process_data", processID+".json")
}

func (r *ProcessDataRepository) GetByActivity(ctx context.Context, processID, activityID string) ([]models.ProcessDataEntry, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	entries, err := r.load(processID)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.ProcessDataEntry, 0)

	for _, entry := range entries {
		if entry.ActivityID == activityID {
			filtered = append(filtered, entry)
		}
	}

	return filtered, nil
}

func (r *ProcessDataRepository) GetByProcess(ctx context.Context, processID string) ([]models.ProcessDataEntry, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	return r.load(processID)
}

func (r *ProcessDataRepository) ReplaceForActivity(ctx context.Context, processID, activityID string, entries []models.ProcessDataEntry) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	existing, err := r.load(processID)
	if err != nil {
		return err
	}

	kept := make([]models.ProcessDataEntry, 0, len(existing)+len(entries))

	for _, entry := range existing {
		if entry.ActivityID != activityID {
			kept = append(kept, entry)
		}
	}

	kept = append(kept, stamp(entries)...)

	return r.store(processID, kept)
}

func (r *ProcessDataRepository) Insert(ctx context.Context, entries []models.ProcessDataEntry) error {
	if len(entries) == 0 {
		return nil
	}

	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	processID := entries[0].ProcessID

	existing, err := r.load(processID)
	if err != nil {
		return err
	}

	return r.store(processID, append(existing, stamp(entries)...))
}

func (r *ProcessDataRepository) load(processID string) ([]models.ProcessDataEntry, error) {
	entries := make([]models.ProcessDataEntry, 0)

	_, err := r.p.readJSON(r.path(processID), &entries)
	if err != nil {
		return nil, persistence.NewProcessError("LoadData", processID, err)
	}

	return entries, nil
}

func (r *ProcessDataRepository) store(processID string, entries []models.ProcessDataEntry) error {
	err := r.p.writeJSON(r.path(processID), entries)
	if err != nil {
		return persistence.NewProcessError("StoreData", processID, err)
	}

	return nil
}

func stamp(entries []models.ProcessDataEntry) []models.ProcessDataEntry {
	now := time.Now().UTC()

	stamped := make([]models.ProcessDataEntry, len(entries))

	for i, entry := range entries {
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}

		stamped[i] = entry
	}

	return stamped
}
