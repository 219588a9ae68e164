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

// ScheduleRepository stores each scheduled process as one JSON document.
type ScheduleRepository struct {
	p *Persistence
}

func (r *ScheduleRepository) path(id string) string {
	return filepath.Join("schedules", id+".json")
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*models.ScheduledProcess, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	return r.getByID(id)
}

func (r *ScheduleRepository) getByID(id string) (*models.ScheduledProcess, error) {
	var schedule models.ScheduledProcess

	found, err := r.p.readJSON(r.path(id), &schedule)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrScheduleNotFound
	}

	return &schedule, nil
}

func (r *ScheduleRepository) Save(ctx context.Context, schedule *models.ScheduledProcess) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

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

	return r.p.writeJSON(r.path(schedule.ID), schedule)
}

func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.ScheduledProcess) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	_, err := r.getByID(schedule.ID)
	if err != nil {
		return err
	}

	schedule.UpdatedAt = time.Now().UTC()

	return r.p.writeJSON(r.path(schedule.ID), schedule)
}

func (r *ScheduleRepository) Due(ctx context.Context, now time.Time) ([]*models.ScheduledProcess, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	ids, err := r.p.listIDs("schedules")
	if err != nil {
		return []*models.ScheduledProcess{}, nil
	}

	due := make([]*models.ScheduledProcess, 0)

	for _, id := range ids {
		schedule, err := r.getByID(id)
		if err != nil {
			return nil, err
		}

		if schedule.IsDue(now) {
			due = append(due, schedule)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].NextRunAt.Before(due[j].NextRunAt)
	})

	return due, nil
}
