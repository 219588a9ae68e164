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

// ProcessRepository stores each process instance as one JSON document.
type ProcessRepository struct {
	p *Persistence
}

func (r *ProcessRepository) GetByID(ctx context.Context, id string) (*models.ProcessInstance, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	return r.getByID(id)
}

func (r *ProcessRepository) getByID(id string) (*models.ProcessInstance, error) {
	var instance models.ProcessInstance

	found, err := r.p.readJSON(filepath.Join("processes", id+".json"), &instance)
	if err != nil {
		return nil, persistence.NewProcessError("GetByID", id, err)
	}

	if !found {
		return nil, persistence.NewProcessError("GetByID", id, persistence.ErrProcessNotFound)
	}

	return &instance, nil
}

func (r *ProcessRepository) Save(ctx context.Context, instance *models.ProcessInstance) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

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

	return r.write(instance)
}

func (r *ProcessRepository) Update(ctx context.Context, instance *models.ProcessInstance) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	_, err := r.getByID(instance.ID)
	if err != nil {
		return err
	}

	instance.UpdatedAt = time.Now().UTC()

	return r.write(instance)
}

func (r *ProcessRepository) write(instance *models.ProcessInstance) error {
	err := r.p.writeJSON(filepath.Join("processes", instance.ID+".json"), instance)
	if err != nil {
		return persistence.NewProcessError("Save", instance.ID, err)
	}

	return nil
}

func (r *ProcessRepository) ListEligible(ctx context.Context, userID string, positionIDs, departmentIDs []string) ([]*models.ProcessInstance, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	instances, err := r.all()
	if err != nil {
		return nil, err
	}

	positions := toSet(positionIDs)
	departments := toSet(departmentIDs)

	eligible := make([]*models.ProcessInstance, 0)

	for _, instance := range instances {
		if instance.Status != models.ProcessStatusActive {
			continue
		}

		switch {
		case instance.AssignedUserID != nil && *instance.AssignedUserID == userID:
		case instance.IsPublic():
		case instance.AssignedPositionID != nil && positions[*instance.AssignedPositionID]:
		case instance.AssignedDepartmentID != nil && departments[*instance.AssignedDepartmentID]:
		default:
			continue
		}

		eligible = append(eligible, instance)
	}

	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].CreatedAt.After(eligible[j].CreatedAt)
	})

	return eligible, nil
}

func (r *ProcessRepository) CountActiveByUser(ctx context.Context, organizationID, userID string) (int, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	instances, err := r.all()
	if err != nil {
		return 0, err
	}

	count := 0

	for _, instance := range instances {
		if instance.Status != models.ProcessStatusActive {
			continue
		}

		if organizationID != "" && instance.OrganizationID != organizationID {
			continue
		}

		if instance.AssignedUserID != nil && *instance.AssignedUserID == userID {
			count++
		}
	}

	return count, nil
}

func (r *ProcessRepository) all() ([]*models.ProcessInstance, error) {
	ids, err := r.p.listIDs("processes")
	if err != nil {
		return []*models.ProcessInstance{}, nil
	}

	instances := make([]*models.ProcessInstance, 0, len(ids))

	for _, id := range ids {
		instance, err := r.getByID(id)
		if err != nil {
			return nil, err
		}

		instances = append(instances, instance)
	}

	return instances, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return set
}
