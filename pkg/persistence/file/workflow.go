package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// WorkflowRepository stores each workflow as one JSON document with its
// activities and transitions embedded.
type WorkflowRepository struct {
	p *Persistence
}

func (r *WorkflowRepository) GetAll(ctx context.Context, organizationID string) ([]*models.Workflow, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	ids, err := r.p.listIDs("workflows")
	if err != nil {
		return []*models.Workflow{}, nil
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		workflow, err := r.getByID(id)
		if err != nil {
			return nil, err
		}

		if organizationID != "" && workflow.OrganizationID != organizationID {
			continue
		}

		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	return r.getByID(id)
}

func (r *WorkflowRepository) getByID(id string) (*models.Workflow, error) {
	var workflow models.Workflow

	found, err := r.p.readJSON(filepath.Join("workflows", id+".json"), &workflow)
	if err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	if !found {
		return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
	}

	return &workflow, nil
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow ID: %w", err)
		}

		workflow.ID = id.String()
	}

	err := r.p.writeJSON(filepath.Join("workflows", workflow.ID+".json"), workflow)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	err := os.Remove(filepath.Join(r.p.root, "workflows", id+".json"))
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}
