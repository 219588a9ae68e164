package file

import (
	"context"
	"path/filepath"
	"time"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// OrganizationRepository stores each organization as one JSON document.
type OrganizationRepository struct {
	p *Persistence
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	r.p.mu.RLock()
	defer r.p.mu.RUnlock()

	var organization models.Organization

	found, err := r.p.readJSON(filepath.Join("organizations", id+".json"), &organization)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrOrganizationNotFound
	}

	return &organization, nil
}

// SeedOrganization writes an organization document. Intended for tests and
// local fixtures.
func (r *OrganizationRepository) SeedOrganization(organization *models.Organization) error {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if organization.CreatedAt.IsZero() {
		organization.CreatedAt = time.Now().UTC()
	}

	organization.UpdatedAt = time.Now().UTC()

	return r.p.writeJSON(filepath.Join("organizations", organization.ID+".json"), organization)
}
