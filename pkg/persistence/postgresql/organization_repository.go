package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// OrganizationRepository reads organization records and their settings.
type OrganizationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	var (
		organization models.Organization
		settingsJSON []byte
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, settings, created_at, updated_at FROM organizations WHERE id = $1
	`, id).Scan(&organization.ID, &organization.Name, &settingsJSON, &organization.CreatedAt, &organization.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrOrganizationNotFound
		}

		return nil, fmt.Errorf("failed to query organization: %w", err)
	}

	err = json.Unmarshal(settingsJSON, &organization.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal organization settings: %w", err)
	}

	return &organization, nil
}
