// Package postgresql provides the PostgreSQL persistence implementation.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/tramio/tramio/pkg/persistence"
	"github.com/tramio/tramio/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger

	workflowRepo     *WorkflowRepository
	processRepo      *ProcessRepository
	processDataRepo  *ProcessDataRepository
	historyRepo      *HistoryRepository
	directoryRepo    *DirectoryRepository
	organizationRepo *OrganizationRepository
	scheduleRepo     *ScheduleRepository
}

// NewPersistence connects to PostgreSQL and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:               database,
		logger:           logger,
		workflowRepo:     &WorkflowRepository{db: database, logger: logger},
		processRepo:      &ProcessRepository{db: database, logger: logger},
		processDataRepo:  &ProcessDataRepository{db: database, logger: logger},
		historyRepo:      &HistoryRepository{db: database, logger: logger},
		directoryRepo:    &DirectoryRepository{db: database, logger: logger},
		organizationRepo: &OrganizationRepository{db: database, logger: logger},
		scheduleRepo:     &ScheduleRepository{db: database, logger: logger},
	}, nil
}

func (p *Persistence) Workflows() persistence.WorkflowRepository         { return p.workflowRepo }
func (p *Persistence) Processes() persistence.ProcessRepository          { return p.processRepo }
func (p *Persistence) ProcessData() persistence.ProcessDataRepository    { return p.processDataRepo }
func (p *Persistence) History() persistence.HistoryRepository            { return p.historyRepo }
func (p *Persistence) Directory() persistence.DirectoryRepository        { return p.directoryRepo }
func (p *Persistence) Organizations() persistence.OrganizationRepository { return p.organizationRepo }
func (p *Persistence) Schedules() persistence.ScheduleRepository         { return p.scheduleRepo }

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
