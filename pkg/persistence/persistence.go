// Package persistence provides the data storage abstraction for workflows,
// process instances, captured data, history and directory lookups.
package persistence

import (
	"context"
	"time"

	"github.com/tramio/tramio/pkg/models"
)

// Persistence is the root storage interface. Implementations expose one
// repository per collection.
type Persistence interface {
	Workflows() WorkflowRepository
	Processes() ProcessRepository
	ProcessData() ProcessDataRepository
	History() HistoryRepository
	Directory() DirectoryRepository
	Organizations() OrganizationRepository
	Schedules() ScheduleRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow definitions with their activities and
// transitions. Definitions are read-only during execution.
type WorkflowRepository interface {
	GetAll(ctx context.Context, organizationID string) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// ProcessRepository stores process instances.
type ProcessRepository interface {
	GetByID(ctx context.Context, id string) (*models.ProcessInstance, error)
	Save(ctx context.Context, instance *models.ProcessInstance) error
	Update(ctx context.Context, instance *models.ProcessInstance) error

	// ListEligible returns active instances visible to a user: directly
	// assigned, fully public, or assigned to one of the given positions or
	// departments. Newest first.
	ListEligible(ctx context.Context, userID string, positionIDs, departmentIDs []string) ([]*models.ProcessInstance, error)

	// CountActiveByUser counts a user's active instances within an
	// organization, the input to the workload assignment strategy.
	CountActiveByUser(ctx context.Context, organizationID, userID string) (int, error)
}

// ProcessDataRepository stores captured form values, keyed by
// (process, activity, field).
type ProcessDataRepository interface {
	GetByActivity(ctx context.Context, processID, activityID string) ([]models.ProcessDataEntry, error)
	GetByProcess(ctx context.Context, processID string) ([]models.ProcessDataEntry, error)

	// ReplaceForActivity deletes every row for (process, activity) and inserts
	// the given entries: save is idempotent upsert-by-replace, not append.
	ReplaceForActivity(ctx context.Context, processID, activityID string, entries []models.ProcessDataEntry) error

	Insert(ctx context.Context, entries []models.ProcessDataEntry) error
}

// HistoryRepository stores the append-only audit log.
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.HistoryEntry) error
	ListByProcess(ctx context.Context, processID string) ([]*models.HistoryEntry, error)

	// CountCompletedByUser counts a user's historical completed entries, the
	// input to the efficiency assignment strategy.
	CountCompletedByUser(ctx context.Context, userID string) (int, error)

	// AutomationFailures returns commented entries carrying the automation
	// failure signature, scoped to an organization, newest first.
	AutomationFailures(ctx context.Context, organizationID string, since time.Time) ([]*models.HistoryEntry, error)
}

// DirectoryRepository reads the organization structure used by assignment and
// inbox eligibility.
type DirectoryRepository interface {
	UsersByPosition(ctx context.Context, positionID string) ([]string, error)
	UsersByDepartment(ctx context.Context, departmentID string) ([]string, error)
	PositionsByUser(ctx context.Context, userID string) ([]*models.Position, error)
	DepartmentByID(ctx context.Context, id string) (*models.Department, error)
}

// OrganizationRepository reads organization records and their settings.
type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Organization, error)
}

// ScheduleRepository stores scheduled process templates.
type ScheduleRepository interface {
	GetByID(ctx context.Context, id string) (*models.ScheduledProcess, error)
	Save(ctx context.Context, schedule *models.ScheduledProcess) error
	Update(ctx context.Context, schedule *models.ScheduledProcess) error

	// Due returns active schedules whose next run time is at or before now.
	Due(ctx context.Context, now time.Time) ([]*models.ScheduledProcess, error)
}
