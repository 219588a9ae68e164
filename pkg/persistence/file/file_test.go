package file_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
	"github.com/tramio/tramio/pkg/persistence/file"
)

func testWorkflow(id, organizationID string) *models.Workflow {
	return &models.Workflow{
		ID:             id,
		Name:           "Compras",
		Status:         models.WorkflowStatusActive,
		OrganizationID: organizationID,
		Activities: []*models.Activity{
			{ID: "start", WorkflowID: id, Type: models.ActivityTypeStart},
			{ID: "end", WorkflowID: id, Type: models.ActivityTypeEnd},
		},
		Transitions: []*models.Transition{
			{ID: "t1", WorkflowID: id, SourceID: "start", TargetID: "end"},
		},
	}
}

func TestWorkflowRepository_SaveAndGet(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, p.Workflows().Save(ctx, testWorkflow("wf-1", "org-1")))

	got, err := p.Workflows().GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Compras", got.Name)
	assert.Len(t, got.Activities, 2)
	assert.Len(t, got.Transitions, 1)
}

func TestWorkflowRepository_GetByID_NotFound(t *testing.T) {
	p := file.NewPersistence(t.TempDir())

	_, err := p.Workflows().GetByID(context.Background(), "missing")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowRepository_GetAll_FiltersByOrganization(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, p.Workflows().Save(ctx, testWorkflow("wf-1", "org-1")))
	require.NoError(t, p.Workflows().Save(ctx, testWorkflow("wf-2", "org-2")))

	workflows, err := p.Workflows().GetAll(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, "wf-1", workflows[0].ID)
}

func TestWorkflowRepository_Delete(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, p.Workflows().Save(ctx, testWorkflow("wf-1", "org-1")))
	require.NoError(t, p.Workflows().Delete(ctx, "wf-1"))

	_, err := p.Workflows().GetByID(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestProcessRepository_SaveUpdateGet(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	userID := "u1"
	instance := &models.ProcessInstance{
		ID:                "proc-1",
		WorkflowID:        "wf-1",
		OrganizationID:    "org-1",
		Name:              "Compra impresora",
		Status:            models.ProcessStatusActive,
		CurrentActivityID: "start",
		AssignedUserID:    &userID,
		CreatedBy:         userID,
	}

	require.NoError(t, p.Processes().Save(ctx, instance))

	instance.CurrentActivityID = "review"
	require.NoError(t, p.Processes().Update(ctx, instance))

	got, err := p.Processes().GetByID(ctx, "proc-1")
	require.NoError(t, err)
	assert.Equal(t, "review", got.CurrentActivityID)
	require.NotNil(t, got.AssignedUserID)
	assert.Equal(t, "u1", *got.AssignedUserID)
}

func TestProcessRepository_GetByID_NotFound(t *testing.T) {
	p := file.NewPersistence(t.TempDir())

	_, err := p.Processes().GetByID(context.Background(), "missing")
	assert.True(t, persistence.IsProcessNotFound(err))
}

func TestProcessDataRepository_ReplaceIsWholesale(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	first := []models.ProcessDataEntry{
		{ProcessID: "proc-1", ActivityID: "start", FieldName: "monto", Value: "100"},
		{ProcessID: "proc-1", ActivityID: "start", FieldName: "proveedor", Value: "ACME"},
	}
	require.NoError(t, p.ProcessData().ReplaceForActivity(ctx, "proc-1", "start", first))

	second := []models.ProcessDataEntry{
		{ProcessID: "proc-1", ActivityID: "start", FieldName: "monto", Value: "200"},
	}
	require.NoError(t, p.ProcessData().ReplaceForActivity(ctx, "proc-1", "start", second))

	entries, err := p.ProcessData().GetByActivity(ctx, "proc-1", "start")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "monto", entries[0].FieldName)
	assert.Equal(t, "200", entries[0].Value)
}

func TestProcessDataRepository_ReplaceKeepsOtherActivities(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, p.ProcessData().ReplaceForActivity(ctx, "proc-1", "start", []models.ProcessDataEntry{
		{ProcessID: "proc-1", ActivityID: "start", FieldName: "monto", Value: "100"},
	}))
	require.NoError(t, p.ProcessData().ReplaceForActivity(ctx, "proc-1", "review", []models.ProcessDataEntry{
		{ProcessID: "proc-1", ActivityID: "review", FieldName: "folio", Value: "F-7"},
	}))

	require.NoError(t, p.ProcessData().ReplaceForActivity(ctx, "proc-1", "review", nil))

	all, err := p.ProcessData().GetByProcess(ctx, "proc-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "monto", all[0].FieldName)
}

func TestHistoryRepository_AppendAndList(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, p.History().Append(ctx, &models.HistoryEntry{
		ProcessID: "proc-1", ActivityID: "start", Action: models.HistoryActionStarted, UserID: "u1",
	}))
	require.NoError(t, p.History().Append(ctx, &models.HistoryEntry{
		ProcessID: "proc-1", ActivityID: "review", Action: models.HistoryActionCompleted, UserID: "u1",
	}))

	entries, err := p.History().ListByProcess(ctx, "proc-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.HistoryActionStarted, entries[0].Action)
	assert.Equal(t, models.HistoryActionCompleted, entries[1].Action)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestScheduleRepository_Due(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()
	now := time.Now().UTC()

	due := &models.ScheduledProcess{
		ID: "sch-1", WorkflowID: "wf-1", OrganizationID: "org-1",
		ScheduledAt: now.Add(-time.Hour), NextRunAt: now.Add(-time.Hour), Active: true,
	}
	future := &models.ScheduledProcess{
		ID: "sch-2", WorkflowID: "wf-1", OrganizationID: "org-1",
		ScheduledAt: now.Add(time.Hour), NextRunAt: now.Add(time.Hour), Active: true,
	}
	inactive := &models.ScheduledProcess{
		ID: "sch-3", WorkflowID: "wf-1", OrganizationID: "org-1",
		ScheduledAt: now.Add(-time.Hour), NextRunAt: now.Add(-time.Hour), Active: false,
	}

	require.NoError(t, p.Schedules().Save(ctx, due))
	require.NoError(t, p.Schedules().Save(ctx, future))
	require.NoError(t, p.Schedules().Save(ctx, inactive))

	got, err := p.Schedules().Due(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sch-1", got[0].ID)
}

func TestHealthCheck(t *testing.T) {
	dir := t.TempDir()
	p := file.NewPersistence(dir)

	assert.NoError(t, p.HealthCheck(context.Background()))

	missing := file.NewPersistence(dir + "/nope")
	assert.Error(t, missing.HealthCheck(context.Background()))
}
