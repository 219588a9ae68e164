package visualization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence/file"
)

func TestReadReconstructsExecutionTrace(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	workflow := &models.Workflow{
		ID:             "wf-1",
		Name:           "Aprobación",
		Status:         models.WorkflowStatusActive,
		OrganizationID: "org-1",
		Activities: []*models.Activity{
			{ID: "start", WorkflowID: "wf-1", Name: "Inicio", Type: models.ActivityTypeStart},
			{ID: "review", WorkflowID: "wf-1", Name: "Revisión", Type: models.ActivityTypeTask},
			{ID: "reject", WorkflowID: "wf-1", Name: "Rechazo", Type: models.ActivityTypeTask},
			{ID: "done", WorkflowID: "wf-1", Name: "Fin", Type: models.ActivityTypeEnd},
		},
		Transitions: []*models.Transition{
			{ID: "t1", WorkflowID: "wf-1", SourceID: "start", TargetID: "review"},
			{ID: "t2", WorkflowID: "wf-1", SourceID: "review", TargetID: "done"},
			{ID: "t3", WorkflowID: "wf-1", SourceID: "review", TargetID: "reject"},
		},
	}
	require.NoError(t, p.Workflows().Save(ctx, workflow))

	instance := &models.ProcessInstance{
		ID:                "proc-1",
		WorkflowID:        "wf-1",
		OrganizationID:    "org-1",
		Status:            models.ProcessStatusActive,
		CurrentActivityID: "review",
	}
	require.NoError(t, p.Processes().Save(ctx, instance))

	for _, entry := range []*models.HistoryEntry{
		{ProcessID: "proc-1", ActivityID: "start", Action: models.HistoryActionStarted},
		{ProcessID: "proc-1", ActivityID: "review", Action: models.HistoryActionCompleted},
	} {
		require.NoError(t, p.History().Append(ctx, entry))
	}

	view, err := NewReader(p).Read(ctx, "proc-1")
	require.NoError(t, err)

	assert.Equal(t, "review", view.CurrentActivityID)
	assert.Equal(t, models.ProcessStatusActive, view.Status)

	assert.True(t, view.ExecutedActivityIDs["start"])
	assert.True(t, view.ExecutedActivityIDs["review"])
	assert.False(t, view.ExecutedActivityIDs["reject"])
	assert.False(t, view.ExecutedActivityIDs["done"])

	// both endpoints reached
	assert.True(t, view.ExecutedTransitionIDs["t1"])
	// pending branches stay unmarked
	assert.False(t, view.ExecutedTransitionIDs["t2"])
	assert.False(t, view.ExecutedTransitionIDs["t3"])
}

func TestReadToleratesProcessWithoutHistory(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	workflow := &models.Workflow{
		ID:             "wf-1",
		Name:           "Mínimo",
		Status:         models.WorkflowStatusActive,
		OrganizationID: "org-1",
		Activities: []*models.Activity{
			{ID: "start", WorkflowID: "wf-1", Name: "Inicio", Type: models.ActivityTypeStart},
		},
	}
	require.NoError(t, p.Workflows().Save(ctx, workflow))

	instance := &models.ProcessInstance{
		ID:                "proc-1",
		WorkflowID:        "wf-1",
		OrganizationID:    "org-1",
		Status:            models.ProcessStatusActive,
		CurrentActivityID: "start",
	}
	require.NoError(t, p.Processes().Save(ctx, instance))

	view, err := NewReader(p).Read(ctx, "proc-1")
	require.NoError(t, err)
	assert.Empty(t, view.ExecutedActivityIDs)
	assert.Empty(t, view.ExecutedTransitionIDs)
}
