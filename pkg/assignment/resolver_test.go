package assignment

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
	"github.com/tramio/tramio/pkg/persistence/file"
)

const testOrgID = "org-1"

func newTestPersistence(t *testing.T) *file.Persistence {
	t.Helper()

	p := file.NewPersistence(t.TempDir())

	dept := &models.Department{ID: "dept-1", Name: "Finance"}
	positions := []*models.Position{
		{ID: "pos-1", DepartmentID: "dept-1", Name: "Analyst"},
		{ID: "pos-2", DepartmentID: "dept-1", Name: "Manager"},
	}
	employees := []*models.EmployeePosition{
		{UserID: "u1", PositionID: "pos-1"},
		{UserID: "u2", PositionID: "pos-1"},
		{UserID: "u3", PositionID: "pos-2"},
	}

	directory, ok := p.Directory().(*file.DirectoryRepository)
	require.True(t, ok)
	require.NoError(t, directory.SeedDirectory([]*models.Department{dept}, positions, employees))

	return p
}

func newTestResolver(p persistence.Persistence) *Resolver {
	return NewResolver(p, slog.New(slog.DiscardHandler))
}

func strPtr(s string) *string { return &s }

func TestResolveCreator(t *testing.T) {
	resolver := newTestResolver(newTestPersistence(t))

	activity := &models.Activity{ID: "a1", AssignmentType: models.AssignmentTypeCreator}
	result := resolver.Resolve(context.Background(), activity, "creator-1", testOrgID)

	require.NotNil(t, result.UserID)
	assert.Equal(t, "creator-1", *result.UserID)
	assert.Nil(t, result.DepartmentID)
	assert.Nil(t, result.PositionID)
}

func TestResolveSpecificUser(t *testing.T) {
	resolver := newTestResolver(newTestPersistence(t))

	activity := &models.Activity{
		ID:             "a1",
		AssignmentType: models.AssignmentTypeSpecificUser,
		AssignedUserID: strPtr("u9"),
	}
	result := resolver.Resolve(context.Background(), activity, "creator-1", testOrgID)

	require.NotNil(t, result.UserID)
	assert.Equal(t, "u9", *result.UserID)
}

func TestResolveManualKeepsGroupFields(t *testing.T) {
	resolver := newTestResolver(newTestPersistence(t))

	activity := &models.Activity{
		ID:                   "a1",
		AssignmentType:       models.AssignmentTypeManual,
		AssignedDepartmentID: strPtr("dept-1"),
	}
	result := resolver.Resolve(context.Background(), activity, "creator-1", testOrgID)

	assert.Nil(t, result.UserID)
	require.NotNil(t, result.DepartmentID)
	assert.Equal(t, "dept-1", *result.DepartmentID)
}

func TestResolveWorkloadPicksLeastBusy(t *testing.T) {
	p := newTestPersistence(t)
	resolver := newTestResolver(p)
	ctx := context.Background()

	// u1 carries three active instances, u2 carries one.
	for i, owner := range []string{"u1", "u1", "u1", "u2"} {
		instance := &models.ProcessInstance{
			ID:             "proc-" + string(rune('a'+i)),
			WorkflowID:     "wf-1",
			OrganizationID: testOrgID,
			Status:         models.ProcessStatusActive,
			AssignedUserID: strPtr(owner),
		}
		require.NoError(t, p.Processes().Save(ctx, instance))
	}

	activity := &models.Activity{
		ID:                 "a1",
		AssignmentType:     models.AssignmentTypePosition,
		AssignmentStrategy: models.AssignmentStrategyWorkload,
		AssignedPositionID: strPtr("pos-1"),
	}
	result := resolver.Resolve(ctx, activity, "creator-1", testOrgID)

	require.NotNil(t, result.UserID)
	assert.Equal(t, "u2", *result.UserID)
}

func TestResolveEfficiencyPicksMostCompletions(t *testing.T) {
	p := newTestPersistence(t)
	resolver := newTestResolver(p)
	ctx := context.Background()

	counts := map[string]int{"u1": 5, "u2": 2}
	for userID, n := range counts {
		for i := 0; i < n; i++ {
			entry := &models.HistoryEntry{
				ProcessID:  "proc-1",
				ActivityID: "a0",
				Action:     models.HistoryActionCompleted,
				UserID:     userID,
			}
			require.NoError(t, p.History().Append(ctx, entry))
		}
	}

	activity := &models.Activity{
		ID:                 "a1",
		AssignmentType:     models.AssignmentTypePosition,
		AssignmentStrategy: models.AssignmentStrategyEfficiency,
		AssignedPositionID: strPtr("pos-1"),
	}
	result := resolver.Resolve(ctx, activity, "creator-1", testOrgID)

	require.NotNil(t, result.UserID)
	assert.Equal(t, "u1", *result.UserID)
}

func TestResolveRandomUsesInjectedSource(t *testing.T) {
	resolver := newTestResolver(newTestPersistence(t)).WithRandSource(func(n int) int {
		require.Equal(t, 2, n)

		return 1
	})

	activity := &models.Activity{
		ID:                 "a1",
		AssignmentType:     models.AssignmentTypePosition,
		AssignmentStrategy: models.AssignmentStrategyRandom,
		AssignedPositionID: strPtr("pos-1"),
	}
	result := resolver.Resolve(context.Background(), activity, "creator-1", testOrgID)

	require.NotNil(t, result.UserID)
	assert.Equal(t, "u2", *result.UserID)
}

func TestResolveEmptyPoolFallsBackToGroup(t *testing.T) {
	resolver := newTestResolver(newTestPersistence(t))

	activity := &models.Activity{
		ID:                 "a1",
		AssignmentType:     models.AssignmentTypePosition,
		AssignmentStrategy: models.AssignmentStrategyWorkload,
		AssignedPositionID: strPtr("pos-empty"),
	}
	result := resolver.Resolve(context.Background(), activity, "creator-1", testOrgID)

	assert.Nil(t, result.UserID)
	require.NotNil(t, result.PositionID)
	assert.Equal(t, "pos-empty", *result.PositionID)
}

// failingDirectory simulates a directory outage.
type failingDirectory struct {
	persistence.DirectoryRepository
}

func (f *failingDirectory) UsersByPosition(ctx context.Context, positionID string) ([]string, error) {
	return nil, errors.New("directory unavailable")
}

type directoryFailurePersistence struct {
	persistence.Persistence
}

func (p *directoryFailurePersistence) Directory() persistence.DirectoryRepository {
	return &failingDirectory{}
}

func TestResolveDirectoryFailureFallsBackToGroup(t *testing.T) {
	resolver := newTestResolver(&directoryFailurePersistence{Persistence: newTestPersistence(t)})

	activity := &models.Activity{
		ID:                 "a1",
		AssignmentType:     models.AssignmentTypePosition,
		AssignmentStrategy: models.AssignmentStrategyWorkload,
		AssignedPositionID: strPtr("pos-1"),
	}
	result := resolver.Resolve(context.Background(), activity, "creator-1", testOrgID)

	assert.Nil(t, result.UserID)
	require.NotNil(t, result.PositionID)
	assert.Equal(t, "pos-1", *result.PositionID)
}
