package engine_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tramio/tramio/pkg/assignment"
	"github.com/tramio/tramio/pkg/automation"
	"github.com/tramio/tramio/pkg/automation/email"
	"github.com/tramio/tramio/pkg/automation/finance"
	"github.com/tramio/tramio/pkg/automation/webhook"
	"github.com/tramio/tramio/pkg/engine"
	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence/file"
)

const testOrgID = "org-1"

func strPtr(s string) *string { return &s }

func newTestEngine(t *testing.T) (*engine.Engine, *file.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	logger := slog.New(slog.DiscardHandler)

	registry := automation.NewRegistry()
	registry.Register(finance.NewFactory())
	registry.Register(email.NewFactory())
	registry.Register(webhook.NewFactory())

	e := engine.New(p,
		assignment.NewResolver(p, logger),
		automation.NewRunner(registry, logger),
		nil,
		logger,
	)

	return e, p
}

// threeStepWorkflow builds start -> review -> done, the review activity
// optionally carrying automation steps.
func threeStepWorkflow(steps []models.StepConfig) *models.Workflow {
	actionType := models.ActionTypeNone
	if len(steps) > 0 {
		actionType = models.ActionTypeAutomation
	}

	return &models.Workflow{
		ID:             "wf-1",
		Name:           "Purchase request",
		Status:         models.WorkflowStatusActive,
		OrganizationID: testOrgID,
		Activities: []*models.Activity{
			{
				ID: "start", WorkflowID: "wf-1", Name: "Solicitud", Type: models.ActivityTypeStart,
				Fields: []models.FieldDefinition{
					{Name: "monto", Label: "Monto", Kind: models.FieldKindCurrency},
					{Name: "proveedor", Label: "Proveedor", Kind: models.FieldKindText},
				},
			},
			{
				ID: "review", WorkflowID: "wf-1", Name: "Revisión", Type: models.ActivityTypeTask,
				ActionType:   actionType,
				ActionConfig: steps,
			},
			{ID: "done", WorkflowID: "wf-1", Name: "Fin", Type: models.ActivityTypeEnd},
		},
		Transitions: []*models.Transition{
			{ID: "t1", WorkflowID: "wf-1", SourceID: "start", TargetID: "review"},
			{ID: "t2", WorkflowID: "wf-1", SourceID: "review", TargetID: "done"},
		},
	}
}

func TestStartProcessCreatesActiveInstanceAtStart(t *testing.T) {
	e, p := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, p.Workflows().Save(ctx, threeStepWorkflow(nil)))

	instance, err := e.StartProcess(ctx, "wf-1", "Compra impresora", testOrgID, "u1")
	require.NoError(t, err)

	assert.Equal(t, models.ProcessStatusActive, instance.Status)
	assert.Equal(t, "start", instance.CurrentActivityID)
	assert.Equal(t, "u1", instance.CreatedBy)
	require.NotNil(t, instance.AssignedUserID)
	assert.Equal(t, "u1", *instance.AssignedUserID)

	history, err := p.History().ListByProcess(ctx, instance.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HistoryActionStarted, history[0].Action)
	assert.Equal(t, "start", history[0].ActivityID)
}

func TestStartProcessWithoutStartActivityFails(t *testing.T) {
	e, p := newTestEngine(t)
	ctx := context.Background()

	workflow := threeStepWorkflow(nil)
	workflow.Activities[0].Type = models.ActivityTypeTask
	require.NoError(t, p.Workflows().Save(ctx, workflow))

	_, err := e.StartProcess(ctx, "wf-1", "x", testOrgID, "u1")
	assert.ErrorIs(t, err, engine.ErrNoStartActivity)
}

func TestSaveProcessDataIsIdempotent(t *testing.T) {
	e, p := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, p.Workflows().Save(ctx, threeStepWorkflow(nil)))

	instance, err := e.StartProcess(ctx, "wf-1", "x", testOrgID, "u1")
	require.NoError(t, err)

	fields := map[string]string{"monto": "100", "proveedor": "ACME"}
	require.NoError(t, e.SaveProcessData(ctx, instance.ID, "start", fields))
	require.NoError(t, e.SaveProcessData(ctx, instance.ID, "start", fields))

	data, err := e.ProcessData(ctx, instance.ID, "start")
	require.NoError(t, err)
	assert.Equal(t, fields, data)

	// re-saving with fewer fields drops the rest
	require.NoError(t, e.SaveProcessData(ctx, instance.ID, "start", map[string]string{"monto": "200"}))

	data, err = e.ProcessData(ctx, instance.ID, "start")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"monto": "200"}, data)
}

func TestSaveProcessDataResolvesNameTemplate(t *testing.T) {
	e, p := newTestEngine(t)
	ctx := context.Background()

	workflow := threeStepWorkflow(nil)
	workflow.NameTemplate = "Compra {{proveedor}} por {{monto}}"
	require.NoError(t, p.Workflows().Save(ctx, workflow))

	instance, err := e.StartProcess(ctx, "wf-1", "sin nombre", testOrgID, "u1")
	require.NoError(t, err)

	require.NoError(t, e.SaveProcessData(ctx, instance.ID, "start",
		map[string]string{"monto": "100", "proveedor": "ACME"}))

	saved, err := p.Processes().GetByID(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, "Compra ACME por 100", saved.Name)
}

func TestSaveProcessDataPartialTemplateKeepsName(t *testing.T) {
	e, p := newTestEngine(t)
	ctx := context.Background()

	workflow := threeStepWorkflow(nil)
	workflow.NameTemplate = "Compra {{proveedor}} por {{monto}}"
	require.NoError(t, p.Workflows().Save(ctx, workflow))

	instance, err := e.StartProcess(ctx, "wf-1", "sin nombre", testOrgID, "u1")
	require.NoError(t, err)

	// proveedor missing: all-or-nothing resolution leaves the name alone
	require.NoError(t, e.SaveProcessData(ctx, instance.ID, "start",
		map[string]string{"monto": "100"}))

	saved, err := p.Processes().GetByID(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, "sin nombre", saved.Name)
}

func TestAdvanceProcessWritesSingleCompletedEntryOnTarget(t *testing.T) {
	e, p := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, p.Workflows().Save(ctx, threeStepWorkflow(nil)))

	instance, err := e.StartProcess(ctx, "wf-1", "x", testOrgID, "u1")
	require.NoError(t, err)

	advanced, err := e.AdvanceProcess(ctx, instance.ID, "t1", "aprobado", "u2")
	require.NoError(t, err)
	assert.Equal(t, "review", advanced.CurrentActivityID)
	assert.Equal(t, models.ProcessStatusActive, advanced.Status)

	history, err := p.History().ListByProcess(ctx, instance.ID)
	require.NoError(t, err)

	var completed []*models.HistoryEntry

	for _, entry := range history {
		if entry.Action == models.HistoryActionCompleted {
			completed = append(completed, entry)
		}

		// no automation configured, so no automation comments either
		assert.NotEqual(t, models.HistoryActionCommented, entry.Action)
	}

	require.Len(t, completed, 1)
	assert.Equal(t, "review", completed[0].ActivityID)
	assert.Equal(t, "aprobado", completed[0].Comment)
	assert.Equal(t, "u2", completed[0].UserID)
}

func TestAdvanceProcessUnknownTransitionFails(t *testing.T) {
	e, p := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, p.Workflows().Save(ctx, threeStepWorkflow(nil)))

	instance, err := e.StartProcess(ctx, "wf-1", "x", testOrgID, "u1")
	require.NoError(t, err)

	_, err = e.AdvanceProcess(ctx, instance.ID, "nope", "", "u1")
	assert.ErrorIs(t, err, engine.ErrTransitionNotFound)

	// no mutation happened
	saved, err := p.Processes().GetByID(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, "start", saved.CurrentActivityID)
}

func TestAdvanceAssignsBackToOriginalCreator(t *testing.T) {
	e, p := newTestEngine(t)
	ctx := context.Background()

	workflow := threeStepWorkflow(nil)
	workflow.Activities[1].AssignmentType = models.AssignmentTypeCreator
	require.NoError(t, p.Workflows().Save(ctx, workflow))

	instance, err := e.StartProcess(ctx, "wf-1", "x", testOrgID, "creator-1")
	require.NoError(t, err)

	// a different actor advances, assignment still targets the creator
	advanced, err := e.AdvanceProcess(ctx, instance.ID, "t1", "", "other-actor")
	require.NoError(t, err)
	require.NotNil(t, advanced.AssignedUserID)
	assert.Equal(t, "creator-1", *advanced.AssignedUserID)
}

func TestAdvanceGroupAssignmentClearsUser(t *testing.T) {
	e, p := newTestEngine(t)
	ctx := context.Background()

	workflow := threeStepWorkflow(nil)
	workflow.Activities[1].AssignmentType = models.AssignmentTypeManual
	workflow.Activities[1].AssignedDepartmentID = strPtr("dept-7")
	require.NoError(t, p.Workflows().Save(ctx, workflow))

	instance, err := e.StartProcess(ctx, "wf-1", "x", testOrgID, "u1")
	require.NoError(t, err)

	advanced, err := e.AdvanceProcess(ctx, instance.ID, "t1", "", "u1")
	require.NoError(t, err)
	assert.Nil(t, advanced.AssignedUserID)
	require.NotNil(t, advanced.AssignedDepartmentID)
	assert.Equal(t, "dept-7", *advanced.AssignedDepartmentID)
}

func TestAdvanceWithFailingWebhookKeepsTransition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "remote exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	e, p := newTestEngine(t)
	ctx := context.Background()

	steps := []models.StepConfig{
		{ID: "notify", Kind: models.StepKindWebhook, Config: map[string]any{
			"url":    server.URL,
			"method": "POST",
			"body":   `{"monto": "{{monto}}"}`,
		}},
	}
	require.NoError(t, p.Workflows().Save(ctx, threeStepWorkflow(steps)))

	instance, err := e.StartProcess(ctx, "wf-1", "x", testOrgID, "u1")
	require.NoError(t, err)
	require.NoError(t, e.SaveProcessData(ctx, instance.ID, "start", map[string]string{"monto": "300"}))

	advanced, err := e.AdvanceProcess(ctx, instance.ID, "t1", "", "u1")
	require.NoError(t, err)

	// the failure does not roll the move back
	assert.Equal(t, "review", advanced.CurrentActivityID)

	history, err := p.History().ListByProcess(ctx, instance.ID)
	require.NoError(t, err)

	var failure *models.HistoryEntry

	for _, entry := range history {
		if entry.IsAutomationFailure() {
			failure = entry
		}
	}

	require.NotNil(t, failure, "expected an automation failure comment")
	assert.True(t, strings.HasPrefix(failure.Comment, models.AutomationFailurePrefix))
	assert.Contains(t, failure.Comment, "notify")
	assert.Contains(t, failure.Comment, "500")
	assert.Equal(t, "review", failure.ActivityID)
}

func TestAdvanceWithAutomationPersistsOnlyNewOutputs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("folio-99"))
	}))
	defer server.Close()

	e, p := newTestEngine(t)
	ctx := context.Background()

	steps := []models.StepConfig{
		{ID: "lookup", Kind: models.StepKindWebhook, Config: map[string]any{
			"url":             server.URL,
			"output_variable": "folio",
		}},
	}
	require.NoError(t, p.Workflows().Save(ctx, threeStepWorkflow(steps)))

	instance, err := e.StartProcess(ctx, "wf-1", "x", testOrgID, "u1")
	require.NoError(t, err)
	require.NoError(t, e.SaveProcessData(ctx, instance.ID, "start", map[string]string{"monto": "300"}))

	_, err = e.AdvanceProcess(ctx, instance.ID, "t1", "", "u1")
	require.NoError(t, err)

	data, err := e.ProcessData(ctx, instance.ID, "review")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"folio": "folio-99"}, data)

	history, err := p.History().ListByProcess(ctx, instance.ID)
	require.NoError(t, err)

	var success bool

	for _, entry := range history {
		if entry.Action == models.HistoryActionCommented && strings.HasPrefix(entry.Comment, models.AutomationSuccessPrefix) {
			success = true
		}
	}

	assert.True(t, success, "expected an automation success comment")
}

func TestCompleteProcessFinalizesOnCurrentActivity(t *testing.T) {
	e, p := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, p.Workflows().Save(ctx, threeStepWorkflow(nil)))

	instance, err := e.StartProcess(ctx, "wf-1", "x", testOrgID, "u1")
	require.NoError(t, err)

	_, err = e.AdvanceProcess(ctx, instance.ID, "t1", "", "u1")
	require.NoError(t, err)

	completed, err := e.CompleteProcess(ctx, instance.ID, "terminado", "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ProcessStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	history, err := p.History().ListByProcess(ctx, instance.ID)
	require.NoError(t, err)

	last := history[len(history)-1]
	assert.Equal(t, models.HistoryActionCompleted, last.Action)
	assert.Equal(t, "review", last.ActivityID)
	assert.Equal(t, "terminado", last.Comment)
}

func TestAttendAllTakesFirstActiveTransitionOnly(t *testing.T) {
	e, p := newTestEngine(t)
	ctx := context.Background()

	workflow := &models.Workflow{
		ID:             "wf-2",
		Name:           "Decision flow",
		Status:         models.WorkflowStatusActive,
		OrganizationID: testOrgID,
		Activities: []*models.Activity{
			{ID: "start", WorkflowID: "wf-2", Name: "Inicio", Type: models.ActivityTypeStart},
			{ID: "a", WorkflowID: "wf-2", Name: "A", Type: models.ActivityTypeTask},
			{ID: "b", WorkflowID: "wf-2", Name: "B", Type: models.ActivityTypeTask},
			{ID: "c", WorkflowID: "wf-2", Name: "C", Type: models.ActivityTypeTask},
		},
		Transitions: []*models.Transition{
			{ID: "ta", WorkflowID: "wf-2", SourceID: "start", TargetID: "a", Condition: "monto > 50"},
			{ID: "tb", WorkflowID: "wf-2", SourceID: "start", TargetID: "b", Condition: "monto > 10"},
			{ID: "tc", WorkflowID: "wf-2", SourceID: "start", TargetID: "c", Condition: "monto > 1000"},
		},
	}
	require.NoError(t, p.Workflows().Save(ctx, workflow))

	instance, err := e.StartProcess(ctx, "wf-2", "x", testOrgID, "u1")
	require.NoError(t, err)

	active, err := e.AttendAll(ctx, instance.ID, "start", map[string]string{"monto": "100"}, "", "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, active)

	saved, err := p.Processes().GetByID(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", saved.CurrentActivityID)
}

func TestAttendAllNoActiveTransitions(t *testing.T) {
	e, p := newTestEngine(t)
	ctx := context.Background()

	workflow := threeStepWorkflow(nil)
	workflow.Transitions[0].Condition = "monto > 1000"
	require.NoError(t, p.Workflows().Save(ctx, workflow))

	instance, err := e.StartProcess(ctx, "wf-1", "x", testOrgID, "u1")
	require.NoError(t, err)

	active, err := e.AttendAll(ctx, instance.ID, "start", map[string]string{"monto": "5"}, "", "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, active)

	saved, err := p.Processes().GetByID(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, "start", saved.CurrentActivityID)
}

func TestIsFieldVisible(t *testing.T) {
	e, _ := newTestEngine(t)

	visible := models.FieldDefinition{Name: "detalle", VisibilityCondition: "tipo = gasto"}

	assert.True(t, e.IsFieldVisible(visible, map[string]string{"tipo": "gasto"}))
	assert.False(t, e.IsFieldVisible(visible, map[string]string{"tipo": "ingreso"}))
	assert.False(t, e.IsFieldVisible(visible, map[string]string{}))

	unconditional := models.FieldDefinition{Name: "detalle"}
	assert.True(t, e.IsFieldVisible(unconditional, nil))
}
