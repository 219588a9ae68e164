package automation_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tramio/tramio/pkg/automation"
	"github.com/tramio/tramio/pkg/automation/email"
	"github.com/tramio/tramio/pkg/automation/finance"
	"github.com/tramio/tramio/pkg/automation/webhook"
	"github.com/tramio/tramio/pkg/models"
)

func newTestRunner() *automation.Runner {
	registry := automation.NewRegistry()
	registry.Register(finance.NewFactory())
	registry.Register(email.NewFactory())
	registry.Register(webhook.NewFactory())

	return automation.NewRunner(registry, slog.New(slog.DiscardHandler))
}

func TestRunSubstitutesProcessDataBeforeOrgSettings(t *testing.T) {
	var seenBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seenBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	steps := []models.StepConfig{
		{
			ID:   "step-1",
			Kind: models.StepKindWebhook,
			Config: map[string]any{
				"url":    server.URL,
				"method": "POST",
				"body":   `{"winner": "{{token}}"}`,
			},
		},
	}

	// token exists in both spaces; process data wins.
	result := newTestRunner().Run(context.Background(), steps,
		map[string]string{"token": "from-data"},
		map[string]string{"token": "from-settings"},
	)

	require.True(t, result.Success)
	assert.JSONEq(t, `{"winner": "from-data"}`, seenBody)
}

func TestRunLeavesUnresolvedTokensInPlace(t *testing.T) {
	var seenBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seenBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	steps := []models.StepConfig{
		{
			ID:   "step-1",
			Kind: models.StepKindWebhook,
			Config: map[string]any{
				"url":    server.URL,
				"method": "POST",
				"body":   `ref={{missing_var}}`,
			},
		},
	}

	result := newTestRunner().Run(context.Background(), steps, nil, nil)

	require.True(t, result.Success)
	assert.Equal(t, "ref={{missing_var}}", seenBody)
}

func TestRunOutputVariableFeedsLaterSteps(t *testing.T) {
	var secondBody string

	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"ticket": "T-42"})
	}))
	defer first.Close()

	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		secondBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer second.Close()

	steps := []models.StepConfig{
		{
			ID:   "lookup",
			Kind: models.StepKindWebhook,
			Config: map[string]any{
				"url":             first.URL,
				"output_variable": "lookup_result",
			},
		},
		{
			ID:   "notify",
			Kind: models.StepKindWebhook,
			Config: map[string]any{
				"url":    second.URL,
				"method": "POST",
				"body":   `{{lookup_result}}`,
			},
		},
	}

	result := newTestRunner().Run(context.Background(), steps, nil, nil)

	require.True(t, result.Success)
	assert.JSONEq(t, `{"ticket": "T-42"}`, secondBody)
	assert.Equal(t, `{"ticket":"T-42"}`, result.Outputs["lookup_result"])
}

func TestRunFirstFailureAbortsRemainingSteps(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()

	var thirdCalled bool

	third := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		thirdCalled = true
		w.WriteHeader(http.StatusOK)
	}))
	defer third.Close()

	producing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("first-output"))
	}))
	defer producing.Close()

	steps := []models.StepConfig{
		{
			ID:   "first",
			Kind: models.StepKindWebhook,
			Config: map[string]any{
				"url":             producing.URL,
				"output_variable": "first_result",
			},
		},
		{
			ID:   "second",
			Kind: models.StepKindWebhook,
			Config: map[string]any{
				"url":    failing.URL,
				"method": "POST",
			},
		},
		{
			ID:   "third",
			Kind: models.StepKindWebhook,
			Config: map[string]any{
				"url": third.URL,
			},
		},
	}

	result := newTestRunner().Run(context.Background(), steps, nil, nil)

	require.False(t, result.Success)
	assert.Equal(t, "second", result.FailedStepID)
	assert.ErrorContains(t, result.Err, "500")
	assert.False(t, thirdCalled)

	// partial progress stays visible to the caller
	assert.Equal(t, "first-output", result.Outputs["first_result"])
}

func TestRunEmailWithoutRecipientFailsBeforeNetworkCall(t *testing.T) {
	var called bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	steps := []models.StepConfig{
		{
			ID:   "mail",
			Kind: models.StepKindEmail,
			Config: map[string]any{
				"url":     server.URL,
				"to":      "",
				"subject": "hello",
			},
		},
	}

	result := newTestRunner().Run(context.Background(), steps, nil, nil)

	require.False(t, result.Success)
	assert.ErrorIs(t, result.Err, email.ErrMissingRecipient)
	assert.False(t, called)
}

func TestRunFinancePostsCoercedAmount(t *testing.T) {
	var (
		seenPath    string
		seenAPIKey  string
		seenPayload map[string]any
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		seenAPIKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&seenPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	steps := []models.StepConfig{
		{
			ID:   "ledger",
			Kind: models.StepKindFinance,
			Config: map[string]any{
				"project_url": server.URL,
				"api_key":     "{{finance_api_key}}",
				"date":        "2026-03-01",
				"amount":      "{{monto}}",
				"description": "Pago a proveedor",
				"type":        "expense",
				"category":    "servicios",
			},
		},
	}

	result := newTestRunner().Run(context.Background(), steps,
		map[string]string{"monto": "1250.50"},
		map[string]string{"finance_api_key": "sk-test"},
	)

	require.True(t, result.Success)
	assert.Equal(t, "/functions/v1/ingest_external_transaction", seenPath)
	assert.Equal(t, "sk-test", seenAPIKey)
	assert.InDelta(t, 1250.50, seenPayload["p_amount"], 0.001)
	assert.Equal(t, "sk-test", seenPayload["p_api_key"])
}

func TestRunFinanceNonNumericAmountFails(t *testing.T) {
	steps := []models.StepConfig{
		{
			ID:   "ledger",
			Kind: models.StepKindFinance,
			Config: map[string]any{
				"project_url": "http://localhost:1",
				"api_key":     "k",
				"date":        "2026-03-01",
				"amount":      "not-a-number",
				"description": "d",
				"type":        "expense",
				"category":    "c",
			},
		},
	}

	result := newTestRunner().Run(context.Background(), steps, nil, nil)

	require.False(t, result.Success)
	assert.Equal(t, "ledger", result.FailedStepID)
	assert.ErrorContains(t, result.Err, "not numeric")
}

func TestRunUnknownStepKindFails(t *testing.T) {
	steps := []models.StepConfig{
		{ID: "x", Kind: models.StepKind("teleport"), Config: map[string]any{}},
	}

	result := newTestRunner().Run(context.Background(), steps, nil, nil)

	require.False(t, result.Success)
	assert.ErrorContains(t, result.Err, "unknown step kind")
}

func TestRunSchemaRejectsIncompleteFinanceConfig(t *testing.T) {
	steps := []models.StepConfig{
		{
			ID:   "ledger",
			Kind: models.StepKindFinance,
			Config: map[string]any{
				"project_url": "http://localhost:1",
			},
		},
	}

	result := newTestRunner().Run(context.Background(), steps, nil, nil)

	require.False(t, result.Success)
	assert.Equal(t, "ledger", result.FailedStepID)
	assert.ErrorContains(t, result.Err, "invalid finance step configuration")
}
