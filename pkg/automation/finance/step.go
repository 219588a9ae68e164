// Package finance posts ledger movements to the external finance service.
package finance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	ingestPath     = "/functions/v1/ingest_external_transaction"
	defaultTimeout = 30 * time.Second
)

// Step posts one ledger movement. Amounts arrive as strings from process data
// and are coerced to numbers before the call.
type Step struct {
	id           string
	projectURL   string
	apiKey       string
	date         string
	amount       string
	description  string
	movementType string
	category     string
	providerName string
	conceptID    string

	client *http.Client
}

func NewStep(config map[string]any) (*Step, error) {
	str := func(key string) string {
		v, _ := config[key].(string)

		return v
	}

	return &Step{
		id:           str("id"),
		projectURL:   strings.TrimRight(str("project_url"), "/"),
		apiKey:       str("api_key"),
		date:         str("date"),
		amount:       str("amount"),
		description:  str("description"),
		movementType: str("type"),
		category:     str("category"),
		providerName: str("provider_name"),
		conceptID:    str("concept_id"),
		client:       &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (s *Step) ID() string { return s.id }

func (s *Step) Execute(ctx context.Context) (map[string]string, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(s.amount), 64)
	if err != nil {
		return nil, fmt.Errorf("amount %q is not numeric", s.amount)
	}

	payload := map[string]any{
		"p_date":          s.date,
		"p_amount":        amount,
		"p_description":   s.description,
		"p_type":          s.movementType,
		"p_category":      s.category,
		"p_provider_name": s.providerName,
		"p_concept_id":    s.conceptID,
		"p_api_key":       s.apiKey,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode finance payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.projectURL+ingestPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create finance request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finance request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read finance response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("finance service returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil, nil
}
