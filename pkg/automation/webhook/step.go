// Package webhook performs arbitrary HTTP calls configured per activity.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Step is one configurable HTTP call. When outputVariable is set the response
// body is captured into the automation variable space for later steps and for
// persistence as process data.
type Step struct {
	id             string
	method         string
	url            string
	headers        map[string]string
	body           string
	authType       string
	authToken      string
	authUser       string
	authPass       string
	outputVariable string

	client *http.Client
}

func NewStep(config map[string]any) (*Step, error) {
	str := func(key string) string {
		v, _ := config[key].(string)

		return v
	}

	method := strings.ToUpper(str("method"))
	if method == "" {
		method = http.MethodGet
	}

	headers := make(map[string]string)

	if headersConfig, exists := config["headers"]; exists {
		if headersMap, ok := headersConfig.(map[string]any); ok {
			for k, v := range headersMap {
				if strVal, ok := v.(string); ok {
					headers[k] = strVal
				}
			}
		}
	}

	return &Step{
		id:             str("id"),
		method:         method,
		url:            str("url"),
		headers:        headers,
		body:           str("body"),
		authType:       str("auth_type"),
		authToken:      str("auth_token"),
		authUser:       str("auth_user"),
		authPass:       str("auth_pass"),
		outputVariable: str("output_variable"),
		client:         &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (s *Step) ID() string { return s.id }

func (s *Step) Execute(ctx context.Context) (map[string]string, error) {
	var bodyReader io.Reader
	if s.body != "" {
		bodyReader = strings.NewReader(s.body)
	}

	req, err := http.NewRequestWithContext(ctx, s.method, s.url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}

	if contentType := s.contentType(); contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for key, value := range s.headers {
		req.Header.Set(key, value)
	}

	switch s.authType {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	case "basic":
		req.SetBasicAuth(s.authUser, s.authPass)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	if s.outputVariable == "" {
		return nil, nil
	}

	return map[string]string{
		s.outputVariable: captureOutput(respBody, resp.Header.Get("Content-Type")),
	}, nil
}

// contentType picks the request content type: none for GET, XML when the body
// looks like markup, JSON otherwise.
func (s *Step) contentType() string {
	if s.method == http.MethodGet {
		return ""
	}

	if strings.HasPrefix(strings.TrimSpace(s.body), "<") {
		return "text/xml"
	}

	return "application/json"
}

// captureOutput renders the response body for the variable space. JSON
// responses are decoded so a plain JSON string is stored unquoted; other
// JSON values are re-encoded compactly. Everything else is raw text.
func captureOutput(body []byte, contentType string) string {
	if !strings.Contains(contentType, "application/json") {
		return string(body)
	}

	var decoded any

	err := json.Unmarshal(body, &decoded)
	if err != nil {
		return string(body)
	}

	if s, ok := decoded.(string); ok {
		return s
	}

	compact, err := json.Marshal(decoded)
	if err != nil {
		return string(body)
	}

	return string(compact)
}
