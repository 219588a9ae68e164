// Package email dispatches messages through the organization's mail bridge.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// ErrMissingRecipient is returned before any network call when no recipient
// was resolved.
var ErrMissingRecipient = errors.New("email step requires a non-empty recipient")

// Step sends one email via the HTTP mail bridge, optionally overriding the
// SMTP account per organization.
type Step struct {
	id      string
	url     string
	token   string
	to      string
	cc      string
	subject string
	body    string

	smtpHost   string
	smtpPort   string
	smtpUser   string
	smtpPass   string
	smtpSecure bool

	client *http.Client
}

func NewStep(config map[string]any) (*Step, error) {
	str := func(key string) string {
		v, _ := config[key].(string)

		return v
	}

	secure := false
	switch v := config["smtp_secure"].(type) {
	case bool:
		secure = v
	case string:
		secure = strings.EqualFold(v, "true")
	}

	return &Step{
		id:         str("id"),
		url:        str("url"),
		token:      str("token"),
		to:         str("to"),
		cc:         str("cc"),
		subject:    str("subject"),
		body:       str("body"),
		smtpHost:   str("smtp_host"),
		smtpPort:   str("smtp_port"),
		smtpUser:   str("smtp_user"),
		smtpPass:   str("smtp_pass"),
		smtpSecure: secure,
		client:     &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (s *Step) ID() string { return s.id }

func (s *Step) Execute(ctx context.Context) (map[string]string, error) {
	if strings.TrimSpace(s.to) == "" {
		return nil, ErrMissingRecipient
	}

	payload := map[string]any{
		"to":      s.to,
		"cc":      s.cc,
		"subject": s.subject,
		"body":    s.body,
		"smtp": map[string]any{
			"host":   s.smtpHost,
			"port":   s.smtpPort,
			"user":   s.smtpUser,
			"pass":   s.smtpPass,
			"secure": s.smtpSecure,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create email request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read email response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("mail bridge returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil, nil
}
