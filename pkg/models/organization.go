package models

import "time"

// Organization scopes workflows, instances and directory data. Settings is the
// organization-level variable space automation steps substitute from (finance
// project URL and API key, SMTP credentials, webhook tokens).
type Organization struct {
	ID        string            `json:"id"`
	Name      string            `json:"name" validate:"required"`
	Settings  map[string]string `json:"settings,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
