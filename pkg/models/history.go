package models

import (
	"strings"
	"time"
)

// HistoryAction classifies a process history entry.
type HistoryAction string

const (
	HistoryActionStarted   HistoryAction = "started"
	HistoryActionCompleted HistoryAction = "completed"
	HistoryActionCommented HistoryAction = "commented"
)

// Automation outcome comment prefixes. The failure prefix is a stable
// signature: the monitoring read path filters history by it, so it must not
// change.
const (
	AutomationSuccessPrefix = "✅ "
	AutomationFailurePrefix = "❌ Error en Acción Automática: "
)

// HistoryEntry is one record of the append-only process audit log. Entries are
// never mutated or deleted; the full execution trace is reconstructed from
// this log plus process data.
//
// Commented entries carry both free-text remarks and automation outcomes
// (success/failure prefixes above).
type HistoryEntry struct {
	ID         string        `json:"id"`
	ProcessID  string        `json:"process_id"  validate:"required"`
	ActivityID string        `json:"activity_id" validate:"required"`
	Action     HistoryAction `json:"action"      validate:"required"`
	Comment    string        `json:"comment,omitempty"`
	UserID     string        `json:"user_id,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// IsAutomationFailure reports whether this entry records a failed automation
// run.
func (h *HistoryEntry) IsAutomationFailure() bool {
	return h.Action == HistoryActionCommented && strings.HasPrefix(h.Comment, AutomationFailurePrefix)
}
