package inbox

import (
	"context"
	"strings"
	"time"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// AutomationFailure is one failed automation run joined to its instance, the
// operational view fed by the failure comment signature in history.
type AutomationFailure struct {
	Entry    *models.HistoryEntry    `json:"entry"`
	Instance *models.ProcessInstance `json:"instance"`
	Detail   string                  `json:"detail"`
}

// AutomationFailures lists the failed automation runs of an organization
// since the given time, newest first. Entries whose instance has vanished are
// skipped rather than failing the whole listing.
func (i *Inbox) AutomationFailures(ctx context.Context, organizationID string, since time.Time) ([]*AutomationFailure, error) {
	entries, err := i.persistence.History().AutomationFailures(ctx, organizationID, since)
	if err != nil {
		return nil, err
	}

	failures := make([]*AutomationFailure, 0, len(entries))

	for _, entry := range entries {
		instance, err := i.persistence.Processes().GetByID(ctx, entry.ProcessID)
		if err != nil {
			if persistence.IsProcessNotFound(err) {
				continue
			}

			return nil, err
		}

		failures = append(failures, &AutomationFailure{
			Entry:    entry,
			Instance: instance,
			Detail:   strings.TrimPrefix(entry.Comment, models.AutomationFailurePrefix),
		})
	}

	return failures, nil
}
