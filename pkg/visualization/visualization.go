// Package visualization reconstructs a process's execution trace for graph
// rendering, purely from history and the instance itself.
package visualization

import (
	"context"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// ProcessView is what a renderer needs to paint the workflow graph with
// progress: which nodes were reached, which edges were walked and where the
// process sits now. Unreached activities simply stay out of the executed set.
type ProcessView struct {
	ProcessID             string               `json:"process_id"`
	WorkflowID            string               `json:"workflow_id"`
	Status                models.ProcessStatus `json:"status"`
	CurrentActivityID     string               `json:"current_activity_id"`
	ExecutedActivityIDs   map[string]bool      `json:"executed_activity_ids"`
	ExecutedTransitionIDs map[string]bool      `json:"executed_transition_ids"`
}

// Reader builds process views.
type Reader struct {
	persistence persistence.Persistence
}

func NewReader(p persistence.Persistence) *Reader {
	return &Reader{persistence: p}
}

// Read reconstructs the view for one process. A transition counts as executed
// only when both of its endpoints appear in history; reachable-but-pending
// branches stay unmarked.
func (r *Reader) Read(ctx context.Context, processID string) (*ProcessView, error) {
	instance, err := r.persistence.Processes().GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}

	workflow, err := r.persistence.Workflows().GetByID(ctx, instance.WorkflowID)
	if err != nil {
		return nil, err
	}

	history, err := r.persistence.History().ListByProcess(ctx, processID)
	if err != nil {
		return nil, err
	}

	executed := make(map[string]bool)
	for _, entry := range history {
		executed[entry.ActivityID] = true
	}

	executedTransitions := make(map[string]bool)

	for _, transition := range workflow.Transitions {
		if executed[transition.SourceID] && executed[transition.TargetID] {
			executedTransitions[transition.ID] = true
		}
	}

	return &ProcessView{
		ProcessID:             instance.ID,
		WorkflowID:            workflow.ID,
		Status:                instance.Status,
		CurrentActivityID:     instance.CurrentActivityID,
		ExecutedActivityIDs:   executed,
		ExecutedTransitionIDs: executedTransitions,
	}, nil
}
