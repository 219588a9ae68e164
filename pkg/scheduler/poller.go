// Package scheduler turns due scheduled processes into running instances.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

const defaultInterval = 30 * time.Second

// Starter is the slice of the engine the poller needs.
type Starter interface {
	StartProcess(ctx context.Context, workflowID, name, organizationID, userID string) (*models.ProcessInstance, error)
}

// Poller periodically fires schedules whose next run time has passed.
// Recurring schedules get their next run precomputed after firing; one-shot
// schedules deactivate.
type Poller struct {
	persistence persistence.Persistence
	starter     Starter
	interval    time.Duration
	logger      *slog.Logger
	now         func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewPoller(p persistence.Persistence, starter Starter, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Poller{
		persistence: p,
		starter:     starter,
		interval:    interval,
		logger:      logger.With("module", "scheduler"),
		now:         time.Now,
		stopCh:      make(chan struct{}),
	}
}

// WithClock replaces the time source, for deterministic tests.
func (p *Poller) WithClock(now func() time.Time) *Poller {
	p.now = now

	return p
}

// Start launches the polling loop.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.Tick(ctx)

		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Tick(ctx)
			}
		}
	}()
}

// Tick fires every due schedule once. A failed start leaves the schedule due
// so the next tick retries it.
func (p *Poller) Tick(ctx context.Context) {
	now := p.now().UTC()

	due, err := p.persistence.Schedules().Due(ctx, now)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to load due schedules", "error", err)

		return
	}

	for _, schedule := range due {
		p.fire(ctx, schedule, now)
	}
}

func (p *Poller) fire(ctx context.Context, schedule *models.ScheduledProcess, now time.Time) {
	instance, err := p.starter.StartProcess(ctx,
		schedule.WorkflowID, schedule.Name, schedule.OrganizationID, schedule.CreatedBy)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to start scheduled process",
			"schedule_id", schedule.ID, "workflow_id", schedule.WorkflowID, "error", err)

		return
	}

	p.logger.InfoContext(ctx, "scheduled process started",
		"schedule_id", schedule.ID, "process_id", instance.ID)

	if schedule.IsRecurring {
		next, err := schedule.NextAfter(now)
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to compute next run, deactivating schedule",
				"schedule_id", schedule.ID, "error", err)

			schedule.Active = false
		} else {
			schedule.NextRunAt = next
		}
	} else {
		schedule.Active = false
	}

	err = p.persistence.Schedules().Update(ctx, schedule)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to update schedule after firing",
			"schedule_id", schedule.ID, "error", err)
	}
}

// Stop waits for the polling loop to drain.
func (p *Poller) Stop() {
	close(p.stopCh)
	p.wg.Wait()
}
