// Package assignment selects the responsible party for an activity based on
// its assignment configuration and the organization directory.
package assignment

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/tramio/tramio/pkg/models"
	"github.com/tramio/tramio/pkg/persistence"
)

// Assignment is the resolved ownership of a task. At most one of the three
// fields is non-nil for a direct assignment; department or position alone
// means the whole pool sees the task in its group queue.
type Assignment struct {
	UserID       *string
	DepartmentID *string
	PositionID   *string
}

// Resolver picks users for activities. Directory and workload reads go
// through persistence; the random source is injectable for deterministic
// tests.
type Resolver struct {
	persistence persistence.Persistence
	logger      *slog.Logger
	intn        func(n int) int
}

func NewResolver(persistence persistence.Persistence, logger *slog.Logger) *Resolver {
	return &Resolver{
		persistence: persistence,
		logger:      logger.With("module", "assignment"),
		intn:        rand.IntN,
	}
}

// WithRandSource replaces the uniform index source used by the random
// strategy.
func (r *Resolver) WithRandSource(intn func(n int) int) *Resolver {
	r.intn = intn

	return r
}

// Resolve computes the assignment for an activity. Read failures never
// surface as errors: the resolution degrades to the group queue so an
// otherwise valid transition is not blocked by a directory outage.
func (r *Resolver) Resolve(ctx context.Context, activity *models.Activity, creatorUserID, organizationID string) Assignment {
	group := Assignment{
		DepartmentID: activity.AssignedDepartmentID,
		PositionID:   activity.AssignedPositionID,
	}

	switch activity.AssignmentType {
	case models.AssignmentTypeCreator:
		return Assignment{UserID: &creatorUserID}
	case models.AssignmentTypeSpecificUser:
		return Assignment{UserID: activity.AssignedUserID}
	case models.AssignmentTypeDepartment, models.AssignmentTypePosition:
		pool, err := r.pool(ctx, activity)
		if err != nil {
			r.logger.WarnContext(ctx, "pool lookup failed, falling back to group queue",
				"activity_id", activity.ID, "error", err)

			return group
		}

		if len(pool) == 0 {
			return group
		}

		userID, err := r.pick(ctx, activity.AssignmentStrategy, pool, organizationID)
		if err != nil {
			r.logger.WarnContext(ctx, "strategy evaluation failed, falling back to group queue",
				"activity_id", activity.ID, "strategy", activity.AssignmentStrategy, "error", err)

			return group
		}

		if userID == nil {
			return group
		}

		group.UserID = userID

		return group
	default:
		// manual or unset
		return group
	}
}

// pool returns the eligible user IDs. A configured position narrows the pool
// below the department.
func (r *Resolver) pool(ctx context.Context, activity *models.Activity) ([]string, error) {
	directory := r.persistence.Directory()

	if activity.AssignedPositionID != nil && *activity.AssignedPositionID != "" {
		return directory.UsersByPosition(ctx, *activity.AssignedPositionID)
	}

	if activity.AssignedDepartmentID != nil && *activity.AssignedDepartmentID != "" {
		return directory.UsersByDepartment(ctx, *activity.AssignedDepartmentID)
	}

	return nil, nil
}

func (r *Resolver) pick(ctx context.Context, strategy models.AssignmentStrategy, pool []string, organizationID string) (*string, error) {
	switch strategy {
	case models.AssignmentStrategyWorkload:
		return r.pickByWorkload(ctx, pool, organizationID)
	case models.AssignmentStrategyEfficiency:
		return r.pickByEfficiency(ctx, pool)
	case models.AssignmentStrategyRandom:
		userID := pool[r.intn(len(pool))]

		return &userID, nil
	default:
		// manual within a group activity: no selection
		return nil, nil
	}
}

// pickByWorkload selects the pool member with the fewest active instances.
// Ties keep the first member encountered.
func (r *Resolver) pickByWorkload(ctx context.Context, pool []string, organizationID string) (*string, error) {
	var (
		best      string
		bestCount int
	)

	for i, userID := range pool {
		count, err := r.persistence.Processes().CountActiveByUser(ctx, organizationID, userID)
		if err != nil {
			return nil, err
		}

		if i == 0 || count < bestCount {
			best = userID
			bestCount = count
		}
	}

	return &best, nil
}

// pickByEfficiency selects the pool member with the most historical
// completions. Ties keep the first member encountered.
func (r *Resolver) pickByEfficiency(ctx context.Context, pool []string) (*string, error) {
	var (
		best      string
		bestCount int
	)

	for i, userID := range pool {
		count, err := r.persistence.History().CountCompletedByUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		if i == 0 || count > bestCount {
			best = userID
			bestCount = count
		}
	}

	return &best, nil
}
