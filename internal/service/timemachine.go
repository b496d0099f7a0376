package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/codelens-timemachine/internal/domain"
	"github.com/arturoeanton/codelens-timemachine/internal/port"
)

// TimeMachine holds the comparison periods of one resource for one analysis run.
// Everything is resolved by NewTimeMachine; the result never changes afterwards.
type TimeMachine struct {
	resource      domain.Resource
	periods       []domain.Period
	pastSnapshots []domain.PastSnapshot
}

// NewTimeMachine resolves each definition, in the given order, against resource.
// Definitions were computed for the root project; for a module the period date is
// the one of the module's own snapshot in the referenced analysis, and is left
// empty when the module has none. Lookup failures abort the whole resolution.
func NewTimeMachine(ctx context.Context, finder port.SnapshotFinder, resource domain.Resource, definitions []domain.PeriodDefinition, logger *slog.Logger) (*TimeMachine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tm := &TimeMachine{
		resource:      resource,
		periods:       make([]domain.Period, 0, len(definitions)),
		pastSnapshots: make([]domain.PastSnapshot, 0, len(definitions)),
	}

	for _, def := range definitions {
		snap, err := finder.FindMostRecentSnapshot(ctx, resource.ID, def.ReferenceSnapshot)
		if err != nil {
			return nil, fmt.Errorf("resolve period %d of resource %d: %w", def.Index, resource.ID, err)
		}

		past := domain.PastSnapshot{
			Index:             def.Index,
			ResourceID:        resource.ID,
			Mode:              def.Mode,
			TargetDate:        def.TargetDate,
			ModeParameter:     def.ModeParameter,
			ReferenceSnapshot: def.ReferenceSnapshot,
			Qualifier:         def.Qualifier,
		}
		period := domain.Period{Index: def.Index, TargetDate: def.TargetDate}
		if snap != nil {
			createdAt := snap.CreatedAt
			period.SnapshotDate = &createdAt
		}

		tm.pastSnapshots = append(tm.pastSnapshots, past)
		tm.periods = append(tm.periods, period)
		logPastSnapshot(ctx, logger, resource, past)
	}

	return tm, nil
}

// Views share their period configuration with many sub-views, so their records go to debug.
func logPastSnapshot(ctx context.Context, logger *slog.Logger, resource domain.Resource, past domain.PastSnapshot) {
	level := slog.LevelInfo
	if domain.IsAggregateQualifier(past.Qualifier) {
		level = slog.LevelDebug
	}
	logger.Log(ctx, level, past.String(), "resource", resource.Key, "period", past.Index)
}

// Resource returns the resource the periods were resolved for.
func (tm *TimeMachine) Resource() domain.Resource {
	return tm.resource
}

// Periods returns the resolved periods in definition order.
func (tm *TimeMachine) Periods() []domain.Period {
	out := make([]domain.Period, len(tm.periods))
	copy(out, tm.periods)
	return out
}

// PastSnapshots returns the definitions scoped to the resource, in definition order.
func (tm *TimeMachine) PastSnapshots() []domain.PastSnapshot {
	out := make([]domain.PastSnapshot, len(tm.pastSnapshots))
	copy(out, tm.pastSnapshots)
	return out
}

// Period returns the period configured with the given index.
func (tm *TimeMachine) Period(index int) (domain.Period, bool) {
	for _, p := range tm.periods {
		if p.Index == index {
			return p, true
		}
	}
	return domain.Period{}, false
}

// PastSnapshot returns the past snapshot configured with the given index.
func (tm *TimeMachine) PastSnapshot(index int) (domain.PastSnapshot, bool) {
	for _, p := range tm.pastSnapshots {
		if p.Index == index {
			return p, true
		}
	}
	return domain.PastSnapshot{}, false
}
