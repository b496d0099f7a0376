package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/codelens-timemachine/internal/domain"
	"github.com/arturoeanton/codelens-timemachine/internal/metrics"
	"github.com/arturoeanton/codelens-timemachine/internal/port"
	"golang.org/x/sync/errgroup"
)

// Resolution is the outcome of period resolution for one resource.
type Resolution struct {
	Resource      domain.Resource       `json:"resource"`
	Periods       []domain.Period       `json:"periods"`
	PastSnapshots []domain.PastSnapshot `json:"past_snapshots"`
}

// PeriodService resolves comparison periods for resources of the project tree.
type PeriodService struct {
	store       port.TimeMachineStore
	finder      port.SnapshotFinder
	metrics     *metrics.Metrics
	logger      *slog.Logger
	concurrency int
}

// NewPeriodService creates a new period service. concurrency bounds how many
// resources of a project are resolved at the same time.
func NewPeriodService(store port.TimeMachineStore, m *metrics.Metrics, logger *slog.Logger, concurrency int) *PeriodService {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &PeriodService{
		store:       store,
		finder:      instrumentedFinder{next: store, metrics: m},
		metrics:     m,
		logger:      logger,
		concurrency: concurrency,
	}
}

// TimeMachine resolves the periods of the root project against the given resource.
func (s *PeriodService) TimeMachine(ctx context.Context, resourceID int64) (*TimeMachine, error) {
	resource, err := s.store.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	defs, err := s.definitionsFor(ctx, *resource)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, *resource, defs)
}

// ResolveResource returns the periods of a single resource.
func (s *PeriodService) ResolveResource(ctx context.Context, resourceID int64) (*Resolution, error) {
	tm, err := s.TimeMachine(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	r := toResolution(tm)
	return &r, nil
}

// ResolveProject returns the periods of a resource and of every resource below it,
// in depth-first order. Definitions are read once; resources are resolved concurrently.
func (s *PeriodService) ResolveProject(ctx context.Context, projectID int64) ([]Resolution, error) {
	project, err := s.store.GetResource(ctx, projectID)
	if err != nil {
		return nil, err
	}
	defs, err := s.definitionsFor(ctx, *project)
	if err != nil {
		return nil, err
	}
	tree, err := s.subtree(ctx, *project)
	if err != nil {
		return nil, err
	}

	s.logger.Info("resolving project periods", "project", project.Key, "resources", len(tree), "periods", len(defs))

	results := make([]Resolution, len(tree))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, res := range tree {
		g.Go(func() error {
			tm, err := s.resolve(gctx, res, defs)
			if err != nil {
				return err
			}
			results[i] = toResolution(tm)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *PeriodService) resolve(ctx context.Context, resource domain.Resource, defs []domain.PeriodDefinition) (*TimeMachine, error) {
	tm, err := NewTimeMachine(ctx, s.finder, resource, defs, s.logger)
	s.metrics.ObserveResolution(err)
	return tm, err
}

// definitionsFor loads the definitions of the root project above resource.
func (s *PeriodService) definitionsFor(ctx context.Context, resource domain.Resource) ([]domain.PeriodDefinition, error) {
	root, err := s.rootProject(ctx, resource)
	if err != nil {
		return nil, err
	}
	defs, err := s.store.PeriodDefinitions(ctx, root.ID)
	if err != nil {
		return nil, fmt.Errorf("load period definitions of %s: %w", root.Key, err)
	}
	return defs, nil
}

func (s *PeriodService) rootProject(ctx context.Context, resource domain.Resource) (domain.Resource, error) {
	seen := map[int64]bool{resource.ID: true}
	current := resource
	for !current.IsRoot() {
		parent, err := s.store.GetResource(ctx, *current.ParentID)
		if err != nil {
			return domain.Resource{}, fmt.Errorf("load parent of %s: %w", current.Key, err)
		}
		if seen[parent.ID] {
			return domain.Resource{}, fmt.Errorf("resource tree cycle at %s", parent.Key)
		}
		seen[parent.ID] = true
		current = *parent
	}
	return current, nil
}

// subtree lists resource and its descendants in depth-first pre-order.
func (s *PeriodService) subtree(ctx context.Context, resource domain.Resource) ([]domain.Resource, error) {
	out := []domain.Resource{resource}
	children, err := s.store.ListChildren(ctx, resource.ID)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		sub, err := s.subtree(ctx, child)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func toResolution(tm *TimeMachine) Resolution {
	return Resolution{
		Resource:      tm.Resource(),
		Periods:       tm.Periods(),
		PastSnapshots: tm.PastSnapshots(),
	}
}

// instrumentedFinder counts lookup hits and misses.
type instrumentedFinder struct {
	next    port.SnapshotFinder
	metrics *metrics.Metrics
}

func (f instrumentedFinder) FindMostRecentSnapshot(ctx context.Context, resourceID int64, reference domain.Snapshot) (*domain.Snapshot, error) {
	snap, err := f.next.FindMostRecentSnapshot(ctx, resourceID, reference)
	if err == nil {
		f.metrics.ObserveLookup(snap != nil)
	}
	return snap, err
}
