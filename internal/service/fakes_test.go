package service

import (
	"context"
	"errors"
	"sync"

	"github.com/arturoeanton/codelens-timemachine/internal/domain"
	"github.com/arturoeanton/codelens-timemachine/internal/port"
)

type lookupCall struct {
	resourceID  int64
	referenceID int64
}

// fakeStore keeps snapshots, resources and definitions in memory and applies the
// same matching rule as the SQL store.
type fakeStore struct {
	mu        sync.Mutex
	resources map[int64]domain.Resource
	snapshots []domain.Snapshot
	defs      map[int64][]domain.PeriodDefinition
	calls     []lookupCall
	findErr   error
	defsErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		resources: map[int64]domain.Resource{},
		defs:      map[int64][]domain.PeriodDefinition{},
	}
}

func (f *fakeStore) addResource(r domain.Resource) {
	f.resources[r.ID] = r
}

func (f *fakeStore) FindMostRecentSnapshot(ctx context.Context, resourceID int64, reference domain.Snapshot) (*domain.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, lookupCall{resourceID: resourceID, referenceID: reference.ID})
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, s := range f.snapshots {
		if s.ResourceID != resourceID || !s.IsLast {
			continue
		}
		if s.ID == reference.ID || (s.RootID != nil && *s.RootID == reference.ID) {
			snap := s
			return &snap, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) PeriodDefinitions(ctx context.Context, projectID int64) ([]domain.PeriodDefinition, error) {
	if f.defsErr != nil {
		return nil, f.defsErr
	}
	return f.defs[projectID], nil
}

func (f *fakeStore) GetResource(ctx context.Context, id int64) (*domain.Resource, error) {
	r, ok := f.resources[id]
	if !ok {
		return nil, port.ErrResourceNotFound
	}
	return &r, nil
}

func (f *fakeStore) ListChildren(ctx context.Context, parentID int64) ([]domain.Resource, error) {
	var out []domain.Resource
	for id := int64(0); id < 1000; id++ {
		r, ok := f.resources[id]
		if ok && r.ParentID != nil && *r.ParentID == parentID {
			out = append(out, r)
		}
	}
	return out, nil
}

var errBackendDown = errors.New("connection refused")

func int64Ptr(v int64) *int64 { return &v }
