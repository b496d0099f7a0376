package port

import (
	"context"

	"github.com/arturoeanton/codelens-timemachine/internal/domain"
)

// SnapshotFinder locates past snapshots of a resource.
type SnapshotFinder interface {
	// FindMostRecentSnapshot returns the snapshot of resourceID flagged as last that
	// either is reference itself or belongs to the tree rooted at reference.
	// It returns nil and no error when there is no such snapshot.
	FindMostRecentSnapshot(ctx context.Context, resourceID int64, reference domain.Snapshot) (*domain.Snapshot, error)
}

// PeriodDefinitionSource supplies the comparison points configured for a root project,
// ordered by index.
type PeriodDefinitionSource interface {
	PeriodDefinitions(ctx context.Context, projectID int64) ([]domain.PeriodDefinition, error)
}

// ResourceReader reads the project/module tree.
type ResourceReader interface {
	// GetResource returns ErrResourceNotFound when id is unknown.
	GetResource(ctx context.Context, id int64) (*domain.Resource, error)

	// ListChildren returns the direct children of parentID ordered by id.
	ListChildren(ctx context.Context, parentID int64) ([]domain.Resource, error)
}

// TimeMachineStore is everything period resolution reads from storage.
type TimeMachineStore interface {
	SnapshotFinder
	PeriodDefinitionSource
	ResourceReader
}
