package store

import (
	"context"
	"fmt"

	"github.com/arturoeanton/codelens-timemachine/internal/domain"
)

const snapshotColumns = `id, resource_id, root_id, is_last, created_at`

// FindMostRecentSnapshot implements port.SnapshotFinder.
//
// At most one snapshot per resource is expected to be flagged as last. When storage
// breaks that rule the lowest id wins and the violation is logged and counted.
func (s *Store) FindMostRecentSnapshot(ctx context.Context, resourceID int64, reference domain.Snapshot) (*domain.Snapshot, error) {
	query := s.db.Rebind(`SELECT ` + snapshotColumns + ` FROM snapshots
		WHERE resource_id = ? AND (root_id = ? OR id = ?) AND is_last = ?
		ORDER BY id LIMIT 2`)

	var snaps []domain.Snapshot
	if err := s.db.SelectContext(ctx, &snaps, query, resourceID, reference.ID, reference.ID, true); err != nil {
		return nil, fmt.Errorf("find most recent snapshot: %w", err)
	}

	switch len(snaps) {
	case 0:
		return nil, nil
	case 1:
	default:
		s.logger.Warn("more than one last snapshot for resource",
			"resource_id", resourceID,
			"reference_snapshot_id", reference.ID,
			"picked_snapshot_id", snaps[0].ID,
		)
		s.metrics.ObserveDuplicateLast()
	}
	return &snaps[0], nil
}
