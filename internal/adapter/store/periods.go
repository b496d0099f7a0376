package store

import (
	"context"
	"fmt"
	"time"

	"github.com/arturoeanton/codelens-timemachine/internal/domain"
)

type periodDefinitionRow struct {
	Index         int        `db:"period_index"`
	Mode          string     `db:"mode"`
	TargetDate    *time.Time `db:"target_date"`
	ModeParameter string     `db:"mode_parameter"`
	Qualifier     string     `db:"qualifier"`

	SnapshotID         int64     `db:"snapshot_id"`
	SnapshotResourceID int64     `db:"snapshot_resource_id"`
	SnapshotRootID     *int64    `db:"snapshot_root_id"`
	SnapshotIsLast     bool      `db:"snapshot_is_last"`
	SnapshotCreatedAt  time.Time `db:"snapshot_created_at"`
}

// PeriodDefinitions implements port.PeriodDefinitionSource. Definitions are returned
// ordered by index together with the snapshot each was computed against.
func (s *Store) PeriodDefinitions(ctx context.Context, projectID int64) ([]domain.PeriodDefinition, error) {
	query := s.db.Rebind(`SELECT pd.period_index, pd.mode, pd.target_date, pd.mode_parameter, r.qualifier,
		sn.id AS snapshot_id, sn.resource_id AS snapshot_resource_id, sn.root_id AS snapshot_root_id,
		sn.is_last AS snapshot_is_last, sn.created_at AS snapshot_created_at
		FROM period_definitions pd
		JOIN snapshots sn ON sn.id = pd.snapshot_id
		JOIN resources r ON r.id = pd.project_id
		WHERE pd.project_id = ?
		ORDER BY pd.period_index`)

	var rows []periodDefinitionRow
	if err := s.db.SelectContext(ctx, &rows, query, projectID); err != nil {
		return nil, fmt.Errorf("list period definitions: %w", err)
	}

	defs := make([]domain.PeriodDefinition, 0, len(rows))
	for _, r := range rows {
		mode := domain.PeriodMode(r.Mode)
		if !mode.Valid() {
			return nil, fmt.Errorf("period %d of project %d: unknown mode %q", r.Index, projectID, r.Mode)
		}
		defs = append(defs, domain.PeriodDefinition{
			Index:         r.Index,
			Mode:          mode,
			TargetDate:    r.TargetDate,
			ModeParameter: r.ModeParameter,
			Qualifier:     r.Qualifier,
			ReferenceSnapshot: domain.Snapshot{
				ID:         r.SnapshotID,
				ResourceID: r.SnapshotResourceID,
				RootID:     r.SnapshotRootID,
				IsLast:     r.SnapshotIsLast,
				CreatedAt:  r.SnapshotCreatedAt,
			},
		})
	}
	return defs, nil
}
