package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arturoeanton/codelens-timemachine/internal/domain"
	"github.com/arturoeanton/codelens-timemachine/internal/port"
)

const resourceColumns = `id, resource_key, name, qualifier, parent_id`

// GetResource returns a resource by id.
func (s *Store) GetResource(ctx context.Context, id int64) (*domain.Resource, error) {
	query := s.db.Rebind(`SELECT ` + resourceColumns + ` FROM resources WHERE id = ?`)

	var r domain.Resource
	if err := s.db.GetContext(ctx, &r, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, port.ErrResourceNotFound
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return &r, nil
}

// ListChildren returns the direct children of a resource, ordered by id.
func (s *Store) ListChildren(ctx context.Context, parentID int64) ([]domain.Resource, error) {
	query := s.db.Rebind(`SELECT ` + resourceColumns + ` FROM resources WHERE parent_id = ? ORDER BY id`)

	var children []domain.Resource
	if err := s.db.SelectContext(ctx, &children, query, parentID); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}
