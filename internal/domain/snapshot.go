package domain

import "time"

// Snapshot is a stored, point-in-time record of a past analysis of a resource.
// Snapshots of a project and its modules taken in the same analysis share a tree;
// RootID points at the project-level snapshot of that tree and is nil for the root itself.
type Snapshot struct {
	ID         int64     `json:"id"          db:"id"`
	ResourceID int64     `json:"resource_id" db:"resource_id"`
	RootID     *int64    `json:"root_id"     db:"root_id"`
	IsLast     bool      `json:"is_last"     db:"is_last"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}
