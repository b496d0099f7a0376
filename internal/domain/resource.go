package domain

// Resource is a project or module being analyzed. Resources form a tree
// (project -> modules) through ParentID.
type Resource struct {
	ID        int64  `json:"id"        db:"id"`
	Key       string `json:"key"       db:"resource_key"`
	Name      string `json:"name"      db:"name"`
	Qualifier string `json:"qualifier" db:"qualifier"`
	ParentID  *int64 `json:"parent_id" db:"parent_id"`
}

// Resource qualifiers.
const (
	QualifierProject   = "TRK"
	QualifierModule    = "BRC"
	QualifierView      = "VW"
	QualifierSubview   = "SVW"
	QualifierDirectory = "DIR"
	QualifierFile      = "FIL"
)

// IsRoot reports whether the resource has no parent.
func (r Resource) IsRoot() bool {
	return r.ParentID == nil
}

// IsAggregateQualifier reports whether q marks a view or sub-view, i.e. a resource
// that aggregates other projects.
func IsAggregateQualifier(q string) bool {
	return q == QualifierView || q == QualifierSubview
}
