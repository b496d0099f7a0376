package domain

import (
	"fmt"
	"time"
)

// PeriodMode identifies how a comparison point was specified.
type PeriodMode string

// Period modes.
const (
	PeriodModeDate             PeriodMode = "date"
	PeriodModeDays             PeriodMode = "days"
	PeriodModePreviousAnalysis PeriodMode = "previous_analysis"
	PeriodModeVersion          PeriodMode = "version"
)

// Valid reports whether m is one of the known modes.
func (m PeriodMode) Valid() bool {
	switch m {
	case PeriodModeDate, PeriodModeDays, PeriodModePreviousAnalysis, PeriodModeVersion:
		return true
	}
	return false
}

// PeriodDefinition is a configured comparison point already computed against the
// root project snapshot. Index is 1-based.
type PeriodDefinition struct {
	Index             int        `json:"index"`
	Mode              PeriodMode `json:"mode"`
	TargetDate        *time.Time `json:"target_date,omitempty"`
	ModeParameter     string     `json:"mode_parameter,omitempty"`
	ReferenceSnapshot Snapshot   `json:"reference_snapshot"`
	Qualifier         string     `json:"qualifier"`
}

// PastSnapshot is a PeriodDefinition scoped to the resource currently analyzed.
type PastSnapshot struct {
	Index             int        `json:"index"`
	ResourceID        int64      `json:"resource_id"`
	Mode              PeriodMode `json:"mode"`
	TargetDate        *time.Time `json:"target_date,omitempty"`
	ModeParameter     string     `json:"mode_parameter,omitempty"`
	ReferenceSnapshot Snapshot   `json:"reference_snapshot"`
	Qualifier         string     `json:"qualifier"`
}

const labelDateLayout = "2006-01-02"

// String returns the label written to the analysis log for this comparison point.
func (p PastSnapshot) String() string {
	refDate := p.ReferenceSnapshot.CreatedAt
	hasRef := p.ReferenceSnapshot.ID != 0
	switch p.Mode {
	case PeriodModeVersion:
		label := fmt.Sprintf("Compare to version %s", p.ModeParameter)
		if p.TargetDate != nil {
			label += fmt.Sprintf(" (%s)", p.TargetDate.Format(labelDateLayout))
		}
		return label
	case PeriodModeDays:
		label := fmt.Sprintf("Compare over %s days (%s", p.ModeParameter, formatOptionalDate(p.TargetDate))
		if hasRef {
			label += fmt.Sprintf(", analysis of %s", refDate.Format(labelDateLayout))
		}
		return label + ")"
	case PeriodModePreviousAnalysis:
		label := "Compare to previous analysis"
		if hasRef {
			label += fmt.Sprintf(" (%s)", refDate.Format(labelDateLayout))
		}
		return label
	case PeriodModeDate:
		label := fmt.Sprintf("Compare to date %s", formatOptionalDate(p.TargetDate))
		if hasRef {
			label += fmt.Sprintf(" (analysis of %s)", refDate.Format(labelDateLayout))
		}
		return label
	default:
		return fmt.Sprintf("Compare to %s %s", p.Mode, p.ModeParameter)
	}
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(labelDateLayout)
}

// Period is a resolved comparison point for one resource. SnapshotDate is nil when
// the resource has no snapshot in the referenced analysis yet.
type Period struct {
	Index        int        `json:"index"`
	TargetDate   *time.Time `json:"target_date,omitempty"`
	SnapshotDate *time.Time `json:"snapshot_date,omitempty"`
}

// HasSnapshot reports whether a comparison is possible for this period.
func (p Period) HasSnapshot() bool {
	return p.SnapshotDate != nil
}
