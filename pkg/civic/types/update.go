package types

import "time"

// ReportUpdate holds the fields of a partial report update. Nil fields are left untouched.
// Media and upvoters have their own operations and never appear here.
type ReportUpdate struct {
	Title         *string
	Description   *string
	Coordinates   []Coordinates
	Status        *ReportStatus
	LastUpdatedAt time.Time
}

// SolutionUpdate holds the fields of a partial solution update. Nil fields are left untouched.
type SolutionUpdate struct {
	Title         *string
	Description   *string
	Status        *SolutionStatus
	LastUpdatedAt time.Time
}
