package types

import "fmt"

type ReportStatus string

const (
	REPORT_STATUS_PROPOSED     ReportStatus = "proposed"
	REPORT_STATUS_CONSIDERED   ReportStatus = "considered"
	REPORT_STATUS_IMPLEMENTING ReportStatus = "implementing"
	REPORT_STATUS_IMPLEMENTED  ReportStatus = "implemented"
)

// ReportStatusValues is the only list of valid report statuses. Validation reads it.
func ReportStatusValues() []ReportStatus {
	return []ReportStatus{
		REPORT_STATUS_PROPOSED,
		REPORT_STATUS_CONSIDERED,
		REPORT_STATUS_IMPLEMENTING,
		REPORT_STATUS_IMPLEMENTED,
	}
}

func (s ReportStatus) IsValid() bool {
	for _, v := range ReportStatusValues() {
		if s == v {
			return true
		}
	}
	return false
}

type SolutionStatus string

const (
	SOLUTION_STATUS_PROPOSED     SolutionStatus = "proposed"
	SOLUTION_STATUS_CONSIDERED   SolutionStatus = "considered"
	SOLUTION_STATUS_IMPLEMENTING SolutionStatus = "implementing"
	SOLUTION_STATUS_IMPLEMENTED  SolutionStatus = "implemented"
)

// SolutionStatusValues is kept separate from ReportStatusValues on purpose, the two
// vocabularies evolve independently.
func SolutionStatusValues() []SolutionStatus {
	return []SolutionStatus{
		SOLUTION_STATUS_PROPOSED,
		SOLUTION_STATUS_CONSIDERED,
		SOLUTION_STATUS_IMPLEMENTING,
		SOLUTION_STATUS_IMPLEMENTED,
	}
}

func (s SolutionStatus) IsValid() bool {
	for _, v := range SolutionStatusValues() {
		if s == v {
			return true
		}
	}
	return false
}

type VoteAction int

const (
	VOTE_ACTION_UP VoteAction = iota + 1
	VOTE_ACTION_DOWN
)

func ParseVoteAction(value string) (VoteAction, error) {
	switch value {
	case "up":
		return VOTE_ACTION_UP, nil
	case "down":
		return VOTE_ACTION_DOWN, nil
	default:
		return 0, fmt.Errorf("unknown vote action %q", value)
	}
}

func (a VoteAction) String() string {
	switch a {
	case VOTE_ACTION_UP:
		return "up"
	case VOTE_ACTION_DOWN:
		return "down"
	default:
		return "unknown"
	}
}
