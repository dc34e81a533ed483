package domain

import "fmt"

// PostingStatus represents the lifecycle state of a scraped job posting.
//
// Valid status graph:
//
//	PARTIALLY_PROCEEDED ──► WAIT_FOR_REVIEW ──► APPROVED ──► LISTED
//	        │
//	        ├──► REJECTED
//	        └──► EXPIRED
//
// LISTED, REJECTED and EXPIRED are terminal states.
type PostingStatus string

const (
	StatusPartiallyProceeded PostingStatus = "PARTIALLY_PROCEEDED"
	StatusWaitingForReview   PostingStatus = "WAIT_FOR_REVIEW"
	StatusApproved           PostingStatus = "APPROVED"
	StatusListed             PostingStatus = "LISTED"
	StatusRejected           PostingStatus = "REJECTED"
	StatusExpired            PostingStatus = "EXPIRED"
)

// validTransitions lists every allowed from/to pair.
var validTransitions = map[PostingStatus][]PostingStatus{
	StatusPartiallyProceeded: {StatusWaitingForReview, StatusRejected, StatusExpired},
	StatusWaitingForReview:   {StatusApproved},
	StatusApproved:           {StatusListed},
	// LISTED, REJECTED and EXPIRED are terminal, no outgoing transitions
}

// ParsePostingStatus converts a raw string to a PostingStatus, returning an
// error for unknown values.
func ParsePostingStatus(s string) (PostingStatus, error) {
	st := PostingStatus(s)
	switch st {
	case StatusPartiallyProceeded, StatusWaitingForReview, StatusApproved,
		StatusListed, StatusRejected, StatusExpired:
		return st, nil
	}
	return "", fmt.Errorf("unknown posting status %q", s)
}

// CanTransition returns true when the move is permitted by the
// lifecycle state machine.
func CanTransition(from, to PostingStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func IsTerminal(s PostingStatus) bool {
	_, ok := validTransitions[s]
	return !ok
}
