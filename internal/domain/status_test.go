package domain

import "testing"

func TestCanTransition(t *testing.T) {
	testCases := []struct {
		from PostingStatus
		to   PostingStatus
		want bool
	}{
		{StatusPartiallyProceeded, StatusWaitingForReview, true},
		{StatusPartiallyProceeded, StatusRejected, true},
		{StatusPartiallyProceeded, StatusExpired, true},
		{StatusPartiallyProceeded, StatusListed, false},
		{StatusWaitingForReview, StatusApproved, true},
		{StatusWaitingForReview, StatusListed, false},
		{StatusApproved, StatusListed, true},
		{StatusListed, StatusApproved, false},
		{StatusRejected, StatusWaitingForReview, false},
		{StatusExpired, StatusPartiallyProceeded, false},
	}

	for _, tc := range testCases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestParsePostingStatus(t *testing.T) {
	if _, err := ParsePostingStatus("WAIT_FOR_REVIEW"); err != nil {
		t.Errorf("ParsePostingStatus(WAIT_FOR_REVIEW) error: %v", err)
	}
	if _, err := ParsePostingStatus("PENDING"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []PostingStatus{StatusListed, StatusRejected, StatusExpired} {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = false, want true", s)
		}
	}
	for _, s := range []PostingStatus{StatusPartiallyProceeded, StatusWaitingForReview, StatusApproved} {
		if IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = true, want false", s)
		}
	}
}
