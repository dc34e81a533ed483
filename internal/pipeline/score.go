package pipeline

import (
	"strings"

	"github.com/relohub/relohub/internal/domain"
)

// Score rates a posting against the relocation keyword heuristic using
// case-insensitive substring matching:
//
//	+1 per keyword found in the description
//	+2 per keyword found in the title
//	+3 per complement found in the description, once any keyword hit it
//	+5 per complement found in the title, once any keyword hit it
//
// Every keyword and complement is checked; matching never short-circuits.
// Pure function, deterministic, no side effects.
func Score(title, description string, keywords, complements []string) int {
	points := 0
	descriptionHit, titleHit := false, false
	lowerTitle, lowerDescription := strings.ToLower(title), strings.ToLower(description)

	for _, key := range keywords {
		key = strings.ToLower(key)

		if strings.Contains(lowerDescription, key) {
			descriptionHit = true
			points++
		}
		if strings.Contains(lowerTitle, key) {
			titleHit = true
			points += 2
		}
	}

	for _, complement := range complements {
		complement = strings.ToLower(complement)

		if descriptionHit && strings.Contains(lowerDescription, complement) {
			points += 3
		}
		if titleHit && strings.Contains(lowerTitle, complement) {
			points += 5
		}
	}

	return points
}

// StatusForPoints maps a relevance score to the resulting lifecycle status:
// anything above zero goes to review, zero is rejected.
func StatusForPoints(points int) domain.PostingStatus {
	if points > 0 {
		return domain.StatusWaitingForReview
	}
	return domain.StatusRejected
}
