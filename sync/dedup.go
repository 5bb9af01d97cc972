// ABOUTME: Duplicate detection for candidate interactions
// ABOUTME: A candidate duplicates an interaction with the same contact and kind within an hour
package sync

import (
	"time"

	"github.com/harperreed/rolodex/models"
)

// DuplicateWindow is the exclusive bound on the time difference between a
// candidate and an existing interaction for them to count as the same event.
const DuplicateWindow = time.Hour

// IsDuplicate reports whether candidate matches any existing interaction.
func IsDuplicate(candidate models.DetectedInteraction, existing []models.Interaction) bool {
	for _, in := range existing {
		if in.ContactID != candidate.ContactID || in.Kind != candidate.Kind {
			continue
		}
		delta := candidate.Timestamp.Sub(in.Timestamp)
		if delta < 0 {
			delta = -delta
		}
		if delta < DuplicateWindow {
			return true
		}
	}
	return false
}

// FilterDuplicates splits candidates into those to keep and those that
// duplicate existing interactions. Candidates are not compared with each other.
func FilterDuplicates(candidates []models.DetectedInteraction, existing []models.Interaction) (kept, dropped []models.DetectedInteraction) {
	for _, c := range candidates {
		if IsDuplicate(c, existing) {
			dropped = append(dropped, c)
			continue
		}
		kept = append(kept, c)
	}
	return kept, dropped
}
