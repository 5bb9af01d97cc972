// ABOUTME: Due-status computation for contacts against their engagement cadence
// ABOUTME: Pure functions; the evaluation instant is always passed in explicitly
package followup

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
)

const day = 24 * time.Hour

// dueSoonDay is 80% of a day; a contact is due soon after 0.8 of its cadence.
const dueSoonDay = day * 4 / 5

// FallbackPolicy decides the reference point when a contact has no interactions.
type FallbackPolicy string

const (
	// FallbackNone treats a contact without interactions as never contacted.
	FallbackNone FallbackPolicy = "none"
	// FallbackLastContacted uses Contact.LastContactedAt when set.
	FallbackLastContacted FallbackPolicy = "last-contacted"
	// FallbackCreatedAt uses the contact's creation time.
	FallbackCreatedAt FallbackPolicy = "created"
)

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(s); p {
	case "":
		return FallbackNone, nil
	case FallbackNone, FallbackLastContacted, FallbackCreatedAt:
		return p, nil
	}
	return "", fmt.Errorf("unknown due fallback policy %q", s)
}

// Result is the outcome of evaluating one contact.
type Result struct {
	Status     models.DueStatus
	TargetDays int
	// DaysSince is the number of whole days since Reference, truncated.
	// Zero when Reference is nil.
	DaysSince int
	Reference *time.Time
}

// Evaluator computes due statuses under a fallback policy.
type Evaluator struct {
	Fallback FallbackPolicy
}

// DueStatus evaluates a contact with the default policy (no fallback).
func DueStatus(contact *models.Contact, interactions []models.Interaction, now time.Time) models.DueStatus {
	return Evaluator{Fallback: FallbackNone}.Evaluate(contact, interactions, now).Status
}

// Evaluate classifies contact given the full interaction set; interactions
// belonging to other contacts are ignored.
func (e Evaluator) Evaluate(contact *models.Contact, interactions []models.Interaction, now time.Time) Result {
	target, ok := contact.Frequency.Days()
	if !ok {
		return Result{Status: models.DueNoFrequency}
	}

	res := Result{TargetDays: target}

	ref := e.reference(contact, interactions)
	if ref == nil {
		res.Status = models.DueOverdue
		return res
	}
	res.Reference = ref

	elapsed := now.Sub(*ref)
	res.DaysSince = int(elapsed / day)

	// Thresholds compare durations so the fractional due-soon boundary
	// (5.6 days on a weekly cadence) is hit exactly. For the integral
	// overdue boundary this equals comparing truncated whole days.
	switch {
	case elapsed >= time.Duration(target)*day:
		res.Status = models.DueOverdue
	case elapsed >= time.Duration(target)*dueSoonDay:
		res.Status = models.DueSoon
	default:
		res.Status = models.DueOnTrack
	}
	return res
}

func (e Evaluator) reference(contact *models.Contact, interactions []models.Interaction) *time.Time {
	if last := LastInteraction(contact.ID, interactions); last != nil {
		ts := last.Timestamp
		return &ts
	}

	switch e.Fallback {
	case FallbackLastContacted:
		if contact.LastContactedAt != nil {
			ts := *contact.LastContactedAt
			return &ts
		}
	case FallbackCreatedAt:
		if !contact.CreatedAt.IsZero() {
			ts := contact.CreatedAt
			return &ts
		}
	}
	return nil
}

// LastInteraction returns the most recent interaction for contactID by
// timestamp. On equal timestamps the earlier element in the slice wins.
func LastInteraction(contactID uuid.UUID, interactions []models.Interaction) *models.Interaction {
	var last *models.Interaction
	for i := range interactions {
		in := &interactions[i]
		if in.ContactID != contactID {
			continue
		}
		if last == nil || in.Timestamp.After(last.Timestamp) {
			last = in
		}
	}
	return last
}
