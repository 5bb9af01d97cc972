// ABOUTME: Dashboard helpers built on the cadence evaluator
// ABOUTME: Annotates contacts, sorts them by urgency and filters by view
package followup

import (
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/rolodex/models"
)

// View selects a subset of annotated contacts.
type View string

const (
	ViewAll    View = "all"
	ViewDue    View = "due"
	ViewRecent View = "recent"
)

func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case "":
		return ViewAll, nil
	case ViewAll, ViewDue, ViewRecent:
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q (want all, due or recent)", s)
}

// Annotate evaluates every contact against the full interaction set.
func (e Evaluator) Annotate(contacts []models.Contact, interactions []models.Interaction, now time.Time) []models.ContactStatus {
	out := make([]models.ContactStatus, 0, len(contacts))
	for i := range contacts {
		c := contacts[i]
		res := e.Evaluate(&c, interactions, now)

		cs := models.ContactStatus{Contact: c, DueStatus: res.Status}
		if res.Reference != nil {
			days := res.DaysSince
			cs.DaysSince = &days
		}
		if last := LastInteraction(c.ID, interactions); last != nil {
			in := *last
			cs.LastInteraction = &in
		}
		out = append(out, cs)
	}
	return out
}

// SortByUrgency orders statuses overdue first, then due soon, on track and
// finally contacts without a cadence. Equal statuses keep their input order.
func SortByUrgency(statuses []models.ContactStatus) {
	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].DueStatus.Priority() < statuses[j].DueStatus.Priority()
	})
}

// Filter returns the statuses visible in view. The due view never includes
// contacts without a cadence.
func Filter(statuses []models.ContactStatus, view View) []models.ContactStatus {
	if view == ViewAll || view == "" {
		return statuses
	}
	out := make([]models.ContactStatus, 0, len(statuses))
	for _, s := range statuses {
		switch view {
		case ViewDue:
			if s.DueStatus == models.DueOverdue || s.DueStatus == models.DueSoon {
				out = append(out, s)
			}
		case ViewRecent:
			if s.DueStatus == models.DueOnTrack {
				out = append(out, s)
			}
		}
	}
	return out
}

// Counts tallies statuses for the dashboard header.
type Counts struct {
	Total       int `json:"total"`
	Overdue     int `json:"overdue"`
	DueSoon     int `json:"due_soon"`
	OnTrack     int `json:"on_track"`
	NoFrequency int `json:"no_frequency"`
}

func Count(statuses []models.ContactStatus) Counts {
	c := Counts{Total: len(statuses)}
	for _, s := range statuses {
		switch s.DueStatus {
		case models.DueOverdue:
			c.Overdue++
		case models.DueSoon:
			c.DueSoon++
		case models.DueOnTrack:
			c.OnTrack++
		default:
			c.NoFrequency++
		}
	}
	return c
}
