// ABOUTME: Detector backed by Google Calendar meetings
// ABOUTME: Matches attendee emails to sync-eligible contacts and skips non-meetings
package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
	"google.golang.org/api/calendar/v3"
)

const (
	maxResults      = 250 // Google Calendar API max per page
	defaultLookback = 14 * 24 * time.Hour
)

// EventLister returns timed events starting at or after since.
type EventLister interface {
	ListEvents(ctx context.Context, since time.Time) ([]*calendar.Event, error)
}

type calendarEvents struct {
	svc *calendar.Service
}

// ListEvents runs a single events.list query on the primary calendar,
// following pagination.
func (c calendarEvents) ListEvents(ctx context.Context, since time.Time) ([]*calendar.Event, error) {
	call := c.svc.Events.List("primary").
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(since.Format(time.RFC3339)).
		TimeMax(time.Now().Format(time.RFC3339))

	var events []*calendar.Event
	err := call.Pages(ctx, func(page *calendar.Events) error {
		events = append(events, page.Items...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar events: %w", err)
	}
	return events, nil
}

// CalendarDetector turns recent meetings with eligible contacts into
// candidates: coffee when the event has a location, call otherwise.
type CalendarDetector struct {
	Events   EventLister
	Lookback time.Duration
	Now      func() time.Time
}

func NewCalendarDetector(svc *calendar.Service) *CalendarDetector {
	return &CalendarDetector{
		Events:   calendarEvents{svc: svc},
		Lookback: defaultLookback,
		Now:      time.Now,
	}
}

func (d *CalendarDetector) Detect(ctx context.Context, contacts []models.Contact) ([]models.DetectedInteraction, error) {
	matcher := newContactMatcher(contacts)
	if matcher.empty() {
		return nil, nil
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	lookback := d.Lookback
	if lookback <= 0 {
		lookback = defaultLookback
	}

	events, err := d.Events.ListEvents(ctx, now().Add(-lookback))
	if err != nil {
		return nil, err
	}

	var out []models.DetectedInteraction
	for _, event := range events {
		if skip, _ := shouldSkipEvent(event); skip {
			continue
		}
		start, err := time.Parse(time.RFC3339, event.Start.DateTime)
		if err != nil {
			continue
		}

		kind := models.InteractionCall
		if strings.TrimSpace(event.Location) != "" {
			kind = models.InteractionCoffee
		}

		seen := make(map[uuid.UUID]bool)
		for _, attendee := range event.Attendees {
			if attendee.Self {
				continue
			}
			contact, ok := matcher.findByEmail(attendee.Email)
			if !ok || seen[contact.ID] {
				continue
			}
			seen[contact.ID] = true
			out = append(out, models.DetectedInteraction{
				ContactID:   contact.ID,
				ContactName: contact.Name,
				Kind:        kind,
				Timestamp:   start,
				Notes:       event.Summary,
			})
		}
	}
	return out, nil
}

// shouldSkipEvent reports whether an event is not a real meeting.
// Returns (true, reason) if the event should be skipped, (false, "") otherwise.
func shouldSkipEvent(event *calendar.Event) (bool, string) {
	if event == nil {
		return true, "nil event"
	}
	if event.Start == nil {
		return true, "missing start time"
	}

	// All-day events set Start.Date instead of DateTime
	if event.Start.Date != "" || event.Start.DateTime == "" {
		return true, "all-day event"
	}

	if event.Status == "cancelled" {
		return true, "cancelled"
	}

	for _, attendee := range event.Attendees {
		if attendee.Self && attendee.ResponseStatus == "declined" {
			return true, "declined"
		}
	}

	attendeeCount := len(event.Attendees)
	if attendeeCount <= 1 {
		return true, fmt.Sprintf("solo event (%d attendee%s)", attendeeCount, pluralize(attendeeCount))
	}

	return false, ""
}

// pluralize returns "s" if count != 1, otherwise "".
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
