// ABOUTME: Calendar API client setup for the calendar detector
// ABOUTME: Builds an authenticated Calendar service whose token refreshes persist
package sync

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// NewCalendarClient creates a Google Calendar API service from token. The
// token refreshes against ctx for the life of the service and each refresh
// is saved to file.
func NewCalendarClient(ctx context.Context, token *oauth2.Token, file TokenFile) (*calendar.Service, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}

	refreshing := oauth2.ReuseTokenSource(token, NewOAuthConfig().TokenSource(ctx, token))
	client := oauth2.NewClient(ctx, newSavingTokenSource(refreshing, file, token))

	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return service, nil
}

// CalendarDetectorFromToken loads the saved token and wires a calendar
// detector. It fails when `sync init` has not been run.
func CalendarDetectorFromToken(ctx context.Context) (*CalendarDetector, error) {
	file := DefaultTokenFile()
	token, err := file.Load()
	if err != nil {
		return nil, fmt.Errorf("calendar detector needs a Google token (run 'rolodex sync init'): %w", err)
	}
	svc, err := NewCalendarClient(ctx, token, file)
	if err != nil {
		return nil, err
	}
	return NewCalendarDetector(svc), nil
}
