// ABOUTME: Suggestion queue for detected interactions awaiting review
// ABOUTME: Accept turns a suggestion into an interaction; dismiss discards it
package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
)

// SuggestionEdit holds the fields a reviewer may change. Nil means unchanged.
type SuggestionEdit struct {
	Kind      *models.InteractionKind
	Timestamp *time.Time
	Notes     *string
}

// AddSuggestion enqueues a detected interaction as a pending suggestion.
// No deduplication happens here; callers filter first. Candidates for
// contacts that no longer exist fail with ErrContactNotFound.
func (s *Service) AddSuggestion(ctx context.Context, d models.DetectedInteraction) (*models.Suggestion, error) {
	if !d.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidSuggestion, d.Kind)
	}
	if d.ContactID == uuid.Nil {
		return nil, fmt.Errorf("%w: contact id is required", ErrInvalidSuggestion)
	}
	if _, err := s.GetContact(ctx, d.ContactID); err != nil {
		return nil, err
	}

	now := s.Now()
	sug := &models.Suggestion{
		ID:          s.newSuggestionID(now),
		ContactID:   d.ContactID,
		ContactName: d.ContactName,
		Kind:        d.Kind,
		Timestamp:   d.Timestamp,
		Notes:       d.Notes,
		DetectedAt:  now,
		Status:      models.SuggestionPending,
	}
	if err := s.store.AddSuggestion(ctx, sug); err != nil {
		return nil, fmt.Errorf("failed to add suggestion: %w", err)
	}
	return sug, nil
}

// EditSuggestion applies edit to a pending suggestion. Unknown or already
// reviewed ids report false with no error.
func (s *Service) EditSuggestion(ctx context.Context, id string, edit SuggestionEdit) (bool, error) {
	if edit.Kind != nil && !edit.Kind.Valid() {
		return false, fmt.Errorf("%w: unknown kind %q", ErrInvalidSuggestion, *edit.Kind)
	}

	sug, err := s.store.GetSuggestion(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to get suggestion: %w", err)
	}
	if sug == nil || sug.Status != models.SuggestionPending {
		return false, nil
	}

	if edit.Kind != nil {
		sug.Kind = *edit.Kind
	}
	if edit.Timestamp != nil {
		sug.Timestamp = *edit.Timestamp
	}
	if edit.Notes != nil {
		sug.Notes = strings.TrimSpace(*edit.Notes)
	}

	if err := s.store.UpdateSuggestion(ctx, sug); err != nil {
		return false, fmt.Errorf("failed to update suggestion: %w", err)
	}
	return true, nil
}

// AcceptSuggestion records the suggestion as an auto-detected interaction
// and removes it from the queue. Unknown ids return (nil, nil), as do
// suggestions whose contact was deleted; those are dropped.
func (s *Service) AcceptSuggestion(ctx context.Context, id string) (*models.Interaction, error) {
	sug, err := s.store.GetSuggestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	if sug == nil || sug.Status != models.SuggestionPending {
		return nil, nil
	}

	now := s.Now()
	in := &models.Interaction{
		ID:         uuid.New(),
		ContactID:  sug.ContactID,
		Kind:       sug.Kind,
		Timestamp:  sug.Timestamp,
		Notes:      sug.Notes,
		Provenance: models.ProvenanceAutoDetected,
		AutoLogged: true,
		CreatedAt:  now,
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = now
	}

	ok, err := s.store.AcceptSuggestion(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to accept suggestion: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return in, nil
}

// DismissSuggestion discards a suggestion. Unknown ids are a no-op.
func (s *Service) DismissSuggestion(ctx context.Context, id string) error {
	if err := s.store.DeleteSuggestion(ctx, id); err != nil {
		return fmt.Errorf("failed to dismiss suggestion: %w", err)
	}
	return nil
}

// PendingSuggestions returns the queue in detection order.
func (s *Service) PendingSuggestions(ctx context.Context) ([]models.Suggestion, error) {
	pending, err := s.store.PendingSuggestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return pending, nil
}

func (s *Service) SuggestionsForContact(ctx context.Context, contactID uuid.UUID) ([]models.Suggestion, error) {
	pending, err := s.store.SuggestionsForContact(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return pending, nil
}
