// ABOUTME: Interaction log operations
// ABOUTME: Interactions are append-only; timestamps default to the current instant
package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
)

// LogInteraction records an interaction for an existing contact. A zero
// Timestamp means now and an empty Provenance means manual.
func (s *Service) LogInteraction(ctx context.Context, in *models.Interaction) error {
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidInteraction, in.Kind)
	}
	if in.Provenance == "" {
		in.Provenance = models.ProvenanceManual
	}
	if _, err := s.GetContact(ctx, in.ContactID); err != nil {
		return err
	}

	now := s.Now()
	in.ID = uuid.New()
	in.Notes = strings.TrimSpace(in.Notes)
	if in.Timestamp.IsZero() {
		in.Timestamp = now
	}
	in.CreatedAt = now

	if err := s.store.AddInteraction(ctx, in); err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}
	return nil
}

// DeleteInteraction is a no-op for unknown ids.
func (s *Service) DeleteInteraction(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteInteraction(ctx, id); err != nil {
		return fmt.Errorf("failed to delete interaction: %w", err)
	}
	return nil
}

// History returns one contact's interactions, newest first.
func (s *Service) History(ctx context.Context, contactID uuid.UUID) ([]models.Interaction, error) {
	history, err := s.store.InteractionsForContact(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interaction history: %w", err)
	}
	return history, nil
}

// LastInteraction returns nil when the contact has no history.
func (s *Service) LastInteraction(ctx context.Context, contactID uuid.UUID) (*models.Interaction, error) {
	history, err := s.History(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return &history[0], nil
}

func (s *Service) AllInteractions(ctx context.Context) ([]models.Interaction, error) {
	all, err := s.store.ListInteractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	return all, nil
}

// RecentInteractions is the activity feed across all contacts.
func (s *Service) RecentInteractions(ctx context.Context, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = 20
	}
	recent, err := s.store.RecentInteractions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent interactions: %w", err)
	}
	return recent, nil
}
