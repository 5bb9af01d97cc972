package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harperreed/rolodex/crm"
)

// Stats counts what a copy wrote, or would write in a dry run.
type Stats struct {
	Contacts        int
	SkippedContacts int
	Interactions    int
	Suggestions     int
}

// copyAll copies contacts, their interactions and pending suggestions from
// src into dst. Contacts that already exist in dst keep their dst data.
func copyAll(ctx context.Context, src, dst crm.Store, dryRun bool) (Stats, error) {
	var stats Stats

	contacts, err := src.ListContacts(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list contacts: %w", err)
	}

	copied := make(map[uuid.UUID]bool, len(contacts))
	for i := range contacts {
		c := contacts[i]
		existing, err := dst.GetContact(ctx, c.ID)
		if err != nil {
			return stats, fmt.Errorf("failed to check contact %s: %w", c.ID, err)
		}
		if existing != nil {
			stats.SkippedContacts++
			continue
		}
		if !dryRun {
			if err := dst.CreateContact(ctx, &c); err != nil {
				return stats, fmt.Errorf("failed to copy contact %s: %w", c.ID, err)
			}
		}
		copied[c.ID] = true
		stats.Contacts++
	}

	interactions, err := src.ListInteractions(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list interactions: %w", err)
	}
	// Oldest first so ties keep their original insertion order.
	for i := len(interactions) - 1; i >= 0; i-- {
		in := interactions[i]
		if !copied[in.ContactID] {
			continue
		}
		if !dryRun {
			if err := dst.AddInteraction(ctx, &in); err != nil {
				return stats, fmt.Errorf("failed to copy interaction %s: %w", in.ID, err)
			}
		}
		stats.Interactions++
	}

	pending, err := src.PendingSuggestions(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list suggestions: %w", err)
	}
	for i := range pending {
		sug := pending[i]
		existing, err := dst.GetSuggestion(ctx, sug.ID)
		if err != nil {
			return stats, fmt.Errorf("failed to check suggestion %s: %w", sug.ID, err)
		}
		if existing != nil {
			continue
		}
		// Suggestions for contacts that were skipped still belong to them.
		if !copied[sug.ContactID] {
			owner, err := dst.GetContact(ctx, sug.ContactID)
			if err != nil {
				return stats, err
			}
			if owner == nil {
				continue
			}
		}
		if !dryRun {
			if err := dst.AddSuggestion(ctx, &sug); err != nil {
				return stats, fmt.Errorf("failed to copy suggestion %s: %w", sug.ID, err)
			}
		}
		stats.Suggestions++
	}

	return stats, nil
}
