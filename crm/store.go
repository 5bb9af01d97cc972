// ABOUTME: Persistence boundary shared by the SQLite and Charm KV backends
// ABOUTME: Stores persist what they are given; ids and defaults come from Service
package crm

import (
	"context"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
)

// Store is implemented by db.Store and charm.Store.
//
// Single-entity getters return (nil, nil) when the entity does not exist.
// Deletes of missing entities are no-ops. Interaction lists are ordered by
// timestamp descending with ties broken by insertion order; suggestion lists
// are in insertion order.
type Store interface {
	CreateContact(ctx context.Context, c *models.Contact) error
	GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)
	UpdateContact(ctx context.Context, c *models.Contact) error
	// DeleteContact removes the contact with its interactions and
	// suggestions in one atomic step.
	DeleteContact(ctx context.Context, id uuid.UUID) error
	SetSyncStatus(ctx context.Context, ids []uuid.UUID, status models.SyncStatus) error

	// AddInteraction also advances the contact's LastContactedAt when the
	// interaction is later than the stored value.
	AddInteraction(ctx context.Context, in *models.Interaction) error
	DeleteInteraction(ctx context.Context, id uuid.UUID) error
	ListInteractions(ctx context.Context) ([]models.Interaction, error)
	InteractionsForContact(ctx context.Context, contactID uuid.UUID) ([]models.Interaction, error)
	RecentInteractions(ctx context.Context, limit int) ([]models.Interaction, error)

	AddSuggestion(ctx context.Context, s *models.Suggestion) error
	GetSuggestion(ctx context.Context, id string) (*models.Suggestion, error)
	UpdateSuggestion(ctx context.Context, s *models.Suggestion) error
	DeleteSuggestion(ctx context.Context, id string) error
	PendingSuggestions(ctx context.Context) ([]models.Suggestion, error)
	SuggestionsForContact(ctx context.Context, contactID uuid.UUID) ([]models.Suggestion, error)
	// AcceptSuggestion inserts in and removes the suggestion atomically.
	// It reports false without writing anything when the suggestion is gone.
	AcceptSuggestion(ctx context.Context, id string, in *models.Interaction) (bool, error)

	Close() error
}
