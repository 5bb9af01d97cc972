// ABOUTME: Behavioural contract every crm.Store backend must satisfy
// ABOUTME: Backends call RunStoreContract from their own tests with a store factory
package crmtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store. Cleanup is registered on t.
type Factory func(t *testing.T) crm.Store

var base = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

// NewContact builds a valid contact with fresh id and timestamps.
func NewContact(name string) *models.Contact {
	return &models.Contact{
		ID:           uuid.New(),
		Name:         name,
		Relationship: models.RelationshipPeer,
		Frequency:    models.FrequencyMonthly,
		SyncStatus:   models.SyncStatusIdle,
		CreatedAt:    base,
		UpdatedAt:    base,
	}
}

// NewInteraction builds an interaction for contactID at ts.
func NewInteraction(contactID uuid.UUID, ts time.Time) *models.Interaction {
	return &models.Interaction{
		ID:         uuid.New(),
		ContactID:  contactID,
		Kind:       models.InteractionCall,
		Timestamp:  ts,
		Provenance: models.ProvenanceManual,
		CreatedAt:  base,
	}
}

func newSuggestion(id string, contactID uuid.UUID) *models.Suggestion {
	return &models.Suggestion{
		ID:          id,
		ContactID:   contactID,
		ContactName: "Jane Doe",
		Kind:        models.InteractionLinkedIn,
		Timestamp:   base.Add(-48 * time.Hour),
		Notes:       "Exchanged messages",
		DetectedAt:  base,
		Status:      models.SuggestionPending,
	}
}

// RunStoreContract exercises newStore against the crm.Store contract.
func RunStoreContract(t *testing.T, newStore Factory) {
	t.Run("ContactRoundTrip", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		c := NewContact("Jane Doe")
		c.Company = "Acme"
		c.Role = "CTO"
		c.Email = "jane@example.com"
		c.ProfileURL = "https://www.linkedin.com/in/janedoe"
		c.AutoSync = true
		c.Frequency = models.FrequencyQuarterly
		c.Relationship = models.RelationshipMentor
		require.NoError(t, store.CreateContact(ctx, c))

		got, err := store.GetContact(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, c.Name, got.Name)
		assert.Equal(t, c.Company, got.Company)
		assert.Equal(t, c.Role, got.Role)
		assert.Equal(t, c.Email, got.Email)
		assert.Equal(t, c.ProfileURL, got.ProfileURL)
		assert.True(t, got.AutoSync)
		assert.Equal(t, models.FrequencyQuarterly, got.Frequency)
		assert.Equal(t, models.RelationshipMentor, got.Relationship)
		assert.Equal(t, models.SyncStatusIdle, got.SyncStatus)
		assert.Nil(t, got.LastContactedAt)
		assert.True(t, got.CreatedAt.Equal(base))

		missing, err := store.GetContact(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("UpdateAndSyncStatus", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		a := NewContact("Alice")
		b := NewContact("Bob")
		require.NoError(t, store.CreateContact(ctx, a))
		require.NoError(t, store.CreateContact(ctx, b))

		a.Notes = "met at conference"
		a.Frequency = models.FrequencyUnset
		require.NoError(t, store.UpdateContact(ctx, a))

		got, err := store.GetContact(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "met at conference", got.Notes)
		assert.False(t, got.Frequency.IsSet())

		require.NoError(t, store.SetSyncStatus(ctx, []uuid.UUID{a.ID, b.ID}, models.SyncStatusSyncing))
		contacts, err := store.ListContacts(ctx)
		require.NoError(t, err)
		require.Len(t, contacts, 2)
		for _, c := range contacts {
			assert.Equal(t, models.SyncStatusSyncing, c.SyncStatus)
		}
	})

	t.Run("InteractionOrdering", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		c := NewContact("Jane Doe")
		other := NewContact("John Roe")
		require.NoError(t, store.CreateContact(ctx, c))
		require.NoError(t, store.CreateContact(ctx, other))

		old := NewInteraction(c.ID, base.Add(-10*24*time.Hour))
		tieFirst := NewInteraction(c.ID, base.Add(-2*24*time.Hour))
		tieSecond := NewInteraction(c.ID, base.Add(-2*24*time.Hour))
		newest := NewInteraction(other.ID, base.Add(-time.Hour))
		for _, in := range []*models.Interaction{old, tieFirst, tieSecond, newest} {
			require.NoError(t, store.AddInteraction(ctx, in))
		}

		history, err := store.InteractionsForContact(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, tieFirst.ID, history[0].ID)
		assert.Equal(t, tieSecond.ID, history[1].ID)
		assert.Equal(t, old.ID, history[2].ID)
		assert.True(t, history[2].Timestamp.Equal(old.Timestamp))

		all, err := store.ListInteractions(ctx)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, newest.ID, all[0].ID)

		recent, err := store.RecentInteractions(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, newest.ID, recent[0].ID)
		assert.Equal(t, tieFirst.ID, recent[1].ID)
	})

	t.Run("LastContactedAdvancesOnly", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		c := NewContact("Jane Doe")
		require.NoError(t, store.CreateContact(ctx, c))

		later := base.Add(-24 * time.Hour)
		require.NoError(t, store.AddInteraction(ctx, NewInteraction(c.ID, later)))
		require.NoError(t, store.AddInteraction(ctx, NewInteraction(c.ID, base.Add(-5*24*time.Hour))))

		got, err := store.GetContact(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastContactedAt)
		assert.True(t, got.LastContactedAt.Equal(later))
	})

	t.Run("DeleteInteractionIdempotent", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		c := NewContact("Jane Doe")
		require.NoError(t, store.CreateContact(ctx, c))
		in := NewInteraction(c.ID, base)
		require.NoError(t, store.AddInteraction(ctx, in))

		require.NoError(t, store.DeleteInteraction(ctx, in.ID))
		require.NoError(t, store.DeleteInteraction(ctx, in.ID))
		require.NoError(t, store.DeleteInteraction(ctx, uuid.New()))

		history, err := store.InteractionsForContact(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("DeleteContactCascades", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		c := NewContact("Jane Doe")
		keep := NewContact("John Roe")
		require.NoError(t, store.CreateContact(ctx, c))
		require.NoError(t, store.CreateContact(ctx, keep))
		require.NoError(t, store.AddInteraction(ctx, NewInteraction(c.ID, base)))
		require.NoError(t, store.AddInteraction(ctx, NewInteraction(keep.ID, base)))
		require.NoError(t, store.AddSuggestion(ctx, newSuggestion("01A", c.ID)))
		require.NoError(t, store.AddSuggestion(ctx, newSuggestion("01B", keep.ID)))

		require.NoError(t, store.DeleteContact(ctx, c.ID))
		require.NoError(t, store.DeleteContact(ctx, c.ID))

		got, err := store.GetContact(ctx, c.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		all, err := store.ListInteractions(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, keep.ID, all[0].ContactID)

		pending, err := store.PendingSuggestions(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "01B", pending[0].ID)
	})

	t.Run("SuggestionQueue", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		c := NewContact("Jane Doe")
		other := NewContact("John Roe")
		require.NoError(t, store.CreateContact(ctx, c))
		require.NoError(t, store.CreateContact(ctx, other))

		for _, s := range []*models.Suggestion{
			newSuggestion("01C", c.ID),
			newSuggestion("01A", other.ID),
			newSuggestion("01B", c.ID),
		} {
			require.NoError(t, store.AddSuggestion(ctx, s))
		}

		pending, err := store.PendingSuggestions(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 3)
		assert.Equal(t, []string{"01C", "01A", "01B"}, []string{pending[0].ID, pending[1].ID, pending[2].ID},
			"suggestions keep insertion order")

		forContact, err := store.SuggestionsForContact(ctx, c.ID)
		require.NoError(t, err)
		assert.Len(t, forContact, 2)

		sug, err := store.GetSuggestion(ctx, "01A")
		require.NoError(t, err)
		require.NotNil(t, sug)
		sug.Notes = "edited"
		sug.Kind = models.InteractionCoffee
		require.NoError(t, store.UpdateSuggestion(ctx, sug))

		got, err := store.GetSuggestion(ctx, "01A")
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Notes)
		assert.Equal(t, models.InteractionCoffee, got.Kind)

		missing, err := store.GetSuggestion(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, missing)

		require.NoError(t, store.DeleteSuggestion(ctx, "01C"))
		require.NoError(t, store.DeleteSuggestion(ctx, "01C"))
		pending, err = store.PendingSuggestions(ctx)
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})

	t.Run("AcceptSuggestionAtomic", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		c := NewContact("Jane Doe")
		require.NoError(t, store.CreateContact(ctx, c))
		require.NoError(t, store.AddSuggestion(ctx, newSuggestion("01A", c.ID)))

		in := NewInteraction(c.ID, base.Add(-48*time.Hour))
		in.Kind = models.InteractionLinkedIn
		in.Provenance = models.ProvenanceAutoDetected
		in.AutoLogged = true

		ok, err := store.AcceptSuggestion(ctx, "01A", in)
		require.NoError(t, err)
		assert.True(t, ok)

		history, err := store.InteractionsForContact(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, models.ProvenanceAutoDetected, history[0].Provenance)
		assert.True(t, history[0].AutoLogged)

		pending, err := store.PendingSuggestions(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)

		again := NewInteraction(c.ID, base)
		ok, err = store.AcceptSuggestion(ctx, "01A", again)
		require.NoError(t, err)
		assert.False(t, ok)

		history, err = store.InteractionsForContact(ctx, c.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1, "accepting a missing suggestion writes nothing")
	})

	t.Run("AcceptSuggestionForDeletedContact", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		// The contact was deleted after the suggestion was queued.
		gone := uuid.New()
		require.NoError(t, store.AddSuggestion(ctx, newSuggestion("01A", gone)))

		in := NewInteraction(gone, base.Add(-48*time.Hour))
		in.Provenance = models.ProvenanceAutoDetected
		ok, err := store.AcceptSuggestion(ctx, "01A", in)
		require.NoError(t, err)
		assert.False(t, ok)

		history, err := store.InteractionsForContact(ctx, gone)
		require.NoError(t, err)
		assert.Empty(t, history)
		all, err := store.ListInteractions(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		got, err := store.GetSuggestion(ctx, "01A")
		require.NoError(t, err)
		assert.Nil(t, got, "the orphaned suggestion is dropped")
	})
}
