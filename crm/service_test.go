// ABOUTME: Tests for contact, interaction and suggestion operations
// ABOUTME: Runs the service against an in-memory SQLite store
package crm_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/db"
	"github.com/harperreed/rolodex/followup"
	"github.com/harperreed/rolodex/models"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T) *crm.Service {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	require.NoError(t, db.InitSchema(conn))
	t.Cleanup(func() { _ = conn.Close() })

	svc := crm.NewService(db.NewStore(conn))
	svc.Now = func() time.Time { return now }
	return svc
}

func addContact(t *testing.T, svc *crm.Service, name string, freq models.Frequency) *models.Contact {
	t.Helper()
	c := &models.Contact{Name: name, Frequency: freq}
	require.NoError(t, svc.CreateContact(context.Background(), c))
	return c
}

func TestCreateContactDefaults(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	c := &models.Contact{Name: "  Jane Doe  ", AutoSync: true}
	require.NoError(t, svc.CreateContact(ctx, c))

	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, models.RelationshipPeer, c.Relationship)
	assert.Equal(t, models.SyncStatusIdle, c.SyncStatus)
	assert.False(t, c.AutoSync, "auto-sync needs a profile URL")
	assert.True(t, c.CreatedAt.Equal(now))
}

func TestCreateContactValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	err := svc.CreateContact(ctx, &models.Contact{Name: "   "})
	assert.ErrorIs(t, err, crm.ErrInvalidContact)

	err = svc.CreateContact(ctx, &models.Contact{Name: "Jane", Relationship: "boss"})
	assert.ErrorIs(t, err, crm.ErrInvalidContact)

	contacts, err := svc.ListContacts(ctx)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestUpdateContactClearsAutoSync(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	c := &models.Contact{Name: "Jane Doe", ProfileURL: "https://www.linkedin.com/in/janedoe", AutoSync: true}
	require.NoError(t, svc.CreateContact(ctx, c))
	require.NoError(t, svc.SetSyncStatus(ctx, []uuid.UUID{c.ID}, models.SyncStatusEnabled))

	updated, err := svc.GetContact(ctx, c.ID)
	require.NoError(t, err)
	updated.ProfileURL = ""
	require.NoError(t, svc.UpdateContact(ctx, updated))

	got, err := svc.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, got.AutoSync)
	assert.Equal(t, models.SyncStatusIdle, got.SyncStatus)
	assert.False(t, got.SyncEligible())
}

func TestUpdateContactKeepsSyncStatus(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	c := &models.Contact{Name: "Jane Doe", ProfileURL: "https://www.linkedin.com/in/janedoe", AutoSync: true}
	require.NoError(t, svc.CreateContact(ctx, c))

	// Read before a cycle marks the contact errored, saved after.
	stale, err := svc.GetContact(ctx, c.ID)
	require.NoError(t, err)
	require.NoError(t, svc.SetSyncStatus(ctx, []uuid.UUID{c.ID}, models.SyncStatusError))

	stale.Notes = "Met at the conference"
	require.NoError(t, svc.UpdateContact(ctx, stale))

	got, err := svc.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Met at the conference", got.Notes)
	assert.Equal(t, models.SyncStatusError, got.SyncStatus)
	assert.True(t, got.AutoSync)
}

func TestUpdateMissingContact(t *testing.T) {
	svc := setupService(t)
	err := svc.UpdateContact(context.Background(), &models.Contact{ID: uuid.New(), Name: "Ghost"})
	assert.ErrorIs(t, err, crm.ErrContactNotFound)
}

func TestResolveContact(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	jane := addContact(t, svc, "Jane Doe", models.FrequencyMonthly)

	got, err := svc.ResolveContact(ctx, "jane doe")
	require.NoError(t, err)
	assert.Equal(t, jane.ID, got.ID)

	got, err = svc.ResolveContact(ctx, jane.ID.String())
	require.NoError(t, err)
	assert.Equal(t, jane.ID, got.ID)

	_, err = svc.ResolveContact(ctx, "nobody")
	assert.ErrorIs(t, err, crm.ErrContactNotFound)

	addContact(t, svc, "JANE DOE", models.FrequencyUnset)
	_, err = svc.ResolveContact(ctx, "Jane Doe")
	assert.ErrorIs(t, err, crm.ErrAmbiguousContact)
}

func TestLogInteractionDefaults(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	c := addContact(t, svc, "Jane Doe", models.FrequencyWeekly)

	in := &models.Interaction{ContactID: c.ID, Kind: models.InteractionCoffee, Notes: " lunch "}
	require.NoError(t, svc.LogInteraction(ctx, in))

	assert.NotEqual(t, uuid.Nil, in.ID)
	assert.True(t, in.Timestamp.Equal(now), "timestamp defaults to now")
	assert.Equal(t, models.ProvenanceManual, in.Provenance)
	assert.Equal(t, "lunch", in.Notes)

	got, err := svc.GetContact(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastContactedAt)
	assert.True(t, got.LastContactedAt.Equal(now))
}

func TestLogInteractionValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	c := addContact(t, svc, "Jane Doe", models.FrequencyWeekly)

	err := svc.LogInteraction(ctx, &models.Interaction{ContactID: c.ID, Kind: "fax"})
	assert.ErrorIs(t, err, crm.ErrInvalidInteraction)

	err = svc.LogInteraction(ctx, &models.Interaction{ContactID: uuid.New(), Kind: models.InteractionCall})
	assert.ErrorIs(t, err, crm.ErrContactNotFound)

	all, err := svc.AllInteractions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLogThenDeleteRestoresStatus(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	c := addContact(t, svc, "Jane Doe", models.FrequencyWeekly)

	before, err := svc.ContactStatus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DueOverdue, before.DueStatus)

	in := &models.Interaction{ContactID: c.ID, Kind: models.InteractionCall}
	require.NoError(t, svc.LogInteraction(ctx, in))

	during, err := svc.ContactStatus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DueOnTrack, during.DueStatus)

	require.NoError(t, svc.DeleteInteraction(ctx, in.ID))
	require.NoError(t, svc.DeleteInteraction(ctx, in.ID), "second delete is a no-op")

	after, err := svc.ContactStatus(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, before.DueStatus, after.DueStatus)
}

func TestHistoryAndLastInteraction(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	c := addContact(t, svc, "Jane Doe", models.FrequencyMonthly)

	last, err := svc.LastInteraction(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, last)

	for _, ago := range []time.Duration{10, 2, 5} {
		require.NoError(t, svc.LogInteraction(ctx, &models.Interaction{
			ContactID: c.ID,
			Kind:      models.InteractionEmail,
			Timestamp: now.Add(-ago * 24 * time.Hour),
		}))
	}

	history, err := svc.History(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].Timestamp.After(history[1].Timestamp))
	assert.True(t, history[1].Timestamp.After(history[2].Timestamp))

	last, err = svc.LastInteraction(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Timestamp.Equal(now.Add(-2*24*time.Hour)))

	recent, err := svc.RecentInteractions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestDashboardViews(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	jane := addContact(t, svc, "Jane Doe", models.FrequencyMonthly)
	bob := addContact(t, svc, "Bob", models.FrequencyWeekly)
	addContact(t, svc, "Nobody", models.FrequencyUnset)

	require.NoError(t, svc.LogInteraction(ctx, &models.Interaction{
		ContactID: jane.ID, Kind: models.InteractionCall, Timestamp: now.Add(-25 * 24 * time.Hour),
	}))
	require.NoError(t, svc.LogInteraction(ctx, &models.Interaction{
		ContactID: bob.ID, Kind: models.InteractionCall, Timestamp: now.Add(-24 * time.Hour),
	}))

	all, counts, err := svc.Dashboard(ctx, followup.ViewAll)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Jane Doe", all[0].Contact.Name)
	assert.Equal(t, models.DueSoon, all[0].DueStatus)
	assert.Equal(t, models.DueNoFrequency, all[2].DueStatus)
	assert.Equal(t, followup.Counts{Total: 3, DueSoon: 1, OnTrack: 1, NoFrequency: 1}, counts)

	due, _, err := svc.Dashboard(ctx, followup.ViewDue)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, jane.ID, due[0].Contact.ID)

	recent, _, err := svc.Dashboard(ctx, followup.ViewRecent)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, bob.ID, recent[0].Contact.ID)
}

func TestDeleteContactCascade(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	c := addContact(t, svc, "Jane Doe", models.FrequencyMonthly)

	require.NoError(t, svc.LogInteraction(ctx, &models.Interaction{ContactID: c.ID, Kind: models.InteractionCall}))
	_, err := svc.AddSuggestion(ctx, models.DetectedInteraction{ContactID: c.ID, Kind: models.InteractionLinkedIn, Timestamp: now})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteContact(ctx, c.ID))

	history, err := svc.History(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
	pending, err := svc.PendingSuggestions(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	_, err = svc.GetContact(ctx, c.ID)
	assert.ErrorIs(t, err, crm.ErrContactNotFound)
}
