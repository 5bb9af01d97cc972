// ABOUTME: Tests for the MCP tool, resource and prompt handlers
// ABOUTME: Drives handlers directly against an in-memory SQLite service
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/db"
	"github.com/harperreed/rolodex/models"
	rsync "github.com/harperreed/rolodex/sync"
	_ "github.com/mattn/go-sqlite3"
	"github.com/modelcontextprotocol/go-sdk/mcp"
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

func strPtr(s string) *string { return &s }

func TestAddAndListContacts(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	h := NewContactHandlers(svc)

	_, jane, err := h.AddContact(ctx, nil, AddContactInput{Name: "Jane Doe", Frequency: "weekly", Relationship: "mentor"})
	require.NoError(t, err)
	assert.Equal(t, "weekly", jane.Frequency)
	assert.Equal(t, "mentor", jane.Relationship)
	assert.Equal(t, "idle", jane.SyncStatus)

	_, _, err = h.AddContact(ctx, nil, AddContactInput{Name: "Raj Patel"})
	require.NoError(t, err)

	_, _, err = h.AddContact(ctx, nil, AddContactInput{Name: "Bad", Frequency: "hourly"})
	assert.Error(t, err)
	_, _, err = h.AddContact(ctx, nil, AddContactInput{})
	assert.Error(t, err)

	_, list, err := h.ListContacts(ctx, nil, ListContactsInput{})
	require.NoError(t, err)
	require.Len(t, list.Contacts, 2)
	assert.Equal(t, "Jane Doe", list.Contacts[0].Name, "overdue sorts first")
	assert.Equal(t, string(models.DueOverdue), list.Contacts[0].DueStatus)
	assert.Equal(t, string(models.DueNoFrequency), list.Contacts[1].DueStatus)
	assert.Equal(t, 1, list.Counts.Overdue)

	_, due, err := h.ListContacts(ctx, nil, ListContactsInput{View: "due"})
	require.NoError(t, err)
	assert.Len(t, due.Contacts, 1)

	_, _, err = h.ListContacts(ctx, nil, ListContactsInput{View: "someday"})
	assert.Error(t, err)
}

func TestUpdateContactPartial(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	h := NewContactHandlers(svc)

	_, jane, err := h.AddContact(ctx, nil, AddContactInput{
		Name:       "Jane Doe",
		Company:    "Acme",
		ProfileURL: "https://www.linkedin.com/in/janedoe",
		AutoSync:   true,
	})
	require.NoError(t, err)
	assert.True(t, jane.AutoSync)

	_, updated, err := h.UpdateContact(ctx, nil, UpdateContactInput{ID: "jane doe", Role: strPtr("CTO")})
	require.NoError(t, err)
	assert.Equal(t, "CTO", updated.Role)
	assert.Equal(t, "Acme", updated.Company, "omitted fields are untouched")

	_, updated, err = h.UpdateContact(ctx, nil, UpdateContactInput{ID: jane.ID, ProfileURL: strPtr("")})
	require.NoError(t, err)
	assert.False(t, updated.AutoSync, "clearing the profile URL disables auto-sync")

	_, _, err = h.UpdateContact(ctx, nil, UpdateContactInput{ID: "nobody"})
	assert.ErrorIs(t, err, crm.ErrContactNotFound)
}

func TestDeleteContactTool(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	h := NewContactHandlers(svc)

	_, jane, err := h.AddContact(ctx, nil, AddContactInput{Name: "Jane Doe"})
	require.NoError(t, err)

	_, out, err := h.DeleteContact(ctx, nil, DeleteContactInput{ID: jane.ID})
	require.NoError(t, err)
	assert.True(t, out.Success)

	contacts, err := svc.ListContacts(ctx)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestLogInteractionAndHistory(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	contacts := NewContactHandlers(svc)
	interactions := NewInteractionHandlers(svc)

	_, jane, err := contacts.AddContact(ctx, nil, AddContactInput{Name: "Jane Doe", Frequency: "weekly"})
	require.NoError(t, err)

	_, logged, err := interactions.LogInteraction(ctx, nil, LogInteractionInput{
		ContactID: "Jane Doe",
		Kind:      "coffee",
		Timestamp: "2025-03-13T09:00:00Z",
		Notes:     "Talked about the launch",
	})
	require.NoError(t, err)
	assert.Equal(t, "coffee", logged.Kind)
	assert.Equal(t, "manual", logged.Provenance)

	_, _, err = interactions.LogInteraction(ctx, nil, LogInteractionInput{ContactID: jane.ID, Kind: "telegram"})
	assert.Error(t, err)
	_, _, err = interactions.LogInteraction(ctx, nil, LogInteractionInput{ContactID: jane.ID, Kind: "call", Timestamp: "yesterday"})
	assert.Error(t, err)

	_, history, err := interactions.InteractionHistory(ctx, nil, InteractionHistoryInput{ContactID: jane.ID})
	require.NoError(t, err)
	require.Len(t, history.Interactions, 1)
	assert.Equal(t, string(models.DueOnTrack), history.Contact.DueStatus)
	require.NotNil(t, history.Contact.DaysSince)
	assert.Equal(t, 2, *history.Contact.DaysSince)
	assert.Empty(t, history.Pending)
}

func addPending(t *testing.T, svc *crm.Service, contactID string) *models.Suggestion {
	t.Helper()
	c, err := svc.ResolveContact(context.Background(), contactID)
	require.NoError(t, err)
	sug, err := svc.AddSuggestion(context.Background(), models.DetectedInteraction{
		ContactID:   c.ID,
		ContactName: c.Name,
		Kind:        models.InteractionLinkedIn,
		Timestamp:   now.Add(-48 * time.Hour),
		Notes:       "Exchanged messages",
	})
	require.NoError(t, err)
	return sug
}

func TestSuggestionReviewTools(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	_, _, err := NewContactHandlers(svc).AddContact(ctx, nil, AddContactInput{Name: "Jane Doe"})
	require.NoError(t, err)
	h := NewSuggestionHandlers(svc, nil)

	first := addPending(t, svc, "Jane Doe")
	second := addPending(t, svc, "Jane Doe")

	_, list, err := h.ListSuggestions(ctx, nil, ListSuggestionsInput{})
	require.NoError(t, err)
	require.Len(t, list.Suggestions, 2)
	assert.Equal(t, first.ID, list.Suggestions[0].ID)

	_, edited, err := h.EditSuggestion(ctx, nil, EditSuggestionInput{ID: first.ID, Kind: strPtr("call"), Notes: strPtr("Phone call")})
	require.NoError(t, err)
	assert.True(t, edited.Success)

	_, accepted, err := h.AcceptSuggestion(ctx, nil, SuggestionIDInput{ID: first.ID})
	require.NoError(t, err)
	require.True(t, accepted.Success)
	require.NotNil(t, accepted.Interaction)
	assert.Equal(t, "call", accepted.Interaction.Kind)
	assert.Equal(t, "Phone call", accepted.Interaction.Notes)
	assert.Equal(t, "auto-detected", accepted.Interaction.Provenance)
	assert.True(t, accepted.Interaction.AutoLogged)

	_, again, err := h.AcceptSuggestion(ctx, nil, SuggestionIDInput{ID: first.ID})
	require.NoError(t, err)
	assert.False(t, again.Success, "accepting twice logs once")

	_, dismissed, err := h.DismissSuggestion(ctx, nil, SuggestionIDInput{ID: second.ID})
	require.NoError(t, err)
	assert.True(t, dismissed.Success)

	_, list, err = h.ListSuggestions(ctx, nil, ListSuggestionsInput{ContactID: "Jane Doe"})
	require.NoError(t, err)
	assert.Empty(t, list.Suggestions)

	all, err := svc.AllInteractions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSyncNowTool(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, _, err := NewSuggestionHandlers(svc, nil).SyncNow(ctx, nil, SyncNowInput{})
	assert.Error(t, err)

	_, jane, err := NewContactHandlers(svc).AddContact(ctx, nil, AddContactInput{
		Name:       "Jane Doe",
		ProfileURL: "https://www.linkedin.com/in/janedoe",
		AutoSync:   true,
	})
	require.NoError(t, err)

	det := rsync.DetectorFunc(func(ctx context.Context, contacts []models.Contact) ([]models.DetectedInteraction, error) {
		return []models.DetectedInteraction{{
			ContactID: contacts[0].ID,
			Kind:      models.InteractionLinkedIn,
			Timestamp: now.Add(-time.Hour),
		}}, nil
	})
	orch := rsync.NewOrchestrator(svc, det, log.NewWithOptions(io.Discard, log.Options{}))

	_, out, err := NewSuggestionHandlers(svc, orch).SyncNow(ctx, nil, SyncNowInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Added)
	assert.Empty(t, out.Error)

	pending, err := svc.PendingSuggestions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, jane.ID, pending[0].ContactID.String())
}

func TestReadResources(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	_, jane, err := NewContactHandlers(svc).AddContact(ctx, nil, AddContactInput{Name: "Jane Doe", Frequency: "monthly"})
	require.NoError(t, err)
	addPending(t, svc, "Jane Doe")

	h := NewResourceHandlers(svc)
	read := func(uri string) string {
		t.Helper()
		res, err := h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		assert.Equal(t, uri, res.Contents[0].URI)
		return res.Contents[0].Text
	}

	var list ListContactsOutput
	require.NoError(t, json.Unmarshal([]byte(read("rolodex://followups")), &list))
	require.Len(t, list.Contacts, 1)
	assert.Equal(t, "overdue", list.Contacts[0].DueStatus)

	var detail InteractionHistoryOutput
	require.NoError(t, json.Unmarshal([]byte(read("rolodex://contacts/"+jane.ID)), &detail))
	assert.Equal(t, "Jane Doe", detail.Contact.Name)

	var pending []SuggestionOutput
	require.NoError(t, json.Unmarshal([]byte(read("rolodex://suggestions")), &pending))
	assert.Len(t, pending, 1)

	_, err = h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "crm://contacts"}})
	assert.Error(t, err)
	_, err = h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "rolodex://deals"}})
	assert.Error(t, err)
}

func TestPrompts(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	_, _, err := NewContactHandlers(svc).AddContact(ctx, nil, AddContactInput{Name: "Jane Doe", Frequency: "weekly"})
	require.NoError(t, err)

	h := NewPromptHandlers(svc)
	res, err := h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "follow-up-plan"}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "never contacted")

	res, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
		Name:      "contact-catch-up",
		Arguments: map[string]string{"contact": "jane doe"},
	}})
	require.NoError(t, err)
	assert.Contains(t, res.Messages[0].Content.(*mcp.TextContent).Text, "none logged")

	_, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "contact-catch-up"}})
	assert.Error(t, err)
	_, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "deal-analysis"}})
	assert.Error(t, err)
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(setupService(t), nil, "test"))
}
