// ABOUTME: Tests for the suggestion review view
// ABOUTME: Verifies accept, dismiss and manual sync handling
package tui

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/db"
	"github.com/harperreed/rolodex/models"
	"github.com/harperreed/rolodex/sync"
)

var testNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func setupTestService(t *testing.T) *crm.Service {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	database.SetMaxOpenConns(1)
	if err := db.InitSchema(database); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	svc := crm.NewService(db.NewStore(database))
	svc.Now = func() time.Time { return testNow }
	return svc
}

func addTestContact(t *testing.T, svc *crm.Service, name string, freq models.Frequency) *models.Contact {
	t.Helper()
	c := &models.Contact{Name: name, Frequency: freq}
	if err := svc.CreateContact(context.Background(), c); err != nil {
		t.Fatalf("Failed to create contact: %v", err)
	}
	return c
}

func addTestSuggestion(t *testing.T, svc *crm.Service, c *models.Contact, kind models.InteractionKind) *models.Suggestion {
	t.Helper()
	s, err := svc.AddSuggestion(context.Background(), models.DetectedInteraction{
		ContactID:   c.ID,
		ContactName: c.Name,
		Kind:        kind,
		Timestamp:   testNow.Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Failed to add suggestion: %v", err)
	}
	return s
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestSuggestionsViewRendering(t *testing.T) {
	svc := setupTestService(t)
	jane := addTestContact(t, svc, "Jane Doe", models.FrequencyWeekly)
	addTestSuggestion(t, svc, jane, models.InteractionLinkedIn)

	m := NewModel(svc, nil)
	m.tab = TabSuggestions

	output := m.View()
	if !strings.Contains(output, "Suggestions (1)") {
		t.Error("Tab should show the pending count")
	}
	if !strings.Contains(output, "Jane Doe") || !strings.Contains(output, "linkedin") {
		t.Error("Should list the pending suggestion")
	}
}

func TestAcceptSuggestionKey(t *testing.T) {
	svc := setupTestService(t)
	jane := addTestContact(t, svc, "Jane Doe", models.FrequencyWeekly)
	addTestSuggestion(t, svc, jane, models.InteractionCoffee)

	m := NewModel(svc, nil)
	m.tab = TabSuggestions
	m = press(t, m, "a")

	if len(m.suggestions) != 0 {
		t.Errorf("Expected empty queue after accept, got %d", len(m.suggestions))
	}
	history, err := svc.History(context.Background(), jane.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 || history[0].Kind != models.InteractionCoffee {
		t.Errorf("Expected one coffee interaction, got %+v", history)
	}
	if !history[0].AutoLogged {
		t.Error("Accepted suggestion should be marked auto-logged")
	}
}

func TestDismissSuggestionKey(t *testing.T) {
	svc := setupTestService(t)
	jane := addTestContact(t, svc, "Jane Doe", models.FrequencyWeekly)
	addTestSuggestion(t, svc, jane, models.InteractionCall)
	addTestSuggestion(t, svc, jane, models.InteractionEmail)

	m := NewModel(svc, nil)
	m.tab = TabSuggestions
	m = press(t, m, "down", "x")

	if len(m.suggestions) != 1 {
		t.Fatalf("Expected 1 suggestion left, got %d", len(m.suggestions))
	}
	if m.suggestions[0].Kind != models.InteractionCall {
		t.Errorf("Dismiss should remove the selected row, left %s", m.suggestions[0].Kind)
	}
	history, _ := svc.History(context.Background(), jane.ID)
	if len(history) != 0 {
		t.Error("Dismiss should not log an interaction")
	}
}

func TestSyncKeyWithoutDetector(t *testing.T) {
	svc := setupTestService(t)
	m := NewModel(svc, nil)
	m.tab = TabSuggestions

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = updated.(Model)
	if cmd != nil {
		t.Error("Sync without an orchestrator should not start a command")
	}
	if m.syncing {
		t.Error("Should not be syncing")
	}
	if len(m.syncMessages) == 0 || !strings.Contains(m.syncMessages[0], "disabled") {
		t.Error("Should explain that detection is disabled")
	}
}

func TestSyncNowRunsCycle(t *testing.T) {
	svc := setupTestService(t)
	jane := &models.Contact{Name: "Jane Doe", ProfileURL: "https://www.linkedin.com/in/jane", AutoSync: true}
	if err := svc.CreateContact(context.Background(), jane); err != nil {
		t.Fatalf("Failed to create contact: %v", err)
	}

	det := sync.DetectorFunc(func(ctx context.Context, contacts []models.Contact) ([]models.DetectedInteraction, error) {
		return []models.DetectedInteraction{{ContactID: jane.ID, Kind: models.InteractionMessage, Timestamp: testNow.Add(-time.Hour)}}, nil
	})
	orch := sync.NewOrchestrator(svc, det, log.NewWithOptions(io.Discard, log.Options{}))

	m := NewModel(svc, orch)
	m.tab = TabSuggestions
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = updated.(Model)
	if !m.syncing {
		t.Fatal("Should be syncing after 's'")
	}

	// Run the cycle the way the program would and feed the result back.
	msg := m.syncNow()()
	updated, _ = m.Update(msg)
	m = updated.(Model)

	if m.syncing {
		t.Error("Should stop syncing after completion")
	}
	if len(m.suggestions) != 1 {
		t.Errorf("Expected 1 new suggestion, got %d", len(m.suggestions))
	}
	last := m.syncMessages[len(m.syncMessages)-1]
	if !strings.Contains(last, "1 new suggestion") {
		t.Errorf("Unexpected completion message %q", last)
	}
}

func TestSyncCompleteWithError(t *testing.T) {
	svc := setupTestService(t)
	m := NewModel(svc, nil)
	m.syncing = true

	_ = m.handleSyncComplete(SyncCompleteMsg{Result: sync.CycleResult{Err: errors.New("relay down")}})

	if m.syncing {
		t.Error("Sync should not be in progress after error")
	}
	if len(m.syncMessages) == 0 || !strings.Contains(m.syncMessages[0], "relay down") {
		t.Error("Should have added an error message")
	}
}

func TestSyncCompleteSkipped(t *testing.T) {
	m := NewModel(setupTestService(t), nil)
	_ = m.handleSyncComplete(SyncCompleteMsg{Result: sync.CycleResult{Skipped: true, SkipReason: sync.SkipSafeMode}})

	if !strings.Contains(m.syncMessages[0], "safe-mode") {
		t.Errorf("Expected skip reason in message, got %q", m.syncMessages[0])
	}
}

func TestFormatTimeSince(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected string
	}{
		{
			name:     "just now",
			time:     time.Now().Add(-30 * time.Second),
			expected: "just now",
		},
		{
			name:     "minutes ago",
			time:     time.Now().Add(-5 * time.Minute),
			expected: "5 minutes ago",
		},
		{
			name:     "hours ago",
			time:     time.Now().Add(-2 * time.Hour),
			expected: "2 hours ago",
		},
		{
			name:     "days ago",
			time:     time.Now().Add(-3 * 24 * time.Hour),
			expected: "3 days ago",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatTimeSince(tt.time)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestSyncMessageAddition(t *testing.T) {
	m := NewModel(nil, nil)

	m.addSyncMessage("Test message 1")
	m.addSyncMessage("Test message 2")

	if len(m.syncMessages) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(m.syncMessages))
	}
	if !strings.Contains(m.syncMessages[0], "Test message 1") {
		t.Error("First message should contain content")
	}
	if !strings.Contains(m.syncMessages[1], "Test message 2") {
		t.Error("Second message should contain content")
	}
}
