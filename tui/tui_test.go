// ABOUTME: Tests for TUI navigation and contact forms
// ABOUTME: Drives the model with key messages against an in-memory service
package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/rolodex/followup"
	"github.com/harperreed/rolodex/models"
)

func typeInto(t *testing.T, m Model, text string) Model {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

func TestNewModelLoadsDashboard(t *testing.T) {
	svc := setupTestService(t)
	addTestContact(t, svc, "Overdue Olive", models.FrequencyWeekly)
	addTestContact(t, svc, "No Cadence Ned", models.FrequencyUnset)

	m := NewModel(svc, nil)

	if m.viewMode != ViewList || m.tab != TabFollowups {
		t.Error("Should start on the follow-ups tab")
	}
	if m.counts.Overdue != 1 || m.counts.NoFrequency != 1 {
		t.Errorf("Unexpected counts %+v", m.counts)
	}

	output := m.View()
	if !strings.Contains(output, "Overdue Olive") {
		t.Error("Due view should show the overdue contact")
	}
	if strings.Contains(output, "No Cadence Ned") {
		t.Error("Due view should hide contacts without a cadence")
	}
}

func TestCycleFollowupView(t *testing.T) {
	svc := setupTestService(t)
	addTestContact(t, svc, "No Cadence Ned", models.FrequencyUnset)

	m := NewModel(svc, nil)
	m = press(t, m, "v")
	if m.followupView != followup.ViewRecent {
		t.Errorf("Expected recent view, got %s", m.followupView)
	}
	m = press(t, m, "v")
	if m.followupView != followup.ViewAll {
		t.Errorf("Expected all view, got %s", m.followupView)
	}
	if !strings.Contains(m.View(), "No Cadence Ned") {
		t.Error("All view should include every contact")
	}
	m = press(t, m, "v")
	if m.followupView != followup.ViewDue {
		t.Errorf("Expected due view, got %s", m.followupView)
	}
}

func TestTabNavigation(t *testing.T) {
	m := NewModel(setupTestService(t), nil)

	m = press(t, m, "tab")
	if m.tab != TabContacts {
		t.Errorf("Expected contacts tab, got %d", m.tab)
	}
	m = press(t, m, "tab", "tab")
	if m.tab != TabFollowups {
		t.Errorf("Tabs should wrap around, got %d", m.tab)
	}
}

func TestSelectionStaysInBounds(t *testing.T) {
	svc := setupTestService(t)
	addTestContact(t, svc, "Alice", models.FrequencyWeekly)
	addTestContact(t, svc, "Bob", models.FrequencyWeekly)

	m := NewModel(svc, nil)
	m = press(t, m, "down", "down", "down")
	if m.selectedRow != 1 {
		t.Errorf("Expected selectedRow=1, got %d", m.selectedRow)
	}
	m = press(t, m, "up", "up")
	if m.selectedRow != 0 {
		t.Errorf("Expected selectedRow=0, got %d", m.selectedRow)
	}
}

func TestDetailView(t *testing.T) {
	svc := setupTestService(t)
	jane := addTestContact(t, svc, "Jane Doe", models.FrequencyWeekly)
	if err := svc.LogInteraction(context.Background(), &models.Interaction{
		ContactID: jane.ID, Kind: models.InteractionCoffee, Timestamp: testNow.AddDate(0, 0, -2), Notes: "Launch chat",
	}); err != nil {
		t.Fatalf("LogInteraction failed: %v", err)
	}
	addTestSuggestion(t, svc, jane, models.InteractionLinkedIn)

	m := NewModel(svc, nil)
	m = press(t, m, "tab", "enter")
	if m.viewMode != ViewDetail {
		t.Fatal("Enter should open the detail view")
	}
	if m.selectedID != jane.ID.String() {
		t.Errorf("Expected Jane selected, got %s", m.selectedID)
	}

	output := m.View()
	for _, want := range []string{"Jane Doe", "On Track", "2 days ago", "Launch chat", "PENDING SUGGESTIONS"} {
		if !strings.Contains(output, want) {
			t.Errorf("Detail view should contain %q", want)
		}
	}

	m = press(t, m, "esc")
	if m.viewMode != ViewList {
		t.Error("Esc should return to the list")
	}
}

func TestCreateContactForm(t *testing.T) {
	svc := setupTestService(t)
	m := NewModel(svc, nil)

	m = press(t, m, "tab", "n")
	if m.viewMode != ViewEdit {
		t.Fatal("'n' on the contacts tab should open the form")
	}

	m = typeInto(t, m, "Raj Patel")
	for i := fieldName; i < fieldFrequency; i++ {
		m = press(t, m, "tab")
	}
	m = typeInto(t, m, "monthly")
	m = press(t, m, "enter")

	if m.viewMode != ViewList {
		t.Fatalf("Save should return to the list, err=%v", m.err)
	}
	raj, err := svc.ResolveContact(context.Background(), "Raj Patel")
	if err != nil {
		t.Fatalf("Contact was not created: %v", err)
	}
	if raj.Frequency != models.FrequencyMonthly {
		t.Errorf("Expected monthly cadence, got %s", raj.Frequency)
	}
	if len(m.statuses) != 1 {
		t.Error("List should refresh after save")
	}
}

func TestFormValidationError(t *testing.T) {
	m := NewModel(setupTestService(t), nil)
	m = press(t, m, "tab", "n", "enter")

	if m.viewMode != ViewEdit {
		t.Error("Invalid form should stay open")
	}
	if m.err == nil {
		t.Error("Missing name should surface an error")
	}

	m = press(t, m, "esc")
	if m.viewMode != ViewList || m.err != nil {
		t.Error("Esc should cancel the form and clear the error")
	}
}

func TestLogInteractionForm(t *testing.T) {
	svc := setupTestService(t)
	jane := addTestContact(t, svc, "Jane Doe", models.FrequencyWeekly)

	m := NewModel(svc, nil)
	m = press(t, m, "l")
	if m.viewMode != ViewLog {
		t.Fatal("'l' should open the log form")
	}

	// Replace the default kind.
	m.formInputs[logFieldKind].SetValue("")
	m = typeInto(t, m, "email")
	m = press(t, m, "tab")
	m = typeInto(t, m, "3")
	m = press(t, m, "enter")

	if m.err != nil {
		t.Fatalf("Unexpected error: %v", m.err)
	}
	if m.viewMode != ViewDetail {
		t.Error("Saving should return to the contact detail")
	}

	history, _ := svc.History(context.Background(), jane.ID)
	if len(history) != 1 {
		t.Fatalf("Expected one interaction, got %d", len(history))
	}
	if history[0].Kind != models.InteractionEmail {
		t.Errorf("Expected email, got %s", history[0].Kind)
	}
	if !history[0].Timestamp.Equal(testNow.AddDate(0, 0, -3)) {
		t.Errorf("Expected three days ago, got %s", history[0].Timestamp)
	}
	if m.counts.OnTrack != 1 {
		t.Error("Logging should refresh the dashboard")
	}
}

func TestDeleteContactFlow(t *testing.T) {
	svc := setupTestService(t)
	addTestContact(t, svc, "Jane Doe", models.FrequencyWeekly)

	m := NewModel(svc, nil)
	m = press(t, m, "enter", "d")
	if m.viewMode != ViewConfirmDelete {
		t.Fatal("'d' should ask for confirmation")
	}
	if !strings.Contains(m.View(), "CONTACT: Jane Doe") {
		t.Error("Confirmation should name the contact")
	}

	m = press(t, m, "n")
	if m.viewMode != ViewDetail {
		t.Error("'n' should cancel back to the detail view")
	}

	m = press(t, m, "d", "y")
	if m.viewMode != ViewList {
		t.Error("Confirming should return to the list")
	}
	if len(m.statuses) != 0 {
		t.Error("Deleted contact should be gone from the list")
	}
	if m.statusMessage != "Contact deleted" {
		t.Errorf("Unexpected status %q", m.statusMessage)
	}
}

func TestQuitKey(t *testing.T) {
	m := NewModel(setupTestService(t), nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("'q' should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("'q' should quit")
	}
}

func TestWindowResize(t *testing.T) {
	m := NewModel(nil, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)
	if m.width != 120 || m.height != 40 {
		t.Errorf("Expected 120x40, got %dx%d", m.width, m.height)
	}
}
