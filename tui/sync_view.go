// ABOUTME: TUI view for the suggestion queue and manual detection runs
// ABOUTME: Accept, dismiss and sync-now run against the orchestrator with a spinner
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rolodex/sync"
)

const maxSyncMessages = 5

var (
	syncHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)

	syncSyncingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// SyncCompleteMsg is sent when a manual sync cycle completes.
type SyncCompleteMsg struct {
	Result sync.CycleResult
}

func (m Model) renderSuggestionsView() string {
	var s strings.Builder

	if m.syncing {
		s.WriteString(syncSyncingStyle.Render(m.spinner.View() + " Detecting interactions..."))
		s.WriteString("\n\n")
	}

	if len(m.suggestions) == 0 {
		s.WriteString(messageStyle.Render("No pending suggestions."))
		s.WriteString("\n")
	} else {
		columns := []table.Column{
			{Title: "Contact", Width: 22},
			{Title: "Kind", Width: 10},
			{Title: "When", Width: 12},
			{Title: "Notes", Width: 30},
		}
		var rows []table.Row
		for _, sg := range m.suggestions {
			rows = append(rows, table.Row{
				sg.ContactName,
				string(sg.Kind),
				sg.Timestamp.Local().Format("2006-01-02"),
				sg.Notes,
			})
		}
		s.WriteString(m.newTable(columns, rows).View())
		s.WriteString("\n")
	}

	// Recent messages
	if len(m.syncMessages) > 0 {
		s.WriteString("\n")
		s.WriteString(syncHeaderStyle.Render("Recent Activity"))
		s.WriteString("\n\n")
		start := 0
		if len(m.syncMessages) > maxSyncMessages {
			start = len(m.syncMessages) - maxSyncMessages
		}
		for i := start; i < len(m.syncMessages); i++ {
			s.WriteString(messageStyle.Render("  " + m.syncMessages[i]))
			s.WriteString("\n")
		}
	}

	return s.String()
}

// handleSuggestionKeys handles the keys specific to the suggestions tab.
func (m *Model) handleSuggestionKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Accept):
		if sg, ok := m.selectedSuggestion(); ok {
			in, err := m.svc.AcceptSuggestion(context.Background(), sg)
			switch {
			case err != nil:
				m.addSyncMessage(fmt.Sprintf("✗ accept failed: %v", err))
			case in == nil:
				m.addSyncMessage("Suggestion was already reviewed")
			default:
				m.addSyncMessage(fmt.Sprintf("✓ Logged %s", in.Kind))
			}
			m.refresh()
		}
		return true, nil
	case key.Matches(msg, keys.Dismiss):
		if sg, ok := m.selectedSuggestion(); ok {
			if err := m.svc.DismissSuggestion(context.Background(), sg); err != nil {
				m.addSyncMessage(fmt.Sprintf("✗ dismiss failed: %v", err))
			} else {
				m.addSyncMessage("Dismissed suggestion")
			}
			m.refresh()
		}
		return true, nil
	case key.Matches(msg, keys.Sync):
		if m.orch == nil {
			m.addSyncMessage("Interaction detection is disabled")
			return true, nil
		}
		if m.syncing {
			return true, nil
		}
		m.syncing = true
		m.addSyncMessage("Starting sync...")
		return true, tea.Batch(m.spinner.Tick, m.syncNow())
	}
	return false, nil
}

func (m Model) selectedSuggestion() (string, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.suggestions) {
		return "", false
	}
	return m.suggestions[m.selectedRow].ID, true
}

// syncNow runs one manual cycle off the UI goroutine.
func (m Model) syncNow() tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		return SyncCompleteMsg{Result: orch.RunCycle(context.Background(), sync.TriggerManual)}
	}
}

// addSyncMessage adds a message to the sync message log.
func (m *Model) addSyncMessage(msg string) {
	timestamp := time.Now().Format("15:04:05")
	m.syncMessages = append(m.syncMessages, fmt.Sprintf("[%s] %s", timestamp, msg))
}

// handleSyncComplete handles sync completion messages.
func (m *Model) handleSyncComplete(msg SyncCompleteMsg) tea.Cmd {
	m.syncing = false

	res := msg.Result
	switch {
	case res.Failed():
		m.addSyncMessage(fmt.Sprintf("✗ sync failed: %v", res.Err))
	case res.Skipped:
		m.addSyncMessage(fmt.Sprintf("Sync skipped (%s)", res.SkipReason))
	default:
		m.addSyncMessage(fmt.Sprintf("✓ %d new suggestion(s)", res.Added))
	}

	m.refresh()
	return nil
}
