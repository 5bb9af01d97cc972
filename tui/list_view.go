package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rolodex/models"
)

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("ROLODEX"))
	s.WriteString("\n\n")

	// Tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	// Table
	s.WriteString(m.renderTable())
	s.WriteString("\n")

	if line := m.renderStatusLine(); line != "" {
		s.WriteString(line)
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string

	for i, tab := range tabNames {
		label := tab
		if Tab(i) == TabSuggestions && len(m.suggestions) > 0 {
			label = fmt.Sprintf("%s (%d)", tab, len(m.suggestions))
		}
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(label))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(label))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	switch m.tab {
	case TabFollowups:
		return m.renderFollowupsTable()
	case TabContacts:
		return m.renderContactsTable()
	case TabSuggestions:
		return m.renderSuggestionsView()
	}
	return ""
}

// contactRows returns contacts sorted by name for the contacts tab.
func (m Model) contactRows() []models.ContactStatus {
	rows := append([]models.ContactStatus(nil), m.statuses...)
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Contact.Name) < strings.ToLower(rows[j].Contact.Name)
	})
	return rows
}

func (m Model) renderContactsTable() string {
	contacts := m.contactRows()
	if len(contacts) == 0 {
		return messageStyle.Render("No contacts yet. Press 'n' to add one.")
	}

	columns := []table.Column{
		{Title: "", Width: 2},
		{Title: "Name", Width: 25},
		{Title: "Company", Width: 20},
		{Title: "Cadence", Width: 10},
		{Title: "Last Contact", Width: 14},
		{Title: "Sync", Width: 8},
	}

	var rows []table.Row
	for _, cs := range contacts {
		cadence := "-"
		if cs.Contact.Frequency.IsSet() {
			cadence = cs.Contact.Frequency.String()
		}
		syncState := "off"
		if cs.Contact.SyncEligible() {
			syncState = string(cs.Contact.SyncStatus)
		}
		rows = append(rows, table.Row{
			statusIndicator(cs.DueStatus),
			cs.Contact.Name,
			cs.Contact.Company,
			cadence,
			formatDaysSince(cs.DaysSince),
			syncState,
		})
	}

	return m.newTable(columns, rows).View()
}

func (m Model) newTable(columns []table.Column, rows []table.Row) table.Model {
	height := m.height - 10
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	// Set selected row
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}
	return t
}

func (m Model) rowCount() int {
	switch m.tab {
	case TabFollowups:
		return len(m.followupRows())
	case TabContacts:
		return len(m.statuses)
	case TabSuggestions:
		return len(m.suggestions)
	}
	return 0
}

func (m Model) renderListHelp() string {
	bindings := []key.Binding{keys.Up, keys.Down, keys.Tab}
	switch m.tab {
	case TabFollowups:
		bindings = append(bindings, keys.Enter, keys.View, keys.Log)
	case TabContacts:
		bindings = append(bindings, keys.Enter, keys.New, keys.Log)
	case TabSuggestions:
		bindings = append(bindings, keys.Accept, keys.Dismiss, keys.Sync)
	}
	bindings = append(bindings, keys.Refresh, keys.Quit)
	return renderHelp(bindings...)
}

func renderHelp(bindings ...key.Binding) string {
	help := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		help = append(help, h.Key+": "+h.Desc)
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tab == TabSuggestions {
		if handled, cmd := m.handleSuggestionKeys(msg); handled {
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, keys.Down):
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case key.Matches(msg, keys.Tab):
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.selectedRow = 0
		m.statusMessage = ""
	case key.Matches(msg, keys.Refresh):
		m.refresh()
	case key.Matches(msg, keys.View):
		if m.tab == TabFollowups {
			m.cycleFollowupView()
		}
	case key.Matches(msg, keys.Enter):
		if id := m.getSelectedID(); id != "" {
			m.viewMode = ViewDetail
			m.selectedID = id
			m.statusMessage = ""
		}
	case key.Matches(msg, keys.Log):
		if id := m.getSelectedID(); id != "" {
			m.selectedID = id
			m.viewMode = ViewLog
			m.initLogForm()
		}
	case key.Matches(msg, keys.New):
		if m.tab == TabContacts {
			m.viewMode = ViewEdit
			m.selectedID = ""
			m.initFormInputs()
		}
	}

	return m, nil
}

// getSelectedID returns the contact under the cursor on the contact tabs.
func (m Model) getSelectedID() string {
	var rows []models.ContactStatus
	switch m.tab {
	case TabFollowups:
		rows = m.followupRows()
	case TabContacts:
		rows = m.contactRows()
	default:
		return ""
	}
	if m.selectedRow < len(rows) {
		return rows[m.selectedRow].Contact.ID.String()
	}
	return ""
}
