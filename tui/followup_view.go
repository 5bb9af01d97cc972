// ABOUTME: TUI view for follow-up tracking
// ABOUTME: Displays contacts by urgency under the selected dashboard view
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/harperreed/rolodex/followup"
	"github.com/harperreed/rolodex/models"
)

var followupViews = []followup.View{followup.ViewDue, followup.ViewRecent, followup.ViewAll}

func (m Model) followupRows() []models.ContactStatus {
	return followup.Filter(m.statuses, m.followupView)
}

func (m *Model) cycleFollowupView() {
	for i, v := range followupViews {
		if v == m.followupView {
			m.followupView = followupViews[(i+1)%len(followupViews)]
			m.selectedRow = 0
			return
		}
	}
	m.followupView = followup.ViewDue
}

func (m Model) renderFollowupsTable() string {
	var s strings.Builder

	s.WriteString(fmt.Sprintf("View: %s   🔴 %d overdue  🟡 %d due soon  🟢 %d on track  ⚪ %d no cadence\n\n",
		m.followupView, m.counts.Overdue, m.counts.DueSoon, m.counts.OnTrack, m.counts.NoFrequency))

	followups := m.followupRows()
	if len(followups) == 0 {
		if m.followupView == followup.ViewDue {
			s.WriteString(messageStyle.Render("Nobody is due. Nice work."))
		} else {
			s.WriteString(messageStyle.Render("No contacts in this view."))
		}
		return s.String()
	}

	columns := []table.Column{
		{Title: "Status", Width: 10},
		{Title: "Name", Width: 25},
		{Title: "Cadence", Width: 10},
		{Title: "Last Contact", Width: 14},
		{Title: "Last Kind", Width: 10},
	}

	var rows []table.Row
	for _, f := range followups {
		cadence := "-"
		if f.Contact.Frequency.IsSet() {
			cadence = f.Contact.Frequency.String()
		}
		lastKind := "-"
		if f.LastInteraction != nil {
			lastKind = string(f.LastInteraction.Kind)
		}

		rows = append(rows, table.Row{
			statusIndicator(f.DueStatus) + " " + f.DueStatus.Label(),
			f.Contact.Name,
			cadence,
			formatDaysSince(f.DaysSince),
			lastKind,
		})
	}

	s.WriteString(m.newTable(columns, rows).View())
	return s.String()
}
