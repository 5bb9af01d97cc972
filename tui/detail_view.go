package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/harperreed/rolodex/models"
)

const detailHistoryLimit = 10

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("CONTACT"))
	s.WriteString("\n\n")

	s.WriteString(m.renderContactDetail())
	s.WriteString("\n")

	if line := m.renderStatusLine(); line != "" {
		s.WriteString(line)
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderContactDetail() string {
	id, err := uuid.Parse(m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error: invalid ID: %v", err)
	}

	ctx := context.Background()
	status, err := m.svc.ContactStatus(ctx, id)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	contact := status.Contact

	var s strings.Builder

	s.WriteString(m.renderField("Name", contact.Name))
	s.WriteString(m.renderField("Company", contact.Company))
	s.WriteString(m.renderField("Role", contact.Role))
	s.WriteString(m.renderField("Email", contact.Email))
	s.WriteString(m.renderField("Relationship", string(contact.Relationship)))

	cadence := ""
	if contact.Frequency.IsSet() {
		cadence = contact.Frequency.String()
	}
	s.WriteString(m.renderField("Cadence", cadence))
	s.WriteString(m.renderField("Status",
		fmt.Sprintf("%s %s (last contact %s)", statusIndicator(status.DueStatus), status.DueStatus.Label(), formatDaysSince(status.DaysSince))))

	autoSync := "off"
	if contact.SyncEligible() {
		autoSync = fmt.Sprintf("on (%s)", contact.SyncStatus)
	}
	s.WriteString(m.renderField("Profile", contact.ProfileURL))
	s.WriteString(m.renderField("Auto-sync", autoSync))
	s.WriteString(m.renderField("Notes", contact.Notes))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("HISTORY"))
	s.WriteString("\n")

	history, err := m.svc.History(ctx, id)
	if err != nil {
		s.WriteString(fmt.Sprintf("  Error: %v\n", err))
	} else if len(history) == 0 {
		s.WriteString("  No interactions logged\n")
	}
	for i, in := range history {
		if i == detailHistoryLimit {
			s.WriteString(fmt.Sprintf("  … %d more\n", len(history)-detailHistoryLimit))
			break
		}
		s.WriteString(fmt.Sprintf("  • [%s] %s%s\n", in.Timestamp.Local().Format("2006-01-02"), in.Kind, noteSuffix(in)))
	}

	pending, err := m.svc.SuggestionsForContact(ctx, id)
	if err == nil && len(pending) > 0 {
		s.WriteString("\n")
		s.WriteString(sectionStyle.Render("PENDING SUGGESTIONS"))
		s.WriteString("\n")
		for _, sg := range pending {
			s.WriteString(fmt.Sprintf("  • [%s] %s %s\n", sg.Timestamp.Local().Format("2006-01-02"), sg.Kind, sg.Notes))
		}
	}

	return s.String()
}

func noteSuffix(in models.Interaction) string {
	var parts []string
	if in.Notes != "" {
		parts = append(parts, in.Notes)
	}
	if in.AutoLogged {
		parts = append(parts, "auto")
	}
	if len(parts) == 0 {
		return ""
	}
	return " - " + strings.Join(parts, ", ")
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	return renderHelp(keys.Back, keys.Log, keys.Edit, keys.Delete, keys.Quit)
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.viewMode = ViewList
		m.statusMessage = ""
		m.refresh()
	case key.Matches(msg, keys.Edit):
		m.viewMode = ViewEdit
		m.initFormInputs()
	case key.Matches(msg, keys.Log):
		m.viewMode = ViewLog
		m.initLogForm()
	case key.Matches(msg, keys.Delete):
		m.viewMode = ViewConfirmDelete
	}

	return m, nil
}
