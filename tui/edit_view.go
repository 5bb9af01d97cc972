package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/harperreed/rolodex/models"
)

// Contact form field order.
const (
	fieldName = iota
	fieldCompany
	fieldRole
	fieldEmail
	fieldProfileURL
	fieldFrequency
	fieldRelationship
	fieldAutoSync
	fieldNotes
	contactFieldCount
)

// Log form field order.
const (
	logFieldKind = iota
	logFieldDaysAgo
	logFieldNotes
	logFieldCount
)

func (m Model) renderEditView() string {
	var s strings.Builder

	// Title
	if m.selectedID == "" {
		s.WriteString(titleStyle.Render("NEW CONTACT"))
	} else {
		s.WriteString(titleStyle.Render("EDIT CONTACT"))
	}
	s.WriteString("\n\n")

	s.WriteString(m.renderForm())
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderLogView() string {
	var s strings.Builder

	name := ""
	if id, err := uuid.Parse(m.selectedID); err == nil && m.svc != nil {
		if c, err := m.svc.GetContact(context.Background(), id); err == nil {
			name = c.Name
		}
	}
	s.WriteString(titleStyle.Render("LOG INTERACTION WITH " + strings.ToUpper(name)))
	s.WriteString("\n\n")

	s.WriteString(m.renderForm())
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderForm() string {
	var s strings.Builder

	// Form fields
	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	return m.handleFormKeys(msg, m.saveContact)
}

func (m Model) handleLogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	return m.handleFormKeys(msg, m.saveInteraction)
}

func (m Model) handleFormKeys(msg tea.KeyMsg, save func() error) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.err = nil
		m.viewMode = m.formExitView()
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex - 1 + len(m.formInputs)) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		if err := save(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.viewMode = m.formExitView()
		m.refresh()
		return m, nil
	}

	// Update current input
	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

// formExitView returns to the detail view when a contact is selected.
func (m Model) formExitView() ViewMode {
	if m.selectedID != "" {
		return ViewDetail
	}
	return ViewList
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

func (m *Model) initFormInputs() {
	inputs := make([]textinput.Model, contactFieldCount)
	inputs[fieldName] = newInput("Name", 100)
	inputs[fieldCompany] = newInput("Company", 100)
	inputs[fieldRole] = newInput("Role", 100)
	inputs[fieldEmail] = newInput("Email", 100)
	inputs[fieldProfileURL] = newInput("Profile URL", 300)
	inputs[fieldFrequency] = newInput("Cadence (weekly/biweekly/monthly/quarterly/biannually/annually/none)", 20)
	inputs[fieldRelationship] = newInput("Relationship (peer/mentor/client)", 10)
	inputs[fieldAutoSync] = newInput("Auto-sync (yes/no)", 3)
	inputs[fieldNotes] = newInput("Notes", 500)

	// If editing, populate fields
	if m.selectedID != "" {
		id, _ := uuid.Parse(m.selectedID)
		contact, _ := m.svc.GetContact(context.Background(), id)
		if contact != nil {
			inputs[fieldName].SetValue(contact.Name)
			inputs[fieldCompany].SetValue(contact.Company)
			inputs[fieldRole].SetValue(contact.Role)
			inputs[fieldEmail].SetValue(contact.Email)
			inputs[fieldProfileURL].SetValue(contact.ProfileURL)
			if contact.Frequency.IsSet() {
				inputs[fieldFrequency].SetValue(contact.Frequency.String())
			}
			inputs[fieldRelationship].SetValue(string(contact.Relationship))
			if contact.AutoSync {
				inputs[fieldAutoSync].SetValue("yes")
			}
			inputs[fieldNotes].SetValue(contact.Notes)
		}
	}

	m.formInputs = inputs
	m.focusIndex = 0
	m.err = nil
	m.updateFormFocus()
}

func (m *Model) initLogForm() {
	inputs := make([]textinput.Model, logFieldCount)
	inputs[logFieldKind] = newInput("Kind (call/coffee/message/email/linkedin)", 10)
	inputs[logFieldKind].SetValue(string(models.InteractionCall))
	inputs[logFieldDaysAgo] = newInput("Days ago (0 = today)", 4)
	inputs[logFieldNotes] = newInput("Notes", 500)

	m.formInputs = inputs
	m.focusIndex = 0
	m.err = nil
	m.updateFormFocus()
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m Model) saveContact() error {
	value := func(i int) string { return strings.TrimSpace(m.formInputs[i].Value()) }

	freq, err := models.ParseFrequency(value(fieldFrequency))
	if err != nil {
		return err
	}
	autoSync := false
	switch strings.ToLower(value(fieldAutoSync)) {
	case "", "no", "n":
	case "yes", "y":
		autoSync = true
	default:
		return fmt.Errorf("auto-sync must be yes or no")
	}

	ctx := context.Background()
	contact := &models.Contact{}
	if m.selectedID != "" {
		id, err := uuid.Parse(m.selectedID)
		if err != nil {
			return fmt.Errorf("invalid ID: %w", err)
		}
		existing, err := m.svc.GetContact(ctx, id)
		if err != nil {
			return err
		}
		contact = existing
	}

	contact.Name = value(fieldName)
	contact.Company = value(fieldCompany)
	contact.Role = value(fieldRole)
	contact.Email = value(fieldEmail)
	contact.ProfileURL = value(fieldProfileURL)
	contact.Frequency = freq
	contact.Relationship = models.RelationshipType(strings.ToLower(value(fieldRelationship)))
	contact.AutoSync = autoSync
	contact.Notes = value(fieldNotes)

	if m.selectedID == "" {
		return m.svc.CreateContact(ctx, contact)
	}
	return m.svc.UpdateContact(ctx, contact)
}

func (m Model) saveInteraction() error {
	id, err := uuid.Parse(m.selectedID)
	if err != nil {
		return fmt.Errorf("invalid ID: %w", err)
	}

	kind, err := models.ParseInteractionKind(strings.TrimSpace(m.formInputs[logFieldKind].Value()))
	if err != nil {
		return err
	}

	in := &models.Interaction{
		ContactID: id,
		Kind:      kind,
		Notes:     strings.TrimSpace(m.formInputs[logFieldNotes].Value()),
	}
	if raw := strings.TrimSpace(m.formInputs[logFieldDaysAgo].Value()); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			return fmt.Errorf("days ago must be a whole number of days")
		}
		in.Timestamp = m.svc.Now().AddDate(0, 0, -days)
	}

	return m.svc.LogInteraction(context.Background(), in)
}
