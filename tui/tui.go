// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Follow-up dashboard, contact detail and suggestion review in one full-screen app
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/followup"
	"github.com/harperreed/rolodex/models"
	"github.com/harperreed/rolodex/sync"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewLog
	ViewConfirmDelete
)

// Tab selects what the list view shows
type Tab int

const (
	TabFollowups Tab = iota
	TabContacts
	TabSuggestions
)

var tabNames = []string{"Follow-ups", "Contacts", "Suggestions"}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Tab     key.Binding
	Enter   key.Binding
	Back    key.Binding
	Quit    key.Binding
	New     key.Binding
	Edit    key.Binding
	Log     key.Binding
	Delete  key.Binding
	Accept  key.Binding
	Dismiss key.Binding
	Sync    key.Binding
	View    key.Binding
	Refresh key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch tabs")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new contact")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Log:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log interaction")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Accept:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
	Dismiss: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
	Sync:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync now")),
	View:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "cycle view")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}

// Model is the main bubbletea model
type Model struct {
	svc  *crm.Service
	orch *sync.Orchestrator

	viewMode ViewMode
	tab      Tab

	// List view state
	followupView followup.View
	statuses     []models.ContactStatus
	counts       followup.Counts
	suggestions  []models.Suggestion
	selectedRow  int

	// Detail view state
	selectedID string

	// Edit and log form state
	formInputs []textinput.Model
	focusIndex int

	// Sync state
	syncing      bool
	spinner      spinner.Model
	syncMessages []string

	statusMessage string

	// UI state
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model. orch may be nil when detection is disabled.
func NewModel(svc *crm.Service, orch *sync.Orchestrator) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	m := Model{
		svc:          svc,
		orch:         orch,
		viewMode:     ViewList,
		tab:          TabFollowups,
		followupView: followup.ViewDue,
		spinner:      sp,
		width:        80,
		height:       24,
	}
	m.refresh()
	return m
}

// Run starts the full-screen program and blocks until it exits.
func Run(svc *crm.Service, orch *sync.Orchestrator) error {
	p := tea.NewProgram(NewModel(svc, orch), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case SyncCompleteMsg:
		return m, m.handleSyncComplete(msg)
	case spinner.TickMsg:
		if !m.syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewLog:
		return m.renderLogView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Forms take every printable key, so only ctrl+c quits there.
	if m.viewMode == ViewEdit || m.viewMode == ViewLog {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.viewMode == ViewEdit {
			return m.handleEditKeys(msg)
		}
		return m.handleLogKeys(msg)
	}

	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// refresh reloads the dashboard and the suggestion queue from the service.
func (m *Model) refresh() {
	if m.svc == nil {
		return
	}
	ctx := context.Background()

	statuses, counts, err := m.svc.Dashboard(ctx, followup.ViewAll)
	if err != nil {
		m.err = err
		return
	}
	m.statuses = statuses
	m.counts = counts

	pending, err := m.svc.PendingSuggestions(ctx)
	if err != nil {
		m.err = err
		return
	}
	m.suggestions = pending
	m.err = nil
	m.clampSelection()
}

func (m *Model) clampSelection() {
	n := m.rowCount()
	if m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m *Model) setStatus(format string, args ...any) {
	m.statusMessage = fmt.Sprintf(format, args...)
}

func (m Model) renderStatusLine() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.statusMessage != "" {
		return messageStyle.Render(m.statusMessage)
	}
	return ""
}

// formatDaysSince renders a contact's days-since count.
func formatDaysSince(days *int) string {
	if days == nil {
		return "never"
	}
	if *days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", *days)
}

// formatTimeSince formats a time duration in a human-readable way.
func formatTimeSince(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func statusIndicator(s models.DueStatus) string {
	switch s {
	case models.DueOverdue:
		return "🔴"
	case models.DueSoon:
		return "🟡"
	case models.DueOnTrack:
		return "🟢"
	}
	return "⚪"
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)
