package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/cwarden/skuld/internal/calendar"
	"github.com/cwarden/skuld/internal/config"
	"github.com/cwarden/skuld/internal/events"
	"github.com/cwarden/skuld/internal/parser"
)

type ViewMode int

const (
	ViewCalendar ViewMode = iota
	ViewHelp
	ViewManager
	ViewEventForm
	ViewQuickAdd
	ViewGoto
	ViewPick
	ViewConfirmDelete
)

// Manager menu entries, in display order.
const (
	menuAdd = iota
	menuModify
	menuDelete
	menuCount
)

var menuLabels = [menuCount]string{"Add event", "Modify event", "Delete event"}

type pickAction int

const (
	pickEdit pickAction = iota
	pickDelete
)

type Model struct {
	// Core components
	config *config.Config
	cal    *calendar.Calendar
	store  *events.Manager
	parser *parser.TimeParser
	log    *slog.Logger

	// View state
	mode ViewMode
	menu int

	// Event picker state
	pickAction pickAction
	picked     []events.Event
	pickIndex  int
	pending    uuid.UUID

	// Input state
	form   *eventForm
	prompt textinput.Model

	// UI state
	width      int
	height     int
	message    string
	messageErr bool
	messageSeq int

	styles Styles
}

type Styles struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Today    lipgloss.Style
	Weekend  lipgloss.Style
	Header   lipgloss.Style
	Event    lipgloss.Style
	Help     lipgloss.Style
	Message  lipgloss.Style
	Error    lipgloss.Style
	Border   lipgloss.Style
}

func NewModel(cfg *config.Config, cal *calendar.Calendar, store *events.Manager, p *parser.TimeParser, log *slog.Logger) *Model {
	prompt := textinput.New()
	prompt.Prompt = "> "

	return &Model{
		config: cfg,
		cal:    cal,
		store:  store,
		parser: p,
		log:    log,
		mode:   ViewCalendar,
		prompt: prompt,
		styles: NewStyles(cfg.Colors),
	}
}

// NewStyles builds the styles from colour specs keyed by element name.
func NewStyles(colors map[string]string) Styles {
	return Styles{
		Normal: colorStyle(colors["normal"]),
		Selected: highlightStyle(colors["selected"]).
			Bold(true),
		Today: colorStyle(colors["today"]).
			Bold(true),
		Weekend: colorStyle(colors["weekend"]),
		Header: colorStyle(colors["header"]).
			Bold(true),
		Event: colorStyle(colors["event"]),
		Help:  colorStyle(colors["help"]),
		Message: colorStyle(colors["header"]).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		Error: colorStyle(colors["error"]).
			Bold(true).
			Padding(0, 1),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorCode(colors["border"]))).
			Padding(0, 1),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tickMsg:
		// Relative dates follow the calendar's idea of today.
		m.parser.SetNow(m.cal.Today())
		return m, m.tickCmd()

	case ImportReloadedMsg:
		if msg.Err != nil {
			m.log.Warn("reload failed", "path", msg.Path, "err", msg.Err)
			return m, m.showError(fmt.Sprintf("Reload %s: %v", filepath.Base(msg.Path), msg.Err))
		}
		m.log.Debug("reloaded", "path", msg.Path, "events", msg.Count)
		return m, m.showMessage(fmt.Sprintf("Reloaded %d events from %s", msg.Count, filepath.Base(msg.Path)))

	case messageTimeoutMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
			m.messageErr = false
		}
		return m, nil
	}

	// Cursor blink and other input housekeeping
	return m.updateInputs(msg)
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	switch m.mode {
	case ViewHelp:
		return m.viewHelp()
	case ViewManager:
		return m.viewManager()
	case ViewEventForm:
		return m.viewEventForm()
	case ViewQuickAdd, ViewGoto:
		return m.viewPrompt()
	case ViewPick:
		return m.viewPick()
	case ViewConfirmDelete:
		return m.viewConfirmDelete()
	default:
		return m.viewCalendar()
	}
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ViewHelp:
		m.mode = ViewCalendar
		return m, nil
	case ViewManager:
		return m.handleManagerKeys(msg)
	case ViewEventForm:
		return m.handleFormKeys(msg)
	case ViewQuickAdd, ViewGoto:
		return m.handlePromptKeys(msg)
	case ViewPick:
		return m.handlePickKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmKeys(msg)
	default:
		return m.handleCalendarKeys(msg)
	}
}

func (m *Model) handleCalendarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.cal.Step(calendar.Left)
		return m, nil
	case "l", "right":
		m.cal.Step(calendar.Right)
		return m, nil
	case "k", "up":
		m.cal.Step(calendar.Up)
		return m, nil
	case "j", "down":
		m.cal.Step(calendar.Down)
		return m, nil
	}

	switch m.config.ActionFor(msg.String()) {
	case "quit":
		return m, tea.Quit
	case "help":
		m.mode = ViewHelp
	case "today":
		m.cal.GoToToday()
	case "next_month":
		m.cal.JumpMonth(1)
	case "prev_month":
		m.cal.JumpMonth(-1)
	case "new_event":
		return m, m.openForm(events.Draft{}, uuid.Nil)
	case "quick_add":
		return m, m.openPrompt(ViewQuickAdd, "")
	case "goto":
		return m, m.openPrompt(ViewGoto, m.cal.Selected().Format("2006-01-02"))
	case "edit_event":
		return m, m.openPick(pickEdit)
	case "delete_event":
		return m, m.openPick(pickDelete)
	case "manager":
		m.mode = ViewManager
		m.menu = menuAdd
	}

	return m, nil
}

func (m *Model) handleManagerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = ViewCalendar
	case "k", "up":
		if m.menu > 0 {
			m.menu--
		}
	case "j", "down":
		// Down wraps back to the top, up stops there.
		m.menu = (m.menu + 1) % menuCount
	case "a":
		m.menu = menuAdd
		return m.chooseMenu()
	case "e":
		m.menu = menuModify
		return m.chooseMenu()
	case "d":
		m.menu = menuDelete
		return m.chooseMenu()
	case "enter":
		return m.chooseMenu()
	}
	return m, nil
}

func (m *Model) chooseMenu() (tea.Model, tea.Cmd) {
	switch m.menu {
	case menuModify:
		return m, m.openPick(pickEdit)
	case menuDelete:
		return m, m.openPick(pickDelete)
	default:
		return m, m.openForm(events.Draft{}, uuid.Nil)
	}
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		m.mode = ViewCalendar
		return m, m.showMessage("Cancelled")
	case "tab", "down":
		return m, m.form.next()
	case "shift+tab", "up":
		return m, m.form.prev()
	case "enter":
		return m, m.submitForm()
	}

	return m, m.form.update(msg)
}

// submitForm stores the form's event. On failure the form stays open with
// its input intact.
func (m *Model) submitForm() tea.Cmd {
	e, err := m.form.draft().Build(m.cal.Selected(), m.parser)
	if err == nil && m.form.editing != uuid.Nil {
		err = m.store.Edit(m.form.editing, e)
	}
	if err != nil {
		m.form.err = err
		if errors.Is(err, events.ErrNotFound) {
			m.form = nil
			m.mode = ViewCalendar
			return m.showError("Event no longer exists")
		}
		return m.showError(err.Error())
	}

	status := "Event updated"
	if m.form.editing == uuid.Nil {
		m.store.Add(e)
		status = "Event added"
	}
	m.log.Debug(status, "title", e.Title, "start", e.Start, "end", e.End)

	m.form = nil
	m.mode = ViewCalendar
	m.cal.GoTo(dayOf(e.Start))
	return m.showMessage(status)
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt.Blur()
		m.mode = ViewCalendar
		return m, nil
	case "enter":
		return m, m.submitPrompt()
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) submitPrompt() tea.Cmd {
	input := m.prompt.Value()

	if m.mode == ViewGoto {
		date, err := m.parser.ParseDate(input)
		if err != nil {
			return m.showError(err.Error())
		}
		m.prompt.Blur()
		m.mode = ViewCalendar
		m.cal.GoTo(date)
		return nil
	}

	e, err := events.FromQuickEntry(input, m.cal.Selected(), m.parser, m.config.QuickEventLength)
	if err != nil {
		return m.showError(err.Error())
	}
	m.store.Add(e)
	m.log.Debug("quick add", "title", e.Title, "start", e.Start)

	m.prompt.Blur()
	m.mode = ViewCalendar
	m.cal.GoTo(dayOf(e.Start))
	return m.showMessage("Event added")
}

func (m *Model) handlePickKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.picked = nil
		m.mode = ViewCalendar
	case "k", "up":
		if m.pickIndex > 0 {
			m.pickIndex--
		}
	case "j", "down":
		if m.pickIndex < len(m.picked)-1 {
			m.pickIndex++
		}
	case "enter":
		e := m.picked[m.pickIndex]
		m.picked = nil
		if m.pickAction == pickEdit {
			return m, m.openForm(events.DraftFrom(e), e.ID)
		}
		if m.config.ConfirmDelete {
			m.pending = e.ID
			m.mode = ViewConfirmDelete
			return m, nil
		}
		return m, m.deleteEvent(e.ID)
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		return m, m.deleteEvent(m.pending)
	case "n", "N", "esc", "q":
		m.pending = uuid.Nil
		m.mode = ViewCalendar
		return m, m.showMessage("Cancelled")
	}
	return m, nil
}

func (m *Model) deleteEvent(id uuid.UUID) tea.Cmd {
	m.pending = uuid.Nil
	m.mode = ViewCalendar

	if err := m.store.Delete(id); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return m.showError("Event no longer exists")
		}
		return m.showError(err.Error())
	}
	m.log.Debug("deleted", "id", id)
	return m.showMessage("Event deleted")
}

func (m *Model) openForm(d events.Draft, editing uuid.UUID) tea.Cmd {
	m.form = newEventForm(d, editing)
	m.mode = ViewEventForm
	return m.form.focusField(fieldTitle)
}

func (m *Model) openPrompt(mode ViewMode, value string) tea.Cmd {
	m.mode = mode
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	if mode == ViewGoto {
		m.prompt.Placeholder = "2021-10-10, 12/25 or next friday"
	} else {
		m.prompt.Placeholder = "2pm-3pm dentist"
	}
	return m.prompt.Focus()
}

// openPick lists the selected day's events for editing or deleting.
func (m *Model) openPick(action pickAction) tea.Cmd {
	day := m.cal.Selected()
	evs := m.store.ForDay(day)
	if len(evs) == 0 {
		m.mode = ViewCalendar
		return m.showMessage("No events on " + day.Format(m.config.DateFormat))
	}

	m.pickAction = action
	m.picked = evs
	m.pickIndex = 0
	m.mode = ViewPick
	return nil
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case ViewEventForm:
		cmd = m.form.update(msg)
	case ViewQuickAdd, ViewGoto:
		m.prompt, cmd = m.prompt.Update(msg)
	}
	return m, cmd
}

func (m *Model) showMessage(msg string) tea.Cmd {
	m.message = msg
	m.messageErr = false
	return m.expireMessage()
}

func (m *Model) showError(msg string) tea.Cmd {
	m.message = msg
	m.messageErr = true
	return m.expireMessage()
}

// expireMessage clears the current message after the configured timeout
// unless a newer message replaced it.
func (m *Model) expireMessage() tea.Cmd {
	m.messageSeq++
	if m.config.MessageTimeout <= 0 {
		return nil
	}
	seq := m.messageSeq
	return tea.Tick(m.config.MessageTimeout, func(time.Time) tea.Msg {
		return messageTimeoutMsg{seq: seq}
	})
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ImportReloadedMsg reports that a watched calendar file was imported again.
type ImportReloadedMsg struct {
	Path  string
	Count int
	Err   error
}

// Message types
type tickMsg time.Time
type messageTimeoutMsg struct {
	seq int
}
