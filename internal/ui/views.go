package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

func (m *Model) viewCalendar() string {
	month := m.renderMonth()

	agendaWidth := m.width - lipgloss.Width(month) - 6
	if agendaWidth < 24 {
		agendaWidth = 24
	}
	agenda := m.renderAgenda(agendaWidth)

	body := lipgloss.JoinHorizontal(lipgloss.Top, month, "  ", agenda)
	return lipgloss.JoinVertical(lipgloss.Left, body, "", m.renderStatusBar())
}

func (m *Model) viewHelp() string {
	key := func(action, fallback string) string {
		if k := m.config.KeyFor(action); k != "" {
			return k
		}
		return fallback
	}
	line := func(keys, text string) string {
		return m.styles.Help.Render(fmt.Sprintf("  %-9s - %s", keys, text))
	}

	help := []string{
		m.styles.Header.Render("Skuld Help"),
		"",
		m.styles.Normal.Render("Navigation:"),
		line("h/←", "Previous day"),
		line("l/→", "Next day"),
		line("k/↑", "Previous week"),
		line("j/↓", "Next week"),
		line(key("prev_month", "-"), "Previous month"),
		line(key("next_month", "-"), "Next month"),
		line(key("today", "-"), "Today"),
		line(key("goto", "-"), "Go to date"),
		"",
		m.styles.Normal.Render("Events:"),
		line(key("new_event", "-"), "New event on selected day"),
		line(key("quick_add", "-"), "Quick add (e.g. 2pm-3pm dentist)"),
		line(key("edit_event", "-"), "Edit event"),
		line(key("delete_event", "-"), "Delete event"),
		line(key("manager", "-"), "Event manager"),
		"",
		line(key("help", "-"), "Toggle help"),
		line(key("quit", "ctrl+c"), "Quit"),
		"",
		m.styles.Help.Render("Press any key to return..."),
	}

	return lipgloss.JoinVertical(lipgloss.Left, help...)
}

func (m *Model) viewManager() string {
	sections := []string{
		m.styles.Header.Render("Event Manager"),
		m.styles.Help.Render(m.cal.Selected().Format(m.config.DateFormat)),
		"",
	}

	for i, label := range menuLabels {
		if i == m.menu {
			sections = append(sections, m.styles.Selected.Render("> "+label))
		} else {
			sections = append(sections, m.styles.Normal.Render("  "+label))
		}
	}

	sections = append(sections, "",
		m.styles.Help.Render("a/e/d or Enter to choose, Esc to go back"),
		m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) viewEventForm() string {
	title := "New Event"
	if m.form.editing != uuid.Nil {
		title = "Edit Event"
	}

	sections := []string{
		m.styles.Header.Render(title),
		m.styles.Help.Render("Times without a date fall on " + m.cal.Selected().Format(m.config.DateFormat)),
		"",
	}

	for i := range m.form.inputs {
		label := fmt.Sprintf("%-12s", fieldLabels[i]+":")
		if i == m.form.focus {
			label = m.styles.Today.Render(label)
		} else {
			label = m.styles.Normal.Render(label)
		}
		sections = append(sections, label+" "+m.form.inputs[i].View())
	}

	sections = append(sections, "")
	if m.form.err != nil {
		sections = append(sections, m.styles.Error.Render(m.form.err.Error()))
	}
	sections = append(sections, m.styles.Help.Render("Tab/↑/↓ to move, Enter to save, Esc to cancel"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) viewPrompt() string {
	title := "Quick Add"
	prompt := "Enter event (e.g., 'tomorrow 2pm Meeting with team'):"
	if m.mode == ViewGoto {
		title = "Go To Date"
		prompt = "Enter a date:"
	}

	sections := []string{
		m.styles.Header.Render(title),
		"",
		m.styles.Normal.Render(prompt),
		m.prompt.View(),
		"",
		m.styles.Help.Render("Enter to confirm, Esc to cancel"),
		m.renderStatusBar(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) viewPick() string {
	verb := "Edit"
	if m.pickAction == pickDelete {
		verb = "Delete"
	}

	sections := []string{
		m.styles.Header.Render(fmt.Sprintf("%s event on %s", verb, m.cal.Selected().Format(m.config.DateFormat))),
		"",
	}

	for i, e := range m.picked {
		line := fmt.Sprintf("%s %s", m.formatSpan(e), e.Title)
		if i == m.pickIndex {
			sections = append(sections, m.styles.Selected.Render("> "+line))
		} else {
			sections = append(sections, m.styles.Normal.Render("  "+line))
		}
	}

	sections = append(sections, "", m.styles.Help.Render("↑/↓ to choose, Enter to select, Esc to cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) viewConfirmDelete() string {
	title := "this event"
	if e, ok := m.store.Get(m.pending); ok {
		title = fmt.Sprintf("%q", e.Title)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render("Delete Event"),
		"",
		m.styles.Normal.Render(fmt.Sprintf("Delete %s? (y/n)", title)),
		"",
		m.renderStatusBar(),
	)
}

func (m *Model) renderStatusBar() string {
	left := fmt.Sprintf(" %s | Events: %d",
		m.cal.Selected().Format("Jan 2, 2006"),
		len(m.store.ForDay(m.cal.Selected())))

	right := m.styles.Help.Render(m.config.KeyFor("help") + " for help | " + m.config.KeyFor("quit") + " to quit")
	if m.message != "" {
		if m.messageErr {
			right = m.styles.Error.Render(m.message)
		} else {
			right = m.styles.Message.Render(m.message)
		}
	}

	width := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if width < 0 {
		width = 0
	}

	middle := strings.Repeat(" ", width)

	return m.styles.Help.Render(left+middle) + right
}
