package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/cwarden/skuld/internal/events"
)

// colorNames maps the basic terminal colour names to their ANSI numbers.
var colorNames = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
}

// colorCode turns a colour spec (name, ANSI number or hex) into something
// lipgloss.Color understands.
func colorCode(spec string) string {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if code, ok := colorNames[spec]; ok {
		return code
	}
	return spec
}

// colorStyle renders spec as a foreground colour, or as a text attribute
// for "bold", "underline" and "reverse".
func colorStyle(spec string) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch strings.ToLower(strings.TrimSpace(spec)) {
	case "":
		return style
	case "bold":
		return style.Bold(true)
	case "underline":
		return style.Underline(true)
	case "reverse":
		return style.Reverse(true)
	}
	return style.Foreground(lipgloss.Color(colorCode(spec)))
}

// highlightStyle renders spec as a background colour behind dark text.
func highlightStyle(spec string) lipgloss.Style {
	switch strings.ToLower(strings.TrimSpace(spec)) {
	case "", "reverse":
		return lipgloss.NewStyle().Reverse(true)
	case "bold", "underline":
		return colorStyle(spec)
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("235")).
		Background(lipgloss.Color(colorCode(spec)))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// formatSpan renders an event's times relative to the day it is listed on.
func (m *Model) formatSpan(e events.Event) string {
	tf := m.config.TimeFormat
	if e.End.Sub(e.Start)%(24*time.Hour) == 0 && e.Start.Equal(dayOf(e.Start)) {
		days := int(e.Duration() / (24 * time.Hour))
		if days == 1 {
			return "all day"
		}
		return fmt.Sprintf("%d days", days)
	}
	if dayOf(e.Start).Equal(dayOf(e.End)) {
		return e.Start.Format(tf) + "-" + e.End.Format(tf)
	}
	return e.Start.Format(tf) + "-" + e.End.Format("Jan 2 "+tf)
}

// renderAgenda lists the selected day's events.
func (m *Model) renderAgenda(width int) string {
	day := m.cal.Selected()
	var lines []string

	lines = append(lines, m.styles.Header.Render(wordwrap.String(day.Format(m.config.DateFormat), width)))
	lines = append(lines, "")

	evs := m.store.ForDay(day)
	if len(evs) == 0 {
		lines = append(lines, m.styles.Help.Render("(no events)"))
	}

	for i, e := range evs {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, m.styles.Event.Render(m.formatSpan(e))+" "+m.styles.Normal.Render(e.Title))

		if !e.HasDescription() {
			continue
		}
		desc := e.Description
		if m.config.WrapText {
			// Wrap long descriptions without breaking words or URLs
			desc = wordwrap.String(desc, width-2)
		}
		for _, line := range strings.Split(desc, "\n") {
			if line != "" {
				lines = append(lines, m.styles.Help.Render("  "+line))
			}
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return m.styles.Border.Width(width).Render(content)
}

// renderMonth draws the anchor month, Sunday first.
func (m *Model) renderMonth() string {
	var lines []string

	title := lipgloss.NewStyle().Width(20).Align(lipgloss.Center).Render(m.cal.Title())
	lines = append(lines, m.styles.Header.Render(title))
	lines = append(lines, "Su Mo Tu We Th Fr Sa")

	grid := m.cal.MonthGrid()
	for row := 0; row < len(grid); row++ {
		cells := make([]string, len(grid[row]))
		for col, day := range grid[row] {
			cells[col] = m.renderDay(day, col)
		}
		lines = append(lines, strings.Join(cells, " "))
	}

	return m.styles.Border.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderDay(day, col int) string {
	if day == 0 {
		return "  "
	}
	text := fmt.Sprintf("%2d", day)

	switch {
	case m.cal.IsSelected(day):
		return m.styles.Selected.Render(text)
	case m.cal.IsToday(day):
		return m.styles.Today.Render(text)
	case len(m.store.ForDay(m.cal.Date(day))) > 0:
		return m.styles.Event.Render(text)
	case col == 0 || col == 6:
		return m.styles.Weekend.Render(text)
	default:
		return m.styles.Normal.Render(text)
	}
}
