package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwarden/skuld/internal/calendar"
	"github.com/cwarden/skuld/internal/config"
	"github.com/cwarden/skuld/internal/events"
	"github.com/cwarden/skuld/internal/logging"
	"github.com/cwarden/skuld/internal/parser"
)

var testNow = time.Date(2021, 10, 10, 12, 0, 0, 0, time.Local)

func newTestModel(t *testing.T) *Model {
	t.Helper()

	clock := calendar.FixedClock(testNow)
	p := parser.NewTimeParser()
	p.SetNow(testNow)

	m := NewModel(config.DefaultConfig(), calendar.New(clock), events.NewManager(), p, logging.Discard())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

var specialKeys = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEsc,
	"tab":       tea.KeyTab,
	"shift+tab": tea.KeyShiftTab,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"ctrl+c":    tea.KeyCtrlC,
}

func key(s string) tea.KeyMsg {
	if k, ok := specialKeys[s]; ok {
		return tea.KeyMsg{Type: k}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func addEvent(t *testing.T, m *Model, title string, start time.Time, length time.Duration) events.Event {
	t.Helper()
	e, err := events.New(title, "", start, start.Add(length))
	if err != nil {
		t.Fatalf("events.New: %v", err)
	}
	m.store.Add(e)
	return e
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNavigationCrossesMonth(t *testing.T) {
	tests := []struct {
		name      string
		selected  time.Time
		key       string
		wantTitle string
		wantDay   int
	}{
		{"right at month end", time.Date(2021, 10, 31, 0, 0, 0, 0, time.Local), "right", "November 2021", 1},
		{"l within month", time.Date(2021, 10, 10, 0, 0, 0, 0, time.Local), "l", "October 2021", 11},
		{"left at month start", time.Date(2021, 10, 1, 0, 0, 0, 0, time.Local), "h", "September 2021", 30},
		{"down within month", time.Date(2021, 10, 10, 0, 0, 0, 0, time.Local), "j", "October 2021", 17},
		{"up stops at grid edge", time.Date(2021, 10, 2, 0, 0, 0, 0, time.Local), "up", "October 2021", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m.cal.SetSelected(tt.selected)

			press(m, tt.key)

			if got := m.cal.Title(); got != tt.wantTitle {
				t.Errorf("title = %q, want %q", got, tt.wantTitle)
			}
			if got := m.cal.Selected().Day(); got != tt.wantDay {
				t.Errorf("selected day = %d, want %d", got, tt.wantDay)
			}
		})
	}
}

func TestMonthKeys(t *testing.T) {
	m := newTestModel(t)

	press(m, ">")
	if m.cal.Title() != "November 2021" {
		t.Errorf("after > title = %q", m.cal.Title())
	}

	press(m, "<", "<")
	if m.cal.Title() != "September 2021" {
		t.Errorf("after << title = %q", m.cal.Title())
	}

	press(m, "t")
	if m.cal.Title() != "October 2021" || m.cal.Selected().Day() != 10 {
		t.Errorf("today did not return to Oct 10: %q day %d", m.cal.Title(), m.cal.Selected().Day())
	}
}

func TestQuitAndHelp(t *testing.T) {
	m := newTestModel(t)

	if isQuit(press(m, "?")) {
		t.Fatal("help should not quit")
	}
	if m.mode != ViewHelp {
		t.Fatalf("mode = %v, want help", m.mode)
	}
	if !strings.Contains(m.View(), "Skuld Help") {
		t.Error("help view missing heading")
	}

	// Any key leaves help, even the quit key
	if isQuit(press(m, "q")) {
		t.Error("q in help should only close help")
	}
	if m.mode != ViewCalendar {
		t.Errorf("mode = %v, want calendar", m.mode)
	}

	if !isQuit(press(m, "q")) {
		t.Error("q should quit from the calendar")
	}

	press(m, "n")
	if !isQuit(press(m, "ctrl+c")) {
		t.Error("ctrl+c should quit from a form")
	}
}

func TestAddEventForm(t *testing.T) {
	m := newTestModel(t)

	press(m, "n")
	if m.mode != ViewEventForm {
		t.Fatalf("mode = %v, want form", m.mode)
	}

	typeText(m, "Review")
	press(m, "tab")
	typeText(m, "quarterly numbers")
	press(m, "tab")
	typeText(m, "10:00")
	press(m, "tab")
	typeText(m, "11:30")
	press(m, "enter")

	if m.mode != ViewCalendar {
		t.Fatalf("mode = %v, want calendar after save", m.mode)
	}
	evs := m.store.ForDay(testNow)
	if len(evs) != 1 {
		t.Fatalf("got %d events on the selected day, want 1", len(evs))
	}
	e := evs[0]
	if e.Title != "Review" || e.Description != "quarterly numbers" {
		t.Errorf("unexpected event %+v", e)
	}
	wantStart := time.Date(2021, 10, 10, 10, 0, 0, 0, time.Local)
	if !e.Start.Equal(wantStart) || e.Duration() != 90*time.Minute {
		t.Errorf("event spans %v for %v", e.Start, e.Duration())
	}
	if m.message != "Event added" {
		t.Errorf("message = %q", m.message)
	}
	if !strings.Contains(m.View(), "Review") {
		t.Error("agenda does not list the new event")
	}
}

func TestAddEventFormErrors(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr error
	}{
		{"end before start", "10:00", "09:00", events.ErrInvalidTimeRange},
		{"end equals start", "10:00", "10:00", events.ErrInvalidTimeRange},
		{"garbage start", "soonish", "11:00", events.ErrInvalidInput},
		{"empty end", "10:00", "", events.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)

			press(m, "n")
			typeText(m, "Standup")
			press(m, "down", "down")
			typeText(m, tt.start)
			press(m, "down")
			typeText(m, tt.end)
			press(m, "enter")

			if m.mode != ViewEventForm {
				t.Fatalf("mode = %v, form should stay open", m.mode)
			}
			if !errors.Is(m.form.err, tt.wantErr) {
				t.Errorf("form error = %v, want %v", m.form.err, tt.wantErr)
			}
			if !m.messageErr || m.message == "" {
				t.Errorf("expected an error message, got %q", m.message)
			}
			if got := m.form.inputs[fieldTitle].Value(); got != "Standup" {
				t.Errorf("title input = %q, want it retained", got)
			}
			if got := m.form.inputs[fieldStart].Value(); got != tt.start {
				t.Errorf("start input = %q, want %q", got, tt.start)
			}
			if m.store.Len() != 0 {
				t.Errorf("store has %d events, want 0", m.store.Len())
			}
		})
	}
}

func TestFormFocusWraps(t *testing.T) {
	m := newTestModel(t)
	press(m, "n")

	press(m, "shift+tab")
	if m.form.focus != fieldEnd {
		t.Errorf("focus = %d, want end field", m.form.focus)
	}
	press(m, "tab")
	if m.form.focus != fieldTitle {
		t.Errorf("focus = %d, want title field", m.form.focus)
	}
}

func TestEscCancelsForm(t *testing.T) {
	m := newTestModel(t)

	press(m, "n")
	typeText(m, "Never saved")
	press(m, "esc")

	if m.mode != ViewCalendar {
		t.Errorf("mode = %v, want calendar", m.mode)
	}
	if m.form != nil {
		t.Error("form should be discarded")
	}
	if m.store.Len() != 0 {
		t.Errorf("store has %d events", m.store.Len())
	}
}

func TestEditEvent(t *testing.T) {
	m := newTestModel(t)
	e := addEvent(t, m, "Standup", time.Date(2021, 10, 10, 9, 0, 0, 0, time.Local), 15*time.Minute)

	press(m, "e")
	if m.mode != ViewPick {
		t.Fatalf("mode = %v, want pick", m.mode)
	}
	press(m, "enter")
	if m.mode != ViewEventForm {
		t.Fatalf("mode = %v, want form", m.mode)
	}
	if got := m.form.inputs[fieldStart].Value(); got != "2021-10-10 09:00" {
		t.Errorf("start prefilled as %q", got)
	}
	if !strings.Contains(m.View(), "Edit Event") {
		t.Error("form should be titled Edit Event")
	}

	m.form.inputs[fieldTitle].SetValue("Retro")
	m.form.inputs[fieldEnd].SetValue("10:00")
	press(m, "enter")

	got, ok := m.store.Get(e.ID)
	if !ok {
		t.Fatal("edited event lost its id")
	}
	if got.Title != "Retro" || got.Duration() != time.Hour {
		t.Errorf("edit not applied: %+v", got)
	}
	if m.store.Len() != 1 {
		t.Errorf("store has %d events, want 1", m.store.Len())
	}
}

func TestEditEventRemovedMeanwhile(t *testing.T) {
	m := newTestModel(t)
	e := addEvent(t, m, "Standup", time.Date(2021, 10, 10, 9, 0, 0, 0, time.Local), 15*time.Minute)

	press(m, "e", "enter")
	if err := m.store.Delete(e.ID); err != nil {
		t.Fatal(err)
	}
	press(m, "enter")

	if m.mode != ViewCalendar {
		t.Errorf("mode = %v, want calendar", m.mode)
	}
	if !m.messageErr || !strings.Contains(m.message, "no longer exists") {
		t.Errorf("message = %q", m.message)
	}
}

func TestDeleteEvent(t *testing.T) {
	m := newTestModel(t)
	first := addEvent(t, m, "Early", time.Date(2021, 10, 10, 8, 0, 0, 0, time.Local), time.Hour)
	second := addEvent(t, m, "Late", time.Date(2021, 10, 10, 18, 0, 0, 0, time.Local), time.Hour)

	press(m, "d", "down", "enter")
	if m.mode != ViewConfirmDelete {
		t.Fatalf("mode = %v, want confirm", m.mode)
	}
	if !strings.Contains(m.View(), `"Late"`) {
		t.Error("confirmation should name the event")
	}

	press(m, "y")
	if _, ok := m.store.Get(second.ID); ok {
		t.Error("second event should be deleted")
	}
	if _, ok := m.store.Get(first.ID); !ok {
		t.Error("first event should remain")
	}
	if m.message != "Event deleted" {
		t.Errorf("message = %q", m.message)
	}
}

func TestDeleteDeclined(t *testing.T) {
	m := newTestModel(t)
	addEvent(t, m, "Keep", time.Date(2021, 10, 10, 8, 0, 0, 0, time.Local), time.Hour)

	press(m, "d", "enter", "n")
	if m.store.Len() != 1 {
		t.Errorf("store has %d events, want 1", m.store.Len())
	}
	if m.mode != ViewCalendar {
		t.Errorf("mode = %v", m.mode)
	}
}

func TestDeleteWithoutConfirm(t *testing.T) {
	m := newTestModel(t)
	m.config.ConfirmDelete = false
	addEvent(t, m, "Gone", time.Date(2021, 10, 10, 8, 0, 0, 0, time.Local), time.Hour)

	press(m, "d", "enter")
	if m.store.Len() != 0 {
		t.Errorf("store has %d events, want 0", m.store.Len())
	}
}

func TestDeleteNotFound(t *testing.T) {
	m := newTestModel(t)
	e := addEvent(t, m, "Reloaded away", time.Date(2021, 10, 10, 8, 0, 0, 0, time.Local), time.Hour)

	press(m, "d", "enter")
	if err := m.store.Delete(e.ID); err != nil {
		t.Fatal(err)
	}
	press(m, "y")

	if !m.messageErr || !strings.Contains(m.message, "no longer exists") {
		t.Errorf("message = %q, err = %v", m.message, m.messageErr)
	}
	if m.mode != ViewCalendar {
		t.Errorf("mode = %v", m.mode)
	}
}

func TestPickWithNoEvents(t *testing.T) {
	m := newTestModel(t)

	press(m, "d")
	if m.mode != ViewCalendar {
		t.Errorf("mode = %v, want calendar", m.mode)
	}
	if !strings.Contains(m.message, "No events on October 10, 2021") {
		t.Errorf("message = %q", m.message)
	}
}

func TestManagerMenu(t *testing.T) {
	m := newTestModel(t)
	addEvent(t, m, "Standup", time.Date(2021, 10, 10, 9, 0, 0, 0, time.Local), 15*time.Minute)

	press(m, "m")
	if m.mode != ViewManager {
		t.Fatalf("mode = %v, want manager", m.mode)
	}
	if !strings.Contains(m.View(), "Delete event") {
		t.Error("manager view should list delete")
	}

	press(m, "up")
	if m.menu != menuAdd {
		t.Errorf("up from Add should stay put, menu %d", m.menu)
	}
	press(m, "down", "down", "down")
	if m.menu != menuAdd {
		t.Errorf("down from Delete should wrap to Add, menu %d", m.menu)
	}

	press(m, "d")
	if m.mode != ViewPick || m.pickAction != pickDelete {
		t.Errorf("d should open the delete list, mode %v action %v", m.mode, m.pickAction)
	}

	press(m, "esc", "m", "down", "enter")
	if m.mode != ViewPick || m.pickAction != pickEdit {
		t.Errorf("down from Add should choose Modify, mode %v action %v", m.mode, m.pickAction)
	}

	press(m, "esc", "m", "a")
	if m.mode != ViewEventForm {
		t.Errorf("a should open the add form, mode %v", m.mode)
	}
}

func TestQuickAdd(t *testing.T) {
	m := newTestModel(t)

	press(m, "a")
	typeText(m, "2pm-3pm dentist")
	press(m, "enter")

	evs := m.store.ForDay(testNow)
	if len(evs) != 1 {
		t.Fatalf("got %d events, want 1", len(evs))
	}
	if evs[0].Title != "dentist" || evs[0].Start.Hour() != 14 || evs[0].Duration() != time.Hour {
		t.Errorf("unexpected event %+v", evs[0])
	}

	press(m, "a")
	typeText(m, "tomorrow 9am standup")
	press(m, "enter")
	if m.cal.Selected().Day() != 11 {
		t.Errorf("selection should follow the new event, got day %d", m.cal.Selected().Day())
	}
	if evs := m.store.ForDay(m.cal.Selected()); len(evs) != 1 || evs[0].Duration() != m.config.QuickEventLength {
		t.Errorf("unexpected events on Oct 11: %+v", evs)
	}

	press(m, "a")
	typeText(m, "25:00 nonsense")
	press(m, "enter")
	if m.mode != ViewQuickAdd || !m.messageErr {
		t.Errorf("bad entry should keep the prompt open, mode %v", m.mode)
	}
	if m.prompt.Value() != "25:00 nonsense" {
		t.Errorf("prompt = %q, want it retained", m.prompt.Value())
	}
}

func TestGotoDate(t *testing.T) {
	m := newTestModel(t)

	press(m, "g")
	if m.mode != ViewGoto {
		t.Fatalf("mode = %v", m.mode)
	}
	if m.prompt.Value() != "2021-10-10" {
		t.Errorf("prompt prefilled with %q", m.prompt.Value())
	}

	m.prompt.SetValue("")
	typeText(m, "2024-02-29")
	press(m, "enter")

	if m.cal.Title() != "February 2024" || m.cal.Selected().Day() != 29 {
		t.Errorf("goto landed on %q day %d", m.cal.Title(), m.cal.Selected().Day())
	}

	press(m, "g")
	m.prompt.SetValue("someday")
	press(m, "enter")
	if m.mode != ViewGoto || !m.messageErr {
		t.Errorf("invalid date should keep the prompt open, mode %v", m.mode)
	}
}

func TestImportReloaded(t *testing.T) {
	m := newTestModel(t)

	m.Update(ImportReloadedMsg{Path: "/tmp/work.ics", Count: 3})
	if m.message != "Reloaded 3 events from work.ics" || m.messageErr {
		t.Errorf("message = %q", m.message)
	}

	m.Update(ImportReloadedMsg{Path: "/tmp/work.ics", Err: errors.New("bad file")})
	if !m.messageErr || !strings.Contains(m.message, "bad file") {
		t.Errorf("message = %q", m.message)
	}
}

func TestTickFollowsCalendarClock(t *testing.T) {
	m := newTestModel(t)
	m.parser.SetNow(time.Date(2000, 1, 1, 0, 0, 0, 0, time.Local))

	m.Update(tickMsg(time.Date(2030, 6, 1, 0, 0, 0, 0, time.Local)))

	got, err := m.parser.ParseDate("tomorrow")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2021, 10, 11, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("tomorrow = %v, want %v", got, want)
	}
}

func TestMessageTimeout(t *testing.T) {
	m := newTestModel(t)

	m.showMessage("first")
	stale := messageTimeoutMsg{seq: m.messageSeq}
	m.showMessage("second")

	m.Update(stale)
	if m.message != "second" {
		t.Errorf("stale timeout cleared %q", m.message)
	}

	m.Update(messageTimeoutMsg{seq: m.messageSeq})
	if m.message != "" {
		t.Errorf("message = %q, want cleared", m.message)
	}
}

func TestViewCalendar(t *testing.T) {
	m := newTestModel(t)
	addEvent(t, m, "Standup", time.Date(2021, 10, 10, 9, 0, 0, 0, time.Local), 15*time.Minute)

	view := m.View()
	for _, want := range []string{"October 2021", "Su Mo Tu We Th Fr Sa", "31", "Standup", "09:00-09:15", "October 10, 2021"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	fresh := NewModel(config.DefaultConfig(), calendar.New(calendar.FixedClock(testNow)), events.NewManager(), parser.NewTimeParser(), logging.Discard())
	if fresh.View() != "Loading..." {
		t.Error("view before the first window size should be a placeholder")
	}
}

func TestFormatSpan(t *testing.T) {
	m := newTestModel(t)
	day := time.Date(2021, 10, 10, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  string
	}{
		{"same day", day.Add(9 * time.Hour), day.Add(10 * time.Hour), "09:00-10:00"},
		{"all day", day, day.AddDate(0, 0, 1), "all day"},
		{"several days", day, day.AddDate(0, 0, 3), "3 days"},
		{"overnight", day.Add(22 * time.Hour), day.Add(26 * time.Hour), "22:00-Oct 11 02:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := events.New("x", "", tt.start, tt.end)
			if err != nil {
				t.Fatal(err)
			}
			if got := m.formatSpan(e); got != tt.want {
				t.Errorf("formatSpan() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColorStyle(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"yellow", "3"},
		{"Cyan", "6"},
		{"220", "220"},
		{"#ff8800", "#ff8800"},
	}

	for _, tt := range tests {
		if got := colorCode(tt.spec); got != tt.want {
			t.Errorf("colorCode(%q) = %q, want %q", tt.spec, got, tt.want)
		}
	}

	if !colorStyle("reverse").GetReverse() {
		t.Error("reverse spec should set the reverse attribute")
	}
	if !highlightStyle("").GetReverse() {
		t.Error("empty highlight should fall back to reverse video")
	}
}
