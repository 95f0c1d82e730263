package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/cwarden/skuld/internal/events"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldStart
	fieldEnd
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Start", "End"}

var fieldPlaceholders = [fieldCount]string{
	"Meeting with team",
	"optional",
	"10:00, 2pm or 2021-10-10 09:00",
	"11:00",
}

// eventForm holds the inputs of the add and edit forms. editing is
// uuid.Nil when adding.
type eventForm struct {
	inputs  [fieldCount]textinput.Model
	focus   int
	editing uuid.UUID
	err     error
}

func newEventForm(d events.Draft, editing uuid.UUID) *eventForm {
	f := &eventForm{editing: editing}
	values := [fieldCount]string{d.Title, d.Description, d.Start, d.End}

	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = fieldPlaceholders[i]
		in.Width = 40
		in.SetValue(values[i])
		f.inputs[i] = in
	}
	return f
}

func (f *eventForm) draft() events.Draft {
	return events.Draft{
		Title:       f.inputs[fieldTitle].Value(),
		Description: f.inputs[fieldDescription].Value(),
		Start:       f.inputs[fieldStart].Value(),
		End:         f.inputs[fieldEnd].Value(),
	}
}

func (f *eventForm) focusField(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[i].Focus()
}

func (f *eventForm) next() tea.Cmd {
	return f.focusField((f.focus + 1) % fieldCount)
}

func (f *eventForm) prev() tea.Cmd {
	return f.focusField((f.focus + fieldCount - 1) % fieldCount)
}

// update passes msg to the focused input.
func (f *eventForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}
