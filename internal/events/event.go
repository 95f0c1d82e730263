package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidTimeRange is returned when an event would not end after it starts.
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	// ErrNotFound is returned for an id that is not in the store.
	ErrNotFound = errors.New("event not found")
	// ErrInvalidInput is returned when form input cannot be turned into an event.
	ErrInvalidInput = errors.New("invalid input")
)

type Event struct {
	ID          uuid.UUID
	Title       string
	Description string // empty when the event has no description
	Start       time.Time
	End         time.Time
}

// New validates the time range and returns an event with a fresh id.
// The event is not stored.
func New(title, description string, start, end time.Time) (Event, error) {
	if !end.After(start) {
		return Event{}, fmt.Errorf("%w: %s is not after %s", ErrInvalidTimeRange,
			end.Format("2006-01-02 15:04"), start.Format("2006-01-02 15:04"))
	}

	return Event{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Start:       start,
		End:         end,
	}, nil
}

func (e Event) HasDescription() bool {
	return e.Description != ""
}

func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// OnDay reports whether the event starts on day's calendar date in day's
// location. The end time is not considered.
func (e Event) OnDay(day time.Time) bool {
	y1, m1, d1 := e.Start.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
