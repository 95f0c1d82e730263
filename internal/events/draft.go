package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/cwarden/skuld/internal/parser"
)

// Draft is the raw text of an event form.
type Draft struct {
	Title       string
	Description string
	Start       string
	End         string
}

// DraftFrom fills a form from an existing event.
func DraftFrom(e Event) Draft {
	return Draft{
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start.Format("2006-01-02 15:04"),
		End:         e.End.Format("2006-01-02 15:04"),
	}
}

// Build parses the draft into an event. Times without a date fall on day;
// an end time without a date falls on the start's date. Unparsable times
// yield ErrInvalidInput and an end not after the start yields
// ErrInvalidTimeRange.
func (d Draft) Build(day time.Time, p *parser.TimeParser) (Event, error) {
	start, err := p.ParseAt(d.Start, day)
	if err != nil {
		return Event{}, fmt.Errorf("%w: start time: %v", ErrInvalidInput, err)
	}

	end, err := p.ParseAt(d.End, start)
	if err != nil {
		return Event{}, fmt.Errorf("%w: end time: %v", ErrInvalidInput, err)
	}

	return New(strings.TrimSpace(d.Title), strings.TrimSpace(d.Description), start, end)
}

// FromQuickEntry builds an event from a one-line entry such as
// "tomorrow 2pm-3pm dentist". A single time gets defaultLength; an entry
// without a time covers the whole day.
func FromQuickEntry(input string, day time.Time, p *parser.TimeParser, defaultLength time.Duration) (Event, error) {
	parsed, err := p.Parse(input, day)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	start := parsed.Date
	end := start.AddDate(0, 0, 1)
	if parsed.HasTime {
		start = parsed.Time
		length := parsed.Duration
		if !parsed.HasEnd {
			length = defaultLength
		}
		end = start.Add(length)
	}

	return New(parsed.Text, "", start, end)
}
