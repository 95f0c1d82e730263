// Package ics reads events from iCalendar files into the event store and
// writes stored events back out as iCalendar.
package ics

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/cwarden/skuld/internal/events"
)

// Load parses an iCalendar stream. Date-only events cover whole days in
// loc. An event without DTEND ends DURATION after its start, or a day
// later when it is date-only. VEVENTs whose end is not after their start
// are skipped and logged.
func Load(r io.Reader, loc *time.Location, log *slog.Logger) ([]events.Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	out := make([]events.Event, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		e, err := convert(ve, loc)
		if err != nil {
			log.Warn("skipping vevent", "uid", propValue(ve, ical.ComponentPropertyUniqueId), "err", err)
			continue
		}
		out = append(out, e)
	}

	log.Debug("ics parse completed", "event_count", len(out))
	return out, nil
}

func convert(ve *ical.VEvent, loc *time.Location) (events.Event, error) {
	title := propValue(ve, ical.ComponentPropertySummary)
	desc := propValue(ve, ical.ComponentPropertyDescription)

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return events.Event{}, errors.New("missing DTSTART")
	}

	if isDateOnly(dtStart) {
		start, err := time.ParseInLocation("20060102", strings.TrimSpace(dtStart.Value), loc)
		if err != nil {
			return events.Event{}, fmt.Errorf("DTSTART: %w", err)
		}
		end := start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil && dtEnd.Value != "" {
			if t, err := time.ParseInLocation("20060102", strings.TrimSpace(dtEnd.Value), loc); err == nil {
				end = t
			}
		} else if dur := propValue(ve, ical.ComponentPropertyDuration); dur != "" {
			d, err := parseDuration(dur)
			if err != nil {
				return events.Event{}, fmt.Errorf("DURATION: %w", err)
			}
			end = start.AddDate(0, 0, d.days).Add(d.clock)
		}
		return events.New(title, desc, start, end)
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return events.Event{}, fmt.Errorf("DTSTART: %w", err)
	}
	start = start.In(loc)

	if ve.GetProperty(ical.ComponentPropertyDtEnd) == nil {
		dur := propValue(ve, ical.ComponentPropertyDuration)
		if dur == "" {
			return events.Event{}, errors.New("missing DTEND and DURATION")
		}
		d, err := parseDuration(dur)
		if err != nil {
			return events.Event{}, fmt.Errorf("DURATION: %w", err)
		}
		return events.New(title, desc, start, start.AddDate(0, 0, d.days).Add(d.clock))
	}

	end, err := ve.GetEndAt()
	if err != nil {
		return events.Event{}, fmt.Errorf("DTEND: %w", err)
	}

	return events.New(title, desc, start, end.In(loc))
}

// icalDuration is a DURATION value split into nominal days (weeks count
// as seven) and an exact clock part, so days follow the calendar across
// DST changes.
type icalDuration struct {
	days  int
	clock time.Duration
}

var durationPattern = regexp.MustCompile(`^([+-])?P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseDuration reads an RFC 5545 DURATION such as P1D, PT1H30M or -PT15M.
func parseDuration(s string) (icalDuration, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	m := durationPattern.FindStringSubmatch(s)
	if m == nil || strings.Join(m[2:], "") == "" || strings.HasSuffix(s, "T") {
		return icalDuration{}, fmt.Errorf("invalid duration %q", s)
	}

	num := func(i int) int {
		if m[i] == "" {
			return 0
		}
		n, _ := strconv.Atoi(m[i])
		return n
	}

	d := icalDuration{
		days:  num(2)*7 + num(3),
		clock: time.Duration(num(4))*time.Hour + time.Duration(num(5))*time.Minute + time.Duration(num(6))*time.Second,
	}
	if m[1] == "-" {
		d.days, d.clock = -d.days, -d.clock
	}
	return d, nil
}

// Export writes evs as a VCALENDAR with one VEVENT per event.
func Export(w io.Writer, evs []events.Event, stamp time.Time) error {
	cal := ical.NewCalendarFor("skuld")
	for _, e := range evs {
		ve := cal.AddEvent(e.ID.String())
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		ve.SetSummary(e.Title)
		if e.HasDescription() {
			ve.SetDescription(e.Description)
		}
	}
	return cal.SerializeTo(w)
}

func isDateOnly(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return p.Value
	}
	return ""
}
