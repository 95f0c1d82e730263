package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnparsable is wrapped by every parse failure.
var ErrUnparsable = errors.New("unparsable time")

type ParsedTime struct {
	Date     time.Time
	HasTime  bool
	Time     time.Time
	Duration time.Duration
	HasEnd   bool   // an explicit end time was given, Duration may be zero or negative
	Text     string // Remaining text after parsing time
}

type TimeParser struct {
	now      time.Time
	location *time.Location
}

var (
	weekdayRe   = regexp.MustCompile(`^(next|this)\s+(mon|monday|tue|tuesday|wed|wednesday|thu|thursday|fri|friday|sat|saturday|sun|sunday)\b`)
	inRe        = regexp.MustCompile(`^in\s+(\d+)\s+(day|days|week|weeks|month|months)\b`)
	fromNowRe   = regexp.MustCompile(`^(\d+)\s+(day|days|week|weeks|month|months)\s+from\s+(now|today)`)
	isoDateRe   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:t|\s+|$)`)
	dateRe      = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	shortDateRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})\b`)
	monthNameRe = regexp.MustCompile(`^(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|september|oct|october|nov|november|dec|december)\s+(\d{1,2})(?:,?\s+(\d{4}))?`)
	rangeRe     = regexp.MustCompile(`^(\d{1,2}):?(\d{2})?\s*(am|pm)?\s*-\s*(\d{1,2}):?(\d{2})?\s*(am|pm)?`)
	timeRe      = regexp.MustCompile(`^(\d{1,2}):?(\d{2})?\s*(am|pm)?`)
)

var namedTimes = map[string]int{
	"noon":      12,
	"midnight":  0,
	"morning":   9,
	"afternoon": 14,
	"evening":   18,
	"night":     21,
}

func NewTimeParser() *TimeParser {
	return &TimeParser{
		now:      time.Now(),
		location: time.Local,
	}
}

// SetNow sets the reference for relative dates such as "tomorrow".
func (p *TimeParser) SetNow(now time.Time) {
	p.now = now
}

// SetLocation sets the zone parsed times are built in.
func (p *TimeParser) SetLocation(loc *time.Location) {
	p.location = loc
}

// ParseAt parses a single point in time. The input is an optional date
// followed by a clock time, e.g. "10:00", "2:30pm", "tomorrow noon" or
// "2021-10-10 09:00". Without a date the clock time falls on day.
func (p *TimeParser) ParseAt(input string, day time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrUnparsable)
	}

	date, remaining, err := p.parseDate(input, day)
	if err != nil {
		return time.Time{}, err
	}
	if remaining == "" {
		return time.Time{}, fmt.Errorf("%w: %q has no time of day", ErrUnparsable, input)
	}

	hour, minute, rest, ok, err := p.parseClock(remaining)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsable, input)
	}
	if rest != "" {
		return time.Time{}, fmt.Errorf("%w: unexpected %q", ErrUnparsable, rest)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, p.location), nil
}

// ParseDate parses a date on its own, e.g. "2021-10-10", "12/25" or
// "next friday".
func (p *TimeParser) ParseDate(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrUnparsable)
	}

	if date, rest, ok := p.parseRelativeDate(input); ok && strings.TrimSpace(rest) == "" {
		return date, nil
	}
	date, rest, ok, err := p.parseAbsoluteDate(input)
	if err != nil {
		return time.Time{}, err
	}
	if !ok || strings.TrimSpace(rest) != "" {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrUnparsable, input)
	}
	return date, nil
}

// Parse reads a quick entry such as "tomorrow 2pm-3pm dentist". The date
// defaults to day and the leftover words become Text.
func (p *TimeParser) Parse(input string, day time.Time) (*ParsedTime, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty input", ErrUnparsable)
	}

	result := &ParsedTime{}

	date, remaining, err := p.parseDate(input, day)
	if err != nil {
		return nil, err
	}
	result.Date = date

	if t, duration, ranged, text, ok, err := p.parseTime(remaining, date); err != nil {
		return nil, err
	} else if ok {
		result.HasTime = true
		result.Time = t
		result.Duration = duration
		result.HasEnd = ranged
		remaining = text
	}

	result.Text = strings.TrimSpace(remaining)
	return result, nil
}

func (p *TimeParser) parseDate(input string, day time.Time) (time.Time, string, error) {
	if date, text, ok := p.parseRelativeDate(input); ok {
		return date, text, nil
	}
	date, text, ok, err := p.parseAbsoluteDate(input)
	if err != nil {
		return time.Time{}, "", err
	}
	if ok {
		return date, text, nil
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.location), input, nil
}

func (p *TimeParser) parseRelativeDate(input string) (time.Time, string, bool) {
	lower := strings.ToLower(input)

	// Today
	if hasWord(lower, "today") {
		return p.today(), strings.TrimSpace(input[5:]), true
	}

	// Tomorrow
	if hasWord(lower, "tomorrow") || hasWord(lower, "tmrw") {
		prefixLen := 8
		if strings.HasPrefix(lower, "tmrw") {
			prefixLen = 4
		}
		return p.today().AddDate(0, 0, 1), strings.TrimSpace(input[prefixLen:]), true
	}

	// Yesterday
	if hasWord(lower, "yesterday") {
		return p.today().AddDate(0, 0, -1), strings.TrimSpace(input[9:]), true
	}

	// Next/this weekday
	if matches := weekdayRe.FindStringSubmatch(lower); matches != nil {
		isNext := matches[1] == "next"
		weekday := p.parseWeekday(matches[2])
		date := p.findNextWeekday(weekday, isNext)
		remaining := input[len(matches[0]):]
		return date, strings.TrimSpace(remaining), true
	}

	// In N days/weeks/months
	if matches := inRe.FindStringSubmatch(lower); matches != nil {
		n, _ := strconv.Atoi(matches[1])
		date := addUnits(p.today(), n, matches[2])
		remaining := input[len(matches[0]):]
		return date, strings.TrimSpace(remaining), true
	}

	// N days/weeks from now
	if matches := fromNowRe.FindStringSubmatch(lower); matches != nil {
		n, _ := strconv.Atoi(matches[1])
		date := addUnits(p.today(), n, matches[2])
		remaining := input[len(matches[0]):]
		return date, strings.TrimSpace(remaining), true
	}

	return time.Time{}, input, false
}

func (p *TimeParser) parseAbsoluteDate(input string) (time.Time, string, bool, error) {
	lower := strings.ToLower(input)

	// YYYY-MM-DD, optionally followed by T or a space
	if matches := isoDateRe.FindStringSubmatch(lower); matches != nil {
		year, _ := strconv.Atoi(matches[1])
		month, _ := strconv.Atoi(matches[2])
		day, _ := strconv.Atoi(matches[3])
		date, err := p.date(year, month, day)
		return date, strings.TrimSpace(input[len(matches[0]):]), err == nil, err
	}

	// MM/DD/YYYY or MM-DD-YYYY
	if matches := dateRe.FindStringSubmatch(input); matches != nil {
		month, _ := strconv.Atoi(matches[1])
		day, _ := strconv.Atoi(matches[2])
		year, _ := strconv.Atoi(matches[3])
		date, err := p.date(year, month, day)
		return date, strings.TrimSpace(input[len(matches[0]):]), err == nil, err
	}

	// MM/DD or MM-DD (assume current year)
	if matches := shortDateRe.FindStringSubmatch(input); matches != nil {
		month, _ := strconv.Atoi(matches[1])
		day, _ := strconv.Atoi(matches[2])
		date, err := p.date(p.now.Year(), month, day)
		return date, strings.TrimSpace(input[len(matches[0]):]), err == nil, err
	}

	// Month DD, YYYY or Month DD
	if matches := monthNameRe.FindStringSubmatch(lower); matches != nil {
		month := p.parseMonth(matches[1])
		day, _ := strconv.Atoi(matches[2])
		year := p.now.Year()
		if matches[3] != "" {
			year, _ = strconv.Atoi(matches[3])
		}
		date, err := p.date(year, int(month), day)
		return date, strings.TrimSpace(input[len(matches[0]):]), err == nil, err
	}

	return time.Time{}, input, false, nil
}

// parseTime reads a clock time or a clock range at the start of input.
func (p *TimeParser) parseTime(input string, date time.Time) (time.Time, time.Duration, bool, string, bool, error) {
	lower := strings.ToLower(input)

	// Handle "at" prefix
	if strings.HasPrefix(lower, "at ") {
		lower = lower[3:]
		input = input[3:]
	}

	// Time range (e.g., "2pm-4pm" or "14:00-16:00")
	if matches := rangeRe.FindStringSubmatch(lower); matches != nil {
		startHour, startMin, err := clockValues(matches[1], matches[2], matches[3])
		if err != nil {
			return time.Time{}, 0, false, "", false, err
		}
		endHour, endMin, err := clockValues(matches[4], matches[5], matches[6])
		if err != nil {
			return time.Time{}, 0, false, "", false, err
		}

		startTime := time.Date(date.Year(), date.Month(), date.Day(), startHour, startMin, 0, 0, p.location)
		endTime := time.Date(date.Year(), date.Month(), date.Day(), endHour, endMin, 0, 0, p.location)
		duration := endTime.Sub(startTime)

		remaining := input[len(matches[0]):]
		return startTime, duration, true, strings.TrimSpace(remaining), true, nil
	}

	hour, minute, rest, ok, err := p.parseClock(input)
	if err != nil || !ok {
		return time.Time{}, 0, false, input, false, err
	}
	t := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, p.location)
	return t, 0, false, rest, true, nil
}

// parseClock reads a single clock time ("14:00", "2pm", "2:30pm", "noon").
func (p *TimeParser) parseClock(input string) (int, int, string, bool, error) {
	lower := strings.ToLower(input)

	if strings.HasPrefix(lower, "at ") {
		lower = lower[3:]
		input = input[3:]
	}

	if matches := timeRe.FindStringSubmatch(lower); matches != nil {
		hour, minute, err := clockValues(matches[1], matches[2], matches[3])
		if err != nil {
			return 0, 0, "", false, err
		}
		remaining := input[len(matches[0]):]
		return hour, minute, strings.TrimSpace(remaining), true, nil
	}

	for name, hour := range namedTimes {
		if hasWord(lower, name) {
			return hour, 0, strings.TrimSpace(input[len(name):]), true, nil
		}
	}

	return 0, 0, input, false, nil
}

func clockValues(hourStr, minStr, meridiem string) (int, int, error) {
	hour, _ := strconv.Atoi(hourStr)
	min := 0
	if minStr != "" {
		min, _ = strconv.Atoi(minStr)
	}
	if min > 59 {
		return 0, 0, fmt.Errorf("%w: minute %d out of range", ErrUnparsable, min)
	}

	switch meridiem {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("%w: hour %d out of range", ErrUnparsable, hour)
		}
		if meridiem == "pm" && hour < 12 {
			hour += 12
		} else if meridiem == "am" && hour == 12 {
			hour = 0
		}
	default:
		if hour > 23 {
			return 0, 0, fmt.Errorf("%w: hour %d out of range", ErrUnparsable, hour)
		}
	}

	return hour, min, nil
}

// date builds a date and rejects values time.Date would normalize.
func (p *TimeParser) date(year, month, day int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, p.location)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: no such date %04d-%02d-%02d", ErrUnparsable, year, month, day)
	}
	return t, nil
}

func (p *TimeParser) parseWeekday(s string) time.Weekday {
	switch strings.ToLower(s) {
	case "sun", "sunday":
		return time.Sunday
	case "mon", "monday":
		return time.Monday
	case "tue", "tuesday":
		return time.Tuesday
	case "wed", "wednesday":
		return time.Wednesday
	case "thu", "thursday":
		return time.Thursday
	case "fri", "friday":
		return time.Friday
	case "sat", "saturday":
		return time.Saturday
	default:
		return time.Sunday
	}
}

func (p *TimeParser) parseMonth(s string) time.Month {
	switch strings.ToLower(s) {
	case "jan", "january":
		return time.January
	case "feb", "february":
		return time.February
	case "mar", "march":
		return time.March
	case "apr", "april":
		return time.April
	case "may":
		return time.May
	case "jun", "june":
		return time.June
	case "jul", "july":
		return time.July
	case "aug", "august":
		return time.August
	case "sep", "september":
		return time.September
	case "oct", "october":
		return time.October
	case "nov", "november":
		return time.November
	case "dec", "december":
		return time.December
	default:
		return time.January
	}
}

func (p *TimeParser) findNextWeekday(target time.Weekday, skipThisWeek bool) time.Time {
	date := p.today()
	daysUntilTarget := int(target - date.Weekday())

	if daysUntilTarget <= 0 || skipThisWeek {
		daysUntilTarget += 7
	}

	return date.AddDate(0, 0, daysUntilTarget)
}

func (p *TimeParser) today() time.Time {
	y, m, d := p.now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.location)
}

func addUnits(date time.Time, n int, unit string) time.Time {
	switch {
	case strings.HasPrefix(unit, "day"):
		return date.AddDate(0, 0, n)
	case strings.HasPrefix(unit, "week"):
		return date.AddDate(0, 0, n*7)
	case strings.HasPrefix(unit, "month"):
		return date.AddDate(0, n, 0)
	}
	return date
}

// hasWord reports whether s starts with word followed by a word boundary.
func hasWord(s, word string) bool {
	if !strings.HasPrefix(s, word) {
		return false
	}
	if len(s) == len(word) {
		return true
	}
	c := s[len(word)]
	return c == ' ' || c == '\t' || c == ','
}
