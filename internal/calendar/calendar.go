package calendar

import (
	"time"
)

const (
	// GridRows is fixed so the rendered month always has the same height.
	GridRows = 6
	GridCols = 7
)

// Grid holds the day numbers of a month laid out by week, Sunday first.
// A zero cell is empty.
type Grid [GridRows][GridCols]int

// Cell returns the day number at row, col and whether the cell is populated.
// Out of range coordinates report an empty cell.
func (g Grid) Cell(row, col int) (int, bool) {
	if row < 0 || row >= GridRows || col < 0 || col >= GridCols {
		return 0, false
	}
	day := g[row][col]
	return day, day != 0
}

// Days returns the number of populated cells.
func (g Grid) Days() int {
	n := 0
	for _, week := range g {
		for _, day := range week {
			if day != 0 {
				n++
			}
		}
	}
	return n
}

// First returns the first populated day in reading order.
func (g Grid) First() int {
	for _, week := range g {
		for _, day := range week {
			if day != 0 {
				return day
			}
		}
	}
	return 0
}

// Last returns the last populated day in reading order.
func (g Grid) Last() int {
	for row := GridRows - 1; row >= 0; row-- {
		for col := GridCols - 1; col >= 0; col-- {
			if g[row][col] != 0 {
				return g[row][col]
			}
		}
	}
	return 0
}

// Calendar tracks the month on display and the highlighted day.
type Calendar struct {
	anchor   time.Time
	selected time.Time
	clock    Clock
}

func New(clock Clock) *Calendar {
	if clock == nil {
		clock = SystemClock{}
	}
	now := clock.Now()
	return &Calendar{
		anchor:   now,
		selected: now,
		clock:    clock,
	}
}

// Anchor returns the date whose year and month select the displayed month.
func (c *Calendar) Anchor() time.Time {
	return c.anchor
}

func (c *Calendar) Selected() time.Time {
	return c.selected
}

func (c *Calendar) SetSelected(t time.Time) {
	c.selected = t
}

// Today returns the clock's current time.
func (c *Calendar) Today() time.Time {
	return c.clock.Now()
}

// Title is the month heading, e.g. "October 2021".
func (c *Calendar) Title() string {
	return c.anchor.Format("January 2006")
}

// NextMonth moves the anchor to the first day of the following month.
func (c *Calendar) NextMonth() {
	c.anchor = firstOfMonth(c.anchor).AddDate(0, 1, 0)
}

// PrevMonth moves the anchor to the first day of the preceding month.
func (c *Calendar) PrevMonth() {
	c.anchor = firstOfMonth(c.anchor).AddDate(0, -1, 0)
}

// JumpMonth moves the anchor by delta months and keeps the selected day
// of the month, clamped to the length of the new month.
func (c *Calendar) JumpMonth(delta int) {
	c.anchor = firstOfMonth(c.anchor).AddDate(0, delta, 0)
	day := c.selected.Day()
	if n := DaysIn(c.anchor); day > n {
		day = n
	}
	c.selected = c.dayInAnchor(day)
}

// GoToToday shows the current month and selects the current day.
func (c *Calendar) GoToToday() {
	now := c.Today()
	c.anchor = now
	c.selected = now
}

// GoTo shows the month containing t and selects t.
func (c *Calendar) GoTo(t time.Time) {
	c.anchor = t
	c.selected = t
}

// MonthGrid lays out the anchor month, Sunday in column 0.
func (c *Calendar) MonthGrid() Grid {
	var grid Grid

	first := firstOfMonth(c.anchor)
	days := DaysIn(first)
	offset := int(first.Weekday())

	for day := 1; day <= days; day++ {
		cell := offset + day - 1
		grid[cell/GridCols][cell%GridCols] = day
	}

	return grid
}

// MoveSelection steps the selected day one cell in dir within the current
// grid. It reports false and leaves the selection alone when the target
// cell is outside the grid or empty; crossing into another month is the
// caller's decision (see Step).
func (c *Calendar) MoveSelection(dir Direction) bool {
	grid := c.MonthGrid()

	// A selection whose day is absent from the grid scans as (0,0).
	row, col := 0, 0
	want := c.selected.Day()
scan:
	for r := 0; r < GridRows; r++ {
		for cl := 0; cl < GridCols; cl++ {
			if grid[r][cl] == want {
				row, col = r, cl
				break scan
			}
		}
	}

	dr, dc := dir.offset()
	day, ok := grid.Cell(row+dr, col+dc)
	if !ok {
		return false
	}

	y, m, _ := c.selected.Date()
	if day > DaysIn(time.Date(y, m, 1, 0, 0, 0, 0, c.selected.Location())) {
		return false
	}
	c.selected = time.Date(y, m, day, 0, 0, 0, 0, c.selected.Location())
	return true
}

// Step moves the selection like MoveSelection. When a left or right step
// falls off the grid, the previous or next month is shown instead and the
// selection lands on its last or first day. Up and down stop at the grid
// edge. Step reports whether the displayed month changed.
func (c *Calendar) Step(dir Direction) bool {
	if c.MoveSelection(dir) {
		return false
	}

	switch dir {
	case Left:
		c.PrevMonth()
		c.selected = c.dayInAnchor(c.MonthGrid().Last())
		return true
	case Right:
		c.NextMonth()
		c.selected = c.dayInAnchor(c.MonthGrid().First())
		return true
	}
	return false
}

// IsSelected reports whether day of the anchor month is the selected day.
func (c *Calendar) IsSelected(day int) bool {
	return sameMonth(c.anchor, c.selected) && c.selected.Day() == day
}

// IsToday reports whether day of the anchor month is the clock's today.
func (c *Calendar) IsToday(day int) bool {
	now := c.Today()
	return sameMonth(c.anchor, now) && now.Day() == day
}

// Date returns day of the anchor month as a date.
func (c *Calendar) Date(day int) time.Time {
	return c.dayInAnchor(day)
}

func (c *Calendar) dayInAnchor(day int) time.Time {
	return time.Date(c.anchor.Year(), c.anchor.Month(), day, 0, 0, 0, 0, c.anchor.Location())
}

// DaysIn returns the length of t's month, measured as the distance from its
// first day to the first day of the next month.
func DaysIn(t time.Time) int {
	first := firstOfMonth(t)
	next := first.AddDate(0, 1, 0)
	// Date arithmetic in UTC so DST shifts don't shorten a day.
	a := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(next.Year(), next.Month(), 1, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
