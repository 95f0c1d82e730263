package calendar

// Direction is a one-cell step within the month grid.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// offset returns the row and column delta for d.
func (d Direction) offset() (int, int) {
	switch d {
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	default:
		return 0, 0
	}
}
