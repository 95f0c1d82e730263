package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwarden/skuld/internal/calendar"
)

var monthDate string

var monthCmd = &cobra.Command{
	Use:   "month",
	Short: "Print a month grid and exit",
	RunE:  runMonth,
}

func init() {
	monthCmd.Flags().StringVar(&monthDate, "date", "", "Month to print as YYYY-MM (default: this month)")
	rootCmd.AddCommand(monthCmd)
}

func runMonth(cmd *cobra.Command, args []string) error {
	cal := calendar.New(calendar.SystemClock{})
	if monthDate != "" {
		t, err := time.ParseInLocation("2006-01", monthDate, zone)
		if err != nil {
			return fmt.Errorf("invalid --date %q, want YYYY-MM", monthDate)
		}
		cal.GoTo(t)
	}

	writeMonth(cmd.OutOrStdout(), cal)
	return nil
}

// writeMonth prints the anchor month laid out like cal(1).
func writeMonth(w io.Writer, cal *calendar.Calendar) {
	fmt.Fprintf(w, "%*s\n", 10+len(cal.Title())/2, cal.Title())
	fmt.Fprintln(w, "Su Mo Tu We Th Fr Sa")

	grid := cal.MonthGrid()
	for _, week := range grid {
		cells := make([]string, len(week))
		for col, day := range week {
			if day == 0 {
				cells[col] = "  "
				continue
			}
			cells[col] = fmt.Sprintf("%2d", day)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, " "), " "))
	}
}
