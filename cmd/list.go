package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cwarden/skuld/internal/events"
	"github.com/cwarden/skuld/internal/ics"
)

var (
	listDate   string
	listFormat string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a day's events and exit",
	Long: `List the events imported for a day (today by default) and exit.
The output is plain text, iCalendar or YAML.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "Day to list, e.g. 2021-10-10 or tomorrow")
	listCmd.Flags().StringVar(&listFormat, "format", "text", "Output format: text, ics or yaml")
	rootCmd.AddCommand(listCmd)
}

// yamlEvent is the YAML shape of an event.
type yamlEvent struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description,omitempty"`
	Start       time.Time `yaml:"start"`
	End         time.Time `yaml:"end"`
}

func runList(cmd *cobra.Command, args []string) error {
	log := cliLogger(os.Stderr)

	day := time.Now().In(zone)
	if listDate != "" {
		var err error
		day, err = newParser(day).ParseDate(listDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	store, _, err := loadEvents(log)
	if err != nil {
		return err
	}

	return writeList(cmd.OutOrStdout(), store.ForDay(day), day, listFormat)
}

func writeList(w io.Writer, evs []events.Event, day time.Time, format string) error {
	switch format {
	case "ics":
		return ics.Export(w, evs, time.Now())

	case "yaml":
		out := make([]yamlEvent, 0, len(evs))
		for _, e := range evs {
			out = append(out, yamlEvent{
				ID:          e.ID.String(),
				Title:       e.Title,
				Description: e.Description,
				Start:       e.Start,
				End:         e.End,
			})
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(out)

	case "text":
		fmt.Fprintf(w, "Events for %s:\n", day.Format(cfg.DateFormat))
		if len(evs) == 0 {
			fmt.Fprintln(w, "No events found.")
			return nil
		}
		for _, e := range evs {
			fmt.Fprintf(w, "  %s-%s - %s\n", e.Start.Format(cfg.TimeFormat), e.End.Format(cfg.TimeFormat), e.Title)
			if e.HasDescription() {
				fmt.Fprintf(w, "    %s\n", e.Description)
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q (want text, ics or yaml)", format)
	}
}
