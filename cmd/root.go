package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cwarden/skuld/internal/calendar"
	"github.com/cwarden/skuld/internal/config"
	"github.com/cwarden/skuld/internal/events"
	"github.com/cwarden/skuld/internal/ics"
	"github.com/cwarden/skuld/internal/logging"
	"github.com/cwarden/skuld/internal/parser"
	"github.com/cwarden/skuld/internal/ui"
)

var (
	cfgFile     string
	importFiles []string
	debug       bool
	watch       bool
	cfg         *config.Config
	env         config.Env

	// zone holds imported dates and parsed times.
	zone = time.Local
)

var rootCmd = &cobra.Command{
	Use:   "skuld",
	Short: "A terminal calendar",
	Long: `Skuld is a terminal calendar. It shows a month at a time and keeps
events for the session, optionally seeded from iCalendar files.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE:              runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringSliceVarP(&importFiles, "import", "i", []string{}, "iCalendar file(s) to import (can be specified multiple times)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&watch, "watch", true, "Reload imported files when they change")
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	env, err = config.LoadEnv()
	if err != nil {
		return err
	}

	path := cfgFile
	if path == "" {
		path = env.ConfigPath
	}
	cfg, err = config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Command line files replace the configured ones
	if len(importFiles) > 0 {
		cfg.ImportFiles = importFiles
	}
	if f := cmd.Flags().Lookup("watch"); f != nil && f.Changed {
		cfg.WatchImports = watch
	}
	debug = debug || env.Debug
	return nil
}

// loadEvents builds the event store from the configured import files.
func loadEvents(log *slog.Logger) (*events.Manager, *ics.Importer, error) {
	store := events.NewManager()
	importer := ics.NewImporter(store, zone, log)

	if _, err := importer.ImportFiles(cfg.ImportFiles); err != nil {
		return nil, nil, err
	}
	return store, importer, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	log := logging.Discard()
	if debug {
		l, closer, err := logging.ToFile(env.LogFile, true)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer closer.Close()
		log = l
	}

	store, importer, err := loadEvents(log)
	if err != nil {
		return err
	}

	clock := calendar.SystemClock{}
	model := ui.NewModel(cfg, calendar.New(clock), store, newParser(clock.Now()), log)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if cfg.WatchImports && len(cfg.ImportFiles) > 0 {
		w, err := importer.Watch(cfg.ImportFiles, func(path string, n int, err error) {
			program.Send(ui.ImportReloadedMsg{Path: path, Count: n, Err: err})
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			defer w.Close()
		}
	}

	log.Info("starting", "events", store.Len(), "imports", len(cfg.ImportFiles))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}

func newParser(now time.Time) *parser.TimeParser {
	p := parser.NewTimeParser()
	p.SetNow(now)
	p.SetLocation(zone)
	return p
}

// cliLogger logs to stderr for the non-interactive commands.
func cliLogger(w io.Writer) *slog.Logger {
	return logging.New(w, debug)
}
