// Package logging builds the slog loggers used across skuld. The TUI owns
// the terminal, so interactive sessions log to a file or nowhere.
package logging

import (
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// New returns a text logger writing to w.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ToFile sends log output to path, appending. The returned closer must be
// closed on exit.
func ToFile(path string, debug bool) (*slog.Logger, io.Closer, error) {
	f, err := tea.LogToFile(path, "skuld")
	if err != nil {
		return nil, nil, err
	}
	return New(f, debug), f, nil
}
