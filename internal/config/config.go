package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// File settings
	ImportFiles  []string
	WatchImports bool

	// Display settings
	TimeFormat string
	DateFormat string

	// UI settings
	Colors      map[string]string
	KeyBindings map[string]string // key -> action

	// Behavior settings
	ConfirmDelete    bool
	WrapText         bool
	MessageTimeout   time.Duration
	QuickEventLength time.Duration
}

// Env holds settings read from the environment.
type Env struct {
	ConfigPath string `env:"SKULD_CONFIG"`
	Debug      bool   `env:"SKULD_DEBUG"`
	LogFile    string `env:"SKULD_LOG_FILE" envDefault:"skuld.log"`
}

var (
	setRe   = regexp.MustCompile(`^set\s+(\w+)\s+(.+)$`)
	bindRe  = regexp.MustCompile(`^bind\s+(\S+)\s+(\S+)$`)
	colorRe = regexp.MustCompile(`^color\s+(\w+)\s+(.+)$`)
)

// Actions lists every action a key can be bound to.
var Actions = []string{
	"quit", "help", "today", "new_event", "quick_add", "edit_event",
	"delete_event", "manager", "next_month", "prev_month", "goto",
}

func DefaultConfig() *Config {
	return &Config{
		ImportFiles:  []string{},
		WatchImports: true,

		TimeFormat: "15:04",
		DateFormat: "January 2, 2006",

		Colors: map[string]string{
			"normal":   "252",
			"today":    "39",
			"selected": "220",
			"weekend":  "244",
			"event":    "40",
			"header":   "220",
			"help":     "241",
			"border":   "238",
			"error":    "196",
		},

		KeyBindings: map[string]string{
			"q": "quit",
			"?": "help",
			"t": "today",
			"n": "new_event",
			"a": "quick_add",
			"e": "edit_event",
			"d": "delete_event",
			"m": "manager",
			">": "next_month",
			"<": "prev_month",
			"g": "goto",
		},

		ConfirmDelete:    true,
		WrapText:         true,
		MessageTimeout:   3 * time.Second,
		QuickEventLength: time.Hour,
	}
}

// LoadEnv reads SKULD_* environment variables.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// LoadConfig returns the defaults overlaid with the first config file
// found. An explicit path must exist.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		if err := config.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("error loading config from %s: %w", path, err)
		}
		return config, nil
	}

	// Try multiple config file locations
	configPaths := []string{
		filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "skuld", "skuldrc"),
		filepath.Join(os.Getenv("HOME"), ".config", "skuld", "skuldrc"),
		filepath.Join(os.Getenv("HOME"), ".skuldrc"),
	}
	if os.Getenv("XDG_CONFIG_HOME") == "" {
		configPaths = configPaths[1:]
	}

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := config.loadFromFile(path); err != nil {
				return nil, fmt.Errorf("error loading config from %s: %w", path, err)
			}
			break
		}
	}

	return config, nil
}

// ActionFor returns the action bound to key, if any.
func (c *Config) ActionFor(key string) string {
	return c.KeyBindings[key]
}

// KeyFor returns a key bound to action, preferring the shortest.
func (c *Config) KeyFor(action string) string {
	best := ""
	for key, a := range c.KeyBindings {
		if a != action {
			continue
		}
		if best == "" || len(key) < len(best) || (len(key) == len(best) && key < best) {
			best = key
		}
	}
	return best
}

func (c *Config) loadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if err := c.parseLine(scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	return scanner.Err()
}

func (c *Config) parseLine(line string) error {
	line = strings.TrimSpace(line)

	// Skip comments and empty lines
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	// Handle set commands: set variable value
	if matches := setRe.FindStringSubmatch(line); matches != nil {
		return c.setVariable(matches[1], matches[2])
	}

	// Handle bind commands: bind key action
	if matches := bindRe.FindStringSubmatch(line); matches != nil {
		if !validAction(matches[2]) {
			return fmt.Errorf("unknown action: %s", matches[2])
		}
		c.KeyBindings[matches[1]] = matches[2]
		return nil
	}

	// Handle unbind commands: unbind key
	if strings.HasPrefix(line, "unbind ") {
		delete(c.KeyBindings, strings.TrimSpace(line[len("unbind "):]))
		return nil
	}

	// Handle color commands: color element color_spec
	if matches := colorRe.FindStringSubmatch(line); matches != nil {
		c.Colors[matches[1]] = strings.TrimSpace(matches[2])
		return nil
	}

	return fmt.Errorf("unknown config line: %s", line)
}

func (c *Config) setVariable(name, value string) error {
	// Remove quotes if present
	value = strings.Trim(value, `"'`)

	switch name {
	case "import_file", "import_files":
		// Handle multiple files separated by commas
		files := strings.Split(value, ",")
		for i, file := range files {
			files[i] = expandHome(strings.TrimSpace(file))
		}
		c.ImportFiles = files

	case "watch_imports":
		c.WatchImports = parseBool(value)

	case "time_format":
		c.TimeFormat = value

	case "date_format":
		c.DateFormat = value

	case "confirm_delete":
		c.ConfirmDelete = parseBool(value)

	case "wrap_text":
		c.WrapText = parseBool(value)

	case "message_timeout":
		d, err := parseSeconds(value)
		if err != nil {
			return fmt.Errorf("invalid message_timeout: %s", value)
		}
		c.MessageTimeout = d

	case "quick_event_length":
		d, err := parseSeconds(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid quick_event_length: %s", value)
		}
		c.QuickEventLength = d

	default:
		return fmt.Errorf("unknown config variable: %s", name)
	}

	return nil
}

func validAction(action string) bool {
	for _, a := range Actions {
		if a == action {
			return true
		}
	}
	return false
}

func parseBool(value string) bool {
	return strings.ToLower(value) == "true" || value == "1"
}

// parseSeconds accepts a Go duration or a bare number of seconds.
func parseSeconds(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
