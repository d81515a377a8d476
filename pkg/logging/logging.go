// Package logging builds the process logger. The terminal belongs to the
// TUI, so records go to a file or to the systemd journal.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// Options selects the log destination and format.
type Options struct {
	// File is the log file path. "-" writes to stderr.
	File string
	// Level is one of debug, info, warn, error.
	Level string
	// Format is text or json.
	Format string
	// Journal sends records to journald when it is reachable.
	Journal bool
}

// DefaultPath returns $XDG_STATE_HOME/svcpanel/svcpanel.log.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "svcpanel", "svcpanel.log"), nil
}

// ParseLevel parses a level name.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns the configured logger and a closer for its destination.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	if opts.Journal {
		if journal.Enabled() {
			return slog.New(NewJournalHandler(level)), nopCloser{}, nil
		}
		fmt.Fprintln(os.Stderr, "journald not reachable, logging to file")
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" && opts.File != "-" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(opts.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), closer, nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), closer, nil
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("invalid log format %q: expected text or json", opts.Format)
	}
}
