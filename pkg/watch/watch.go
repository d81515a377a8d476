// Package watch re-lists the active sections on an interval and reports
// what changed between two listings.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/modoterra/svcpanel/pkg/core"
)

// Source is the part of the factory the poll loop reads.
type Source interface {
	ActiveSections() []core.Section
	Items(section core.Section) core.ItemsFunc
}

// Key identifies an item across polls.
type Key struct {
	Section core.Section `json:"section"`
	ID      string       `json:"id"`
}

// Entry is an item tagged with its section.
type Entry struct {
	Section core.Section `json:"section"`
	core.Item
}

// Snapshot is one poll's worth of items.
type Snapshot map[Key]core.Item

// Delta represents changes between poll cycles.
type Delta struct {
	Added   []Entry `json:"added,omitempty"`
	Updated []Entry `json:"updated,omitempty"`
	Removed []Key   `json:"removed,omitempty"`
}

// HasChanges returns true if the delta contains any changes.
func (d Delta) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Updated) > 0 || len(d.Removed) > 0
}

// PollLoop refreshes every active section each interval.
type PollLoop struct {
	source   Source
	interval time.Duration
	logger   *slog.Logger
}

// NewPollLoop creates a poll loop over source.
func NewPollLoop(source Source, interval time.Duration, logger *slog.Logger) *PollLoop {
	return &PollLoop{source: source, interval: interval, logger: logger}
}

// Run polls once immediately, then every interval, and calls emit with
// each non-empty delta. Blocks until ctx is cancelled.
func (pl *PollLoop) Run(ctx context.Context, emit func(Delta)) {
	var prev Snapshot
	tick := func() {
		next := pl.Poll(ctx)
		if ctx.Err() != nil {
			return
		}
		if d := Diff(prev, next); d.HasChanges() {
			emit(d)
		}
		prev = next
	}

	tick()
	ticker := time.NewTicker(pl.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}

// Poll lists every active section once. Sections that fail are logged
// and contribute nothing.
func (pl *PollLoop) Poll(ctx context.Context) Snapshot {
	snap := make(Snapshot)
	for _, section := range pl.source.ActiveSections() {
		items, err := pl.source.Items(section)(ctx)
		if err != nil {
			level := slog.LevelWarn
			if errors.Is(err, core.ErrNoItemsFound) || errors.Is(err, core.ErrDependencyNotRunning) {
				level = slog.LevelDebug
			}
			pl.logger.Log(ctx, level, "section list failed", "section", section, "err", err)
			continue
		}
		for _, item := range items {
			snap[Key{Section: section, ID: item.ID}] = item
		}
	}
	return snap
}

// Diff computes what changed from old to new. Entries are ordered by
// section display order, then ID.
func Diff(old, new Snapshot) Delta {
	var d Delta

	for k, item := range new {
		prev, existed := old[k]
		if !existed {
			d.Added = append(d.Added, Entry{Section: k.Section, Item: item})
		} else if itemChanged(prev, item) {
			d.Updated = append(d.Updated, Entry{Section: k.Section, Item: item})
		}
	}

	for k := range old {
		if _, exists := new[k]; !exists {
			d.Removed = append(d.Removed, k)
		}
	}

	slices.SortFunc(d.Added, compareEntries)
	slices.SortFunc(d.Updated, compareEntries)
	slices.SortFunc(d.Removed, compareKeys)
	return d
}

func itemChanged(a, b core.Item) bool {
	return a.IsEnabled != b.IsEnabled ||
		a.CanBeEnabled != b.CanBeEnabled ||
		a.IsActive != b.IsActive ||
		a.IsRunning != b.IsRunning ||
		!slices.Equal(a.Names, b.Names)
}

func compareEntries(a, b Entry) int {
	return compareKeys(Key{a.Section, a.ID}, Key{b.Section, b.ID})
}

func compareKeys(a, b Key) int {
	if c := sectionOrder(a.Section) - sectionOrder(b.Section); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func sectionOrder(s core.Section) int {
	if i := slices.Index(core.Sections, s); i >= 0 {
		return i
	}
	return len(core.Sections)
}
