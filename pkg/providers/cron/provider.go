// Package cron lists the current user's crontab entries.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modoterra/svcpanel/pkg/core"
)

const (
	program    = "crontab"
	noJobFound = "No job found!"
)

// Repository reads jobs through `crontab -l`. Cron has no notion of
// enabling or stopping a job, so it exposes no mutators.
type Repository struct {
	runner core.Runner
	logger *slog.Logger
}

// New creates a cron repository.
func New(runner core.Runner, logger *slog.Logger) *Repository {
	return &Repository{runner: runner, logger: logger}
}

// IsInstalled reports whether crontab is on PATH.
func (r *Repository) IsInstalled() bool {
	_, ok := r.runner.Find(program)
	return ok
}

// ParseJobs turns each non-blank crontab line into an item.
func ParseJobs(output string) []core.Item {
	var items []core.Item
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, core.Item{ID: line, IsRunning: true})
	}
	return items
}

// GetJobs lists the crontab.
func (r *Repository) GetJobs(ctx context.Context) ([]core.Item, error) {
	out, err := r.runner.Execute(ctx, program+" -l")
	if err != nil {
		r.logger.Error("list cron jobs", "err", err)
		return nil, fmt.Errorf("list cron jobs: %w", err)
	}
	items := ParseJobs(out)
	if len(items) == 0 {
		return nil, core.NoItemsFound(noJobFound)
	}
	return items, nil
}
