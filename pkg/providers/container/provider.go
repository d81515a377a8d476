// Package container lists and controls Docker or Podman containers and
// images through the engine's CLI.
package container

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/settings"
)

const (
	fieldSeparator   = "|"
	noContainerFound = "No container found!"
	noImageFound     = "No image found!"
	noItemFound      = "No item found!"
)

// Engine describes one container runtime binary.
type Engine struct {
	// Binary is the CLI name, "docker" or "podman".
	Binary string
	// ShowImagesKey is the preference toggling image listing.
	ShowImagesKey string
}

var (
	Docker = Engine{Binary: "docker", ShowImagesKey: settings.DockerShowImages}
	Podman = Engine{Binary: "podman", ShowImagesKey: settings.PodmanShowImages}
)

// Repository manages one engine's containers and images.
type Repository struct {
	engine   Engine
	runner   core.Runner
	settings settings.Settings
	logger   *slog.Logger
}

// New creates a repository for engine.
func New(engine Engine, runner core.Runner, s settings.Settings, logger *slog.Logger) *Repository {
	return &Repository{
		engine:   engine,
		runner:   runner,
		settings: s,
		logger:   logger.With("engine", engine.Binary),
	}
}

// NewDocker creates a Docker repository.
func NewDocker(runner core.Runner, s settings.Settings, logger *slog.Logger) *Repository {
	return New(Docker, runner, s, logger)
}

// NewPodman creates a Podman repository.
func NewPodman(runner core.Runner, s settings.Settings, logger *slog.Logger) *Repository {
	return New(Podman, runner, s, logger)
}

// Engine returns the engine this repository drives.
func (r *Repository) Engine() Engine { return r.engine }

// IsInstalled reports whether the engine binary is on PATH.
func (r *Repository) IsInstalled() bool {
	_, ok := r.runner.Find(r.engine.Binary)
	return ok
}

func splitRows(output string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(line, fieldSeparator, 3)
		if len(fields) < 3 {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		rows = append(rows, fields)
	}
	return rows
}

// ParseContainers parses `ps --format '{{.ID}} | {{.Status}} | {{.Names}}'` output.
func ParseContainers(output string) []core.Item {
	var items []core.Item
	for _, f := range splitRows(output) {
		var names []string
		for _, n := range strings.Split(f[2], ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		items = append(items, core.Item{
			ID:           strings.TrimSpace(f[0]),
			Names:        names,
			IsEnabled:    true,
			CanBeEnabled: true,
			IsRunning:    strings.Contains(f[1], "Up"),
		})
	}
	return items
}

// ParseImages parses `images --format '{{.ID}} | {{.Repository}} | {{.Tag}}'` output.
func ParseImages(output string) []core.Item {
	var items []core.Item
	for _, f := range splitRows(output) {
		items = append(items, core.Item{
			ID:    strings.TrimSpace(f[0]),
			Names: []string{strings.TrimSpace(f[1]) + ":" + strings.TrimSpace(f[2])},
		})
	}
	return items
}

// SortRunningFirst moves running items ahead of stopped ones, keeping the
// relative order within each group.
func SortRunningFirst(items []core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].IsRunning && !items[j].IsRunning
	})
}

// GetContainers lists all containers, running ones first.
func (r *Repository) GetContainers(ctx context.Context) ([]core.Item, error) {
	cmd := r.engine.Binary + " ps -a --format '{{.ID}} | {{.Status}} | {{.Names}}'"
	out, err := r.runner.Execute(ctx, cmd)
	if err != nil {
		r.logger.Error("list containers", "err", err)
		return nil, fmt.Errorf("list %s containers: %w", r.engine.Binary, err)
	}
	items := ParseContainers(out)
	if len(items) == 0 {
		return nil, core.NoItemsFound(noContainerFound)
	}
	SortRunningFirst(items)
	return items, nil
}

// GetImages lists local images.
func (r *Repository) GetImages(ctx context.Context) ([]core.Item, error) {
	cmd := r.engine.Binary + " images --format '{{.ID}} | {{.Repository}} | {{.Tag}}'"
	out, err := r.runner.Execute(ctx, cmd)
	if err != nil {
		r.logger.Error("list images", "err", err)
		return nil, fmt.Errorf("list %s images: %w", r.engine.Binary, err)
	}
	items := ParseImages(out)
	if len(items) == 0 {
		return nil, core.NoItemsFound(noImageFound)
	}
	return items, nil
}

// GetItems returns containers followed by images when images are shown.
// Either listing may fail on its own; only an empty combination is an error.
func (r *Repository) GetItems(ctx context.Context) ([]core.Item, error) {
	var items []core.Item

	containers, err := r.GetContainers(ctx)
	if err != nil {
		r.logger.Warn("containers unavailable", "err", err)
	} else {
		items = append(items, containers...)
	}

	if r.settings.Bool(r.engine.ShowImagesKey) {
		images, err := r.GetImages(ctx)
		if err != nil {
			r.logger.Warn("images unavailable", "err", err)
		} else {
			items = append(items, images...)
		}
	}

	if len(items) == 0 {
		return nil, core.NoItemsFound(noItemFound)
	}
	return items, nil
}

// Start starts the container.
func (r *Repository) Start(ctx context.Context, id string) error {
	return r.control(ctx, "start", id)
}

// Stop stops the container.
func (r *Repository) Stop(ctx context.Context, id string) error {
	return r.control(ctx, "stop", id)
}

// Restart restarts the container.
func (r *Repository) Restart(ctx context.Context, id string) error {
	return r.control(ctx, "restart", id)
}

// Remove deletes the container.
func (r *Repository) Remove(ctx context.Context, id string) error {
	return r.control(ctx, "rm", id)
}

func (r *Repository) control(ctx context.Context, verb, id string) error {
	cmd := fmt.Sprintf("%s %s %s", r.engine.Binary, verb, id)
	if err := r.runner.ExecuteAsync(ctx, cmd); err != nil {
		r.logger.Error("container action failed", "action", verb, "id", id, "err", err)
		return fmt.Errorf("%s %s %s: %w", r.engine.Binary, verb, id, err)
	}
	return nil
}
