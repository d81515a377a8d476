// Package systemd lists and controls systemd service units through systemctl.
package systemd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coreos/go-systemd/v22/util"

	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/settings"
)

const (
	program        = "systemctl"
	noServiceFound = "No service found!"
)

// Repository manages systemd services via the systemctl CLI.
type Repository struct {
	runner   core.Runner
	settings settings.Settings
	logger   *slog.Logger

	// booted reports whether the host runs systemd as init.
	booted func() bool
}

// Option configures a Repository.
type Option func(*Repository)

// WithBootCheck replaces the probe deciding whether the host runs systemd.
func WithBootCheck(fn func() bool) Option {
	return func(r *Repository) { r.booted = fn }
}

// New creates a systemd repository.
func New(runner core.Runner, s settings.Settings, logger *slog.Logger, opts ...Option) *Repository {
	r := &Repository{
		runner:   runner,
		settings: s,
		logger:   logger,
		booted:   util.IsRunningSystemd,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsInstalled reports whether systemctl is available on a systemd-booted host.
func (r *Repository) IsInstalled() bool {
	if _, ok := r.runner.Find(program); !ok {
		return false
	}
	return r.booted()
}

// UserScope reports whether units are listed from the user manager.
// The system manager wins when both scopes are enabled.
func (r *Repository) UserScope() bool {
	return !r.settings.Bool(settings.SystemdFilterSystemServices) &&
		r.settings.Bool(settings.SystemdFilterUserServices)
}

func (r *Repository) scopeFlag() string {
	if r.UserScope() {
		return "--user"
	}
	return "--system"
}

// GetServices lists services, merging unit files unless only loaded units
// are requested, then applies the priority list.
func (r *Repository) GetServices(ctx context.Context) ([]core.Item, error) {
	scope := r.scopeFlag()

	cmd := fmt.Sprintf("%s list-units --type=service --all %s", program, scope)
	out, err := r.runner.Execute(ctx, cmd)
	if err != nil {
		r.logger.Error("list loaded services", "command", cmd, "err", err)
		return nil, fmt.Errorf("list loaded services: %w", err)
	}
	items := ParseUnits(out)

	if !r.settings.Bool(settings.SystemdFilterLoaded) {
		cmd := fmt.Sprintf("%s list-unit-files --type=service --all %s", program, scope)
		out, err := r.runner.Execute(ctx, cmd)
		if err != nil {
			r.logger.Warn("list unit files failed, showing loaded services only", "command", cmd, "err", err)
		} else {
			items = Merge(items, ParseUnitFiles(out))
		}
	}

	if len(items) == 0 {
		return nil, core.NoItemsFound(noServiceFound)
	}

	priority := ParsePriorityList(r.settings.String(settings.SystemdPriorityList))
	return FilterAndSort(items, priority, r.settings.Bool(settings.SystemdFilterPriorityList))
}

// IsServiceRunning reports whether `systemctl is-active` prints "active" for
// id. Any failure reports false.
func (r *Repository) IsServiceRunning(ctx context.Context, id string, user bool) bool {
	cmd := fmt.Sprintf("%s is-active %s", program, id)
	if user {
		cmd += " --user"
	}
	out, err := r.runner.Execute(ctx, cmd)
	if err != nil {
		r.logger.Debug("service not active", "unit", id, "user", user, "err", err)
		return false
	}
	first, _, _ := strings.Cut(out, "\n")
	return strings.TrimSpace(first) == "active"
}

// Start starts the unit.
func (r *Repository) Start(ctx context.Context, id string) error {
	return r.control(ctx, "start", id)
}

// Stop stops the unit.
func (r *Repository) Stop(ctx context.Context, id string) error {
	return r.control(ctx, "stop", id)
}

// Restart restarts the unit.
func (r *Repository) Restart(ctx context.Context, id string) error {
	return r.control(ctx, "restart", id)
}

// Enable enables the unit.
func (r *Repository) Enable(ctx context.Context, id string) error {
	return r.control(ctx, "enable", id)
}

// Disable disables the unit.
func (r *Repository) Disable(ctx context.Context, id string) error {
	return r.control(ctx, "disable", id)
}

func (r *Repository) control(ctx context.Context, verb, id string) error {
	cmd := fmt.Sprintf("%s %s %s", program, verb, id)
	if r.UserScope() {
		cmd += " --user"
	}
	if err := r.runner.ExecuteAsync(ctx, cmd); err != nil {
		r.logger.Error("systemd action failed", "action", verb, "unit", id, "err", err)
		return fmt.Errorf("systemd %s %s: %w", verb, id, err)
	}
	return nil
}
