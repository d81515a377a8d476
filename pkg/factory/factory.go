// Package factory maps each section to its icon, item source, label
// format, applicable actions and action dispatcher.
package factory

import (
	"context"
	"log/slog"

	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/providers/container"
	"github.com/modoterra/svcpanel/pkg/providers/cron"
	"github.com/modoterra/svcpanel/pkg/providers/systemd"
	"github.com/modoterra/svcpanel/pkg/settings"
)

// Engine units probed before listing containers. The user-scope fallback
// covers Docker Desktop installs.
type dependency struct {
	name  string
	units []unitProbe
}

type unitProbe struct {
	unit string
	user bool
}

var dependencies = map[core.Section]dependency{
	core.SectionDocker: {
		name: "Docker",
		units: []unitProbe{
			{unit: "docker.service"},
			{unit: "docker-desktop.service", user: true},
		},
	},
	core.SectionPodman: {
		name: "Podman",
		units: []unitProbe{
			{unit: "podman.service"},
			{unit: "podman.service", user: true},
		},
	},
}

var enabledKeys = map[core.Section]string{
	core.SectionSystemd: settings.SystemdSectionEnabled,
	core.SectionCron:    settings.CronSectionEnabled,
	core.SectionDocker:  settings.DockerSectionEnabled,
	core.SectionPodman:  settings.PodmanSectionEnabled,
}

var titles = map[core.Section]string{
	core.SectionSystemd: "Systemd",
	core.SectionCron:    "Cron",
	core.SectionDocker:  "Docker",
	core.SectionPodman:  "Podman",
}

// Factory is the dispatch point between presenters and adapters.
type Factory struct {
	settings settings.Settings
	systemd  *systemd.Repository
	cron     *cron.Repository
	docker   *container.Repository
	podman   *container.Repository
	logger   *slog.Logger
}

// New builds the adapters for every section on top of runner.
func New(runner core.Runner, s settings.Settings, logger *slog.Logger, opts ...systemd.Option) *Factory {
	return &Factory{
		settings: s,
		systemd:  systemd.New(runner, s, logger.With("section", core.SectionSystemd), opts...),
		cron:     cron.New(runner, logger.With("section", core.SectionCron)),
		docker:   container.NewDocker(runner, s, logger.With("section", core.SectionDocker)),
		podman:   container.NewPodman(runner, s, logger.With("section", core.SectionPodman)),
		logger:   logger,
	}
}

// SectionTitle returns the header shown above a section's items.
func SectionTitle(section core.Section) string {
	if t, ok := titles[section]; ok {
		return t
	}
	return string(section)
}

func (f *Factory) installed(section core.Section) bool {
	switch section {
	case core.SectionSystemd:
		return f.systemd.IsInstalled()
	case core.SectionCron:
		return f.cron.IsInstalled()
	case core.SectionDocker:
		return f.docker.IsInstalled()
	case core.SectionPodman:
		return f.podman.IsInstalled()
	}
	return false
}

// ActiveSections returns the sections that are both enabled in the
// preferences and backed by an installed manager, in display order.
func (f *Factory) ActiveSections() []core.Section {
	var active []core.Section
	for _, section := range core.Sections {
		if !f.settings.Bool(enabledKeys[section]) {
			continue
		}
		if !f.installed(section) {
			f.logger.Debug("section manager not installed", "section", section)
			continue
		}
		active = append(active, section)
	}
	return active
}

// Items returns the item source for section.
func (f *Factory) Items(section core.Section) core.ItemsFunc {
	switch section {
	case core.SectionSystemd:
		return f.systemd.GetServices
	case core.SectionCron:
		return f.cron.GetJobs
	case core.SectionDocker:
		return f.guarded(section, f.docker.GetItems)
	case core.SectionPodman:
		return f.guarded(section, f.podman.GetItems)
	}
	return func(context.Context) ([]core.Item, error) {
		return nil, core.NoItemsFound("No item found!")
	}
}

// guarded refuses to list a container engine whose systemd unit is not
// active in either probed scope.
func (f *Factory) guarded(section core.Section, next core.ItemsFunc) core.ItemsFunc {
	dep := dependencies[section]
	return func(ctx context.Context) ([]core.Item, error) {
		for _, probe := range dep.units {
			if f.systemd.IsServiceRunning(ctx, probe.unit, probe.user) {
				return next(ctx)
			}
		}
		f.logger.Info("engine unit inactive", "section", section)
		return nil, &core.DependencyNotRunningError{Name: dep.name}
	}
}

// Label formats an item for display in section.
func Label(section core.Section, item core.Item) string {
	switch section {
	case core.SectionSystemd:
		return item.Name
	case core.SectionDocker, core.SectionPodman:
		name := item.FirstName()
		if name == "" {
			name = "-"
		}
		return name + " (" + item.ID + ")"
	}
	return item.ID
}

// ActionTypes returns the actions applicable to an item in the order they
// are displayed.
func ActionTypes(isEnabled, isRunning, canBeEnabled bool) []core.ActionType {
	switch {
	case isEnabled && isRunning:
		return []core.ActionType{core.ActionStop, core.ActionRestart}
	case isEnabled && canBeEnabled:
		return []core.ActionType{core.ActionStart, core.ActionRemove}
	case isEnabled:
		return []core.ActionType{core.ActionStart}
	case canBeEnabled:
		return []core.ActionType{core.ActionAdd}
	}
	return nil
}

// ActionTypesFor applies ActionTypes to item.
func ActionTypesFor(item core.Item) []core.ActionType {
	return ActionTypes(item.IsEnabled, item.IsRunning, item.CanBeEnabled)
}

var actionIcons = map[core.ActionType]string{
	core.ActionStart:   "media-playback-start-symbolic",
	core.ActionStop:    "media-playback-stop-symbolic",
	core.ActionRestart: "view-refresh-symbolic",
	core.ActionAdd:     "list-add-symbolic",
	core.ActionRemove:  "list-remove-symbolic",
}

// ActionIcon returns the icon name for an action button.
func ActionIcon(t core.ActionType) string {
	return actionIcons[t]
}

// Action returns the mutator bound to section and t, or nil when the
// section offers no such action.
func (f *Factory) Action(section core.Section, t core.ActionType) core.ActionFunc {
	switch section {
	case core.SectionSystemd:
		switch t {
		case core.ActionStart:
			return f.systemd.Start
		case core.ActionStop:
			return f.systemd.Stop
		case core.ActionRestart:
			return f.systemd.Restart
		case core.ActionAdd:
			return f.systemd.Enable
		case core.ActionRemove:
			return f.systemd.Disable
		}
	case core.SectionDocker:
		return containerAction(f.docker, t)
	case core.SectionPodman:
		return containerAction(f.podman, t)
	}
	return nil
}

func containerAction(r *container.Repository, t core.ActionType) core.ActionFunc {
	switch t {
	case core.ActionStart:
		return r.Start
	case core.ActionStop:
		return r.Stop
	case core.ActionRestart:
		return r.Restart
	case core.ActionRemove:
		return r.Remove
	}
	return nil
}
