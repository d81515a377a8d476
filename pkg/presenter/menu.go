package presenter

import (
	"log/slog"

	"github.com/modoterra/svcpanel/pkg/factory"
	"github.com/modoterra/svcpanel/pkg/pager"
)

// MenuConfig is the immutable context of the menu presenter.
type MenuConfig struct {
	Factory   Factory
	Pager     *pager.Pager
	Scheduler Scheduler
	Logger    *slog.Logger
}

// MenuPresenter owns the status glyph and rebuilds every section each
// time the menu opens.
type MenuPresenter struct {
	view     MenuView
	cfg      MenuConfig
	subs     Subscriptions
	state    State
	open     bool
	sections []*SectionPresenter
}

// NewMenuPresenter shows the status icons.
func NewMenuPresenter(view MenuView, cfg MenuConfig) *MenuPresenter {
	p := &MenuPresenter{view: view, cfg: cfg}
	p.RefreshIcons()
	return p
}

// State returns the lifecycle phase.
func (p *MenuPresenter) State() State { return p.state }

// IsOpen reports whether the menu is open.
func (p *MenuPresenter) IsOpen() bool { return p.open }

// Sections returns the live section presenters.
func (p *MenuPresenter) Sections() []*SectionPresenter {
	return append([]*SectionPresenter(nil), p.sections...)
}

// RefreshIcons recomputes the status glyph from the active sections.
func (p *MenuPresenter) RefreshIcons() {
	p.view.ShowIcons(p.cfg.Factory.StatusIcons())
}

// SetupEvents attaches the menu toggle listener.
func (p *MenuPresenter) SetupEvents() {
	if p.state != StateConstructed {
		return
	}
	p.subs.Add(EventMenuToggle, p.view.AddToggleEvent(p.OnClick))
	p.state = StateActive
}

// OnClick handles the menu being opened or closed. Opening rebuilds every
// section from scratch.
func (p *MenuPresenter) OnClick(open bool) {
	if p.state != StateActive {
		return
	}
	p.open = open
	if open {
		p.rebuild()
	}
}

func (p *MenuPresenter) rebuild() {
	p.destroySections()
	p.view.ClearSections()

	sections := p.cfg.Factory.ActiveSections()
	p.cfg.Logger.Debug("rebuilding menu", "sections", len(sections))
	for i, section := range sections {
		sp := NewSectionPresenter(p.view.BuildSectionView(section), SectionConfig{
			Section:   section,
			Icon:      factory.SectionIcon(section, factory.VariantAt(i, len(sections))),
			Factory:   p.cfg.Factory,
			Pager:     p.cfg.Pager,
			Scheduler: p.cfg.Scheduler,
			Logger:    p.cfg.Logger,
		})
		sp.SetupEvents()
		p.sections = append(p.sections, sp)
	}
}

func (p *MenuPresenter) destroySections() {
	for _, sp := range p.sections {
		sp.OnDestroy()
	}
	p.sections = nil
}

// OnDestroy tears down every section and detaches the toggle listener.
func (p *MenuPresenter) OnDestroy() {
	p.destroySections()
	p.subs.RemoveAll(p.view.RemoveEvent)
	p.state = StateDestroyed
}
