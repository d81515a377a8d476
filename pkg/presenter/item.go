package presenter

import (
	"context"
	"log/slog"

	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/factory"
)

// ItemConfig is the immutable context of an item presenter.
type ItemConfig struct {
	Section core.Section
	Item    core.Item
	Kind    Kind

	// OnClick is invoked for KindClickable items.
	OnClick func()

	Factory   Factory
	Scheduler Scheduler
	Logger    *slog.Logger
}

// clickable reacts to activation of the whole row.
type clickable struct {
	onClick func()
}

// runnable wires action buttons to the section's mutators.
type runnable struct {
	section   core.Section
	factory   Factory
	scheduler Scheduler
}

// ItemPresenter controls one row.
type ItemPresenter struct {
	view   ItemView
	item   core.Item
	subs   Subscriptions
	state  State
	logger *slog.Logger

	clickable *clickable
	runnable  *runnable
}

// NewItemPresenter creates a presenter for view. No listener is attached
// until SetupEvents.
func NewItemPresenter(view ItemView, cfg ItemConfig) *ItemPresenter {
	p := &ItemPresenter{
		view:   view,
		item:   cfg.Item,
		logger: cfg.Logger.With("item", cfg.Item.ID),
	}
	switch cfg.Kind {
	case KindClickable:
		p.clickable = &clickable{onClick: cfg.OnClick}
	case KindRunnable:
		p.runnable = &runnable{section: cfg.Section, factory: cfg.Factory, scheduler: cfg.Scheduler}
	}
	return p
}

// State returns the lifecycle phase.
func (p *ItemPresenter) State() State { return p.state }

// Subscriptions returns the recorded event keys.
func (p *ItemPresenter) Subscriptions() []EventKey { return p.subs.Keys() }

// SetupEvents attaches the listeners for the composed behaviours.
func (p *ItemPresenter) SetupEvents() {
	if p.state != StateConstructed {
		return
	}
	if p.clickable != nil {
		p.setupClickableEvents()
	}
	if p.runnable != nil {
		p.setupRunnableEvents()
	}
	p.state = StateActive
}

func (p *ItemPresenter) setupClickableEvents() {
	onClick := p.clickable.onClick
	p.subs.Add(EventItemClick, p.view.AddClickEvent(func() {
		if p.state == StateActive && onClick != nil {
			onClick()
		}
	}))
}

// setupRunnableEvents adds one button per applicable action. Actions the
// section has no mutator for are skipped.
func (p *ItemPresenter) setupRunnableEvents() {
	r := p.runnable
	for _, t := range factory.ActionTypesFor(p.item) {
		fn := r.factory.Action(r.section, t)
		if fn == nil {
			continue
		}
		h := p.view.AddActionButton(t, factory.ActionIcon(t), func() { p.run(t, fn) })
		p.subs.Add(ActionEvent(t), h)
	}
}

// run hides the buttons and launches the mutator without waiting for it.
// The next menu open reflects the outcome.
func (p *ItemPresenter) run(t core.ActionType, fn core.ActionFunc) {
	if p.state != StateActive {
		return
	}
	p.view.HideButtons()
	id, logger := p.item.ID, p.logger
	p.runnable.scheduler.Go(func() {
		if err := fn(context.Background(), id); err != nil {
			logger.Error("action failed", "action", t, "err", err)
			return
		}
		logger.Info("action launched", "action", t)
	})
}

// OnDestroy detaches every listener. It is idempotent.
func (p *ItemPresenter) OnDestroy() {
	p.subs.RemoveAll(p.view.RemoveEvent)
	p.state = StateDestroyed
}
