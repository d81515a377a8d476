package presenter

import (
	"context"
	"log/slog"

	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/factory"
	"github.com/modoterra/svcpanel/pkg/pager"
)

const (
	// MoreItemsID identifies the paging row.
	MoreItemsID    = "#00#"
	moreItemsLabel = "..."
)

// SectionConfig is the immutable context of a section presenter.
type SectionConfig struct {
	Section   core.Section
	Icon      factory.Icon
	Factory   Factory
	Pager     *pager.Pager
	Scheduler Scheduler
	Logger    *slog.Logger
}

// SectionPresenter fetches one section's items and renders the current
// page of them.
type SectionPresenter struct {
	view SectionView
	cfg  SectionConfig

	state    State
	page     int
	items    []core.Item
	children []*ItemPresenter

	// generation invalidates fetches issued before the latest reload or
	// teardown.
	generation uint64
	cancel     context.CancelFunc

	logger *slog.Logger
}

// NewSectionPresenter shows the header and starts the first fetch.
func NewSectionPresenter(view SectionView, cfg SectionConfig) *SectionPresenter {
	p := &SectionPresenter{
		view:   view,
		cfg:    cfg,
		logger: cfg.Logger.With("section", cfg.Section),
	}
	view.ShowHeader(factory.SectionTitle(cfg.Section), cfg.Icon)
	p.setupView()
	return p
}

// Section returns the section this presenter controls.
func (p *SectionPresenter) Section() core.Section { return p.cfg.Section }

// State returns the lifecycle phase.
func (p *SectionPresenter) State() State { return p.state }

// Page returns the page currently shown.
func (p *SectionPresenter) Page() int { return p.page }

// Children returns the item presenters of the current page.
func (p *SectionPresenter) Children() []*ItemPresenter {
	return append([]*ItemPresenter(nil), p.children...)
}

// SetupEvents marks the section active. Item listeners are attached as
// items are rendered.
func (p *SectionPresenter) SetupEvents() {
	if p.state == StateConstructed {
		p.state = StateActive
	}
}

// setupView issues a fetch whose result is rendered only if no reload or
// teardown happened in between.
func (p *SectionPresenter) setupView() {
	p.invalidate()
	gen := p.generation
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.view.ShowLoading()
	fetch := p.cfg.Factory.Items(p.cfg.Section)
	p.cfg.Scheduler.Go(func() {
		items, err := fetch(ctx)
		p.cfg.Scheduler.Post(func() {
			if gen != p.generation || p.state == StateDestroyed {
				p.logger.Debug("dropping stale fetch", "generation", gen)
				return
			}
			p.cancel = nil
			cancel()
			p.render(items, err)
		})
	})
}

func (p *SectionPresenter) invalidate() {
	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *SectionPresenter) render(items []core.Item, err error) {
	p.view.ClearItems()
	if err != nil {
		p.logger.Warn("section unavailable", "err", err)
		p.items = nil
		p.addItem(ItemViewConfig{ID: string(p.cfg.Section), Label: err.Error(), Kind: KindPlain, Error: true},
			ItemConfig{Item: core.Item{ID: string(p.cfg.Section)}, Kind: KindPlain})
		return
	}

	p.items = items
	pg := p.cfg.Pager
	if pg.FirstItemIndex(p.page) >= len(items) {
		p.page = 0
	}

	for _, item := range pg.Slice(items, p.page) {
		label := factory.Label(p.cfg.Section, item)
		p.addItem(ItemViewConfig{ID: item.ID, Label: label, Kind: KindRunnable, Item: item},
			ItemConfig{Item: item, Kind: KindRunnable})
	}

	if !pg.IsFirstPage(p.page) || !pg.IsLastPage(p.page, items) {
		more := core.Item{ID: MoreItemsID}
		p.addItem(ItemViewConfig{ID: MoreItemsID, Label: moreItemsLabel, Kind: KindClickable, Item: more},
			ItemConfig{Item: more, Kind: KindClickable, OnClick: p.NextPage})
	}
}

func (p *SectionPresenter) addItem(viewCfg ItemViewConfig, cfg ItemConfig) {
	cfg.Section = p.cfg.Section
	cfg.Factory = p.cfg.Factory
	cfg.Scheduler = p.cfg.Scheduler
	cfg.Logger = p.logger
	child := NewItemPresenter(p.view.BuildItemView(viewCfg), cfg)
	child.SetupEvents()
	p.children = append(p.children, child)
}

// NextPage advances to the following page, wrapping to the first after
// the last, and re-renders this section only.
func (p *SectionPresenter) NextPage() {
	if p.state == StateDestroyed {
		return
	}
	if p.cfg.Pager.IsLastPage(p.page, p.items) {
		p.page = 0
	} else {
		p.page++
	}
	p.Reload()
}

// Reload tears down the current rows and fetches again.
func (p *SectionPresenter) Reload() {
	if p.state == StateDestroyed {
		return
	}
	p.destroyChildren()
	p.view.ClearItems()
	p.setupView()
}

func (p *SectionPresenter) destroyChildren() {
	for _, child := range p.children {
		child.OnDestroy()
	}
	p.children = nil
}

// OnDestroy cancels any in-flight fetch and tears down every row.
func (p *SectionPresenter) OnDestroy() {
	if p.state == StateDestroyed {
		return
	}
	p.invalidate()
	p.destroyChildren()
	p.state = StateDestroyed
}
