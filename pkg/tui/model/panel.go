package model

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/factory"
	"github.com/modoterra/svcpanel/pkg/presenter"
)

// Panel holds the rendered state the presenters push. It implements
// presenter.MenuView; its sections and rows implement the section and
// item views. Only the bubbletea loop touches it.
type Panel struct {
	next presenter.EventHandle

	icons        []factory.Icon
	toggle       func(open bool)
	toggleHandle presenter.EventHandle
	open         bool
	sections     []*sectionView
}

// NewPanel returns a closed, empty panel.
func NewPanel() *Panel {
	return &Panel{}
}

func (p *Panel) issue() presenter.EventHandle {
	p.next++
	return p.next
}

func (p *Panel) ShowIcons(icons []factory.Icon) { p.icons = icons }

func (p *Panel) AddToggleEvent(handler func(open bool)) presenter.EventHandle {
	p.toggle = handler
	p.toggleHandle = p.issue()
	return p.toggleHandle
}

func (p *Panel) RemoveEvent(h presenter.EventHandle) {
	if h == p.toggleHandle {
		p.toggle = nil
		p.toggleHandle = 0
	}
}

func (p *Panel) BuildSectionView(section core.Section) presenter.SectionView {
	sv := &sectionView{panel: p, section: section}
	p.sections = append(p.sections, sv)
	return sv
}

func (p *Panel) ClearSections() { p.sections = nil }

// IsOpen reports whether the popup menu is shown.
func (p *Panel) IsOpen() bool { return p.open }

// SetOpen opens or closes the menu and notifies the toggle listener.
func (p *Panel) SetOpen(open bool) {
	p.open = open
	if p.toggle != nil {
		p.toggle(open)
	}
}

type sectionView struct {
	panel   *Panel
	section core.Section
	title   string
	icon    factory.Icon
	loading bool
	items   []*itemView
}

func (s *sectionView) ShowHeader(title string, icon factory.Icon) {
	s.title, s.icon = title, icon
}

func (s *sectionView) ShowLoading() {
	s.loading = true
	s.items = nil
}

func (s *sectionView) BuildItemView(cfg presenter.ItemViewConfig) presenter.ItemView {
	s.loading = false
	iv := &itemView{panel: s.panel, cfg: cfg}
	s.items = append(s.items, iv)
	return iv
}

func (s *sectionView) ClearItems() { s.items = nil }

type button struct {
	action  core.ActionType
	icon    string
	handle  presenter.EventHandle
	handler func()
}

type itemView struct {
	panel       *Panel
	cfg         presenter.ItemViewConfig
	click       func()
	clickHandle presenter.EventHandle
	buttons     []button
	hidden      bool
}

func (i *itemView) AddClickEvent(handler func()) presenter.EventHandle {
	i.click = handler
	i.clickHandle = i.panel.issue()
	return i.clickHandle
}

func (i *itemView) AddActionButton(t core.ActionType, icon string, handler func()) presenter.EventHandle {
	h := i.panel.issue()
	i.buttons = append(i.buttons, button{action: t, icon: icon, handle: h, handler: handler})
	return h
}

func (i *itemView) RemoveEvent(h presenter.EventHandle) {
	if h == i.clickHandle {
		i.click = nil
		i.clickHandle = 0
		return
	}
	for n, b := range i.buttons {
		if b.handle == h {
			i.buttons = append(i.buttons[:n], i.buttons[n+1:]...)
			return
		}
	}
}

func (i *itemView) HideButtons() { i.hidden = true }

// visibleButtons returns the buttons the user can press.
func (i *itemView) visibleButtons() []button {
	if i.hidden {
		return nil
	}
	return i.buttons
}

func (i *itemView) selectable() bool {
	return !i.cfg.Error
}

// row is a header (item == nil) or an item line.
type row struct {
	section *sectionView
	item    *itemView
}

// rows flattens the open menu, keeping only items whose label fuzzily
// matches query. Sections without a match are omitted while filtering.
func (p *Panel) rows(query string) []row {
	var out []row
	for _, s := range p.sections {
		var items []row
		for _, iv := range s.items {
			if query != "" && !fuzzy.MatchNormalizedFold(query, iv.cfg.Label) {
				continue
			}
			items = append(items, row{section: s, item: iv})
		}
		if query != "" && len(items) == 0 {
			continue
		}
		out = append(out, row{section: s})
		out = append(out, items...)
	}
	return out
}

// selectableRows returns the item rows the cursor can land on.
func (p *Panel) selectableRows(query string) []row {
	var out []row
	for _, r := range p.rows(query) {
		if r.item != nil && r.item.selectable() {
			out = append(out, r)
		}
	}
	return out
}
