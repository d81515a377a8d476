// Package presenter drives the panel views: the menu, one section per
// service manager and the items inside each section.
//
// Every presenter goes through the same lifecycle. Construction pushes
// static content to the view. SetupEvents attaches listeners and records
// their handles. OnDestroy detaches every recorded handle and is terminal.
// All presenter methods must be called from the UI loop; work that blocks
// goes through a Scheduler.
package presenter

import (
	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/factory"
)

// Kind selects the behaviour composed into an item presenter.
type Kind int

const (
	// KindPlain items are inert.
	KindPlain Kind = iota
	// KindClickable items react to activation.
	KindClickable
	// KindRunnable items carry action buttons.
	KindRunnable
)

func (k Kind) String() string {
	switch k {
	case KindClickable:
		return "clickable"
	case KindRunnable:
		return "runnable"
	default:
		return "plain"
	}
}

// ItemViewConfig is the static content of one item row.
type ItemViewConfig struct {
	ID    string
	Label string
	Kind  Kind
	Item  core.Item
	// Error marks the row standing in for a failed section.
	Error bool
}

// ItemView renders one row of a section.
type ItemView interface {
	AddClickEvent(handler func()) EventHandle
	AddActionButton(t core.ActionType, icon string, handler func()) EventHandle
	RemoveEvent(h EventHandle)
	HideButtons()
}

// SectionView renders one section header and its rows.
type SectionView interface {
	ShowHeader(title string, icon factory.Icon)
	ShowLoading()
	BuildItemView(cfg ItemViewConfig) ItemView
	ClearItems()
}

// MenuView renders the status glyph and the popup menu.
type MenuView interface {
	ShowIcons(icons []factory.Icon)
	AddToggleEvent(handler func(open bool)) EventHandle
	RemoveEvent(h EventHandle)
	BuildSectionView(section core.Section) SectionView
	ClearSections()
}

// Scheduler moves work off the UI loop and results back onto it.
type Scheduler interface {
	// Go runs task outside the UI loop.
	Go(task func())
	// Post runs fn on the UI loop.
	Post(fn func())
}

// Factory is the section dispatch the presenters depend on.
type Factory interface {
	ActiveSections() []core.Section
	StatusIcons() []factory.Icon
	Items(section core.Section) core.ItemsFunc
	Action(section core.Section, t core.ActionType) core.ActionFunc
}

// State is a presenter's lifecycle phase.
type State int

const (
	StateConstructed State = iota
	StateActive
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDestroyed:
		return "destroyed"
	default:
		return "constructed"
	}
}
