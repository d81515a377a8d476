// Package pager slices item lists into fixed-size pages.
package pager

import (
	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/settings"
)

// Pager derives page geometry from the live max-items-per-section
// preference. It holds no page state of its own.
type Pager struct {
	settings settings.Settings
}

// New creates a pager reading its page size from s.
func New(s settings.Settings) *Pager {
	return &Pager{settings: s}
}

// ItemsPerPage returns the configured page size, never less than 1.
func (p *Pager) ItemsPerPage() int {
	n := p.settings.Int(settings.MaxItemsPerSection)
	if n < 1 {
		return 1
	}
	return n
}

// FirstItemIndex is the index of the first item on page.
func (p *Pager) FirstItemIndex(page int) int {
	return page * p.ItemsPerPage()
}

// LastItemIndex is the index of the last slot on page. It may exceed the
// length of the list on the final page.
func (p *Pager) LastItemIndex(page int) int {
	return p.FirstItemIndex(page) + p.ItemsPerPage() - 1
}

// IsFirstPage reports whether page is the first page.
func (p *Pager) IsFirstPage(page int) bool {
	return page == 0
}

// IsLastPage reports whether page holds the tail of items.
func (p *Pager) IsLastPage(page int, items []core.Item) bool {
	return p.LastItemIndex(page) >= len(items)-1
}

// PageCount returns how many pages n items span. Zero items still make one
// page.
func (p *Pager) PageCount(n int) int {
	per := p.ItemsPerPage()
	if n <= per {
		return 1
	}
	return (n + per - 1) / per
}

// Slice returns the items shown on page. Out of range pages yield nil.
func (p *Pager) Slice(items []core.Item, page int) []core.Item {
	if page < 0 {
		return nil
	}
	first := p.FirstItemIndex(page)
	if first >= len(items) {
		return nil
	}
	last := min(p.LastItemIndex(page)+1, len(items))
	return items[first:last]
}
