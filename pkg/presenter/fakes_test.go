package presenter

import (
	"context"
	"fmt"
	"sync"

	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/factory"
)

// handles hands out event handles and records removals across views.
type handles struct {
	next    EventHandle
	removed []EventHandle
}

func (h *handles) issue() EventHandle {
	h.next++
	return h.next
}

type button struct {
	action  core.ActionType
	icon    string
	handle  EventHandle
	handler func()
}

type fakeItemView struct {
	handles *handles
	cfg     ItemViewConfig
	click   func()
	buttons []button
	hidden  bool
}

func (v *fakeItemView) AddClickEvent(handler func()) EventHandle {
	v.click = handler
	return v.handles.issue()
}

func (v *fakeItemView) AddActionButton(t core.ActionType, icon string, handler func()) EventHandle {
	h := v.handles.issue()
	v.buttons = append(v.buttons, button{action: t, icon: icon, handle: h, handler: handler})
	return h
}

func (v *fakeItemView) RemoveEvent(h EventHandle) {
	v.handles.removed = append(v.handles.removed, h)
}

func (v *fakeItemView) HideButtons() { v.hidden = true }

func (v *fakeItemView) press(t core.ActionType) {
	for _, b := range v.buttons {
		if b.action == t {
			b.handler()
			return
		}
	}
	panic(fmt.Sprintf("no %s button", t))
}

type fakeSectionView struct {
	handles *handles
	title   string
	icon    factory.Icon
	loading int
	clears  int
	built   int
	items   []*fakeItemView
}

func (v *fakeSectionView) ShowHeader(title string, icon factory.Icon) {
	v.title, v.icon = title, icon
}

func (v *fakeSectionView) ShowLoading() { v.loading++ }

func (v *fakeSectionView) BuildItemView(cfg ItemViewConfig) ItemView {
	iv := &fakeItemView{handles: v.handles, cfg: cfg}
	v.items = append(v.items, iv)
	v.built++
	return iv
}

func (v *fakeSectionView) ClearItems() {
	v.clears++
	v.items = nil
}

func (v *fakeSectionView) labels() []string {
	var out []string
	for _, iv := range v.items {
		out = append(out, iv.cfg.Label)
	}
	return out
}

func (v *fakeSectionView) item(label string) *fakeItemView {
	for _, iv := range v.items {
		if iv.cfg.Label == label {
			return iv
		}
	}
	panic("no item " + label)
}

type fakeMenuView struct {
	handles  *handles
	icons    []factory.Icon
	toggle   func(bool)
	clears   int
	sections []*fakeSectionView
}

func newFakeMenuView() *fakeMenuView {
	return &fakeMenuView{handles: &handles{}}
}

func (v *fakeMenuView) ShowIcons(icons []factory.Icon) { v.icons = icons }

func (v *fakeMenuView) AddToggleEvent(handler func(open bool)) EventHandle {
	v.toggle = handler
	return v.handles.issue()
}

func (v *fakeMenuView) RemoveEvent(h EventHandle) {
	v.handles.removed = append(v.handles.removed, h)
}

func (v *fakeMenuView) BuildSectionView(core.Section) SectionView {
	sv := &fakeSectionView{handles: v.handles}
	v.sections = append(v.sections, sv)
	return sv
}

func (v *fakeMenuView) ClearSections() {
	v.clears++
	v.sections = nil
}

// syncScheduler runs everything inline.
type syncScheduler struct{}

func (syncScheduler) Go(task func()) { task() }
func (syncScheduler) Post(fn func()) { fn() }

// manualScheduler queues work until drained, imitating a UI loop that has
// not yet picked up results.
type manualScheduler struct {
	tasks []func()
	posts []func()
}

func (s *manualScheduler) Go(task func()) { s.tasks = append(s.tasks, task) }
func (s *manualScheduler) Post(fn func()) { s.posts = append(s.posts, fn) }

func (s *manualScheduler) drain() {
	for len(s.tasks) > 0 || len(s.posts) > 0 {
		tasks := s.tasks
		s.tasks = nil
		for _, t := range tasks {
			t()
		}
		posts := s.posts
		s.posts = nil
		for _, p := range posts {
			p()
		}
	}
}

type fakeFactory struct {
	mu       sync.Mutex
	sections []core.Section
	items    map[core.Section][]core.Item
	errs     map[core.Section]error
	fetches  int
	ctxs     []context.Context
	calls    []string
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{items: map[core.Section][]core.Item{}, errs: map[core.Section]error{}}
}

func (f *fakeFactory) ActiveSections() []core.Section { return f.sections }

func (f *fakeFactory) StatusIcons() []factory.Icon {
	icons := make([]factory.Icon, len(f.sections))
	for i, s := range f.sections {
		icons[i] = factory.SectionIcon(s, factory.VariantAt(i, len(f.sections)))
	}
	return icons
}

func (f *fakeFactory) Items(section core.Section) core.ItemsFunc {
	return func(ctx context.Context) ([]core.Item, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.fetches++
		f.ctxs = append(f.ctxs, ctx)
		if err := f.errs[section]; err != nil {
			return nil, err
		}
		return f.items[section], nil
	}
}

func (f *fakeFactory) Action(section core.Section, t core.ActionType) core.ActionFunc {
	if section == core.SectionCron {
		return nil
	}
	if t == core.ActionAdd && section != core.SectionSystemd {
		return nil
	}
	return func(_ context.Context, id string) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls = append(f.calls, fmt.Sprintf("%s %s %s", section, t, id))
		return nil
	}
}
