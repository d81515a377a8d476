package presenter

import "github.com/modoterra/svcpanel/pkg/core"

// EventHandle is the opaque token a view returns for an attached listener.
type EventHandle uint64

// EventKey names a logical event a presenter reacts to.
type EventKey string

const (
	EventMenuToggle EventKey = "menu-toggle"
	EventItemClick  EventKey = "item-click"
)

// ActionEvent returns the key for an action button of type t.
func ActionEvent(t core.ActionType) EventKey {
	return EventKey("action:" + string(t))
}

// Subscriptions is an insertion-ordered map from event key to the handle
// the view returned for it.
type Subscriptions struct {
	keys    []EventKey
	handles map[EventKey]EventHandle
}

// Add records h under key. Re-adding a key replaces its handle and keeps
// its original position.
func (s *Subscriptions) Add(key EventKey, h EventHandle) {
	if s.handles == nil {
		s.handles = map[EventKey]EventHandle{}
	}
	if _, ok := s.handles[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.handles[key] = h
}

// Handle returns the handle recorded under key.
func (s *Subscriptions) Handle(key EventKey) (EventHandle, bool) {
	h, ok := s.handles[key]
	return h, ok
}

// Len returns the number of recorded handles.
func (s *Subscriptions) Len() int { return len(s.keys) }

// Keys returns the recorded keys in insertion order.
func (s *Subscriptions) Keys() []EventKey {
	return append([]EventKey(nil), s.keys...)
}

// RemoveAll passes every handle to remove in insertion order and empties
// the set. It does nothing on an empty set.
func (s *Subscriptions) RemoveAll(remove func(EventHandle)) {
	for _, key := range s.keys {
		remove(s.handles[key])
	}
	s.keys = nil
	s.handles = nil
}
