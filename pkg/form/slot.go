package form

import "github.com/goliatone/go-dynform/pkg/model"

// SlotKind distinguishes plain value slots from toggles that own children.
type SlotKind int

const (
	SlotLeaf SlotKind = iota
	SlotGroup
)

func (k SlotKind) String() string {
	if k == SlotGroup {
		return "group"
	}
	return "leaf"
}

// Slot is the live control bound to one field. A group slot keeps its own
// value (the toggle state) alongside the nested state for its children.
type Slot struct {
	root     *root
	owner    *FormState
	field    model.Field
	kind     SlotKind
	value    any
	enabled  bool
	visible  bool
	errors   []string
	children *FormState
	watchers []*watcher
}

type watcher struct {
	fn func(any)
}

// Name returns the field name.
func (s *Slot) Name() string { return s.field.Name }

// Field returns the field definition.
func (s *Slot) Field() model.Field { return s.field }

// Kind reports whether the slot is a leaf or a group.
func (s *Slot) Kind() SlotKind { return s.kind }

// Children returns the nested state of a group slot, or nil.
func (s *Slot) Children() *FormState { return s.children }

// Owner returns the state that holds this slot.
func (s *Slot) Owner() *FormState { return s.owner }

// Value returns the current value.
func (s *Slot) Value() any {
	s.root.mu.RLock()
	defer s.root.mu.RUnlock()
	return s.value
}

// Enabled reports whether the slot accepts input.
func (s *Slot) Enabled() bool {
	s.root.mu.RLock()
	defer s.root.mu.RUnlock()
	return s.enabled
}

// Visible reports the result of the static flag and any visibleWhen rule.
func (s *Slot) Visible() bool {
	s.root.mu.RLock()
	defer s.root.mu.RUnlock()
	return s.visible
}

// Errors returns the display errors attached at build.
func (s *Slot) Errors() []string {
	s.root.mu.RLock()
	defer s.root.mu.RUnlock()
	return append([]string(nil), s.errors...)
}

// SetValue stores value, then notifies watchers and change listeners outside
// the state lock.
func (s *Slot) SetValue(value any) error {
	r := s.root
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	previous := s.value
	s.value = value
	watchers := append([]*watcher(nil), s.watchers...)
	r.mu.Unlock()

	for _, w := range watchers {
		w.fn(value)
	}
	r.refreshVisibility(false)
	r.notify(Change{Field: s.field.Name, Value: value, Previous: previous})
	return nil
}

// Watch registers fn for every future value change of this slot and returns
// a function that removes it.
func (s *Slot) Watch(fn func(any)) func() {
	if fn == nil {
		return func() {}
	}
	w := &watcher{fn: fn}
	s.root.mu.Lock()
	s.watchers = append(s.watchers, w)
	s.root.mu.Unlock()

	return func() {
		s.root.mu.Lock()
		defer s.root.mu.Unlock()
		for i, candidate := range s.watchers {
			if candidate == w {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				return
			}
		}
	}
}

// Enable turns the slot on, overriding its static disabled flag. It has no
// effect on read-only states. Enabling a group re-applies its toggle value
// to its children.
func (s *Slot) Enable() {
	s.root.mu.Lock()
	defer s.root.mu.Unlock()
	s.root.enableLocked(s)
}

// Disable turns the slot and all of its descendants off.
func (s *Slot) Disable() {
	s.root.mu.Lock()
	defer s.root.mu.Unlock()
	s.root.disableLocked(s)
}
