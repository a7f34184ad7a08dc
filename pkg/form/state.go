package form

import (
	"sync"

	"github.com/goliatone/go-dynform/pkg/logging"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
	"github.com/goliatone/go-dynform/pkg/visibility"
)

// root is shared by every FormState in one tree. A single lock guards all
// slot values and flags so cascades across levels stay atomic.
type root struct {
	mu         sync.RWMutex
	id         string
	top        *FormState
	readOnly   bool
	ready      bool
	closed     bool
	logger     logging.Logger
	rules      *validation.Registry
	visibility visibility.Evaluator
	extras     map[string]any
	formErrors []string
	bindings   []ToggleBinding
	listeners  *listenerSet
	debounce   *debouncer
}

// FormState is the live form: an ordered set of slots keyed by field name.
// Toggle slots own a nested FormState for their children.
type FormState struct {
	root   *root
	parent *Slot
	slots  []*Slot
	index  map[string]*Slot
}

// ID returns the identifier given with WithFormID.
func (f *FormState) ID() string {
	return f.root.id
}

// Ready reports whether both post-build passes have completed. States
// returned by Build are always ready.
func (f *FormState) Ready() bool {
	f.root.mu.RLock()
	defer f.root.mu.RUnlock()
	return f.root.ready
}

// ReadOnly reports whether the state was built read-only.
func (f *FormState) ReadOnly() bool {
	return f.root.readOnly
}

// Parent returns the toggle slot owning this nested state, or nil at the top.
func (f *FormState) Parent() *Slot {
	return f.parent
}

// Root returns the top-level state of the tree.
func (f *FormState) Root() *FormState {
	return f.root.top
}

// Len returns the number of slots at this level.
func (f *FormState) Len() int {
	return len(f.slots)
}

// Names lists slot names at this level in declaration order.
func (f *FormState) Names() []string {
	names := make([]string, len(f.slots))
	for i, slot := range f.slots {
		names[i] = slot.field.Name
	}
	return names
}

// Slots returns the slots at this level in declaration order.
func (f *FormState) Slots() []*Slot {
	return append([]*Slot(nil), f.slots...)
}

// Slot returns the slot with the given name at this level only.
func (f *FormState) Slot(name string) (*Slot, bool) {
	slot, ok := f.index[name]
	return slot, ok
}

// Lookup searches this level and every nested level depth-first, returning
// the first slot declared with name.
func (f *FormState) Lookup(name string) (*Slot, bool) {
	for _, slot := range f.slots {
		if slot.field.Name == name {
			return slot, true
		}
		if slot.children != nil {
			if found, ok := slot.children.Lookup(name); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// Bindings returns the parent/child toggle relationships discovered at build.
func (f *FormState) Bindings() []ToggleBinding {
	return append([]ToggleBinding(nil), f.root.bindings...)
}

// Value returns the current value of the named slot anywhere in the tree.
func (f *FormState) Value(name string) (any, bool) {
	slot, ok := f.Lookup(name)
	if !ok {
		return nil, false
	}
	return slot.Value(), true
}

// SetValue assigns a value to the named slot, firing its watchers (toggle
// propagation included) and change listeners.
func (f *FormState) SetValue(name string, value any) error {
	slot, ok := f.Lookup(name)
	if !ok {
		return ErrSlotNotFound
	}
	return slot.SetValue(value)
}

// Walk visits every slot depth-first in declaration order. Returning false
// stops the walk.
func (f *FormState) Walk(fn func(slot *Slot) bool) {
	f.walk(fn)
}

func (f *FormState) walk(fn func(*Slot) bool) bool {
	for _, slot := range f.slots {
		if !fn(slot) {
			return false
		}
		if slot.children != nil && !slot.children.walk(fn) {
			return false
		}
	}
	return true
}

// Fields returns the field definitions backing this level.
func (f *FormState) Fields() []model.Field {
	out := make([]model.Field, len(f.slots))
	for i, slot := range f.slots {
		out[i] = slot.field
	}
	return out
}

// Close stops pending debounced notifications and drops every listener.
// Mutations after Close return ErrClosed.
func (f *FormState) Close() {
	r := f.root
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.listeners.clear()
	debounce := r.debounce
	r.mu.Unlock()

	if debounce != nil {
		debounce.stop()
	}
	r.logger.Debug("form: state closed", "form", r.id)
}

// refreshVisibility re-evaluates visibleWhen rules against the current
// values. Evaluation errors leave the slot at its static visibility; they
// are logged as warnings when report is set and at debug level otherwise.
func (r *root) refreshVisibility(report bool) {
	if r.visibility == nil || r.top == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := visibility.Context{Values: r.top.valuesLocked(), Extras: r.extras}
	r.top.walk(func(slot *Slot) bool {
		visible := slot.field.IsVisible()
		if rule := slot.field.VisibleWhen; rule != "" && visible {
			ok, err := r.visibility.Eval(slot.field.Name, rule, ctx)
			switch {
			case err != nil && report:
				r.logger.Warn("form: visibility rule failed", "field", slot.field.Name, "rule", rule, "error", err)
			case err != nil:
				r.logger.Debug("form: visibility rule failed", "field", slot.field.Name, "error", err)
			default:
				visible = ok
			}
		}
		slot.visible = visible
		return true
	})
}
