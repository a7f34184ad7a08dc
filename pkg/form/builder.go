package form

import (
	"fmt"
	"time"

	"github.com/goliatone/go-dynform/pkg/logging"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
	"github.com/goliatone/go-dynform/pkg/visibility"
	"github.com/goliatone/go-dynform/pkg/visibility/expr"
)

// ToggleBinding records that Child is enabled or disabled by the value of
// Parent.
type ToggleBinding struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Builder converts fieldsets into FormState values. A Builder holds only
// configuration and can be reused across builds.
type Builder struct {
	logger     logging.Logger
	rules      *validation.Registry
	visibility visibility.Evaluator
	extras     map[string]any
	lenient    bool
	debounce   time.Duration
	listeners  []func(Change)
}

// New creates a Builder with the supplied options.
func New(options ...Option) *Builder {
	b := &Builder{
		logger:     logging.Nop{},
		rules:      validation.Default(),
		visibility: expr.New(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build is shorthand for New().Build.
func Build(fieldset []model.Field, options ...BuildOption) (*FormState, error) {
	return New().Build(fieldset, options...)
}

// buildPlan collects the relationships discovered while creating slots. It
// is handed to the wiring passes and then dropped.
type buildPlan struct {
	bindings     []ToggleBinding
	falseToggles []string
}

// prefillScope resolves prefill entries for one level of the tree. local is
// the nested list supplied under the enclosing toggle (or the top-level list)
// and global is always the top-level list.
type prefillScope struct {
	local  []model.KeyValue
	global []model.KeyValue
}

// Build creates the slots for fieldset, applies the initial disable pass for
// slide toggles that resolved to false, wires live toggle propagation, and
// returns the ready state. An empty fieldset logs a warning and returns
// ErrNoFieldset.
func (b *Builder) Build(fieldset []model.Field, options ...BuildOption) (*FormState, error) {
	in := buildInput{}
	for _, opt := range options {
		if opt != nil {
			opt(&in)
		}
	}

	if len(fieldset) == 0 {
		b.logger.Warn("form: no fieldset supplied, nothing to build", "form", in.id)
		return nil, ErrNoFieldset
	}
	if !b.lenient {
		if err := model.Lint(fieldset); err != nil {
			return nil, fmt.Errorf("form: build %q: %w", in.id, err)
		}
	}

	r := &root{
		id:         in.id,
		readOnly:   in.readOnly,
		logger:     b.logger,
		rules:      b.rules,
		visibility: b.visibility,
		extras:     b.extras,
		listeners:  newListenerSet(),
	}

	plan := &buildPlan{}
	state := b.newState(r, nil, fieldset, prefillScope{local: in.prefill, global: in.prefill}, plan)
	r.top = state
	r.bindings = append([]ToggleBinding(nil), plan.bindings...)

	b.reportUnmatchedPrefill(state, in.prefill)
	r.formErrors = attachErrors(state, in.errors)

	disableFalseToggles(state, plan.falseToggles)
	wireToggles(state, plan.bindings)
	r.refreshVisibility(true)

	for _, fn := range b.listeners {
		r.listeners.add(fn)
	}
	if b.debounce > 0 {
		r.debounce = newDebouncer(b.debounce, r.deliver)
	}

	r.mu.Lock()
	r.ready = true
	r.mu.Unlock()

	b.logger.Debug("form: state ready",
		"form", in.id,
		"slots", len(state.slots),
		"bindings", len(plan.bindings),
		"read_only", in.readOnly,
	)
	return state, nil
}

func (b *Builder) newState(r *root, parent *Slot, fields []model.Field, scope prefillScope, plan *buildPlan) *FormState {
	state := &FormState{
		root:   r,
		parent: parent,
		slots:  make([]*Slot, 0, len(fields)),
		index:  make(map[string]*Slot, len(fields)),
	}
	for _, field := range fields {
		slot := b.newSlot(r, state, field, scope, plan)
		state.slots = append(state.slots, slot)
		if _, exists := state.index[field.Name]; !exists {
			state.index[field.Name] = slot
		}
	}
	return state
}

func (b *Builder) newSlot(r *root, owner *FormState, field model.Field, scope prefillScope, plan *buildPlan) *Slot {
	value, nested := resolveValue(field, scope)
	slot := &Slot{
		root:    r,
		owner:   owner,
		field:   field,
		kind:    SlotLeaf,
		value:   value,
		enabled: !(field.Disabled || r.readOnly),
		visible: field.IsVisible(),
	}

	if !field.HasChildren() {
		return slot
	}

	slot.kind = SlotGroup
	for _, child := range field.Children {
		plan.bindings = append(plan.bindings, ToggleBinding{Parent: field.Name, Child: child.Name})
	}
	if field.Type == model.FieldTypeSlideToggle && !visibility.Truthy(value) {
		plan.falseToggles = append(plan.falseToggles, field.Name)
	}
	slot.children = b.newState(r, slot, field.Children, prefillScope{local: nested, global: scope.global}, plan)
	return slot
}

// resolveValue applies the initial value priority: prefill entry, then
// defaultValue, then the type default (true for slide toggles, nil
// otherwise). A prefill entry holding a nested list under a toggle scopes
// its children; the list's model.GroupValueKey entry, when present, is the
// toggle's own value.
func resolveValue(field model.Field, scope prefillScope) (any, []model.KeyValue) {
	var nested []model.KeyValue
	entry, ok := model.Find(scope.local, field.Name)
	if !ok {
		entry, ok = model.Find(scope.global, field.Name)
	}
	if ok {
		list, isList := entry.Nested()
		if !isList || !field.HasChildren() {
			return entry.Value, nil
		}
		nested = list
		if own, ok := model.Find(list, model.GroupValueKey); ok {
			return own.Value, nested
		}
	}

	if field.HasDefault() {
		return field.DefaultValue, nested
	}
	if field.Type == model.FieldTypeSlideToggle {
		return true, nested
	}
	return nil, nested
}

func (b *Builder) reportUnmatchedPrefill(state *FormState, prefill []model.KeyValue) {
	for _, pair := range prefill {
		if _, ok := state.Lookup(pair.Key); !ok {
			b.logger.Debug("form: prefill entry matches no field", "key", pair.Key)
		}
	}
}

// disableFalseToggles is the first post-build pass.
func disableFalseToggles(state *FormState, names []string) {
	for _, name := range names {
		state.ToggleChildren(name, false)
	}
}

// wireToggles is the second post-build pass: each toggle parent gets one
// watcher that re-applies its children's enablement on every value change.
func wireToggles(state *FormState, bindings []ToggleBinding) {
	wired := make(map[string]struct{}, len(bindings))
	for _, binding := range bindings {
		if _, done := wired[binding.Parent]; done {
			continue
		}
		wired[binding.Parent] = struct{}{}

		slot, ok := state.Lookup(binding.Parent)
		if !ok {
			continue
		}
		parent := binding.Parent
		slot.Watch(func(value any) {
			state.ToggleChildren(parent, value)
		})
	}
}
