// Package widgets resolves which input widget a host should use for a field.
// The terminal host maps each widget name to a prompt; other hosts may map
// them to their own controls.
package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetConfirm     = "confirm"
	WidgetSelect      = "select"
	WidgetMultiSelect = "multi-select"
	WidgetEditor      = "editor"
	WidgetDate        = "date"
	WidgetInput       = "input"
	WidgetHeading     = "heading"
	WidgetRule        = "rule"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on registered matchers. Higher
// priority wins; ties fall back to registration order. An empty registry
// never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Names lists the registered widget names, highest priority first.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].priority > rules[j].priority
	})
	seen := make(map[string]struct{}, len(rules))
	out := make([]string, 0, len(rules))
	for _, entry := range rules {
		if _, ok := seen[entry.name]; ok {
			continue
		}
		seen[entry.name] = struct{}{}
		out = append(out, entry.name)
	}
	return out
}

func ofType(types ...model.FieldType) Matcher {
	return func(field model.Field) bool {
		for _, t := range types {
			if field.Type == t {
				return true
			}
		}
		return false
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetHeading, 100, ofType(model.FieldTypeSubheader))
	r.Register(WidgetRule, 100, ofType(model.FieldTypeDivider))
	r.Register(WidgetConfirm, 90, ofType(model.FieldTypeCheckbox, model.FieldTypeSlideToggle))
	r.Register(WidgetMultiSelect, 80, ofType(model.FieldTypeSelectList))
	r.Register(WidgetSelect, 70, func(field model.Field) bool {
		if field.Type == model.FieldTypeRadio || field.Type == model.FieldTypeSelectDropdown {
			return true
		}
		// Free-text fields carrying a fixed option list still get a picker.
		return field.Type == model.FieldTypeTextField && len(field.Options) > 0
	})
	r.Register(WidgetDate, 60, ofType(model.FieldTypeDatePicker))
	r.Register(WidgetEditor, 50, ofType(model.FieldTypeTextArea))
	r.Register(WidgetInput, 0, func(model.Field) bool { return true })
}
