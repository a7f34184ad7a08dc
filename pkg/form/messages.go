package form

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-dynform/pkg/model"
)

var formLevelKeys = map[string]struct{}{
	"":         {},
	"form":     {},
	"_form":    {},
	"__all__":  {},
	"_global":  {},
	"__form__": {},
}

func isFormLevelKey(key string) bool {
	_, ok := formLevelKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// FormErrors returns the errors that did not match any slot.
func (f *FormState) FormErrors() []string {
	f.root.mu.RLock()
	defer f.root.mu.RUnlock()
	return append([]string(nil), f.root.formErrors...)
}

// Errors returns the display errors of every slot that has any, keyed by
// field name.
func (f *FormState) Errors() map[string][]string {
	f.root.mu.RLock()
	defer f.root.mu.RUnlock()
	out := make(map[string][]string)
	f.walk(func(slot *Slot) bool {
		if len(slot.errors) > 0 {
			out[slot.field.Name] = append(out[slot.field.Name], slot.errors...)
		}
		return true
	})
	return out
}

// attachErrors distributes error entries onto slots and returns the entries
// that target the form as a whole or name no slot. Nested lists under a
// toggle are resolved against that toggle's children first.
func attachErrors(state *FormState, pairs []model.KeyValue) []string {
	var formLevel []string
	for _, pair := range pairs {
		if isFormLevelKey(pair.Key) {
			formLevel = append(formLevel, messages(pair.Value)...)
			continue
		}
		slot, ok := state.Lookup(pair.Key)
		if !ok {
			for _, msg := range messages(pair.Value) {
				formLevel = append(formLevel, pair.Key+": "+msg)
			}
			continue
		}
		if nested, isNested := pair.Nested(); isNested && slot.children != nil {
			formLevel = append(formLevel, attachErrors(slot.children, nested)...)
			continue
		}
		slot.errors = normalizeMessages(append(slot.errors, messages(pair.Value)...))
	}
	return normalizeMessages(formLevel)
}

func messages(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return v
	case error:
		return []string{v.Error()}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, messages(item)...)
		}
		return out
	case []model.KeyValue:
		out := make([]string, 0, len(v))
		for _, pair := range v {
			for _, msg := range messages(pair.Value) {
				out = append(out, pair.Key+": "+msg)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

func normalizeMessages(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, msg := range in {
		msg = strings.TrimSpace(msg)
		if msg == "" {
			continue
		}
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
