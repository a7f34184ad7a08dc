package form

import "github.com/goliatone/go-dynform/pkg/model"

// Extract returns the state's values as an ordered key/value list. A group
// slot contributes a nested list led by its own value under
// model.GroupValueKey (omitted while nil) and followed by its children, so
// the result has the same shape prefill accepts.
func Extract(state *FormState) []model.KeyValue {
	if state == nil {
		return nil
	}
	return state.Extract()
}

// Extract is the method form of the package-level Extract.
func (f *FormState) Extract() []model.KeyValue {
	f.root.mu.RLock()
	defer f.root.mu.RUnlock()
	return f.extractLocked()
}

func (f *FormState) extractLocked() []model.KeyValue {
	out := make([]model.KeyValue, 0, len(f.slots))
	for _, slot := range f.slots {
		if slot.kind == SlotGroup {
			nested := slot.children.extractLocked()
			if slot.value != nil {
				nested = append([]model.KeyValue{{Key: model.GroupValueKey, Value: slot.value}}, nested...)
			}
			out = append(out, model.KeyValue{Key: slot.field.Name, Value: nested})
			continue
		}
		out = append(out, model.KeyValue{Key: slot.field.Name, Value: slot.value})
	}
	return out
}

// Values returns every slot's own value keyed by name, toggles included.
// When names repeat the first declaration wins.
func (f *FormState) Values() map[string]any {
	f.root.mu.RLock()
	defer f.root.mu.RUnlock()
	return f.valuesLocked()
}

func (f *FormState) valuesLocked() map[string]any {
	out := make(map[string]any)
	f.walk(func(slot *Slot) bool {
		if _, exists := out[slot.field.Name]; !exists {
			out[slot.field.Name] = slot.value
		}
		return true
	})
	return out
}

// Flatten returns values keyed by dotted path ("toggle.child"). Group slots
// appear under their own path with the toggle value.
func (f *FormState) Flatten() map[string]any {
	f.root.mu.RLock()
	defer f.root.mu.RUnlock()
	out := make(map[string]any)
	f.flattenLocked("", out)
	return out
}

func (f *FormState) flattenLocked(prefix string, out map[string]any) {
	for _, slot := range f.slots {
		path := slot.field.Name
		if prefix != "" {
			path = prefix + "." + path
		}
		out[path] = slot.value
		if slot.children != nil {
			slot.children.flattenLocked(path, out)
		}
	}
}
