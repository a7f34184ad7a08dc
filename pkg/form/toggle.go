package form

import (
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/visibility"
)

// ToggleChildren enables every child of the named toggle when value is
// truthy and disables them otherwise. Unknown names and slots without
// children are ignored. Turning a toggle on also enables children declared
// disabled; slots of a read-only state are never enabled.
func (f *FormState) ToggleChildren(name string, value any) {
	r := f.root
	r.mu.Lock()
	defer r.mu.Unlock()

	slot := f.findToggle(name)
	if slot == nil {
		return
	}
	r.toggleLocked(slot, visibility.Truthy(value))
}

func (f *FormState) findToggle(name string) *Slot {
	var found *Slot
	f.walk(func(slot *Slot) bool {
		if slot.field.Name == name && slot.children != nil {
			found = slot
			return false
		}
		return true
	})
	return found
}

func (r *root) toggleLocked(slot *Slot, on bool) {
	for _, child := range slot.children.slots {
		if on {
			r.enableLocked(child)
		} else {
			r.disableLocked(child)
		}
	}
}

func (r *root) enableLocked(slot *Slot) {
	if r.readOnly {
		return
	}
	slot.enabled = true
	if slot.children != nil {
		r.toggleLocked(slot, groupOpen(slot))
	}
}

// groupOpen reports whether a group's children should be enabled given its
// current value. Non-toggle groups that were never assigned a value keep
// their children on, matching the state right after Build.
func groupOpen(slot *Slot) bool {
	if slot.value == nil && slot.field.Type != model.FieldTypeSlideToggle {
		return true
	}
	return visibility.Truthy(slot.value)
}

func (r *root) disableLocked(slot *Slot) {
	slot.enabled = false
	if slot.children == nil {
		return
	}
	for _, child := range slot.children.slots {
		r.disableLocked(child)
	}
}
