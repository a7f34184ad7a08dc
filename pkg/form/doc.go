// Package form turns a fieldset into a live FormState.
//
// Build resolves every field's initial value (prefill, then defaultValue,
// then the type default), applies read-only and per-field disabled flags, and
// builds nested states for fields that declare children. Two passes then run
// once, in order: slide toggles whose value resolved to false disable their
// children, and every toggle parent is subscribed so later value changes
// enable or disable its children. Only after both passes does Ready report
// true.
//
// A FormState is safe for concurrent use. Slot watchers and change listeners
// run on the goroutine that changed the value (debounced listeners run on a
// timer goroutine).
//
//	state, err := form.New().Build(fields, form.WithPrefill(prefill))
//	if err != nil {
//		return err
//	}
//	_ = state.SetValue("newsletter", false)
//	values := state.Extract()
package form
