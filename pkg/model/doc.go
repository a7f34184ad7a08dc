// Package model defines the declarative field descriptions consumed by the
// form builder. A fieldset is a list of Field values; fields that declare
// Children act as toggles whose current value enables or disables the nested
// fields. KeyValue pairs carry prefill input, per-field errors, and extracted
// output, with nested groups encoded as []KeyValue values. FieldType values
// serialise by stable names (for example "slide-toggle") and also accept the
// numeric ordinals used by older definition files.
package model
