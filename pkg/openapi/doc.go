// Package openapi derives form definitions from OpenAPI operations. The
// request body schema of an operation becomes a fieldset: booleans map to
// slide toggles, enums to dropdowns or select lists, date formats to date
// pickers, long strings to text areas, and nested objects to a subheader
// followed by their properties. Properties may carry an `x-dynform`
// extension to override the widget, label, placeholder, or visibleWhen rule,
// or to list sibling properties that a boolean toggles.
package openapi
