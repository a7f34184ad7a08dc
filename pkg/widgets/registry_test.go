package widgets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/model"
)

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name   string
		field  model.Field
		expect string
	}{
		{name: "toggle", field: model.Field{Type: model.FieldTypeSlideToggle}, expect: WidgetConfirm},
		{name: "checkbox", field: model.Field{Type: model.FieldTypeCheckbox}, expect: WidgetConfirm},
		{name: "radio", field: model.Field{Type: model.FieldTypeRadio}, expect: WidgetSelect},
		{name: "dropdown", field: model.Field{Type: model.FieldTypeSelectDropdown}, expect: WidgetSelect},
		{name: "text with options", field: model.Field{Type: model.FieldTypeTextField, Options: []string{"a"}}, expect: WidgetSelect},
		{name: "select list", field: model.Field{Type: model.FieldTypeSelectList}, expect: WidgetMultiSelect},
		{name: "date", field: model.Field{Type: model.FieldTypeDatePicker}, expect: WidgetDate},
		{name: "textarea", field: model.Field{Type: model.FieldTypeTextArea}, expect: WidgetEditor},
		{name: "textfield", field: model.Field{Type: model.FieldTypeTextField}, expect: WidgetInput},
		{name: "subheader", field: model.Field{Type: model.FieldTypeSubheader}, expect: WidgetHeading},
		{name: "divider", field: model.Field{Type: model.FieldTypeDivider}, expect: WidgetRule},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.Resolve(tc.field)
			if !ok || got != tc.expect {
				t.Fatalf("expected %q, got %q (ok=%v)", tc.expect, got, ok)
			}
		})
	}
}

func TestResolve_PriorityAndOrder(t *testing.T) {
	reg := NewRegistry()
	secret := func(field model.Field) bool { return field.Name == "pin" }
	reg.Register("secret", 95, secret)
	reg.Register("shadowed", 95, secret)

	got, ok := reg.Resolve(model.Field{Name: "pin", Type: model.FieldTypeTextField})
	if !ok || got != "secret" {
		t.Fatalf("expected higher priority custom widget, got %q", got)
	}
	if got, _ := reg.Resolve(model.Field{Name: "other", Type: model.FieldTypeTextField}); got != WidgetInput {
		t.Fatalf("expected fallback input widget, got %q", got)
	}
}

func TestEmptyRegistry(t *testing.T) {
	var reg *Registry
	if _, ok := reg.Resolve(model.Field{Type: model.FieldTypeTextField}); ok {
		t.Fatalf("nil registry must not resolve")
	}
	if _, ok := (&Registry{}).Resolve(model.Field{}); ok {
		t.Fatalf("empty registry must not resolve")
	}
}

func TestNames(t *testing.T) {
	reg := &Registry{}
	reg.Register("low", 1, func(model.Field) bool { return true })
	reg.Register("high", 10, func(model.Field) bool { return true })
	reg.Register("low", 5, func(model.Field) bool { return true })
	if diff := cmp.Diff([]string{"high", "low"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
