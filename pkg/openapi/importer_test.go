package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/openapi"
	"github.com/goliatone/go-dynform/pkg/source"
)

func TestImporterDefinition(t *testing.T) {
	importer := openapi.NewImporter()
	def, err := importer.Definition(context.Background(), source.FromFile("testdata/profiles.yaml"), "createProfile")
	if err != nil {
		t.Fatalf("definition: %v", err)
	}
	if def.ID != "createProfile" || def.Title != "Create a profile" {
		t.Fatalf("unexpected definition header %+v", def)
	}
	if err := def.Validate(); err != nil {
		t.Fatalf("imported definition must validate: %v", err)
	}

	state, err := def.Build(form.New())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	frequency, ok := state.Lookup("frequency")
	if !ok {
		t.Fatalf("expected frequency nested under subscribed")
	}
	if frequency.Enabled() {
		t.Fatalf("toggle children start disabled until the toggle is switched on")
	}
	if err := state.SetValue("subscribed", true); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if !frequency.Enabled() {
		t.Fatalf("expected frequency enabled after subscribing")
	}
}

func TestImporterErrors(t *testing.T) {
	importer := openapi.NewImporter()
	src := source.FromFile("testdata/profiles.yaml")

	if _, err := importer.Fieldset(context.Background(), src, "missing"); !errors.Is(err, openapi.ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := importer.Fieldset(context.Background(), src, "get:/ping"); !errors.Is(err, openapi.ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}
	if _, err := importer.Parse(context.Background(), []byte("id: form\n")); !errors.Is(err, openapi.ErrNotOpenAPI) {
		t.Fatalf("expected ErrNotOpenAPI, got %v", err)
	}
}

func TestImporterLabels(t *testing.T) {
	fields, err := openapi.NewImporter().Fieldset(context.Background(), source.FromFile("testdata/profiles.yaml"), "createProfile")
	if err != nil {
		t.Fatalf("fieldset: %v", err)
	}
	labels := map[string]string{}
	model.Walk(fields, func(field model.Field, _ string) bool {
		labels[field.Name] = field.DisplayLabel()
		return true
	})
	want := map[string]string{
		"address":        "Address",
		"address_city":   "Address City",
		"address_street": "Address Street",
		"age":            "Age",
		"bio":            "Bio",
		"birthday":       "Birthday",
		"email":          "Email",
		"favoriteFood":   "Favorite Food",
		"firstName":      "First name",
		"frequency":      "Frequency",
		"subscribed":     "Subscribed",
		"tags":           "Tags",
	}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestDetect(t *testing.T) {
	cases := map[string]bool{
		`{"openapi":"3.0.0"}`: true,
		`{"swagger":"2.0"}`:   true,
		"openapi: 3.1.0\n":    true,
		`{"id":"form"}`:       false,
		"":                    false,
	}
	for raw, want := range cases {
		if got := openapi.Detect([]byte(raw)); got != want {
			t.Fatalf("detect %q: want %v, got %v", raw, want, got)
		}
	}
}
