package output_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/output"
)

func sampleValues() []model.KeyValue {
	return []model.KeyValue{
		{Key: "firstName", Value: "Mickey"},
		{Key: "newsletter", Value: []model.KeyValue{
			{Key: "frequency", Value: "weekly"},
			{Key: "topics", Value: []any{"news", "offers"}},
		}},
		{Key: "age", Value: 92},
		{Key: "notes", Value: nil},
	}
}

func TestEncodeJSONKeepsOrder(t *testing.T) {
	enc, err := output.New(output.WithIndent(0))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := enc.Encode(sampleValues(), output.FormatJSON)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"firstName":"Mickey","newsletter":{"frequency":"weekly","topics":["news","offers"]},"age":92,"notes":null}`
	if string(got) != want {
		t.Fatalf("json mismatch:\nwant %s\ngot  %s", want, got)
	}
}

func TestEncodeYAML(t *testing.T) {
	got, err := output.Marshal(sampleValues(), output.FormatYAML)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `firstName: Mickey
newsletter:
  frequency: weekly
  topics:
    - news
    - offers
age: 92
notes: null
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}
}

func TestFormEncode(t *testing.T) {
	got := output.FormEncode(sampleValues())
	want := "age=92&firstName=Mickey&newsletter.frequency=weekly&newsletter.topics%5B%5D=news&newsletter.topics%5B%5D=offers&notes="
	if got != want {
		t.Fatalf("form mismatch:\nwant %s\ngot  %s", want, got)
	}
}

func TestEncodePretty(t *testing.T) {
	enc, err := output.New(output.WithTitle("Profile <1>"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := enc.Encode(sampleValues(), output.FormatPretty)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `Profile <1>
firstName: Mickey
newsletter.frequency: weekly
newsletter.topics: news, offers
age: 92
notes: 
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("pretty mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomPrettyTemplate(t *testing.T) {
	enc, err := output.New(output.WithPrettyTemplate("{% for row in rows %}{{ row.Key }}={{ row.Depth }};{% endfor %}"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := enc.Encode(sampleValues(), output.FormatPretty)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := "firstName=0;frequency=1;topics=1;age=0;notes=0;"; string(got) != want {
		t.Fatalf("want %q, got %q", want, got)
	}

	if _, err := output.New(output.WithPrettyTemplate("{% for %}")); err == nil {
		t.Fatalf("expected template compile error")
	}
}

func TestEncodeTOMLSkipsNil(t *testing.T) {
	got, err := output.Marshal(sampleValues(), output.FormatTOML)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `age = 92
firstName = "Mickey"

[newsletter]
  frequency = "weekly"
  topics = ["news", "offers"]
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("toml mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]output.Format{
		"":           output.FormatJSON,
		"YAML":       output.FormatYAML,
		"urlencoded": output.FormatForm,
		"text":       output.FormatPretty,
	} {
		got, err := output.ParseFormat(raw)
		if err != nil || got != want {
			t.Fatalf("parse %q: got %q, %v", raw, got, err)
		}
	}
	if _, err := output.ParseFormat("xml"); !errors.Is(err, output.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if output.FormatForm.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type")
	}
}
