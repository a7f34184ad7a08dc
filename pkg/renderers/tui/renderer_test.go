package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/output"
	"github.com/goliatone/go-dynform/pkg/widgets"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func profileFields() []model.Field {
	return []model.Field{
		{Name: "firstName", Type: model.FieldTypeTextField, Label: "First name", Validation: []model.ValidationRule{{Kind: model.ValidationRuleRequired}}},
		{Name: "age", Type: model.FieldTypeTextField, DefaultValue: 30},
		{Name: "birthday", Type: model.FieldTypeDatePicker},
		{Name: "details", Type: model.FieldTypeSubheader, Label: "Details"},
		{Name: "color", Type: model.FieldTypeRadio, Options: []string{"red", "blue"}},
		{Name: "newsletter", Type: model.FieldTypeSlideToggle, DefaultValue: false, Children: []model.Field{
			{Name: "topics", Type: model.FieldTypeSelectList, Parent: "newsletter", Options: []string{"go", "music", "art"}},
		}},
		{Name: "bio", Type: model.FieldTypeTextArea},
	}
}

func TestFillPromptsInOrderAndRetriesInvalidAnswers(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "Mickey", "42", "1928/11/18", "1928-11-18"},
		selectIdx: []int{1},
		confirm:   []bool{true},
		multiIdx:  [][]int{{0, 2}},
		textAreas: []string{"mouse"},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	state, err := form.Build(profileFields())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if err := r.Fill(context.Background(), state); err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := []model.KeyValue{
		{Key: "firstName", Value: "Mickey"},
		{Key: "age", Value: 42},
		{Key: "birthday", Value: "1928-11-18"},
		{Key: "details", Value: nil},
		{Key: "color", Value: "blue"},
		{Key: "newsletter", Value: []model.KeyValue{
			{Key: model.GroupValueKey, Value: true},
			{Key: "topics", Value: []string{"go", "art"}},
		}},
		{Key: "bio", Value: "mouse"},
	}
	if diff := cmp.Diff(want, state.Extract()); diff != "" {
		t.Fatalf("extracted values mismatch (-want +got):\n%s", diff)
	}

	wantPrompts := []string{"First name", "First name", "Age", "Birthday", "Birthday", "Color", "Newsletter", "Topics", "Bio"}
	if diff := cmp.Diff(wantPrompts, driver.prompts); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}

	joined := strings.Join(driver.infoMessages, "\n")
	for _, fragment := range []string{"is required", ErrInvalidDate.Error(), "Details"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected info containing %q, got %q", fragment, joined)
		}
	}
}

func TestFillSkipsChildrenOfDisabledToggle(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Minnie", "30", ""},
		selectIdx: []int{0},
		confirm:   []bool{false},
		textAreas: []string{""},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	state, err := form.Build(profileFields())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if err := r.Fill(context.Background(), state); err != nil {
		t.Fatalf("fill: %v", err)
	}
	for _, prompt := range driver.prompts {
		if prompt == "Topics" {
			t.Fatalf("children of an off toggle must not be prompted: %v", driver.prompts)
		}
	}
	slot, _ := state.Lookup("topics")
	if slot.Enabled() {
		t.Fatalf("expected topics to stay disabled")
	}
	if got, _ := state.Value("age"); got != 30 {
		t.Fatalf("typed answer should keep the default type, got %#v", got)
	}
}

func TestFillReadOnlyState(t *testing.T) {
	driver := &stubDriver{}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	state, err := form.New().Build(profileFields(), form.WithReadOnly(true))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := r.Fill(context.Background(), state); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(driver.prompts) != 0 {
		t.Fatalf("read-only state must not prompt, got %v", driver.prompts)
	}
}

func TestFillMaxAttempts(t *testing.T) {
	driver := &stubDriver{inputs: []string{"", ""}}
	r, err := New(WithPromptDriver(driver), WithMaxAttempts(2))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	state, err := form.Build(profileFields()[:1])
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := r.Fill(context.Background(), state); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestRenderAppliesTransformerAndFormat(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Goofy"}}
	r, err := New(
		WithPromptDriver(driver),
		WithOutputFormat(output.FormatForm),
		WithSubmitTransformer(func(values []model.KeyValue) ([]model.KeyValue, error) {
			return append(values, model.KeyValue{Key: "source", Value: "tui"}), nil
		}),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	state, err := form.Build(profileFields()[:1])
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := r.Render(context.Background(), state)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, want := string(out), "firstName=Goofy&source=tui"; got != want {
		t.Fatalf("unexpected output %q, want %q", got, want)
	}
	if r.ContentType() != output.FormatForm.ContentType() {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestFillNilState(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if err := r.Fill(context.Background(), nil); !errors.Is(err, ErrNilState) {
		t.Fatalf("expected ErrNilState, got %v", err)
	}
}

func TestFillCustomWidget(t *testing.T) {
	driver := &stubDriver{inputs: []string{"x"}}
	registry := widgets.NewRegistry()
	registry.Register("pin", 95, func(field model.Field) bool { return field.Name == "pin" })

	var seen []string
	r, err := New(
		WithPromptDriver(driver),
		WithWidgets(registry),
		WithPrompter("pin", func(_ context.Context, _ PromptDriver, field model.Field, _ any) (any, error) {
			seen = append(seen, field.Name)
			return "1234", nil
		}),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	state, err := form.Build([]model.Field{
		{Name: "pin", Type: model.FieldTypeTextField},
		{Name: "note", Type: model.FieldTypeTextField},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := r.Fill(context.Background(), state); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff([]string{"pin"}, seen); diff != "" {
		t.Fatalf("custom prompter calls (-want +got):\n%s", diff)
	}
	want := []model.KeyValue{{Key: "pin", Value: "1234"}, {Key: "note", Value: "x"}}
	if diff := cmp.Diff(want, state.Extract()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
