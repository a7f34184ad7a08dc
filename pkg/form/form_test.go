package form_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/events"
	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/sanitize"
)

func toggleFieldset() []model.Field {
	return []model.Field{
		{Name: "a", Type: model.FieldTypeTextField},
		{Name: "b", Type: model.FieldTypeSlideToggle, DefaultValue: false, Children: []model.Field{
			{Name: "c", Type: model.FieldTypeTextField, Parent: "b"},
		}},
	}
}

func mustBuild(t *testing.T, fields []model.Field, opts ...form.BuildOption) *form.FormState {
	t.Helper()
	state, err := form.New().Build(fields, opts...)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return state
}

func mustLookup(t *testing.T, state *form.FormState, name string) *form.Slot {
	t.Helper()
	slot, ok := state.Lookup(name)
	if !ok {
		t.Fatalf("slot %q not found", name)
	}
	return slot
}

func TestBuildFalseToggleDisablesChildren(t *testing.T) {
	state := mustBuild(t, toggleFieldset())

	if !state.Ready() {
		t.Fatalf("expected ready state")
	}
	if got := state.Names(); !cmp.Equal(got, []string{"a", "b"}) {
		t.Fatalf("unexpected slot order %v", got)
	}
	if mustLookup(t, state, "c").Enabled() {
		t.Fatalf("child of false toggle must start disabled")
	}
	if !mustLookup(t, state, "a").Enabled() {
		t.Fatalf("unrelated field must stay enabled")
	}

	state.ToggleChildren("b", true)
	if !mustLookup(t, state, "c").Enabled() {
		t.Fatalf("expected child enabled after toggle on")
	}

	state.ToggleChildren("b", false)
	if mustLookup(t, state, "c").Enabled() {
		t.Fatalf("expected child disabled after toggle off")
	}
}

func TestBuildToggleWithoutDefaultStartsOn(t *testing.T) {
	fields := []model.Field{
		{Name: "b", Type: model.FieldTypeSlideToggle, Children: []model.Field{
			{Name: "c", Type: model.FieldTypeTextField},
		}},
	}
	state := mustBuild(t, fields)

	if got, _ := state.Value("b"); got != true {
		t.Fatalf("expected toggle default true, got %v", got)
	}
	if !mustLookup(t, state, "c").Enabled() {
		t.Fatalf("children of an on toggle must be enabled")
	}
}

func TestBuildCheckboxWithChildrenIsNotDisabledAtBuild(t *testing.T) {
	fields := []model.Field{
		{Name: "agree", Type: model.FieldTypeCheckbox, DefaultValue: false, Children: []model.Field{
			{Name: "details", Type: model.FieldTypeTextArea},
		}},
	}
	state := mustBuild(t, fields)
	if !mustLookup(t, state, "details").Enabled() {
		t.Fatalf("initial disable pass applies to slide toggles only")
	}

	if err := state.SetValue("agree", false); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if mustLookup(t, state, "details").Enabled() {
		t.Fatalf("value changes on any parent must propagate")
	}
}

func TestSetValuePropagatesToChildren(t *testing.T) {
	state := mustBuild(t, toggleFieldset())

	if err := state.SetValue("b", true); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if !mustLookup(t, state, "c").Enabled() {
		t.Fatalf("expected child enabled after SetValue(true)")
	}
	if err := state.SetValue("b", "off"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if mustLookup(t, state, "c").Enabled() {
		t.Fatalf("expected child disabled after SetValue(\"off\")")
	}

	if err := state.SetValue("missing", 1); !errors.Is(err, form.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestNestedTogglesCascade(t *testing.T) {
	fields := []model.Field{
		{Name: "outer", Type: model.FieldTypeSlideToggle, DefaultValue: true, Children: []model.Field{
			{Name: "inner", Type: model.FieldTypeSlideToggle, DefaultValue: false, Children: []model.Field{
				{Name: "leaf", Type: model.FieldTypeTextField},
			}},
			{Name: "sibling", Type: model.FieldTypeTextField},
		}},
	}
	state := mustBuild(t, fields)

	if mustLookup(t, state, "leaf").Enabled() {
		t.Fatalf("leaf under false inner toggle must start disabled")
	}

	state.ToggleChildren("outer", false)
	for _, name := range []string{"inner", "leaf", "sibling"} {
		if mustLookup(t, state, name).Enabled() {
			t.Fatalf("%s should be disabled with outer off", name)
		}
	}

	state.ToggleChildren("outer", true)
	if !mustLookup(t, state, "inner").Enabled() || !mustLookup(t, state, "sibling").Enabled() {
		t.Fatalf("direct children should be enabled with outer on")
	}
	if mustLookup(t, state, "leaf").Enabled() {
		t.Fatalf("leaf must follow inner toggle value, which is still false")
	}
}

func TestReadOnlyDisablesEverything(t *testing.T) {
	fields := toggleFieldset()
	fields[1].DefaultValue = true
	state := mustBuild(t, fields, form.WithReadOnly(true))

	state.Walk(func(slot *form.Slot) bool {
		if slot.Enabled() {
			t.Fatalf("slot %s enabled in read-only state", slot.Name())
		}
		return true
	})

	state.ToggleChildren("b", true)
	mustLookup(t, state, "a").Enable()
	if mustLookup(t, state, "c").Enabled() || mustLookup(t, state, "a").Enabled() {
		t.Fatalf("read-only state must never enable slots")
	}
}

func TestToggleEnablesDeclaredDisabledChildren(t *testing.T) {
	fields := []model.Field{
		{Name: "b", Type: model.FieldTypeSlideToggle, DefaultValue: false, Children: []model.Field{
			{Name: "c", Type: model.FieldTypeTextField},
			{Name: "locked", Type: model.FieldTypeTextField, Disabled: true},
		}},
	}
	state := mustBuild(t, fields)
	if mustLookup(t, state, "locked").Enabled() {
		t.Fatalf("declared disabled child must start disabled")
	}

	state.ToggleChildren("b", true)
	if !mustLookup(t, state, "c").Enabled() || !mustLookup(t, state, "locked").Enabled() {
		t.Fatalf("toggle on must enable every child")
	}

	state.ToggleChildren("b", false)
	if mustLookup(t, state, "locked").Enabled() {
		t.Fatalf("toggle off must disable every child")
	}

	readOnly := mustBuild(t, fields, form.WithReadOnly(true))
	readOnly.ToggleChildren("b", true)
	if mustLookup(t, readOnly, "locked").Enabled() {
		t.Fatalf("read-only state must keep children disabled")
	}
}

func TestToggleChildrenIgnoresUnknownAndLeaf(t *testing.T) {
	state := mustBuild(t, toggleFieldset())
	before := state.Flatten()

	state.ToggleChildren("missing", true)
	state.ToggleChildren("a", true)

	if diff := cmp.Diff(before, state.Flatten()); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
	if mustLookup(t, state, "c").Enabled() {
		t.Fatalf("unrelated toggles must not touch c")
	}
}

func TestToggleChildrenIsIdempotent(t *testing.T) {
	state := mustBuild(t, toggleFieldset())
	state.ToggleChildren("b", true)
	state.ToggleChildren("b", true)
	if !mustLookup(t, state, "c").Enabled() {
		t.Fatalf("expected c enabled")
	}
	state.ToggleChildren("b", false)
	state.ToggleChildren("b", false)
	if mustLookup(t, state, "c").Enabled() {
		t.Fatalf("expected c disabled")
	}
}

func TestBuildEmptyFieldset(t *testing.T) {
	state, err := form.New().Build(nil)
	if !errors.Is(err, form.ErrNoFieldset) {
		t.Fatalf("expected ErrNoFieldset, got %v", err)
	}
	if state != nil {
		t.Fatalf("expected nil state")
	}
}

func TestBuildRejectsInvalidFieldset(t *testing.T) {
	fields := []model.Field{
		{Name: "a", Type: model.FieldTypeTextField},
		{Name: "a", Type: model.FieldTypeTextArea},
	}
	if _, err := form.New().Build(fields); !errors.Is(err, model.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	state, err := form.New(form.WithLenient()).Build(fields)
	if err != nil {
		t.Fatalf("lenient build: %v", err)
	}
	slot := mustLookup(t, state, "a")
	if slot.Field().Type != model.FieldTypeTextField {
		t.Fatalf("lenient lookup must return first declaration, got %s", slot.Field().Type)
	}
	if state.Len() != 2 {
		t.Fatalf("expected both slots kept, got %d", state.Len())
	}
}

func TestInitialValuePriority(t *testing.T) {
	fields := []model.Field{
		{Name: "prefilled", Type: model.FieldTypeTextField, DefaultValue: "default"},
		{Name: "defaulted", Type: model.FieldTypeTextField, DefaultValue: "default"},
		{Name: "empty", Type: model.FieldTypeTextField},
		{Name: "toggle", Type: model.FieldTypeSlideToggle},
		{Name: "offToggle", Type: model.FieldTypeSlideToggle, DefaultValue: false},
	}
	prefill := []model.KeyValue{
		{Key: "prefilled", Value: "prefill"},
		{Key: "unknown", Value: "ignored"},
	}
	state := mustBuild(t, fields, form.WithPrefill(prefill))

	want := []model.KeyValue{
		{Key: "prefilled", Value: "prefill"},
		{Key: "defaulted", Value: "default"},
		{Key: "empty", Value: nil},
		{Key: "toggle", Value: true},
		{Key: "offToggle", Value: false},
	}
	if diff := cmp.Diff(want, form.Extract(state)); diff != "" {
		t.Fatalf("extract mismatch (-want +got):\n%s", diff)
	}
}

func TestPrefillFalseToggleDisablesChildren(t *testing.T) {
	fields := []model.Field{
		{Name: "b", Type: model.FieldTypeSlideToggle, DefaultValue: true, Children: []model.Field{
			{Name: "c", Type: model.FieldTypeTextField},
		}},
	}
	state := mustBuild(t, fields, form.WithPrefill([]model.KeyValue{{Key: "b", Value: false}}))
	if mustLookup(t, state, "c").Enabled() {
		t.Fatalf("toggle resolved to false via prefill must disable children")
	}
}

func TestPrefillTextToggleValues(t *testing.T) {
	fields := []model.Field{
		{Name: "b", Type: model.FieldTypeSlideToggle, Children: []model.Field{
			{Name: "c", Type: model.FieldTypeTextField},
		}},
	}
	cases := []struct {
		value   any
		enabled bool
	}{
		{value: "off", enabled: false},
		{value: "No", enabled: false},
		{value: "0", enabled: false},
		{value: "", enabled: false},
		{value: "on", enabled: true},
		{value: "yes", enabled: true},
	}
	for _, tc := range cases {
		state := mustBuild(t, fields, form.WithPrefill([]model.KeyValue{{Key: "b", Value: tc.value}}))
		if got := mustLookup(t, state, "c").Enabled(); got != tc.enabled {
			t.Fatalf("prefill b=%q: child enabled=%v, want %v", tc.value, got, tc.enabled)
		}
		if got, _ := state.Value("b"); got != tc.value {
			t.Fatalf("prefill b=%q: toggle value %v", tc.value, got)
		}
	}
}

func TestExtractShapeAndRoundTrip(t *testing.T) {
	fields := []model.Field{
		{Name: "a", Type: model.FieldTypeTextField},
		{Name: "b", Type: model.FieldTypeSlideToggle, Children: []model.Field{
			{Name: "c", Type: model.FieldTypeTextField},
			{Name: "d", Type: model.FieldTypeSelectList, Options: []string{"x", "y"}},
		}},
	}
	prefill := []model.KeyValue{
		{Key: "a", Value: "alpha"},
		{Key: "b", Value: []model.KeyValue{
			{Key: model.GroupValueKey, Value: true},
			{Key: "c", Value: "gamma"},
			{Key: "d", Value: []any{"x"}},
		}},
	}
	state := mustBuild(t, fields, form.WithPrefill(prefill))

	extracted := state.Extract()
	if diff := cmp.Diff(prefill, extracted); diff != "" {
		t.Fatalf("extract mismatch (-want +got):\n%s", diff)
	}

	rebuilt := mustBuild(t, fields, form.WithPrefill(extracted))
	if diff := cmp.Diff(extracted, rebuilt.Extract()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	flat := map[string]any{
		"a":   "alpha",
		"b":   true,
		"b.c": "gamma",
		"b.d": []any{"x"},
	}
	if diff := cmp.Diff(flat, state.Flatten()); diff != "" {
		t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
	}

	values := state.Values()
	if values["b"] != true || values["c"] != "gamma" {
		t.Fatalf("unexpected flat values %v", values)
	}
}

func TestExtractKeepsToggleValue(t *testing.T) {
	state := mustBuild(t, toggleFieldset())
	if err := state.SetValue("b", true); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if err := state.SetValue("c", "gamma"); err != nil {
		t.Fatalf("set value: %v", err)
	}

	want := []model.KeyValue{
		{Key: "a", Value: nil},
		{Key: "b", Value: []model.KeyValue{
			{Key: model.GroupValueKey, Value: true},
			{Key: "c", Value: "gamma"},
		}},
	}
	extracted := state.Extract()
	if diff := cmp.Diff(want, extracted); diff != "" {
		t.Fatalf("extract mismatch (-want +got):\n%s", diff)
	}

	rebuilt := mustBuild(t, toggleFieldset(), form.WithPrefill(extracted))
	if got, _ := rebuilt.Value("b"); got != true {
		t.Fatalf("expected toggle value true after rebuild, got %v", got)
	}
	if !mustLookup(t, rebuilt, "c").Enabled() {
		t.Fatalf("expected child enabled after rebuild")
	}
	if diff := cmp.Diff(extracted, rebuilt.Extract()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	flat := mustBuild(t, toggleFieldset(), form.WithPrefill([]model.KeyValue{{Key: "b", Value: true}}))
	if diff := cmp.Diff(want[1].Value.([]model.KeyValue)[:1], flat.Extract()[1].Value.([]model.KeyValue)[:1]); diff != "" {
		t.Fatalf("plain toggle prefill lost (-want +got):\n%s", diff)
	}
}

func TestChildrenFallBackToTopLevelPrefill(t *testing.T) {
	state := mustBuild(t, toggleFieldset(), form.WithPrefill([]model.KeyValue{
		{Key: "c", Value: "from top"},
	}))
	if got, _ := state.Value("c"); got != "from top" {
		t.Fatalf("expected child prefill by name, got %v", got)
	}
}

func TestErrorsMapping(t *testing.T) {
	errs := []model.KeyValue{
		{Key: "a", Value: []any{" too short ", "too short", ""}},
		{Key: "b", Value: []model.KeyValue{{Key: "c", Value: "required"}}},
		{Key: "form", Value: "try again"},
		{Key: "ghost", Value: "lost"},
	}
	state := mustBuild(t, toggleFieldset(), form.WithErrors(errs))

	wantSlots := map[string][]string{
		"a": {"too short"},
		"c": {"required"},
	}
	if diff := cmp.Diff(wantSlots, state.Errors()); diff != "" {
		t.Fatalf("slot errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"try again", "ghost: lost"}, state.FormErrors()); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSkipsDisabledSlots(t *testing.T) {
	fields := []model.Field{
		{Name: "email", Type: model.FieldTypeTextField, Validation: []model.ValidationRule{
			{Kind: model.ValidationRuleRequired},
			{Kind: model.ValidationRuleEmail},
		}},
		{Name: "b", Type: model.FieldTypeSlideToggle, DefaultValue: false, Children: []model.Field{
			{Name: "c", Type: model.FieldTypeTextField, Validation: []model.ValidationRule{
				{Kind: model.ValidationRuleRequired},
			}},
		}},
	}
	state := mustBuild(t, fields, form.WithPrefill([]model.KeyValue{{Key: "email", Value: "not-an-email"}}))

	report := state.Validate()
	if report.Valid() {
		t.Fatalf("expected invalid report")
	}
	if got := report.ByField(); len(got) != 1 || len(got["email"]) != 1 {
		t.Fatalf("expected one email issue, got %v", got)
	}

	state.ToggleChildren("b", true)
	if got := state.Validate().ByField(); len(got["c"]) != 1 {
		t.Fatalf("enabled child must be validated, got %v", got)
	}

	_ = state.SetValue("email", "mickey@disney.com")
	_ = state.SetValue("c", "filled")
	if report := state.Validate(); !report.Valid() {
		t.Fatalf("expected valid report, got %v", report.Issues)
	}
}

func TestVisibleWhen(t *testing.T) {
	fields := []model.Field{
		{Name: "contact", Type: model.FieldTypeRadio, Options: []string{"email", "phone"}, DefaultValue: "email"},
		{Name: "phone", Type: model.FieldTypeTextField, VisibleWhen: `contact == "phone"`, Validation: []model.ValidationRule{
			{Kind: model.ValidationRuleRequired},
		}},
		{Name: "beta", Type: model.FieldTypeTextField, VisibleWhen: "extras.beta"},
	}
	state, err := form.New(form.WithVisibilityExtras(map[string]any{"beta": true})).Build(fields)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if mustLookup(t, state, "phone").Visible() {
		t.Fatalf("phone should start hidden")
	}
	if !mustLookup(t, state, "beta").Visible() {
		t.Fatalf("beta should be visible through extras")
	}
	if !state.Validate().Valid() {
		t.Fatalf("hidden required field must not fail validation")
	}

	_ = state.SetValue("contact", "phone")
	if !mustLookup(t, state, "phone").Visible() {
		t.Fatalf("phone should show after contact changes")
	}
	if state.Validate().Valid() {
		t.Fatalf("visible required field must be validated")
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	state := mustBuild(t, toggleFieldset())

	var got []form.Change
	unsubscribe := state.Subscribe(func(change form.Change) {
		got = append(got, change)
	})

	_ = state.SetValue("a", "one")
	_ = state.SetValue("a", "two")
	unsubscribe()
	_ = state.SetValue("a", "three")

	want := []form.Change{
		{Field: "a", Value: "one"},
		{Field: "a", Value: "two", Previous: "one"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestChangeDebounceDeliversLast(t *testing.T) {
	var (
		mu  sync.Mutex
		got []form.Change
	)
	done := make(chan struct{}, 1)
	builder := form.New(
		form.WithChangeDebounce(20*time.Millisecond),
		form.WithChangeListener(func(change form.Change) {
			mu.Lock()
			got = append(got, change)
			mu.Unlock()
			done <- struct{}{}
		}),
	)
	state, err := builder.Build(toggleFieldset())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer state.Close()

	for _, v := range []string{"m", "mi", "mic"} {
		_ = state.SetValue("a", v)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for debounced change")
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].Value != "mic" {
		t.Fatalf("expected a single change with the last value, got %v", got)
	}
}

func TestCloseRejectsMutation(t *testing.T) {
	state := mustBuild(t, toggleFieldset())
	state.Close()
	state.Close()

	if err := state.SetValue("a", "x"); !errors.Is(err, form.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := state.Submit(context.Background(), &events.Recorder{}); !errors.Is(err, form.ErrClosed) {
		t.Fatalf("expected ErrClosed from submit, got %v", err)
	}
}

func TestSubmitEmitsCloudEvent(t *testing.T) {
	state := mustBuild(t, toggleFieldset(),
		form.WithFormID("profile"),
		form.WithPrefill([]model.KeyValue{{Key: "a", Value: "<b>Mickey</b>"}}),
	)

	recorder := &events.Recorder{}
	err := state.Submit(context.Background(), recorder,
		form.WithSource("test"),
		form.WithSanitizer(sanitize.New()),
	)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	event, ok := recorder.Last()
	if !ok {
		t.Fatalf("expected recorded event")
	}
	if event.Type() != events.TypeSubmitted || event.Subject() != "profile" || event.Source() != "test" {
		t.Fatalf("unexpected event attributes: %s %s %s", event.Type(), event.Subject(), event.Source())
	}

	values, err := events.DecodeSubmitted(event)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []model.KeyValue{
		{Key: "a", Value: "Mickey"},
		{Key: "b", Value: []model.KeyValue{
			{Key: model.GroupValueKey, Value: false},
			{Key: "c", Value: nil},
		}},
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitRequireValid(t *testing.T) {
	fields := []model.Field{
		{Name: "name", Type: model.FieldTypeTextField, Validation: []model.ValidationRule{
			{Kind: model.ValidationRuleRequired},
		}},
	}
	state := mustBuild(t, fields)
	recorder := &events.Recorder{}

	err := state.Submit(context.Background(), recorder, form.RequireValid())
	var vErr *form.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(recorder.Events) != 0 {
		t.Fatalf("invalid submit must not emit")
	}

	if err := state.Submit(context.Background(), nil); !errors.Is(err, events.ErrNoEmitter) {
		t.Fatalf("expected ErrNoEmitter, got %v", err)
	}
}

func TestEmitChanges(t *testing.T) {
	state := mustBuild(t, toggleFieldset(), form.WithFormID("profile"))
	recorder := &events.Recorder{}
	stop := state.EmitChanges(context.Background(), recorder, "")
	defer stop()

	_ = state.SetValue("b", true)

	event, ok := recorder.Last()
	if !ok || event.Type() != events.TypeChanged {
		t.Fatalf("expected change event, got %v", recorder.Events)
	}
	var data events.ChangedData
	if err := event.DataAs(&data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(events.ChangedData{Field: "b", Value: true, Previous: false}, data); diff != "" {
		t.Fatalf("change data mismatch (-want +got):\n%s", diff)
	}
}

func TestBindings(t *testing.T) {
	state := mustBuild(t, toggleFieldset())
	want := []form.ToggleBinding{{Parent: "b", Child: "c"}}
	if diff := cmp.Diff(want, state.Bindings()); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}
	b := mustLookup(t, state, "b")
	if b.Kind() != form.SlotGroup || b.Children().Parent() != b {
		t.Fatalf("expected b to own its child state")
	}
}
