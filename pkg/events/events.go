// Package events builds the CloudEvents the form emits to its host. A submit
// event carries the extracted key/value list as JSON data; a change event
// carries the name and new value of the slot that changed.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/goliatone/go-dynform/pkg/model"
)

const (
	// TypeSubmitted is emitted when the host asks for the current values.
	TypeSubmitted = "com.goliatone.dynform.form.submitted"
	// TypeChanged is emitted for (optionally debounced) value changes.
	TypeChanged = "com.goliatone.dynform.form.changed"

	// DefaultSource identifies events when callers do not supply one.
	DefaultSource = "dynform"
)

// Event aliases the CloudEvents type so callers need not import the SDK.
type Event = cloudevents.Event

// ErrNoEmitter is returned when a submission has nowhere to go.
var ErrNoEmitter = errors.New("events: emitter is nil")

// Emitter delivers events to the host.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// EmitterFunc adapts a function into an Emitter.
type EmitterFunc func(ctx context.Context, event Event) error

// Emit delegates to the wrapped function.
func (fn EmitterFunc) Emit(ctx context.Context, event Event) error {
	return fn(ctx, event)
}

// SubmittedData is the payload of TypeSubmitted events.
type SubmittedData struct {
	Values []model.KeyValue `json:"values"`
}

// ChangedData is the payload of TypeChanged events.
type ChangedData struct {
	Field    string `json:"field"`
	Value    any    `json:"value"`
	Previous any    `json:"previous,omitempty"`
}

// NewSubmitted builds a submit event. subject usually names the form.
func NewSubmitted(source, subject string, values []model.KeyValue) (Event, error) {
	return newEvent(TypeSubmitted, source, subject, SubmittedData{Values: values})
}

// NewChanged builds a change event for one field.
func NewChanged(source, subject string, data ChangedData) (Event, error) {
	return newEvent(TypeChanged, source, subject, data)
}

func newEvent(eventType, source, subject string, data any) (Event, error) {
	if source == "" {
		source = DefaultSource
	}
	event := cloudevents.NewEvent()
	event.SetID(newID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)
	if subject != "" {
		event.SetSubject(subject)
	}
	if err := event.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return Event{}, fmt.Errorf("events: encode %s data: %w", eventType, err)
	}
	if err := event.Validate(); err != nil {
		return Event{}, fmt.Errorf("events: invalid %s event: %w", eventType, err)
	}
	return event, nil
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// DecodeSubmitted reads the values back out of a submit event.
func DecodeSubmitted(event Event) ([]model.KeyValue, error) {
	if event.Type() != TypeSubmitted {
		return nil, fmt.Errorf("events: expected %s, got %s", TypeSubmitted, event.Type())
	}
	var data SubmittedData
	if err := event.DataAs(&data); err != nil {
		return nil, fmt.Errorf("events: decode submitted data: %w", err)
	}
	return data.Values, nil
}

// Recorder collects emitted events in memory. Useful for hosts that poll and
// for tests.
type Recorder struct {
	Events []Event
}

// Emit appends the event.
func (r *Recorder) Emit(_ context.Context, event Event) error {
	r.Events = append(r.Events, event)
	return nil
}

// Last returns the most recent event.
func (r *Recorder) Last() (Event, bool) {
	if len(r.Events) == 0 {
		return Event{}, false
	}
	return r.Events[len(r.Events)-1], true
}
