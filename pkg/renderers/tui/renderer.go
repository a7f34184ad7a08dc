// Package tui fills a form.FormState through terminal prompts. Slots are
// visited in declaration order; answering a toggle updates the state
// immediately, so its children are already enabled or disabled by the time
// the walk reaches them.
package tui

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/golobby/cast"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/logging"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/output"
	"github.com/goliatone/go-dynform/pkg/validation"
	"github.com/goliatone/go-dynform/pkg/visibility"
	"github.com/goliatone/go-dynform/pkg/widgets"
)

const dateLayout = "2006-01-02"

// Prompter asks for one field's value using a custom widget.
type Prompter func(ctx context.Context, driver PromptDriver, field model.Field, current any) (any, error)

// Renderer drives prompts for a form state.
type Renderer struct {
	driver            PromptDriver
	widgets           *widgets.Registry
	prompters         map[string]Prompter
	format            output.Format
	encoder           *output.Encoder
	rules             *validation.Registry
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
	logger            logging.Logger
}

// New constructs a renderer with defaults (survey driver, JSON output,
// default rule registry).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		format:    output.FormatJSON,
		rules:     validation.Default(),
		theme:     Theme{ErrorPrefix: "! ", Divider: strings.Repeat("-", 40)},
		logger:    logging.Nop{},
		prompters: make(map[string]Prompter),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	if r.widgets == nil {
		r.widgets = widgets.NewRegistry()
	}
	if r.encoder == nil {
		encoder, err := output.New()
		if err != nil {
			return nil, err
		}
		r.encoder = encoder
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	return r.format.ContentType()
}

// Render fills state and serialises the extracted values.
func (r *Renderer) Render(ctx context.Context, state *form.FormState) ([]byte, error) {
	if err := r.Fill(ctx, state); err != nil {
		return nil, err
	}

	values := state.Extract()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.encoder.Encode(values, r.format)
}

// Fill prompts for every enabled, visible slot. Subheaders print an info
// line and dividers a rule. Read-only states are left untouched.
func (r *Renderer) Fill(ctx context.Context, state *form.FormState) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	if state == nil {
		return ErrNilState
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, msg := range state.FormErrors() {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}
	if state.ReadOnly() {
		r.logger.Debug("tui: read-only form, nothing to prompt", "form", state.ID())
		return r.driver.Info(ctx, r.theme.InfoPrefix+"This form is read-only.")
	}
	return r.fillLevel(ctx, state)
}

func (r *Renderer) fillLevel(ctx context.Context, level *form.FormState) error {
	for _, slot := range level.Slots() {
		if err := ctx.Err(); err != nil {
			return err
		}
		field := slot.Field()
		if !slot.Visible() {
			continue
		}

		widget := r.widgetFor(field)
		switch widget {
		case widgets.WidgetHeading:
			if err := r.driver.Info(ctx, r.theme.InfoPrefix+field.DisplayLabel()); err != nil {
				return err
			}
		case widgets.WidgetRule:
			if err := r.driver.Info(ctx, r.theme.Divider); err != nil {
				return err
			}
		default:
			if !slot.Enabled() {
				continue
			}
			if err := r.promptSlot(ctx, slot, widget); err != nil {
				return err
			}
		}

		if children := slot.Children(); children != nil && slot.Enabled() {
			if err := r.fillLevel(ctx, children); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) widgetFor(field model.Field) string {
	if widget, ok := r.widgets.Resolve(field); ok {
		return widget
	}
	return widgets.WidgetInput
}

func (r *Renderer) promptSlot(ctx context.Context, slot *form.Slot, widget string) error {
	field := slot.Field()
	for _, msg := range slot.Errors() {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}

	for attempt := 1; ; attempt++ {
		value, err := r.ask(ctx, widget, field, slot.Value())
		if err != nil {
			return err
		}

		problems := r.check(field, value)
		if len(problems) == 0 {
			return slot.SetValue(value)
		}
		for _, problem := range problems {
			if err := r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %s", r.theme.ErrorPrefix, field.DisplayLabel(), problem)); err != nil {
				return err
			}
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Name)
		}
	}
}

func (r *Renderer) ask(ctx context.Context, widget string, field model.Field, current any) (any, error) {
	if prompt, ok := r.prompters[widget]; ok {
		return prompt(ctx, r.driver, field, current)
	}

	label := field.DisplayLabel()
	switch widget {
	case widgets.WidgetConfirm:
		return r.driver.Confirm(ctx, ConfirmConfig{
			Message: label,
			Default: visibility.Truthy(current),
			Help:    field.Help,
		})
	case widgets.WidgetSelect:
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      field.Options,
			DefaultIndex: indexOf(field.Options, visibility.String(current)),
			Help:         field.Help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return nil, nil
		}
		return field.Options[idx], nil
	case widgets.WidgetMultiSelect:
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  field.Options,
			Defaults: indicesOf(field.Options, stringValues(current)),
			Help:     field.Help,
		})
		if err != nil {
			return nil, err
		}
		return defaultsFromIndices(field.Options, indices), nil
	case widgets.WidgetEditor:
		return r.driver.TextArea(ctx, TextAreaConfig{
			Message: label,
			Default: visibility.String(current),
			Help:    field.Help,
		})
	default:
		answer, err := r.driver.Input(ctx, InputConfig{
			Message:     label,
			Default:     visibility.String(current),
			Help:        field.Help,
			Placeholder: field.Placeholder,
		})
		if err != nil {
			return nil, err
		}
		return coerce(answer, current), nil
	}
}

// check returns the problems with an answer: the date format for date
// pickers plus every failing registry rule.
func (r *Renderer) check(field model.Field, value any) []string {
	var problems []string
	if field.Type == model.FieldTypeDatePicker {
		if text := strings.TrimSpace(visibility.String(value)); text != "" {
			if _, err := time.Parse(dateLayout, text); err != nil {
				problems = append(problems, ErrInvalidDate.Error())
			}
		}
	}
	for _, issue := range r.rules.Check(field, value) {
		problems = append(problems, issue.Message)
	}
	return problems
}

// coerce converts a typed answer to the kind of the slot's current value so
// numeric and boolean defaults survive a round trip through the prompt.
func coerce(answer string, current any) any {
	if current == nil {
		return answer
	}
	if _, isString := current.(string); isString || strings.TrimSpace(answer) == "" {
		return answer
	}
	typ := reflect.TypeOf(current)
	switch typ.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		converted, err := cast.FromType(strings.TrimSpace(answer), typ)
		if err != nil {
			return answer
		}
		return converted
	default:
		return answer
	}
}

func stringValues(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = visibility.String(item)
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}
