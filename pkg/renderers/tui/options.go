package tui

import (
	"github.com/goliatone/go-dynform/pkg/logging"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/output"
	"github.com/goliatone/go-dynform/pkg/validation"
	"github.com/goliatone/go-dynform/pkg/widgets"
)

// Theme captures optional message prefixes.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
	Divider     string
}

// SubmitTransformer mutates extracted values before serialization.
type SubmitTransformer func([]model.KeyValue) ([]model.KeyValue, error)

// Option configures the renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the serialization Render uses.
func WithOutputFormat(format output.Format) Option {
	return func(r *Renderer) {
		if format != "" {
			r.format = format
		}
	}
}

// WithEncoder replaces the default output encoder.
func WithEncoder(encoder *output.Encoder) Option {
	return func(r *Renderer) {
		if encoder != nil {
			r.encoder = encoder
		}
	}
}

// WithRules sets the registry answers are validated against. It should match
// the registry the state was built with.
func WithRules(registry *validation.Registry) Option {
	return func(r *Renderer) {
		if registry != nil {
			r.rules = registry
		}
	}
}

// WithSubmitTransformer allows callers to mutate extracted values prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithMaxAttempts bounds how often a prompt repeats after invalid answers.
// Zero means unbounded.
func WithMaxAttempts(n int) Option {
	return func(r *Renderer) {
		if n >= 0 {
			r.maxAttempts = n
		}
	}
}

// WithLogger routes renderer diagnostics to logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Renderer) {
		r.logger = logging.OrNop(logger)
	}
}

// WithWidgets replaces the registry that picks a prompt for each field.
func WithWidgets(registry *widgets.Registry) Option {
	return func(r *Renderer) {
		if registry != nil {
			r.widgets = registry
		}
	}
}

// WithPrompter handles every field resolved to widget with fn. Register a
// matcher for the widget name on the registry passed to WithWidgets.
func WithPrompter(widget string, fn Prompter) Option {
	return func(r *Renderer) {
		if widget != "" && fn != nil {
			r.prompters[widget] = fn
		}
	}
}
