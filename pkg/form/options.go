package form

import (
	"time"

	"github.com/goliatone/go-dynform/pkg/logging"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
	"github.com/goliatone/go-dynform/pkg/visibility"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger routes builder and state diagnostics to logger.
func WithLogger(logger logging.Logger) Option {
	return func(b *Builder) {
		b.logger = logging.OrNop(logger)
	}
}

// WithRules swaps the validation registry slots check against.
func WithRules(registry *validation.Registry) Option {
	return func(b *Builder) {
		if registry != nil {
			b.rules = registry
		}
	}
}

// WithVisibility sets the evaluator used for visibleWhen rules.
func WithVisibility(evaluator visibility.Evaluator) Option {
	return func(b *Builder) {
		b.visibility = evaluator
	}
}

// WithVisibilityExtras exposes host facts to visibleWhen rules under the
// `extras.` prefix.
func WithVisibilityExtras(extras map[string]any) Option {
	return func(b *Builder) {
		b.extras = extras
	}
}

// WithLenient skips fieldset linting. Duplicate names then resolve to the
// first slot in declaration order.
func WithLenient() Option {
	return func(b *Builder) {
		b.lenient = true
	}
}

// WithChangeDebounce coalesces rapid changes: listeners registered with
// WithChangeListener or Subscribe receive only the last change after the form
// has been quiet for delay.
func WithChangeDebounce(delay time.Duration) Option {
	return func(b *Builder) {
		if delay > 0 {
			b.debounce = delay
		}
	}
}

// WithChangeListener registers a listener on every state the builder
// produces.
func WithChangeListener(fn func(Change)) Option {
	return func(b *Builder) {
		if fn != nil {
			b.listeners = append(b.listeners, fn)
		}
	}
}

// BuildOption configures a single Build call.
type BuildOption func(*buildInput)

type buildInput struct {
	id       string
	prefill  []model.KeyValue
	errors   []model.KeyValue
	readOnly bool
}

// WithPrefill seeds slot values by field name. Nested lists under a toggle's
// name scope the lookup for its children.
func WithPrefill(pairs []model.KeyValue) BuildOption {
	return func(in *buildInput) {
		in.prefill = pairs
	}
}

// WithErrors attaches display errors to slots. Values may be a string, a
// list of strings, or a nested KeyValue list for a toggle's children.
// Entries naming no slot become form-level errors.
func WithErrors(pairs []model.KeyValue) BuildOption {
	return func(in *buildInput) {
		in.errors = pairs
	}
}

// WithReadOnly disables every slot regardless of per-field flags.
func WithReadOnly(readOnly bool) BuildOption {
	return func(in *buildInput) {
		in.readOnly = readOnly
	}
}

// WithFormID names the state; it becomes the subject of emitted events.
func WithFormID(id string) BuildOption {
	return func(in *buildInput) {
		in.id = id
	}
}

// SubmitOption configures Submit.
type SubmitOption func(*submitConfig)

type submitConfig struct {
	source       string
	sanitizer    Sanitizer
	requireValid bool
}

// Sanitizer cleans extracted values before they are emitted.
type Sanitizer interface {
	Pairs([]model.KeyValue) []model.KeyValue
}

// WithSource sets the CloudEvents source attribute.
func WithSource(source string) SubmitOption {
	return func(cfg *submitConfig) {
		cfg.source = source
	}
}

// WithSanitizer cleans values before emitting them.
func WithSanitizer(s Sanitizer) SubmitOption {
	return func(cfg *submitConfig) {
		cfg.sanitizer = s
	}
}

// RequireValid makes Submit fail with a *ValidationError when any enabled
// slot breaks a rule.
func RequireValid() SubmitOption {
	return func(cfg *submitConfig) {
		cfg.requireValid = true
	}
}
