package form

import (
	"context"
	"fmt"

	"github.com/goliatone/go-dynform/pkg/events"
)

// Submit extracts the current values and emits them as a submit event. The
// state's ID becomes the event subject.
func (f *FormState) Submit(ctx context.Context, emitter events.Emitter, options ...SubmitOption) error {
	if emitter == nil {
		return events.ErrNoEmitter
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := submitConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	r := f.root
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	if cfg.requireValid {
		if report := f.Validate(); !report.Valid() {
			return &ValidationError{Report: report}
		}
	}

	values := f.Extract()
	if cfg.sanitizer != nil {
		values = cfg.sanitizer.Pairs(values)
	}

	event, err := events.NewSubmitted(cfg.source, r.id, values)
	if err != nil {
		return fmt.Errorf("form: submit: %w", err)
	}
	if err := emitter.Emit(ctx, event); err != nil {
		return fmt.Errorf("form: submit: %w", err)
	}
	r.logger.Info("form: submitted", "form", r.id, "event", event.ID(), "fields", len(values))
	return nil
}
