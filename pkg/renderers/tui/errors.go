package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNilState is returned when Fill receives no form state.
	ErrNilState = errors.New("tui: form state is nil")
	// ErrInvalidDate is reported for date answers not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("tui: expected a date as YYYY-MM-DD")
	// ErrTooManyAttempts is returned when an answer keeps failing validation.
	ErrTooManyAttempts = errors.New("tui: too many invalid answers")
)
