package form

import "errors"

var (
	// ErrNoFieldset is returned when Build receives an empty fieldset. It is a
	// recoverable condition: no FormState is produced.
	ErrNoFieldset = errors.New("form: fieldset is required")
	// ErrSlotNotFound is returned for operations naming an unknown slot.
	ErrSlotNotFound = errors.New("form: slot not found")
	// ErrClosed is returned when mutating a state after Close.
	ErrClosed = errors.New("form: state is closed")
)
