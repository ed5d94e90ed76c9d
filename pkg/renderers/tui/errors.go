package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoController is returned when Fill or Lookup receive a nil controller.
	ErrNoController = errors.New("tui: controller is required")
	// ErrTooManyAttempts stops a fill that keeps producing an invalid form.
	ErrTooManyAttempts = errors.New("tui: form still invalid after retries")
)
