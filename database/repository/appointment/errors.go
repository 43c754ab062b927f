package appointmentRepo

import "errors"

var (
	ErrNotFound         = errors.New("appointment not found")
	ErrAlreadyCancelled = errors.New("appointment already cancelled")
)
