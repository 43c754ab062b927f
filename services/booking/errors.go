package booking

import "fmt"

const (
	CodeValidation = "validation"
	CodeNotFound   = "notFound"
	CodeConflict   = "conflict"
	CodeExternal   = "external"
)

type BookingError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error { return e.Err }

var (
	ErrSlotUnavailable = &BookingError{Code: CodeConflict, Message: "the selected slot is no longer available"}
	ErrSlotBusy        = &BookingError{Code: CodeConflict, Message: "another booking for this provider is in progress, try again"}
	ErrSessionNotFound = &BookingError{Code: CodeNotFound, Message: "booking session not found or expired"}
)

func NewValidationError(msg string) error {
	return &BookingError{Code: CodeValidation, Message: msg}
}

func newExternalError(msg string, err error) error {
	return &BookingError{Code: CodeExternal, Message: msg, Err: err}
}
