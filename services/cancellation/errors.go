package cancellation

import "fmt"

const (
	CodeValidation = "validation"
	CodeNotFound   = "notFound"
	CodeConflict   = "conflict"
	CodeExternal   = "external"
)

type CancellationError struct {
	Code    string
	Message string
	Err     error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CancellationError) Unwrap() error { return e.Err }

var (
	ErrAppointmentNotFound = &CancellationError{Code: CodeNotFound, Message: "appointment not found"}
	ErrAlreadyCancelled    = &CancellationError{Code: CodeConflict, Message: "appointment is already cancelled"}
	ErrNoPendingQuote      = &CancellationError{Code: CodeValidation, Message: "no cancellation fee is awaiting confirmation, request a dry run first"}
	ErrFeeMismatch         = &CancellationError{Code: CodeValidation, Message: "cancellationFeeCents does not match the quoted fee, request a dry run again"}
)

func validationError(msg string) error {
	return &CancellationError{Code: CodeValidation, Message: msg}
}

func externalError(msg string, err error) error {
	return &CancellationError{Code: CodeExternal, Message: msg, Err: err}
}
