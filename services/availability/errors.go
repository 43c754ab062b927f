package availability

import "fmt"

const (
	CodeValidation = "validation"
	CodeNotFound   = "notFound"
	CodeExternal   = "external"
)

// AvailabilityError carries a code that handlers map to an HTTP status.
type AvailabilityError struct {
	Code    string
	Message string
	Err     error
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AvailabilityError) Unwrap() error { return e.Err }

func validationError(msg string) error {
	return &AvailabilityError{Code: CodeValidation, Message: msg}
}

func externalError(msg string, err error) error {
	return &AvailabilityError{Code: CodeExternal, Message: msg, Err: err}
}
