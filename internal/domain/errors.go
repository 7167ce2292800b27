package domain

import "errors"

// Error kinds. Match them with errors.Is.
var (
	ErrConfig            = errors.New("config error")
	ErrInvalidIdentifier = errors.New("invalid clip identifier")
	ErrUpstream          = errors.New("upstream error")
	ErrNotFound          = errors.New("clip not found")
	ErrDerivation        = errors.New("download url derivation error")
	ErrConversion        = errors.New("conversion error")
	ErrDelivery          = errors.New("delivery error")
)

// Error tags a cause with one of the kinds above.
type Error struct {
	Kind error
	Err  error
}

func NewError(kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}

	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}
