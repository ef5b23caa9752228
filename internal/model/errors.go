package model

import "errors"

// ValidationError marks input the caller must fix. It maps to a 400.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func Invalid(err error) error {
	return &ValidationError{Err: err}
}

func Invalidf(msg string) error {
	return &ValidationError{Err: errors.New(msg)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
