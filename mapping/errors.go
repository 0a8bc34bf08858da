package mapping

import (
	"errors"
	"fmt"
)

// ErrConfiguration indicates that a record type has no definition registered
// and none was supplied explicitly. It is a setup defect, not a data error.
var ErrConfiguration = errors.New("mapping: configuration error")

// ErrRequiredFieldMissing matches any *RequiredFieldError via errors.Is.
var ErrRequiredFieldMissing = errors.New("mapping: required field missing")

// errAbsent is the cause recorded when a required extractor reports no value.
var errAbsent = errors.New("extractor returned no value")

// RequiredFieldError reports a required property that could not be
// extracted. The enclosing Map call returns no record.
type RequiredFieldError struct {
	Type   string // record type being built
	Source string // key read from the raw object
	Err    error  // extractor failure, or errAbsent
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("mapping: failed to retrieve required %s property %q from the response: %v", e.Type, e.Source, e.Err)
}

func (e *RequiredFieldError) Unwrap() []error {
	return []error{ErrRequiredFieldMissing, e.Err}
}

// ConstructionError reports a failure of a definition's Build function, or a
// field read with a type that does not match the extracted value.
type ConstructionError struct {
	Type string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("mapping: failed to construct %s: %v", e.Type, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// CoercionError reports a raw value that could not be converted to the
// requested type.
type CoercionError struct {
	Value any
	Want  string
	Err   error
}

func (e *CoercionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %T(%v) to %s: %v", e.Value, e.Value, e.Want, e.Err)
	}
	return fmt.Sprintf("cannot convert %T(%v) to %s", e.Value, e.Value, e.Want)
}

func (e *CoercionError) Unwrap() error { return e.Err }
