package stencil

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrValidation indicates a field validator rejected its value.
	ErrValidation = errors.New("validation failed")

	// ErrMetadata indicates a target type or its field metadata could not be introspected.
	ErrMetadata = errors.New("metadata unavailable")

	// ErrShapeMismatch indicates a value could not be reshaped into a bag.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrMissingValidator indicates a field references a validator that was not registered.
	ErrMissingValidator = errors.New("missing validator")

	// ErrMissingMasker indicates a field references a mask type that does not exist.
	ErrMissingMasker = errors.New("missing masker")

	// ErrUnknownField indicates a nested mapper was registered for a field the schema lacks.
	ErrUnknownField = errors.New("unknown field")

	// ErrAssign indicates a field mutator refused the final value.
	ErrAssign = errors.New("assign failed")

	// ErrDecode indicates a codec failed to decode input data.
	ErrDecode = errors.New("decode failed")

	// ErrEncode indicates a codec failed to encode output data.
	ErrEncode = errors.New("encode failed")
)

// ValidationError is returned when a field's validator reports its value invalid.
// It aborts the whole mapping call and is never retried.
type ValidationError struct {
	Type      string // Target type name
	Field     string // Target field name
	Validator string // Validator identifier
	Value     any    // Raw value that was rejected
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: value rejected by validator %q", e.Type, e.Field, e.Validator)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MetadataError is returned when a type cannot be described as a schema.
type MetadataError struct {
	Type  string
	Cause error
}

func (e *MetadataError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("metadata for %s: %v", e.Type, e.Cause)
	}
	return fmt.Sprintf("metadata for %s", e.Type)
}

func (e *MetadataError) Unwrap() error {
	return ErrMetadata
}

// ShapeError is returned when a value handed to a nested mapper, or an item
// of a list pass, is neither a bag, a scalar, nor a sequence of those.
type ShapeError struct {
	Type  string // Target type name
	Field string // Field being delegated, empty for list items
	Index int    // Position of the list item when Field is empty
	Got   string // Go type of the offending value
}

func (e *ShapeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: cannot shape %s into a bag", e.Type, e.Field, e.Got)
	}
	return fmt.Sprintf("%s[%d]: cannot shape %s into a bag", e.Type, e.Index, e.Got)
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

// ConfigError represents an engine configuration error.
// It wraps a sentinel error with additional context about the field and validator.
type ConfigError struct {
	Err       error  // Underlying sentinel error (ErrMissingValidator, etc.)
	Field     string // Field name that triggered the error
	Validator string // Validator identifier that was missing
}

func (e *ConfigError) Error() string {
	if e.Field != "" && e.Validator != "" {
		return fmt.Sprintf("%s %q (field %s)", e.Err.Error(), e.Validator, e.Field)
	}
	if e.Validator != "" {
		return fmt.Sprintf("%s %q", e.Err.Error(), e.Validator)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s (field %s)", e.Err.Error(), e.Field)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FieldError represents a failure while committing a value to a field.
type FieldError struct {
	Err   error  // Underlying sentinel error (ErrAssign)
	Type  string // Target type name
	Field string // Field name that failed
	Cause error  // Original error from the mutator
}

func (e *FieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("set %s.%s: %v", e.Type, e.Field, e.Cause)
	}
	return fmt.Sprintf("set %s.%s", e.Type, e.Field)
}

func (e *FieldError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// CodecError represents a decode/encode error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrDecode, ErrEncode)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// newConfigError creates a ConfigError for missing validator scenarios.
func newConfigError(sentinel error, validator, field string) error {
	return &ConfigError{
		Err:       sentinel,
		Validator: validator,
		Field:     field,
	}
}

// newFieldError creates a FieldError for mutator failures.
func newFieldError(typeName, field string, cause error) error {
	return &FieldError{
		Err:   ErrAssign,
		Type:  typeName,
		Field: field,
		Cause: cause,
	}
}

// NewCodecError creates a CodecError for decode/encode failures.
// Codec implementations use it so callers can match ErrDecode and ErrEncode.
func NewCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
