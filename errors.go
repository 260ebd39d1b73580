// Package lanes structured error types for better error handling
package lanes

import (
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Memory errors
	ErrTypeMemory ErrorType = iota
	// Launch configuration errors (non-positive block size, bad arguments)
	ErrTypeInvalidConfiguration
	// Buffer length or element type disagreement across a launch
	ErrTypeShapeMismatch
	// Buffers not resident in a common execution context
	ErrTypeContextMismatch
	// An in-flight block instance faulted; reported at synchronization
	ErrTypeDeviceFailure
)

// LanesError represents a structured error with context
type LanesError struct {
	Type    ErrorType
	Op      string      // Operation that failed
	Message string      // Human-readable message
	Err     error       // Underlying error if any
	Context interface{} // Additional context
}

// Error implements the error interface
func (e *LanesError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lanes %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("lanes %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *LanesError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeInvalidConfiguration:
		return "InvalidConfiguration"
	case ErrTypeShapeMismatch:
		return "ShapeMismatch"
	case ErrTypeContextMismatch:
		return "ContextMismatch"
	case ErrTypeDeviceFailure:
		return "DeviceFailure"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &LanesError{
		Type:    ErrTypeMemory,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewInvalidConfigurationError creates a launch configuration error
func NewInvalidConfigurationError(op string, message string) error {
	return &LanesError{
		Type:    ErrTypeInvalidConfiguration,
		Op:      op,
		Message: message,
	}
}

// NewShapeMismatchError creates a buffer shape disagreement error
func NewShapeMismatchError(op string, message string) error {
	return &LanesError{
		Type:    ErrTypeShapeMismatch,
		Op:      op,
		Message: message,
	}
}

// NewContextMismatchError creates a cross-context buffer error
func NewContextMismatchError(op string, message string) error {
	return &LanesError{
		Type:    ErrTypeContextMismatch,
		Op:      op,
		Message: message,
	}
}

// NewDeviceFailureError creates an execution fault error
func NewDeviceFailureError(op string, message string, err error) error {
	return &LanesError{
		Type:    ErrTypeDeviceFailure,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Common pre-defined errors

var (
	// ErrOutOfMemory indicates memory allocation failure
	ErrOutOfMemory = NewMemoryError("Alloc", "out of memory", nil)

	// ErrInvalidSize indicates a negative element count
	ErrInvalidSize = NewInvalidConfigurationError("Alloc", "element count must be non-negative")

	// ErrDoubleFree indicates double free attempt
	ErrDoubleFree = NewMemoryError("Free", "double free detected", nil)

	// ErrInvalidDevice indicates invalid device ID
	ErrInvalidDevice = NewInvalidConfigurationError("SetDevice", "invalid device ID")
)

// IsMemoryError checks if an error is a memory error
func IsMemoryError(err error) bool {
	if e, ok := err.(*LanesError); ok {
		return e.Type == ErrTypeMemory
	}
	return false
}

// IsInvalidConfiguration checks if an error is a launch configuration error
func IsInvalidConfiguration(err error) bool {
	if e, ok := err.(*LanesError); ok {
		return e.Type == ErrTypeInvalidConfiguration
	}
	return false
}

// IsShapeMismatch checks if an error is a buffer shape disagreement
func IsShapeMismatch(err error) bool {
	if e, ok := err.(*LanesError); ok {
		return e.Type == ErrTypeShapeMismatch
	}
	return false
}

// IsContextMismatch checks if an error is a cross-context buffer error
func IsContextMismatch(err error) bool {
	if e, ok := err.(*LanesError); ok {
		return e.Type == ErrTypeContextMismatch
	}
	return false
}

// IsDeviceFailure checks if an error is an execution fault
func IsDeviceFailure(err error) bool {
	if e, ok := err.(*LanesError); ok {
		return e.Type == ErrTypeDeviceFailure
	}
	return false
}
