package lanes

import (
	"errors"
	"testing"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOp   string
		wantMsg  string
		checkFn  func(error) bool
	}{
		{
			name:     "Memory Error",
			err:      ErrOutOfMemory,
			wantType: ErrTypeMemory,
			wantOp:   "Alloc",
			wantMsg:  "out of memory",
			checkFn:  IsMemoryError,
		},
		{
			name:     "Invalid Size Error",
			err:      ErrInvalidSize,
			wantType: ErrTypeInvalidConfiguration,
			wantOp:   "Alloc",
			wantMsg:  "element count must be non-negative",
			checkFn:  IsInvalidConfiguration,
		},
		{
			name:     "Invalid Device Error",
			err:      ErrInvalidDevice,
			wantType: ErrTypeInvalidConfiguration,
			wantOp:   "SetDevice",
			wantMsg:  "invalid device ID",
			checkFn:  IsInvalidConfiguration,
		},
		{
			name:     "Shape Mismatch Error",
			err:      NewShapeMismatchError("Launch", "buffer lengths disagree"),
			wantType: ErrTypeShapeMismatch,
			wantOp:   "Launch",
			wantMsg:  "buffer lengths disagree",
			checkFn:  IsShapeMismatch,
		},
		{
			name:     "Context Mismatch Error",
			err:      NewContextMismatchError("Add", "buffers from different contexts"),
			wantType: ErrTypeContextMismatch,
			wantOp:   "Add",
			wantMsg:  "buffers from different contexts",
			checkFn:  IsContextMismatch,
		},
		{
			name:     "Device Failure Error",
			err:      NewDeviceFailureError("Launch", "block 3 faulted", nil),
			wantType: ErrTypeDeviceFailure,
			wantOp:   "Launch",
			wantMsg:  "block 3 faulted",
			checkFn:  IsDeviceFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lanesErr, ok := tt.err.(*LanesError)
			if !ok {
				t.Fatalf("Expected LanesError, got %T", tt.err)
			}

			if lanesErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", lanesErr.Type, tt.wantType)
			}
			if lanesErr.Op != tt.wantOp {
				t.Errorf("Op = %v, want %v", lanesErr.Op, tt.wantOp)
			}
			if lanesErr.Message != tt.wantMsg {
				t.Errorf("Message = %v, want %v", lanesErr.Message, tt.wantMsg)
			}
			if !tt.checkFn(tt.err) {
				t.Errorf("Type check function returned false")
			}
			if tt.err.Error() == "" {
				t.Error("Error string is empty")
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	baseErr := errors.New("base error")
	wrappedErr := NewDeviceFailureError("Test", "wrapped error", baseErr)

	lanesErr, ok := wrappedErr.(*LanesError)
	if !ok {
		t.Fatal("Expected LanesError")
	}

	if unwrapped := lanesErr.Unwrap(); unwrapped != baseErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, baseErr)
	}

	if !errors.Is(wrappedErr, baseErr) {
		t.Error("errors.Is() should return true for wrapped error")
	}
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{ErrTypeMemory, "Memory"},
		{ErrTypeInvalidConfiguration, "InvalidConfiguration"},
		{ErrTypeShapeMismatch, "ShapeMismatch"},
		{ErrTypeContextMismatch, "ContextMismatch"},
		{ErrTypeDeviceFailure, "DeviceFailure"},
		{ErrorType(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.errType.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}
