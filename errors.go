// Package openmm structured error types for stream and device failures
package openmm

import (
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Allocation failures in either memory space
	ErrTypeAllocation ErrorType = iota
	// Upload/download transfer failures
	ErrTypeTransfer
	// Device-side release failures
	ErrTypeDeallocation
	// Collapse invoked with a shape that does not partition the data
	ErrTypeShape
	// Invalid argument errors
	ErrTypeInvalidArg
	// Device/backend errors
	ErrTypeDevice
)

// StreamError represents a structured error with the stream and operation
// that produced it. Stream is the diagnostic name given at construction and
// may be empty for errors raised below the stream layer.
type StreamError struct {
	Type   ErrorType
	Op     string // Operation that failed
	Stream string // Diagnostic name of the stream involved, if any
	Msg    string // Human-readable message
	Err    error  // Underlying error if any
}

// Error implements the error interface
func (e *StreamError) Error() string {
	prefix := e.Op
	if e.Stream != "" {
		prefix = e.Stream + ": " + e.Op
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s error: %s (caused by: %v)",
			prefix, e.Type.String(), e.Msg, e.Err)
	}
	return fmt.Sprintf("%s %s error: %s", prefix, e.Type.String(), e.Msg)
}

// Unwrap allows error chain inspection
func (e *StreamError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeAllocation:
		return "Allocation"
	case ErrTypeTransfer:
		return "Transfer"
	case ErrTypeDeallocation:
		return "Deallocation"
	case ErrTypeShape:
		return "Shape"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeDevice:
		return "Device"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewAllocationError creates an allocation error for the named stream
func NewAllocationError(op, stream, msg string, err error) error {
	return &StreamError{Type: ErrTypeAllocation, Op: op, Stream: stream, Msg: msg, Err: err}
}

// NewTransferError creates a transfer error for the named stream
func NewTransferError(op, stream, msg string, err error) error {
	return &StreamError{Type: ErrTypeTransfer, Op: op, Stream: stream, Msg: msg, Err: err}
}

// NewDeallocationError creates a deallocation error for the named stream
func NewDeallocationError(op, stream, msg string, err error) error {
	return &StreamError{Type: ErrTypeDeallocation, Op: op, Stream: stream, Msg: msg, Err: err}
}

// NewShapeError creates a shape error for the named stream
func NewShapeError(op, stream, msg string) error {
	return &StreamError{Type: ErrTypeShape, Op: op, Stream: stream, Msg: msg}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op, msg string) error {
	return &StreamError{Type: ErrTypeInvalidArg, Op: op, Msg: msg}
}

// NewDeviceError creates a device/backend error
func NewDeviceError(op, msg string, err error) error {
	return &StreamError{Type: ErrTypeDevice, Op: op, Msg: msg, Err: err}
}

// Common pre-defined errors

var (
	// ErrOutOfMemory indicates device memory allocation failure
	ErrOutOfMemory = NewDeviceError("Malloc", "out of memory", nil)

	// ErrInvalidSize indicates invalid size parameter
	ErrInvalidSize = NewInvalidArgError("Malloc", "size must be positive")

	// ErrDoubleFree indicates double free attempt
	ErrDoubleFree = NewDeviceError("Free", "double free detected", nil)
)

// IsAllocationError checks if an error is an allocation error
func IsAllocationError(err error) bool {
	if e, ok := err.(*StreamError); ok {
		return e.Type == ErrTypeAllocation
	}
	return false
}

// IsShapeError checks if an error is a collapse shape error
func IsShapeError(err error) bool {
	if e, ok := err.(*StreamError); ok {
		return e.Type == ErrTypeShape
	}
	return false
}

// IsTransferError checks if an error is a transfer error
func IsTransferError(err error) bool {
	if e, ok := err.(*StreamError); ok {
		return e.Type == ErrTypeTransfer
	}
	return false
}
