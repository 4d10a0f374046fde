package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrNoSlotAvailable
	ErrStorage
	ErrInternal
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewValidation(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

func NewNoSlotAvailable(doctorID, date string) *AppError {
	return &AppError{
		Code:    ErrNoSlotAvailable,
		Message: fmt.Sprintf("no slot available for doctor %s on %s", doctorID, date),
	}
}

func NewStorage(message string, err error) *AppError {
	return &AppError{
		Code:    ErrStorage,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func Validation(message string) *AppError {
	return NewValidation(message)
}

func NoSlotAvailable(doctorID, date string) *AppError {
	return NewNoSlotAvailable(doctorID, date)
}

func Storage(message string, err error) *AppError {
	return NewStorage(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

// CodeOf extracts the ErrorCode from err, or ErrInternal when err is not
// an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return IsCode(err, ErrNotFound)
}
