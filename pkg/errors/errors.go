package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Path-safety errors
	ErrPathNotRelative ErrorCode = "PATH_NOT_RELATIVE"
	ErrPathTraversal   ErrorCode = "PATH_TRAVERSAL"
	ErrOutsideRoot     ErrorCode = "OUTSIDE_ROOT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Set errors
	ErrSetNotFound ErrorCode = "SET_NOT_FOUND"
	ErrSetInvalid  ErrorCode = "SET_INVALID"
	ErrSetAccess   ErrorCode = "SET_ACCESS"

	// Repo-state errors
	ErrRepoLoad ErrorCode = "REPO_LOAD"
	ErrRepoWalk ErrorCode = "REPO_WALK"

	// Index errors
	ErrIndexRead  ErrorCode = "INDEX_READ"
	ErrIndexWrite ErrorCode = "INDEX_WRITE"
	ErrIndexParse ErrorCode = "INDEX_PARSE"

	// Local-state errors
	ErrLocalWalk ErrorCode = "LOCAL_WALK"

	// Transfer errors
	ErrTransfer ErrorCode = "TRANSFER"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileCreate   ErrorCode = "FILE_CREATE"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrFileRemove   ErrorCode = "FILE_REMOVE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// MonjaError represents a structured error with code and details
type MonjaError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *MonjaError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *MonjaError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *MonjaError) Is(target error) bool {
	var targetErr *MonjaError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new MonjaError with the given code and message
func New(code ErrorCode, message string) *MonjaError {
	return &MonjaError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new MonjaError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *MonjaError {
	return &MonjaError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a MonjaError
func Wrap(err error, code ErrorCode, message string) *MonjaError {
	if err == nil {
		return nil
	}
	return &MonjaError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *MonjaError {
	if err == nil {
		return nil
	}
	return &MonjaError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *MonjaError) WithDetail(key string, value interface{}) *MonjaError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var monjaErr *MonjaError
	if errors.As(err, &monjaErr) {
		return monjaErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a MonjaError
func GetErrorCode(err error) ErrorCode {
	var monjaErr *MonjaError
	if errors.As(err, &monjaErr) {
		return monjaErr.Code
	}
	return ErrUnknown
}
