package restaurant

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes sync-layer failures.
type ErrorCode string

const (
	// ErrCodeNetwork covers connection failure, non-2xx status and malformed
	// payloads. Terminal per request; never retried.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"

	// ErrCodeNotFound indicates a single-record lookup miss.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeStoreInit indicates the cache could not be opened, most often a
	// schema version conflict. Fatal to store usage until the caller deletes
	// and recreates the store.
	ErrCodeStoreInit ErrorCode = "STORE_INIT"

	// ErrCodeStoreWrite indicates a failed upsert. Logged, never propagated
	// into the record pipeline.
	ErrCodeStoreWrite ErrorCode = "STORE_WRITE"
)

// Error is the structured error type for the sync layer.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ID is the restaurant ID involved, or 0 when not record-specific.
	ID int64

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ID != 0 {
		msg = fmt.Sprintf("%s (id=%d)", msg, e.ID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewNetworkError creates an Error for a failed or malformed fetch.
func NewNetworkError(message string, err error) *Error {
	return &Error{Code: ErrCodeNetwork, Message: message, Err: err}
}

// NewNotFoundError creates an Error for a lookup miss.
func NewNotFoundError(id int64) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "restaurant not found", ID: id}
}

// NewStoreInitError creates an Error for a store that cannot be opened.
func NewStoreInitError(message string, err error) *Error {
	return &Error{Code: ErrCodeStoreInit, Message: message, Err: err}
}

// NewStoreWriteError creates an Error for a failed upsert.
func NewStoreWriteError(id int64, err error) *Error {
	return &Error{Code: ErrCodeStoreWrite, Message: "upsert failed", ID: id, Err: err}
}

// HasCode reports whether err is, or wraps, an Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsNetworkError returns true if err is a network or payload failure.
func IsNetworkError(err error) bool { return HasCode(err, ErrCodeNetwork) }

// IsNotFound returns true if err is a lookup miss.
func IsNotFound(err error) bool { return HasCode(err, ErrCodeNotFound) }

// IsStoreInitError returns true if err is a store initialization failure.
func IsStoreInitError(err error) bool { return HasCode(err, ErrCodeStoreInit) }

// IsStoreWriteError returns true if err is a failed upsert.
func IsStoreWriteError(err error) bool { return HasCode(err, ErrCodeStoreWrite) }
