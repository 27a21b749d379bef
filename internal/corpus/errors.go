package corpus

import (
	"errors"
	"fmt"
)

// Error represents a recoverable corpus-layer failure.
//
// Every Error is returned to the fuzzing loop, which decides whether
// to retry, skip the entry, or end the campaign. None of these abort
// the process. Out-of-bounds Get on a structurally invalid index is a
// programming error and panics instead; it is deliberately not an
// ErrorCode.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Index is the entry index involved, where one applies (-1 otherwise).
	Index int

	// Err is the underlying cause (I/O errors for persistence failures).
	Err error
}

// ErrorCode categorizes corpus errors.
type ErrorCode string

const (
	// ErrCodeEmptyCorpus indicates an operation that needs at least one
	// entry ran against an empty corpus.
	ErrCodeEmptyCorpus ErrorCode = "EMPTY_CORPUS"

	// ErrCodeKeyNotFound indicates an index out of bounds on Replace.
	ErrCodeKeyNotFound ErrorCode = "KEY_NOT_FOUND"

	// ErrCodeIllegalState indicates a testcase had neither input nor
	// filename when a load was attempted, or a cursor was queried
	// before any selection was made.
	ErrCodeIllegalState ErrorCode = "ILLEGAL_STATE"

	// ErrCodePersistence indicates a disk read/write or deserialize
	// failure while materializing or persisting an input.
	ErrCodePersistence ErrorCode = "PERSISTENCE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (index=%d)", e.Code, e.Message, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsEmpty returns true if the error reports an empty corpus.
// Uses errors.As to handle wrapped errors.
func IsEmpty(err error) bool {
	return hasCode(err, ErrCodeEmptyCorpus)
}

// IsKeyNotFound returns true if the error reports an out-of-bounds index.
func IsKeyNotFound(err error) bool {
	return hasCode(err, ErrCodeKeyNotFound)
}

// IsIllegalState returns true if the error reports an unusable testcase
// or cursor state.
func IsIllegalState(err error) bool {
	return hasCode(err, ErrCodeIllegalState)
}

// IsPersistence returns true if the error reports a disk failure.
func IsPersistence(err error) bool {
	return hasCode(err, ErrCodePersistence)
}

func hasCode(err error, code ErrorCode) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func newEmptyError() *Error {
	return &Error{Code: ErrCodeEmptyCorpus, Message: "no entries in corpus", Index: -1}
}

func newKeyNotFoundError(idx, count int) *Error {
	return &Error{
		Code:    ErrCodeKeyNotFound,
		Message: fmt.Sprintf("index %d out of bounds (count=%d)", idx, count),
		Index:   idx,
	}
}

func newIllegalStateError(message string) *Error {
	return &Error{Code: ErrCodeIllegalState, Message: message, Index: -1}
}

func newPersistenceError(message string, err error) *Error {
	return &Error{Code: ErrCodePersistence, Message: message, Index: -1, Err: err}
}
