// Package errors defines the stable error taxonomy for pcx operations.
//
// Only InvalidRequest and RootUnavailable are fatal to a call. Every other
// code describes a per-entry condition that degrades to a skip or a
// truncated result and is accumulated in the call's debug trace.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// IoError indicates an unreadable file or directory; the entry is skipped
	IoError ErrorCode = "IO_ERROR"
	// ParseError indicates a per-file parse failure; partial declarations are retained
	ParseError ErrorCode = "PARSE_ERROR"
	// IgnoreRuleError indicates a malformed ignore file; its scope contributes no rules
	IgnoreRuleError ErrorCode = "IGNORE_RULE_ERROR"
	// DeadlineExceeded indicates the call's deadline was reached; the result is partial
	DeadlineExceeded ErrorCode = "DEADLINE_EXCEEDED"
	// LimitExceeded indicates the max file count was reached; the result is partial
	LimitExceeded ErrorCode = "LIMIT_EXCEEDED"
	// UnsupportedExtension indicates a file kept without structural indexing
	UnsupportedExtension ErrorCode = "UNSUPPORTED_EXTENSION"
	// InvalidRequest indicates a malformed request (e.g. negative depth); fatal
	InvalidRequest ErrorCode = "INVALID_REQUEST"
	// RootUnavailable indicates the scan root itself cannot be accessed; fatal
	RootUnavailable ErrorCode = "ROOT_UNAVAILABLE"
	// InternalError indicates an unexpected failure
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// PcxError carries a stable code alongside a human-readable message
type PcxError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"` // file or directory the error concerns
	cause   error
}

// New creates a PcxError with the given code and message
func New(code ErrorCode, message string) *PcxError {
	return &PcxError{Code: code, Message: message}
}

// Wrap creates a PcxError wrapping an underlying cause
func Wrap(code ErrorCode, message string, cause error) *PcxError {
	return &PcxError{Code: code, Message: message, cause: cause}
}

// WithPath attaches the file or directory path the error concerns
func (e *PcxError) WithPath(path string) *PcxError {
	e.Path = path
	return e
}

// Error implements the error interface
func (e *PcxError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *PcxError) Unwrap() error {
	return e.cause
}

// IsFatal reports whether the code aborts the whole call rather than a
// single entry
func (e *PcxError) IsFatal() bool {
	return e.Code == InvalidRequest || e.Code == RootUnavailable
}

// CodeOf extracts the ErrorCode from err, or InternalError if err carries none
func CodeOf(err error) ErrorCode {
	var pe *PcxError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return InternalError
}
