// Package errcode defines the closed set of error codes returned to callers.
package errcode

import (
	"errors"
	"fmt"
)

// Code identifies a failure class on the wire.
type Code string

const (
	// InvalidURL covers malformed URLs, disallowed schemes and malformed timeouts.
	InvalidURL Code = "INVALID_URL"
	// BlockedDomain covers restricted domains and private/loopback addresses.
	BlockedDomain Code = "BLOCKED_DOMAIN"
	// SizeExceeded covers viewport, page height and scale factor violations.
	SizeExceeded Code = "SIZE_EXCEEDED"
	// NavigationTimeout means navigation did not finish within the timeout.
	NavigationTimeout Code = "NAVIGATION_TIMEOUT"
	// ScreenshotFailed covers every other renderer failure.
	ScreenshotFailed Code = "SCREENSHOT_FAILED"
	// IOError is reserved for the filesystem collaborator.
	IOError Code = "IO_ERROR"
)

var known = map[Code]bool{
	InvalidURL:        true,
	BlockedDomain:     true,
	SizeExceeded:      true,
	NavigationTimeout: true,
	ScreenshotFailed:  true,
	IOError:           true,
}

// Valid reports whether c belongs to the enumeration.
func (c Code) Valid() bool {
	return known[c]
}

// Error is the only failure shape that crosses the capture boundary.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error renders the wire text form "<CODE>: <message>".
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the code carried by err. Errors that carry no known code
// are reported as ScreenshotFailed.
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) && ce.Code.Valid() {
		return ce.Code
	}
	return ScreenshotFailed
}

// From converts any error into a coded error, keeping the code when one is
// already present.
func From(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) && ce.Code.Valid() {
		return ce
	}
	return &Error{Code: ScreenshotFailed, Message: err.Error()}
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == code
}
