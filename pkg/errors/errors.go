// Package errors provides coded errors for stainedglass.
//
// Every failure that leaves a package carries a [Code]. Hosts use the code
// to pick an exit status ([ExitCode]) or an HTTP status ([HTTPStatus]) and
// show [UserMessage] to people.
//
// # Codes
//
// The generation core raises three geometry codes:
//   - FRAME_INVALID: a frame dimension is non-positive or non-finite
//   - POINT_OUT_OF_FRAME: a site lies outside the frame
//   - DEGENERATE_INPUT: the sites cannot be triangulated; the core recovers
//     by returning the frame as a single cell
//
// Host codes are grouped by who has to act:
//   - INVALID_*: the caller passed bad input
//   - NOT_FOUND, FILE_NOT_FOUND: a named resource does not exist
//   - NETWORK_ERROR, TIMEOUT: a dependency was unreachable or slow
//   - INTERNAL_ERROR, UNSUPPORTED: the program cannot do what was asked
//
// # Usage
//
//	err := errors.New(errors.ErrCodeFrameInvalid, "frame must be positive, got %gx%g", w, h)
//	if errors.Is(err, errors.ErrCodeFrameInvalid) {
//	    // reject the request
//	}
//
//	err = errors.Wrap(errors.ErrCodeNetwork, cause, "reach redis at %s", addr)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	// Geometry
	ErrCodeFrameInvalid    Code = "FRAME_INVALID"
	ErrCodePointOutOfFrame Code = "POINT_OUT_OF_FRAME"
	ErrCodeDegenerateInput Code = "DEGENERATE_INPUT"

	// Input
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidPalette Code = "INVALID_PALETTE"
	ErrCodeInvalidColor   Code = "INVALID_COLOR"
	ErrCodeInvalidNetwork Code = "INVALID_NETWORK"
	ErrCodeInvalidSeam    Code = "INVALID_SEAM"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Missing resources
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Dependencies
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Program
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

type class uint8

const (
	classInternal class = iota
	classInput
	classMissing
	classUnavailable
	classUnsupported
)

var classes = map[Code]class{
	ErrCodeFrameInvalid:    classInput,
	ErrCodePointOutOfFrame: classInput,
	ErrCodeDegenerateInput: classInput,
	ErrCodeInvalidInput:    classInput,
	ErrCodeInvalidFormat:   classInput,
	ErrCodeInvalidPalette:  classInput,
	ErrCodeInvalidColor:    classInput,
	ErrCodeInvalidNetwork:  classInput,
	ErrCodeInvalidSeam:     classInput,
	ErrCodeInvalidPath:     classInput,
	ErrCodeNotFound:        classMissing,
	ErrCodeFileNotFound:    classMissing,
	ErrCodeNetwork:         classUnavailable,
	ErrCodeTimeout:         classUnavailable,
	ErrCodeUnsupported:     classUnsupported,
}

// Unknown and empty codes are internal.
func (c Code) class() class { return classes[c] }

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with code that keeps cause reachable through
// errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost coded error in err's chain, or
// "" if there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// CodeOr returns err's code, or fallback when err carries none.
func CodeOr(err error, fallback Code) Code {
	if c := GetCode(err); c != "" {
		return c
	}
	return fallback
}

// UserMessage returns the message of the outermost coded error without its
// code, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err to the status the server answers with.
func HTTPStatus(err error) int {
	switch GetCode(err).class() {
	case classInput:
		return http.StatusBadRequest
	case classMissing:
		return http.StatusNotFound
	case classUnavailable:
		if Is(err, ErrCodeTimeout) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case classUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Process exit statuses returned by [ExitCode].
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitNotFound    = 3
	ExitUnavailable = 4
)

// ExitCode maps err to the status the CLI exits with.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetCode(err).class() {
	case classInput:
		return ExitUsage
	case classMissing:
		return ExitNotFound
	case classUnavailable:
		return ExitUnavailable
	default:
		return ExitFailure
	}
}
