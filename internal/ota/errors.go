package ota

import (
	"context"
	"errors"
	"fmt"

	"github.com/bearanvil/trafficled/internal/stream"
)

// ErrorType categorizes update check failures.
type ErrorType int

const (
	// ErrTypeMalformedDocument indicates a grammar violation.
	ErrTypeMalformedDocument ErrorType = iota
	// ErrTypeStringValueUnsupported indicates a quoted value.
	ErrTypeStringValueUnsupported
	// ErrTypeUnexpectedEOF indicates the document ended before '}'.
	ErrTypeUnexpectedEOF
	// ErrTypeRecordTooLarge indicates a token did not fit the window.
	ErrTypeRecordTooLarge
	// ErrTypeSource indicates the byte source failed mid-document.
	ErrTypeSource
	// ErrTypeNetwork indicates the version document could not be requested.
	ErrTypeNetwork
	// ErrTypeHTTP indicates a non-200 response.
	ErrTypeHTTP
)

// String returns a human-readable error type name
func (e ErrorType) String() string {
	switch e {
	case ErrTypeMalformedDocument:
		return "malformed document"
	case ErrTypeStringValueUnsupported:
		return "string value unsupported"
	case ErrTypeUnexpectedEOF:
		return "unexpected end of document"
	case ErrTypeRecordTooLarge:
		return "record too large"
	case ErrTypeSource:
		return "source error"
	case ErrTypeNetwork:
		return "network error"
	case ErrTypeHTTP:
		return "HTTP error"
	default:
		return "unknown error"
	}
}

// Error is returned by the parser and the update client.
type Error struct {
	Type       ErrorType
	Message    string
	Offset     int64 // stream offset of the offending byte, parse errors only
	StatusCode int   // HTTP errors only
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("version check: %s", e.Type)
	switch e.Type {
	case ErrTypeMalformedDocument, ErrTypeStringValueUnsupported, ErrTypeRecordTooLarge:
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	case ErrTypeHTTP:
		msg += fmt.Sprintf(" %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether fetching the document again could succeed.
// Truncated transfers and server-side failures are retryable; documents
// that were delivered intact but rejected are not.
func (e *Error) Retryable() bool {
	switch e.Type {
	case ErrTypeNetwork, ErrTypeUnexpectedEOF, ErrTypeSource:
		return !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded)
	case ErrTypeHTTP:
		return e.StatusCode >= 500 || e.StatusCode == 429
	default:
		return false
	}
}

// IsType reports whether err is an *Error of type t.
func IsType(err error, t ErrorType) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Type == t
}

func parseError(t ErrorType, offset int64, format string, args ...any) *Error {
	return &Error{Type: t, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// fromStream converts cursor failures into this package's taxonomy.
func fromStream(err error, offset int64) error {
	var oe *Error
	if errors.As(err, &oe) {
		if oe.Offset == 0 {
			oe.Offset = offset
		}
		return oe
	}
	switch {
	case errors.Is(err, stream.ErrRecordTooLarge):
		return &Error{Type: ErrTypeRecordTooLarge, Offset: offset, Err: err}
	case errors.Is(err, stream.ErrUnexpectedEOF):
		return &Error{Type: ErrTypeUnexpectedEOF, Offset: offset, Err: err}
	default:
		return &Error{Type: ErrTypeSource, Offset: offset, Err: err}
	}
}
