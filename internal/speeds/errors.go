package speeds

import (
	"errors"
	"fmt"

	"github.com/bearanvil/trafficled/internal/stream"
)

// ErrNotFound is returned by NextRecord when the buffered window holds no
// complete record. It is not a failure; refill and try again.
var ErrNotFound = errors.New("speeds: no complete record buffered")

// ErrorType categorizes speed file failures.
type ErrorType int

const (
	ErrTypeMalformedInput ErrorType = iota
	ErrTypeUnexpectedEOF
	ErrTypeRecordTooLarge
	ErrTypeSource
)

func (e ErrorType) String() string {
	switch e {
	case ErrTypeMalformedInput:
		return "malformed input"
	case ErrTypeUnexpectedEOF:
		return "unexpected end of file"
	case ErrTypeRecordTooLarge:
		return "record too large"
	case ErrTypeSource:
		return "source error"
	default:
		return "unknown error"
	}
}

// Error describes a rejected speed file.
type Error struct {
	Type    ErrorType
	Offset  int64
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("speed records: %s at offset %d", e.Type, e.Offset)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsType reports whether err is an *Error of type t.
func IsType(err error, t ErrorType) bool {
	var se *Error
	return errors.As(err, &se) && se.Type == t
}

func fromStream(err error, offset int64) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
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
