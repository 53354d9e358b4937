package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/bearanvil/trafficled/internal/speeds"
)

// ErrorType categorizes fetch failures.
type ErrorType int

const (
	ErrTypeNetwork ErrorType = iota
	ErrTypeHTTP
	ErrTypeParse
)

func (e ErrorType) String() string {
	switch e {
	case ErrTypeNetwork:
		return "network error"
	case ErrTypeHTTP:
		return "HTTP error"
	case ErrTypeParse:
		return "parse error"
	default:
		return "unknown error"
	}
}

// Error describes a failed download of one dataset.
type Error struct {
	Type       ErrorType
	Dataset    Dataset
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("fetch %s: %s", e.Dataset, e.Type)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether downloading the dataset again could succeed.
func (e *Error) Retryable() bool {
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return false
	}
	switch e.Type {
	case ErrTypeNetwork:
		return true
	case ErrTypeHTTP:
		return e.StatusCode >= 500 || e.StatusCode == 429
	case ErrTypeParse:
		return speeds.IsType(e.Err, speeds.ErrTypeUnexpectedEOF) || speeds.IsType(e.Err, speeds.ErrTypeSource)
	default:
		return false
	}
}
