package circbuf

import "fmt"

// ErrorKind categorizes ring buffer failures.
type ErrorKind int

const (
	// KindInvalidArgument indicates a caller bug: a zero capacity, an empty
	// write or an empty destination.
	KindInvalidArgument ErrorKind = iota
	// KindInvalidSize indicates a request outside the retained data.
	KindInvalidSize
	// KindLostMark indicates the mark was overwritten or was never set.
	KindLostMark
)

// String returns a human-readable kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindInvalidSize:
		return "invalid size"
	case KindLostMark:
		return "lost mark"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error is returned by every failing Buffer operation.
type Error struct {
	Kind   ErrorKind
	Op     string
	Detail string
}

func (e *Error) Error() string {
	msg := "circbuf: " + e.Kind.String()
	if e.Op != "" {
		msg = "circbuf: " + e.Op + ": " + e.Kind.String()
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrLostMark)
// works regardless of Op and Detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrInvalidSize     = &Error{Kind: KindInvalidSize}
	ErrLostMark        = &Error{Kind: KindLostMark}
)

func newError(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}
