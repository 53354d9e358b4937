package stream

import "errors"

var (
	// ErrTryAgain is returned by a Source that has no data ready yet.
	ErrTryAgain = errors.New("stream: no data ready, try again")

	// ErrRecordTooLarge means a token outgrew the scan window, or a refill
	// overwrote the mark.
	ErrRecordTooLarge = errors.New("stream: record too large for window")

	// ErrUnexpectedEOF means the source ended before a structural byte was found.
	ErrUnexpectedEOF = errors.New("stream: unexpected end of stream")

	// ErrInvalidWindow is returned by New for a non-positive window size.
	ErrInvalidWindow = errors.New("stream: window size must be positive")
)
