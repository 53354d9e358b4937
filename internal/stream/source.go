package stream

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

// Source is a chunked byte source.
//
// ReadChunk fills p with up to len(p) bytes and returns the count. It returns
// io.EOF once the stream is exhausted and ErrTryAgain when nothing is ready
// yet. A (0, nil) return is treated the same as ErrTryAgain.
type Source interface {
	ReadChunk(p []byte) (int, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(p []byte) (int, error)

// ReadChunk calls f(p).
func (f SourceFunc) ReadChunk(p []byte) (int, error) { return f(p) }

// ReaderSource adapts an io.Reader. Timeouts and EAGAIN from the reader are
// reported as ErrTryAgain.
type ReaderSource struct {
	r io.Reader
}

// NewReaderSource wraps r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r}
}

// ReadChunk reads once from the underlying reader.
func (s *ReaderSource) ReadChunk(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && isTransient(err) {
		return n, ErrTryAgain
	}
	return n, err
}

func isTransient(err error) bool {
	if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
