package speeds

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bearanvil/trafficled/internal/stream"
)

const (
	// DefaultWindowSize matches the response block size of the data server
	// client.
	DefaultWindowSize = 128
)

// Reader decodes records from a byte source one at a time.
type Reader struct {
	cur     *stream.Cursor
	scratch []byte
	flushed bool
	count   int
}

// NewReader returns a Reader scanning src through a window of windowSize
// bytes. A non-positive window selects DefaultWindowSize.
func NewReader(src stream.Source, windowSize int, opts ...stream.Option) (*Reader, error) {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	cur, err := stream.New(src, windowSize, opts...)
	if err != nil {
		return nil, err
	}
	return &Reader{cur: cur, scratch: make([]byte, windowSize+1)}, nil
}

// span returns how many bytes from the mark the next record may use. A line
// break under the mark ends the previous record, so it rides along on top of
// the window.
func (r *Reader) span() int {
	var b [1]byte
	n, err := r.cur.Buffer().ReadFromMark(b[:])
	if err == nil && n == 1 && b[0] == '\n' {
		return len(r.scratch)
	}
	return len(r.scratch) - 1
}

// Count returns how many records have been returned.
func (r *Reader) Count() int { return r.count }

// BytesRead returns how many bytes have been pulled from the source.
func (r *Reader) BytesRead() int64 { return r.cur.Stats().Bytes }

// Next returns the next record, or io.EOF once the source ends cleanly
// between records. A final record missing its line break is still
// returned; any other partial record at the end is an error.
func (r *Reader) Next(ctx context.Context) (Record, error) {
	buf := r.cur.Buffer()
	for {
		span := r.span()
		rec, err := NextRecord(buf, r.scratch[:span])
		if err == nil {
			r.count++
			return rec, nil
		}
		if !errors.Is(err, ErrNotFound) {
			var se *Error
			if errors.As(err, &se) {
				se.Offset = r.cur.Offset()
				return Record{}, se
			}
			return Record{}, fromStream(err, r.cur.Offset())
		}

		if lag, lerr := buf.MarkLag(); lerr == nil && lag >= span {
			return Record{}, &Error{
				Type:    ErrTypeRecordTooLarge,
				Offset:  r.cur.Offset(),
				Message: fmt.Sprintf("no complete record within %d bytes", len(r.scratch)-1),
			}
		}

		ferr := r.cur.Fill(ctx)
		if ferr == nil {
			continue
		}
		if !errors.Is(ferr, io.EOF) {
			return Record{}, fromStream(ferr, r.cur.Offset())
		}
		if err := r.finish(); err != nil {
			return Record{}, err
		}
	}
}

// finish handles the end of the source. It appends a line break when the
// remaining bytes look like one unterminated record, so the next NextRecord
// call can decode it.
func (r *Reader) finish() error {
	buf := r.cur.Buffer()
	var rest []byte
	if buf.Marked() {
		n, err := buf.ReadFromMark(r.scratch)
		if err != nil {
			return fromStream(err, r.cur.Offset())
		}
		rest = bytes.Trim(r.scratch[:n], " \t\r\n")
	}

	switch {
	case len(rest) == 0:
		return io.EOF
	case r.flushed || bytes.IndexByte(rest, ',') < 0:
		return &Error{
			Type:    ErrTypeUnexpectedEOF,
			Offset:  r.cur.Offset(),
			Message: fmt.Sprintf("partial record %q", rest),
		}
	}

	r.flushed = true
	if err := buf.Store([]byte{'\n'}); err != nil {
		return fromStream(fmt.Errorf("%w: %w", stream.ErrRecordTooLarge, err), r.cur.Offset())
	}
	return nil
}

// ReadAll decodes src until it ends or maxRecords records have been read.
// The records read before a failure are returned with the error.
func ReadAll(ctx context.Context, src stream.Source, windowSize, maxRecords int, opts ...stream.Option) ([]Record, error) {
	if maxRecords <= 0 {
		return nil, fmt.Errorf("speeds: maxRecords must be positive, got %d", maxRecords)
	}
	r, err := NewReader(src, windowSize, opts...)
	if err != nil {
		return nil, err
	}

	recs := make([]Record, 0, min(maxRecords, 512))
	for len(recs) < maxRecords {
		rec, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
