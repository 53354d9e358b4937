package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/bearanvil/trafficled/internal/circbuf"
	"github.com/bearanvil/trafficled/internal/logging"
)

// Delimiter recognizes the structural bytes of a grammar.
//
// The cursor calls Reset and then Split for every byte of the window, in
// order, each time it rescans; a rescan starts again from the mark, so any
// state Split builds up must be cleared by Reset. Split returns true for a
// structural byte, or an error if the byte can never be valid.
type Delimiter interface {
	Reset()
	Split(b byte) (bool, error)
}

// Token is one structural byte and the bytes that preceded it.
type Token struct {
	Delim byte
	// Body aliases the cursor's window and is only valid until the next
	// call on the cursor.
	Body []byte
	// Offset is the stream offset of Delim.
	Offset int64
}

// Observer receives refill events, for example to feed metrics.
type Observer interface {
	ObserveChunk(n int)
	ObserveRetry()
}

// Stats counts what a cursor has pulled from its source.
type Stats struct {
	Bytes   int64
	Chunks  int
	Retries int
}

// Option configures a Cursor.
type Option func(*Cursor)

// WithLogger sets the logger used for chunk dumps.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cursor) { c.log = l }
}

// WithObserver reports refills to o.
func WithObserver(o Observer) Option {
	return func(c *Cursor) { c.obs = o }
}

// WithRingCapacity overrides the default ring capacity of twice the window.
func WithRingCapacity(n int) Option {
	return func(c *Cursor) { c.ringCap = n }
}

// Cursor runs the refill and scan loop for one parse session. It is not
// safe for concurrent use.
type Cursor struct {
	src     Source
	ring    *circbuf.Buffer
	ringCap int
	chunk   []byte
	window  []byte
	onDelim bool
	eof     bool
	stats   Stats
	log     *zap.Logger
	obs     Observer
}

// New returns a cursor reading src through a window of windowSize bytes.
func New(src Source, windowSize int, opts ...Option) (*Cursor, error) {
	if src == nil {
		return nil, errors.New("stream: nil source")
	}
	if windowSize <= 0 {
		return nil, ErrInvalidWindow
	}

	c := &Cursor{
		src:     src,
		ringCap: 2 * windowSize,
		chunk:   make([]byte, windowSize),
		window:  make([]byte, windowSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logging.GetLogger()
	}

	ring, err := circbuf.New(c.ringCap)
	if err != nil {
		return nil, fmt.Errorf("stream: %w", err)
	}
	c.ring = ring
	return c, nil
}

// Buffer exposes the ring for parsers that walk the window themselves.
func (c *Cursor) Buffer() *circbuf.Buffer { return c.ring }

// WindowSize returns the scan window size.
func (c *Cursor) WindowSize() int { return len(c.window) }

// EOF reports whether the source has ended.
func (c *Cursor) EOF() bool { return c.eof }

// Stats returns refill counters.
func (c *Cursor) Stats() Stats { return c.stats }

// Offset returns the stream offset of the marked byte, or the number of
// bytes read so far when nothing is marked.
func (c *Cursor) Offset() int64 {
	lag, err := c.ring.MarkLag()
	if err != nil {
		return c.stats.Bytes
	}
	return c.stats.Bytes - int64(lag)
}

// Window returns the unconsumed bytes from the mark, at most WindowSize of
// them. It is empty before the first chunk arrives. The slice is reused by
// the next call.
func (c *Cursor) Window() ([]byte, error) {
	if !c.ring.Marked() {
		return c.window[:0], nil
	}
	n, err := c.ring.ReadFromMark(c.window)
	if err != nil {
		return nil, fmt.Errorf("stream: read window: %w", err)
	}
	return c.window[:n], nil
}

// Advance moves the mark n bytes forward onto a consumed structural byte.
func (c *Cursor) Advance(n int) error {
	if err := c.ring.SetMark(n, circbuf.FromPreviousMark); err != nil {
		return fmt.Errorf("stream: advance %d: %w", n, err)
	}
	c.onDelim = true
	return nil
}

// Fill pulls one chunk from the source into the ring, retrying immediately
// while the source has nothing ready. It returns io.EOF once the source is
// exhausted and ErrRecordTooLarge if the chunk overwrote the mark.
func (c *Cursor) Fill(ctx context.Context) error {
	if c.eof {
		return io.EOF
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := c.src.ReadChunk(c.chunk)
		if n > 0 {
			if serr := c.store(c.chunk[:n]); serr != nil {
				return serr
			}
		}

		switch {
		case err == nil && n > 0:
			return nil
		case err == nil, errors.Is(err, ErrTryAgain):
			if n > 0 {
				return nil
			}
			c.stats.Retries++
			if c.obs != nil {
				c.obs.ObserveRetry()
			}
		case errors.Is(err, io.EOF):
			c.eof = true
			if n > 0 {
				return nil
			}
			return io.EOF
		default:
			return fmt.Errorf("stream: read chunk: %w", err)
		}
	}
}

func (c *Cursor) store(p []byte) error {
	err := c.ring.Store(p)
	c.stats.Bytes += int64(len(p))
	c.stats.Chunks++
	if c.obs != nil {
		c.obs.ObserveChunk(len(p))
	}
	if ce := c.log.Check(zap.DebugLevel, "Chunk received"); ce != nil {
		ce.Write(logging.ChunkFields(c.stats.Bytes-int64(len(p)), p)...)
	}

	if errors.Is(err, circbuf.ErrLostMark) {
		return fmt.Errorf("%w: chunk ending at offset %d overwrote the mark", ErrRecordTooLarge, c.stats.Bytes)
	}
	if err != nil {
		return fmt.Errorf("stream: store chunk: %w", err)
	}

	if !c.ring.Marked() {
		// First chunk of the session: the mark starts on its first byte.
		if err := c.ring.SetMark(len(p)-1, circbuf.FromNewestByte); err != nil {
			return fmt.Errorf("stream: initial mark: %w", err)
		}
	}
	return nil
}

// Next scans forward from the mark for the next byte d accepts, refilling
// as needed. On success the mark moves onto that byte.
func (c *Cursor) Next(ctx context.Context, d Delimiter) (Token, error) {
	for {
		w, err := c.Window()
		if err != nil {
			return Token{}, err
		}

		start := 0
		if c.onDelim {
			start = 1
		}
		base := c.Offset()

		d.Reset()
		for i := start; i < len(w); i++ {
			hit, err := d.Split(w[i])
			if err != nil {
				return Token{Delim: w[i], Offset: base + int64(i)}, err
			}
			if !hit {
				continue
			}
			tok := Token{Delim: w[i], Body: w[start:i], Offset: base + int64(i)}
			if err := c.Advance(i); err != nil {
				return Token{}, err
			}
			return tok, nil
		}

		if len(w) == len(c.window) {
			return Token{}, fmt.Errorf("%w: no structural byte within %d bytes of offset %d",
				ErrRecordTooLarge, len(w), base)
		}

		if err := c.Fill(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return Token{}, fmt.Errorf("%w at offset %d", ErrUnexpectedEOF, c.stats.Bytes)
			}
			return Token{}, err
		}
	}
}
