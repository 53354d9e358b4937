package circbuf

import (
	"fmt"
	"math"
)

// Basis selects the anchor that SetMark measures its distance from.
type Basis int

const (
	// FromPreviousMark moves the mark forward from where it currently is.
	FromPreviousMark Basis = iota
	// FromNewestByte counts backwards from the most recently stored byte.
	FromNewestByte
	// FromOldestByte counts forwards from the oldest retained byte.
	FromOldestByte
)

func (b Basis) String() string {
	switch b {
	case FromPreviousMark:
		return "from previous mark"
	case FromNewestByte:
		return "from newest byte"
	case FromOldestByte:
		return "from oldest byte"
	default:
		return fmt.Sprintf("Basis(%d)", int(b))
	}
}

// Buffer is a fixed-capacity circular byte store with one optional mark.
type Buffer struct {
	data   []byte
	size   uint32
	end    uint32 // index of the next byte to be written
	length uint32 // retained bytes, at most size
	mark   uint32
	marked bool
}

// New returns an empty Buffer holding at most capacity bytes.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 || uint64(capacity) > math.MaxUint32 {
		return nil, newError(KindInvalidArgument, "new", "capacity %d", capacity)
	}
	return &Buffer{
		data: make([]byte, capacity),
		size: uint32(capacity),
	}, nil
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int { return int(b.size) }

// Len returns the number of retained bytes.
func (b *Buffer) Len() int { return int(b.length) }

// Marked reports whether a mark is set.
func (b *Buffer) Marked() bool { return b.marked }

// Mark returns the marked index and whether a mark is set.
func (b *Buffer) Mark() (int, bool) { return int(b.mark), b.marked }

// MarkLag returns how many retained bytes lie between the mark and the write
// cursor, counting the marked byte itself.
func (b *Buffer) MarkLag() (int, error) {
	if !b.marked {
		return 0, newError(KindLostMark, "mark lag", "no mark set")
	}
	return int(b.lag()), nil
}

// lag is only meaningful while marked. The marked byte is always retained, so
// a zero distance can only mean it is the oldest byte of a full buffer.
func (b *Buffer) lag() uint32 {
	d := SubMod(b.end, b.mark, b.size)
	if d == 0 {
		return b.size
	}
	return d
}

// Store appends p, overwriting the oldest bytes once the buffer is full.
// If the write covers the marked byte the data is still written, the mark
// is cleared and ErrLostMark is returned.
func (b *Buffer) Store(p []byte) error {
	n := uint64(len(p))
	if n == 0 {
		return newError(KindInvalidArgument, "store", "empty write")
	}
	if n > uint64(b.size) {
		return newError(KindInvalidSize, "store", "%d bytes exceeds capacity %d", n, b.size)
	}

	lost := b.marked && uint64(b.lag())+n > uint64(b.size)

	written := copy(b.data[b.end:], p)
	copy(b.data, p[written:])
	b.end = AddMod(b.end, uint32(n), b.size)
	b.length = uint32(min(uint64(b.length)+n, uint64(b.size)))

	if lost {
		b.marked = false
		return newError(KindLostMark, "store", "write of %d bytes overwrote the mark", n)
	}
	return nil
}

// SetMark places the mark distance bytes from the anchor chosen by basis.
// The new position must name a retained byte; on any error the current mark
// is left as it was.
func (b *Buffer) SetMark(distance int, basis Basis) error {
	if distance < 0 {
		return newError(KindInvalidArgument, "set mark", "negative distance %d", distance)
	}
	d := uint64(distance)

	var next uint32
	switch basis {
	case FromPreviousMark:
		if !b.marked {
			return newError(KindLostMark, "set mark", "no previous mark")
		}
		if d > uint64(b.lag())-1 {
			return newError(KindInvalidSize, "set mark", "distance %d past newest byte", d)
		}
		next = AddMod(b.mark, uint32(d), b.size)
	case FromNewestByte:
		if d >= uint64(b.length) {
			return newError(KindInvalidSize, "set mark", "distance %d with %d bytes stored", d, b.length)
		}
		next = SubMod(b.end, uint32(d)+1, b.size)
	case FromOldestByte:
		if d >= uint64(b.length) {
			return newError(KindInvalidSize, "set mark", "distance %d with %d bytes stored", d, b.length)
		}
		oldest := SubMod(b.end, b.length, b.size)
		next = AddMod(oldest, uint32(d), b.size)
	default:
		return newError(KindInvalidArgument, "set mark", "unknown basis %v", basis)
	}

	b.mark = next
	b.marked = true
	return nil
}

// ClearMark drops the mark, if any.
func (b *Buffer) ClearMark() { b.marked = false }

// ReadRecent fills out with the newest len(out) bytes, oldest first.
// It does not move the mark.
func (b *Buffer) ReadRecent(out []byte) error {
	n := uint64(len(out))
	if n == 0 {
		return newError(KindInvalidArgument, "read recent", "empty destination")
	}
	if n > uint64(b.length) {
		return newError(KindInvalidSize, "read recent", "%d bytes requested, %d stored", n, b.length)
	}
	b.copyFrom(SubMod(b.end, uint32(n), b.size), out)
	return nil
}

// ReadFromMark copies bytes starting at the mark into out, stopping at
// len(out) bytes or at the write cursor, and returns the count copied.
func (b *Buffer) ReadFromMark(out []byte) (int, error) {
	if len(out) == 0 {
		return 0, newError(KindInvalidArgument, "read from mark", "empty destination")
	}
	if !b.marked {
		return 0, newError(KindLostMark, "read from mark", "no mark set")
	}
	n := min(uint64(len(out)), uint64(b.lag()))
	b.copyFrom(b.mark, out[:n])
	return int(n), nil
}

// Reset empties the buffer and clears the mark, keeping the backing array.
func (b *Buffer) Reset() {
	b.end = 0
	b.length = 0
	b.mark = 0
	b.marked = false
}

// copyFrom fills out starting at index start, wrapping at the end of data.
// len(out) must not exceed the capacity.
func (b *Buffer) copyFrom(start uint32, out []byte) {
	first := copy(out, b.data[start:])
	copy(out[first:], b.data)
}
