// Package circbuf implements the fixed-capacity ring buffer that backs every
// streaming parse in trafficled.
//
// A Buffer never grows. Once full, new writes silently overwrite the oldest
// bytes, so it behaves as a sliding window over the most recent Cap() bytes
// of a stream rather than as a queue with backpressure.
//
// # Marks
//
// A Buffer carries at most one mark: the index of the oldest byte that a
// parser has not finished with yet. Parsers scan forward from the mark and
// move it with SetMark as tokens are consumed:
//
//	buf.SetMark(0, circbuf.FromOldestByte)   // start of the first chunk
//	n, _ := buf.ReadFromMark(window)         // bytes not yet consumed
//	buf.SetMark(ndx, circbuf.FromPreviousMark)
//
// A Store that would overwrite the marked byte still writes its data, but the
// mark is destroyed and Store returns ErrLostMark. The record boundary cannot
// be recovered after that, so callers must abandon the parse. This is how
// memory stays bounded: a record that does not fit the window fails instead
// of forcing a reallocation.
//
// # Index arithmetic
//
// All wraparound math goes through AddMod and SubMod, which are total over
// uint32 inputs and never depend on signed overflow.
//
// # Concurrency
//
// A Buffer is owned by exactly one parse session. It uses no locks and must
// not be shared between goroutines.
package circbuf
