package speeds

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/bearanvil/trafficled/internal/circbuf"
)

// RemoveSpeed is the speed of a record that removes its LED.
const RemoveSpeed uint32 = math.MaxUint32

const removeText = "-1"

// Record is one decoded line of a speed file.
type Record struct {
	LED   uint32
	Speed uint32
}

// Remove reports whether the record removes its LED.
func (r Record) Remove() bool { return r.Speed == RemoveSpeed }

func (r Record) String() string {
	if r.Remove() {
		return fmt.Sprintf("%d,remove", r.LED)
	}
	return fmt.Sprintf("%d,%d", r.LED, r.Speed)
}

// NextRecord decodes the next complete record in buf, starting at the mark
// and looking at no more than len(scratch) bytes.
//
// Bare line breaks before the record are skipped. On success the mark is
// left on the record's terminating '\n'. If no complete record is buffered
// NextRecord returns ErrNotFound; the mark may have moved past skipped line
// breaks but never into a partial record. A malformed record leaves the
// mark in front of it.
func NextRecord(buf *circbuf.Buffer, scratch []byte) (Record, error) {
	if !buf.Marked() {
		return Record{}, ErrNotFound
	}
	n, err := buf.ReadFromMark(scratch)
	if err != nil {
		return Record{}, fmt.Errorf("speeds: read window: %w", err)
	}
	w := scratch[:n]

	markAt := 0
	start := 0
	comma := -1
	for i, b := range w {
		switch b {
		case ',':
			if comma >= 0 {
				return Record{}, malformed("more than one ',' in record %q", w[start:i])
			}
			comma = i

		case '\n':
			if comma < 0 {
				if len(bytes.Trim(w[start:i], " \t\r")) > 0 {
					return Record{}, malformed("record %q has no ','", w[start:i])
				}
				if err := buf.SetMark(i-markAt, circbuf.FromPreviousMark); err != nil {
					return Record{}, fmt.Errorf("speeds: skip line break: %w", err)
				}
				markAt = i
				start = i + 1
				continue
			}

			rec, err := decode(w[start:comma], w[comma+1:i])
			if err != nil {
				return Record{}, err
			}
			if err := buf.SetMark(i-markAt, circbuf.FromPreviousMark); err != nil {
				return Record{}, fmt.Errorf("speeds: consume record: %w", err)
			}
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

func decode(ledText, speedText []byte) (Record, error) {
	led, err := parseField(ledText)
	if err != nil {
		return Record{}, malformed("LED number %q: %v", ledText, err)
	}

	speedText = bytes.Trim(speedText, " \t\r")
	if string(speedText) == removeText {
		return Record{LED: led, Speed: RemoveSpeed}, nil
	}
	speed, err := parseField(speedText)
	if err != nil {
		return Record{}, malformed("speed %q: %v", speedText, err)
	}
	if speed == RemoveSpeed {
		return Record{}, malformed("speed %q is reserved; removals are written %s", speedText, removeText)
	}
	return Record{LED: led, Speed: speed}, nil
}

func parseField(text []byte) (uint32, error) {
	text = bytes.Trim(text, " \t\r")
	if len(text) == 0 {
		return 0, errors.New("empty field")
	}
	v, err := strconv.ParseUint(string(text), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func malformed(format string, args ...any) *Error {
	return &Error{Type: ErrTypeMalformedInput, Message: fmt.Sprintf(format, args...)}
}

// Table holds the latest speed for each active LED.
type Table map[uint32]uint32

// TableFrom applies recs in order to an empty table.
func TableFrom(recs []Record) Table {
	t := make(Table, len(recs))
	for _, r := range recs {
		t.Apply(r)
	}
	return t
}

// Apply records r's speed, or drops the LED for a removal record.
func (t Table) Apply(r Record) {
	if r.Remove() {
		delete(t, r.LED)
		return
	}
	t[r.LED] = r.Speed
}

// LEDs returns the active LED numbers in ascending order.
func (t Table) LEDs() []uint32 {
	leds := make([]uint32, 0, len(t))
	for led := range t {
		leds = append(leds, led)
	}
	slices.Sort(leds)
	return leds
}

// PercentFlow returns live speed as a percentage of typical speed. It
// reports false when there is no usable typical speed.
func PercentFlow(live, typical uint32) (uint32, bool) {
	if typical == 0 || typical == RemoveSpeed || live == RemoveSpeed {
		return 0, false
	}
	return uint32(uint64(live) * 100 / uint64(typical)), true
}
