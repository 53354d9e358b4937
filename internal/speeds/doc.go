// Package speeds decodes the LED speed files served by the traffic data
// server.
//
// A speed file is a sequence of CRLF-terminated records:
//
//	1,71
//	2,68
//	3,-1
//
// Each record pairs an LED number with a speed. The speed -1 is a removal
// marker: the LED has no data and should be dropped from the display.
// It decodes to RemoveSpeed.
//
// NextRecord works on whatever is already buffered and reports ErrNotFound
// when no complete record is present yet. Reader drives NextRecord over a
// stream.Cursor, refilling between attempts, and ReadAll collects a whole
// file into a slice bounded by the LED count.
package speeds
