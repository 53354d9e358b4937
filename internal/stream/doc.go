// Package stream drives bounded-memory parsing over chunked byte sources.
//
// A Cursor pairs a Source with a circbuf.Buffer twice the size of its scan
// window. Parsers ask the cursor for the next structural byte; when the
// window holds none, the cursor pulls one more chunk from the source and
// scans again from the mark:
//
//	cur, err := stream.New(stream.NewReaderSource(resp.Body), 128)
//	tok, err := cur.Next(ctx, delim)
//	// tok.Delim is the structural byte, tok.Body the bytes before it
//
// # Sources
//
// A Source delivers whatever it has: one byte, a whole response, or nothing
// yet. Returning ErrTryAgain (or zero bytes with a nil error) makes the
// cursor ask again immediately; any pacing belongs to the source. io.EOF
// ends the stream.
//
// Adapters are provided for an io.Reader (HTTP bodies, files, sockets), a
// gorilla/websocket connection and a serial port.
//
// # Failure modes
//
//   - ErrRecordTooLarge: a token did not fit the window. The session cannot
//     be resumed; fetch the document again.
//   - ErrUnexpectedEOF: the source ended in the middle of a token.
//
// The cursor never imposes a timeout of its own. Callers bound a session
// with the context passed to Fill and Next, or simply drop the cursor.
package stream
