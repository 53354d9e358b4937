package ota

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/bearanvil/trafficled/internal/logging"
	"github.com/bearanvil/trafficled/internal/stream"
)

// DefaultWindowSize is the scan window used when none is configured.
const DefaultWindowSize = 128

// Parser reads version documents.
type Parser struct {
	Keys       Keys
	WindowSize int
	Logger     *zap.Logger
	Observer   stream.Observer
}

// NewParser returns a parser for the given key names and window size.
// A non-positive window selects DefaultWindowSize.
func NewParser(keys Keys, windowSize int) *Parser {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Parser{Keys: keys, WindowSize: windowSize}
}

// ParseVersionDocument parses src with the default keys and window.
func ParseVersionDocument(ctx context.Context, src stream.Source) (VersionInfo, error) {
	return NewParser(DefaultKeys(), DefaultWindowSize).Parse(ctx, src)
}

type docState int

const (
	stateBeforeObject docState = iota
	stateExpectKey
	stateExpectValue
)

func (s docState) String() string {
	switch s {
	case stateBeforeObject:
		return "before object"
	case stateExpectKey:
		return "expecting key"
	default:
		return "expecting value"
	}
}

// docScanner finds the structural bytes of a version document and collects
// the bytes between them with comments removed.
type docScanner struct {
	state     docState
	inComment bool
	inString  bool
	quotes    int
	text      []byte
}

func (s *docScanner) Reset() {
	s.inComment = false
	s.inString = false
	s.quotes = 0
	s.text = s.text[:0]
}

func (s *docScanner) Split(b byte) (bool, error) {
	if s.inComment {
		if b == '\n' {
			s.inComment = false
		}
		return false, nil
	}
	if s.inString {
		if b == '"' {
			s.inString = false
			s.quotes++
		}
		s.text = append(s.text, b)
		return false, nil
	}

	switch b {
	case '#':
		s.inComment = true
		return false, nil
	case '{', ':', ',', '}':
		return true, nil
	case '"':
		switch s.state {
		case stateExpectValue:
			return false, parseError(ErrTypeStringValueUnsupported, 0, "values must be integers")
		case stateBeforeObject:
			return false, parseError(ErrTypeMalformedDocument, 0, "string before '{'")
		}
		if s.quotes >= 2 {
			return false, parseError(ErrTypeMalformedDocument, 0, "more than one string before ':'")
		}
		s.inString = true
		s.quotes++
	}
	s.text = append(s.text, b)
	return false, nil
}

// Parse reads one version document from src. Keys that are never seen
// are left at zero. Parsing stops at the closing '}'; anything after it is
// not read.
func (p *Parser) Parse(ctx context.Context, src stream.Source) (VersionInfo, error) {
	log := p.Logger
	if log == nil {
		log = logging.GetLogger()
	}
	opts := []stream.Option{stream.WithLogger(log)}
	if p.Observer != nil {
		opts = append(opts, stream.WithObserver(p.Observer))
	}

	cur, err := stream.New(src, p.WindowSize, opts...)
	if err != nil {
		return VersionInfo{}, err
	}

	sc := &docScanner{text: make([]byte, 0, p.WindowSize)}
	var (
		info    VersionInfo
		current field
	)

	for {
		tok, err := cur.Next(ctx, sc)
		if err != nil {
			return VersionInfo{}, fromStream(err, failureOffset(cur, tok, err))
		}
		text := bytes.TrimSpace(sc.text)

		switch sc.state {
		case stateBeforeObject:
			if tok.Delim != '{' || len(text) > 0 {
				return VersionInfo{}, unexpected(tok, sc.state)
			}
			sc.state = stateExpectKey

		case stateExpectKey:
			if tok.Delim != ':' {
				return VersionInfo{}, unexpected(tok, sc.state)
			}
			if sc.quotes != 2 || len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
				return VersionInfo{}, parseError(ErrTypeMalformedDocument, tok.Offset, "key must be a quoted string")
			}
			name := text[1 : len(text)-1]
			current = p.Keys.lookup(name)
			if current == fieldUnknown {
				log.Debug("Ignoring unknown version key", zap.ByteString("key", name))
			}
			sc.state = stateExpectValue

		case stateExpectValue:
			if tok.Delim != ',' && tok.Delim != '}' {
				return VersionInfo{}, unexpected(tok, sc.state)
			}
			if len(text) == 0 {
				return VersionInfo{}, parseError(ErrTypeMalformedDocument, tok.Offset, "missing value")
			}
			info.set(current, parseValue(text))
			if tok.Delim == '}' {
				log.Debug("Version document parsed",
					zap.Stringer("version", info),
					zap.Int64("bytes", cur.Stats().Bytes),
				)
				return info, nil
			}
			sc.state = stateExpectKey
		}
	}
}

func unexpected(tok stream.Token, state docState) *Error {
	return parseError(ErrTypeMalformedDocument, tok.Offset, "unexpected %q while %s", tok.Delim, state)
}

// failureOffset places a cursor failure: on the rejected byte when there is
// one, at the end of input for a truncated document, and on the mark
// otherwise.
func failureOffset(cur *stream.Cursor, tok stream.Token, err error) int64 {
	switch {
	case tok.Delim != 0:
		return tok.Offset
	case errors.Is(err, stream.ErrUnexpectedEOF):
		return cur.Stats().Bytes
	default:
		return cur.Offset()
	}
}

// parseValue decodes decimal text: an optional '-' and digits. Anything
// else, or a value that does not fit a uint32, reads as 0, and negative
// values clamp to 0.
func parseValue(text []byte) uint32 {
	if len(text) > 0 && text[0] == '+' {
		return 0
	}
	n, err := strconv.ParseInt(string(text), 10, 64)
	if err != nil || n < 0 || n > math.MaxUint32 {
		return 0
	}
	return uint32(n)
}
