package stream

import (
	"errors"
	"io"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bearanvil/trafficled/internal/logging"
)

// WebSocketSource reads the payloads of consecutive websocket messages as
// one continuous byte stream. A normal close from the peer ends the stream.
type WebSocketSource struct {
	conn    *websocket.Conn
	current io.Reader
	msgs    int
}

// NewWebSocketSource wraps an established connection. The caller keeps
// ownership of conn and closes it when done.
func NewWebSocketSource(conn *websocket.Conn) *WebSocketSource {
	return &WebSocketSource{conn: conn}
}

// ReadChunk reads from the current message, advancing to the next message
// when it is drained. A message boundary is reported as ErrTryAgain.
func (s *WebSocketSource) ReadChunk(p []byte) (int, error) {
	if s.current == nil {
		msgType, r, err := s.conn.NextReader()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return 0, io.EOF
			}
			return 0, err
		}
		s.msgs++
		logging.Debug("WebSocket message started",
			zap.String("remote_addr", s.conn.RemoteAddr().String()),
			zap.Int("message_type", msgType),
			zap.Int("message", s.msgs),
		)
		s.current = r
	}

	n, err := s.current.Read(p)
	if errors.Is(err, io.EOF) {
		s.current = nil
		if n > 0 {
			return n, nil
		}
		return 0, ErrTryAgain
	}
	return n, err
}

// Messages returns how many websocket messages have been started.
func (s *WebSocketSource) Messages() int { return s.msgs }
