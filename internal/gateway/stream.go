package gateway

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeGracePeriod = time.Second

// Stream - adapts websocket connection to the line stream used by the chat server.
// Every inbound frame is one line, '\n' is appended when the frame has no one.
// Every Write is sent as one text frame.
type Stream struct {
	ws *websocket.Conn

	// read side is owned by the single reader
	frame     io.Reader
	last      byte
	pendingLF bool

	wmu sync.Mutex
}

// NewStream - wraps upgraded websocket connection.
func NewStream(ws *websocket.Conn) *Stream {
	return &Stream{ws: ws}
}

func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if s.pendingLF {
			s.pendingLF = false
			s.last = '\n'
			p[0] = '\n'
			return 1, nil
		}
		if s.frame == nil {
			typ, r, err := s.ws.NextReader()
			if err != nil {
				if websocket.IsCloseError(err,
					websocket.CloseNormalClosure,
					websocket.CloseGoingAway,
					websocket.CloseNoStatusReceived,
				) {
					return 0, io.EOF
				}
				return 0, err
			}
			if typ != websocket.TextMessage && typ != websocket.BinaryMessage {
				continue
			}
			s.frame = r
			s.last = '\n'
		}
		n, err := s.frame.Read(p)
		if n > 0 {
			s.last = p[n-1]
		}
		if err == io.EOF {
			s.frame = nil
			s.pendingLF = s.last != '\n'
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (s *Stream) Write(p []byte) (int, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.ws.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetWriteDeadline - bounds the next frame write.
func (s *Stream) SetWriteDeadline(t time.Time) error {
	return s.ws.SetWriteDeadline(t)
}

// RemoteAddr - returns remote address of underlying connection.
func (s *Stream) RemoteAddr() net.Addr {
	return s.ws.RemoteAddr()
}

// Close - sends close frame (best effort) and closes the connection.
// Safe to call concurrently with Write.
func (s *Stream) Close() error {
	s.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeGracePeriod),
	)
	return s.ws.Close()
}
