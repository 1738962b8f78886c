package realtime

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Thumbnail frames carry
	// base64 image data.
	maxMessageSize = 1 << 20

	sendBuffer = 64
)

var errSessionClosed = errors.New("realtime: session closed")

// Session owns one physical websocket for one authenticated user. It joins
// the registry on start, pumps frames in both directions and leaves the
// registry on any exit path. A user may run several sessions at once; each
// is an independent handle in the same group.
type Session struct {
	userID   uuid.UUID
	conn     *websocket.Conn
	registry *Registry
	router   *Router
	log      *zap.Logger

	send chan []byte
	done chan struct{}
}

// NewSession wraps an already-upgraded connection. The caller must have
// verified the user's identity before the upgrade; anonymous sockets never
// get a Session.
func NewSession(userID uuid.UUID, conn *websocket.Conn, registry *Registry, router *Router, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		userID:   userID,
		conn:     conn,
		registry: registry,
		router:   router,
		log:      log,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
}

// SendText queues one serialized frame for delivery. It never blocks: a
// backed-up socket drops the frame, consistent with the at-most-once push
// policy.
func (s *Session) SendText(data []byte) error {
	select {
	case <-s.done:
		return errSessionClosed
	default:
	}
	select {
	case s.send <- data:
		return nil
	default:
		s.log.Warn("slow socket, frame dropped", zap.String("user", s.userID.String()))
		return errSessionClosed
	}
}

// Run registers the session and blocks until the socket closes. Cleanup
// runs on every exit path, including sockets that faulted mid-handler.
func (s *Session) Run() {
	group := s.userID.String()
	s.registry.Join(group, s)
	s.log.Info("session opened", zap.String("user", group))

	defer func() {
		s.registry.Leave(group, s)
		close(s.done)
		s.conn.Close()
		s.log.Info("session closed", zap.String("user", group))
	}()

	go s.writePump()
	s.readPump()
}

// readPump processes inbound frames one at a time, so frames from a single
// socket are handled in order and single-flight. Frames from different
// sockets run concurrently on their own sessions.
func (s *Session) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("read error", zap.String("user", s.userID.String()), zap.Error(err))
			}
			return
		}
		if errFrame := s.router.Dispatch(s.userID, frame); errFrame != nil {
			data, err := json.Marshal(errFrame)
			if err != nil {
				continue
			}
			_ = s.SendText(data)
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case data := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
