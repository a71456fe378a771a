package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// subscriber is one websocket client following a run.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	mu   sync.Mutex
}

func newSubscriber(conn *websocket.Conn) *subscriber {
	return &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
}

// writeMessage sends a websocket message guarded by the subscriber's mutex and write deadline.
func (s *subscriber) writeMessage(messageType int, data []byte) error {
	if s == nil || s.conn == nil {
		return errors.New("subscriber closed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}

// writer drains send until the hub closes it, then says goodbye.
func (s *subscriber) writer() {
	defer s.conn.Close()
	for msg := range s.send {
		if err := s.writeMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = s.writeMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run over"))
}

// reader discards client frames and unsubscribes once the connection drops.
func (s *subscriber) reader(h *hub) {
	defer h.remove(s)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// hub fans a run's events out to its subscribers. Once closed it replays
// the final message to anyone who subscribes late.
type hub struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
	last   []byte
}

func newHub() *hub {
	return &hub{subs: make(map[*subscriber]struct{})}
}

// add registers s. It returns false if the run is already over, in which
// case s has been sent the final message and its channel closed.
func (h *hub) add(s *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		if h.last != nil {
			s.send <- h.last
		}
		close(s.send)
		return false
	}
	h.subs[s] = struct{}{}
	return true
}

func (h *hub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.send)
	}
}

// broadcast queues msg for every subscriber, dropping any that cannot keep up.
func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.send <- msg:
		default:
			delete(h.subs, s)
			close(s.send)
		}
	}
}

// close disconnects everyone and remembers final for late subscribers.
func (h *hub) close(final []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.last = final
	for s := range h.subs {
		delete(h.subs, s)
		close(s.send)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
