package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/njchilds90/diffcalc"
	"github.com/njchilds90/diffcalc/internal/logging"
)

const wsReadTimeout = 120 * time.Second

// WSMessage is a client message. Type "evaluate" carries an Input; "ping"
// asks for a "pong".
type WSMessage struct {
	Type  string         `json:"type"`
	ID    string         `json:"id,omitempty"`
	Input diffcalc.Input `json:"input"`
}

// WSResponse is a server message of type "result", "pong" or "error".
type WSResponse struct {
	Type   string           `json:"type"`
	ID     string           `json:"id,omitempty"`
	Result *diffcalc.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

type wsHandler struct {
	calc     *diffcalc.Calculator
	log      *slog.Logger
	maxBytes int64
	upgrader websocket.Upgrader
}

// newWSHandler limits each frame to maxBytes and accepts cross-origin
// upgrades only from origins. "*" allows any origin.
func newWSHandler(calc *diffcalc.Calculator, log *slog.Logger, maxBytes int64, origins []string) *wsHandler {
	return &wsHandler{
		calc:     calc,
		log:      log,
		maxBytes: maxBytes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
	}
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context(), h.log)
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err, "origin", r.Header.Get("Origin"))
		return
	}
	conn.SetReadLimit(h.maxBytes)
	newSession(conn, h.calc, log).run(r.Context())
}

// originChecker allows requests without an Origin header, same-host
// origins and the listed ones.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// session answers inputs in order of arrival but skips any input that was
// superseded while an earlier one was being computed.
type session struct {
	conn    *websocket.Conn
	calc    *diffcalc.Calculator
	log     *slog.Logger
	writeMu sync.Mutex
	pending *mailbox
}

func newSession(conn *websocket.Conn, calc *diffcalc.Calculator, log *slog.Logger) *session {
	return &session{conn: conn, calc: calc, log: log, pending: newMailbox()}
}

func (s *session) run(parent context.Context) {
	defer s.conn.Close()
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s.log.Info("websocket session opened", "remote", s.conn.RemoteAddr().String())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.compute(ctx)
	}()

	s.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read error", "error", err)
			} else {
				s.log.Info("websocket session closed")
			}
			break
		}
		s.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.send(WSResponse{Type: "error", Error: "invalid message: " + err.Error()})
			continue
		}
		switch msg.Type {
		case "ping":
			s.send(WSResponse{Type: "pong", ID: msg.ID})
		case "evaluate", "":
			if dropped := s.pending.put(msg); dropped != nil {
				s.log.Debug("superseded input dropped", "id", dropped.ID)
			}
		default:
			s.send(WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type: " + msg.Type})
		}
	}

	cancel()
	s.pending.close()
	wg.Wait()
}

func (s *session) compute(ctx context.Context) {
	for {
		msg, ok := s.pending.take()
		if !ok {
			return
		}
		res := s.calc.Evaluate(ctx, msg.Input)
		if ctx.Err() != nil {
			return
		}
		s.send(WSResponse{Type: "result", ID: msg.ID, Result: &res})
	}
}

func (s *session) send(resp WSResponse) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(resp); err != nil {
		s.log.Debug("websocket write failed", "error", err)
	}
}

// mailbox holds at most one message; a put replaces whatever is waiting.
type mailbox struct {
	mu     sync.Mutex
	msg    *WSMessage
	closed bool
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

// put stores msg and returns the message it replaced, if any.
func (m *mailbox) put(msg WSMessage) *WSMessage {
	m.mu.Lock()
	dropped := m.msg
	m.msg = &msg
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return dropped
}

// take blocks for the newest message. ok is false once the mailbox is
// closed and empty.
func (m *mailbox) take() (WSMessage, bool) {
	for {
		m.mu.Lock()
		if m.msg != nil {
			msg := *m.msg
			m.msg = nil
			m.mu.Unlock()
			return msg, true
		}
		if m.closed {
			m.mu.Unlock()
			return WSMessage{}, false
		}
		m.mu.Unlock()
		<-m.signal
	}
}

func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.msg = nil
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}
