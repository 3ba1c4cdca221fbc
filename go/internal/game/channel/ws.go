package channel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/tashclub/teenpatti/go/internal/game/events"
)

// Config holds tuning for the websocket channel.
type Config struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
	MaxMessageSize   int64
	SendBufferSize   int
	// ErrorDisplayWindow is how long a failed-connect message stays visible
	// before it is cleared.
	ErrorDisplayWindow time.Duration
}

// DefaultConfig returns the default websocket configuration.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout:   20 * time.Second,
		WriteTimeout:       10 * time.Second,
		ReadTimeout:        60 * time.Second,
		PingInterval:       30 * time.Second,
		MaxMessageSize:     64 * 1024,
		SendBufferSize:     256,
		ErrorDisplayWindow: 3 * time.Second,
	}
}

// Manager owns the lifecycle of at most one websocket connection per mounted
// table view. It does not retry; a reconnect is a fresh Connect call by the
// owner.
type Manager struct {
	cfg   Config
	clock clockwork.Clock

	mu        sync.Mutex
	current   *WS
	status    Status
	lastError string

	onStatus func(Status)
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithClock replaces the wall clock, used by tests.
func WithClock(clock clockwork.Clock) ManagerOption {
	return func(m *Manager) { m.clock = clock }
}

// WithStatusFunc registers a callback observing status transitions.
func WithStatusFunc(fn func(Status)) ManagerOption {
	return func(m *Manager) { m.onStatus = fn }
}

// NewManager creates a channel manager in the Idle state.
func NewManager(cfg Config, opts ...ManagerOption) *Manager {
	m := &Manager{
		cfg:    cfg,
		clock:  clockwork.NewRealClock(),
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Status returns the current connection status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// ConnectionError returns the last handshake error message, empty once the
// display window has elapsed.
func (m *Manager) ConnectionError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	fn := m.onStatus
	m.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// Connect dials the table server. It refuses to open a second connection
// while one is pending or open.
func (m *Manager) Connect(ctx context.Context, endpoint string) (*WS, error) {
	m.mu.Lock()
	if m.status == StatusConnecting || m.current != nil {
		m.mu.Unlock()
		return nil, ErrAlreadyConnected
	}
	m.status = StatusConnecting
	fn := m.onStatus
	m.mu.Unlock()
	if fn != nil {
		fn(StatusConnecting)
	}

	dialer := websocket.Dialer{HandshakeTimeout: m.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		m.failConnect(err)
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	ws := &WS{
		cfg:    m.cfg,
		conn:   conn,
		events: make(chan []byte, m.cfg.SendBufferSize),
		send:   make(chan []byte, m.cfg.SendBufferSize),
		done:   make(chan struct{}),
		onClosed: func() {
			m.dropCurrent()
		},
	}

	m.mu.Lock()
	m.current = ws
	m.status = StatusConnected
	m.lastError = ""
	m.mu.Unlock()
	if fn != nil {
		fn(StatusConnected)
	}

	go ws.writePump()
	go ws.readPump()

	log.Info().Str("endpoint", endpoint).Msg("connected to table server")
	return ws, nil
}

func (m *Manager) failConnect(err error) {
	m.mu.Lock()
	m.status = StatusFailed
	m.lastError = "Failed to connect to game server"
	fn := m.onStatus
	m.mu.Unlock()
	if fn != nil {
		fn(StatusFailed)
	}
	log.Error().Err(err).Msg("table server handshake failed")

	m.clock.AfterFunc(m.cfg.ErrorDisplayWindow, func() {
		m.mu.Lock()
		m.lastError = ""
		m.mu.Unlock()
	})
}

func (m *Manager) dropCurrent() {
	m.mu.Lock()
	m.current = nil
	m.status = StatusDisconnected
	fn := m.onStatus
	m.mu.Unlock()
	if fn != nil {
		fn(StatusDisconnected)
	}
}

// Close tears down the current connection, whatever its state. Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	ws := m.current
	m.mu.Unlock()
	if ws != nil {
		ws.Close()
	}
}

// WS is one established websocket connection.
type WS struct {
	cfg  Config
	conn *websocket.Conn

	events chan []byte
	send   chan []byte

	done      chan struct{}
	closeOnce sync.Once
	onClosed  func()
}

// Events delivers inbound frames in arrival order. Closed when the
// connection is gone.
func (w *WS) Events() <-chan []byte {
	return w.events
}

// Send marshals an outbound intent and queues it for the writer.
func (w *WS) Send(out events.Outbound) error {
	frame, err := events.Encode(out)
	if err != nil {
		return err
	}
	select {
	case <-w.done:
		return ErrChannelClosed
	case w.send <- frame:
		return nil
	}
}

// Close shuts the connection down. Idempotent.
func (w *WS) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.conn.Close()
		if w.onClosed != nil {
			w.onClosed()
		}
	})
	return nil
}

// readPump reads frames and forwards them in order. It owns the events
// channel and closes it on exit.
func (w *WS) readPump() {
	defer func() {
		w.Close()
		close(w.events)
	}()

	w.conn.SetReadLimit(w.cfg.MaxMessageSize)
	w.conn.SetReadDeadline(time.Now().Add(w.cfg.ReadTimeout))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(w.cfg.ReadTimeout))
		return nil
	})

	for {
		_, frame, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Msg("unexpected websocket close")
			}
			return
		}
		select {
		case w.events <- frame:
		case <-w.done:
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(w.cfg.ReadTimeout))
	}
}

// writePump is the single writer goroutine; it also keeps the connection
// alive with pings.
func (w *WS) writePump() {
	ticker := time.NewTicker(w.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		w.Close()
	}()

	for {
		select {
		case <-w.done:
			w.conn.SetWriteDeadline(time.Now().Add(w.cfg.WriteTimeout))
			w.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case frame := <-w.send:
			w.conn.SetWriteDeadline(time.Now().Add(w.cfg.WriteTimeout))
			if err := w.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Error().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			w.conn.SetWriteDeadline(time.Now().Add(w.cfg.WriteTimeout))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Msg("websocket ping failed")
				return
			}
		}
	}
}
