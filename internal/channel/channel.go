// Package channel maintains the live push subscription against the
// dashboard API: one websocket connection per view, reconnected forever
// with capped exponential backoff, surfacing decoded events and
// connection state to its owner.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/traduct/dashsync/internal/log"
)

// Known event types pushed by the server.
const (
	EventTaskUpdate     = "task.update"
	EventAccessUpdate   = "access.update"
	EventProviderUpdate = "provider.update"
	EventUserUpdate     = "user.update"
)

// Event is one push frame: the event type plus the partial entity
// payload, left undecoded for the subscriber.
type Event struct {
	Type   string          `json:"type"`
	Entity json.RawMessage `json:"entity"`
}

// State is the connection state of the live channel.
type State string

const (
	// StateConnected means pushes are flowing.
	StateConnected State = "connected"
	// StateReconnecting means the channel is down and being retried.
	StateReconnecting State = "reconnecting"
)

// Conn is a message connection as the manager consumes it.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer opens a Conn against a websocket endpoint.
type Dialer func(ctx context.Context, url string) (Conn, error)

// DialWebsocket is the default Dialer.
func DialWebsocket(ctx context.Context, url string) (Conn, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	return wsConn{c: c}, nil
}

type wsConn struct {
	c *websocket.Conn
}

func (c wsConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.c.Read(ctx)
	return data, err
}

func (c wsConn) Close() error {
	return c.c.Close(websocket.StatusNormalClosure, "")
}

// ManagerConfig is the configuration for the live channel manager.
type ManagerConfig struct {
	// WebsocketURL is the endpoint the channel subscribes to.
	WebsocketURL string
	// Dial opens the connection. Defaults to a websocket dial.
	Dial Dialer
	// OnEvent receives every decoded push event. Optional.
	OnEvent func(e Event)
	// OnStateChange observes connected/reconnecting transitions. Optional.
	OnStateChange func(s State)
	// InitialBackoff is the wait before the first reconnection attempt.
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential backoff growth.
	MaxBackoff time.Duration
	Logger     log.Logger
}

func (c *ManagerConfig) defaults() error {
	if c.WebsocketURL == "" {
		return fmt.Errorf("websocket url is required")
	}

	if c.Dial == nil {
		c.Dial = DialWebsocket
	}

	if c.OnEvent == nil {
		c.OnEvent = func(Event) {}
	}

	if c.OnStateChange == nil {
		c.OnStateChange = func(State) {}
	}

	if c.InitialBackoff == 0 {
		c.InitialBackoff = 1 * time.Second
	}

	if c.MaxBackoff == 0 {
		c.MaxBackoff = 10 * time.Second
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "channel.Manager"})

	return nil
}

// Manager owns one live channel subscription: it dials, reads and decodes
// push frames, and reconnects forever with capped exponential backoff.
// Connection loss is an expected condition, so failures are logged but
// never returned: the UI keeps working on polled data until the channel
// comes back.
type Manager struct {
	url           string
	dial          Dialer
	onEvent       func(Event)
	onStateChange func(State)
	initial       time.Duration
	max           time.Duration
	logger        log.Logger

	mu    sync.Mutex
	conn  Conn
	state State

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewManager creates a new live channel manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Manager{
		url:           cfg.WebsocketURL,
		dial:          cfg.Dial,
		onEvent:       cfg.OnEvent,
		onStateChange: cfg.OnStateChange,
		initial:       cfg.InitialBackoff,
		max:           cfg.MaxBackoff,
		logger:        cfg.Logger,
		state:         StateReconnecting,
		stopped:       make(chan struct{}),
	}, nil
}

// Run connects and consumes push events until the context is cancelled or
// Disconnect is called. A successful open resets the backoff, so the first
// wait after a drop is always the initial backoff.
func (m *Manager) Run(ctx context.Context) error {
	failures := 0
	for {
		if m.done(ctx) {
			return nil
		}

		conn, err := m.dial(ctx, m.url)
		if err != nil {
			if m.done(ctx) {
				return nil
			}
			m.logger.Warningf("connection attempt failed: %v", err)
			if !m.wait(ctx, m.backoff(failures)) {
				return nil
			}
			failures++
			continue
		}

		if !m.adopt(conn) {
			_ = conn.Close()
			return nil
		}

		failures = 0
		m.setState(StateConnected)
		m.logger.Infof("connected to %s", m.url)

		m.consume(ctx, conn)
		m.release(conn)

		if m.done(ctx) {
			return nil
		}

		m.setState(StateReconnecting)
		if !m.wait(ctx, m.backoff(failures)) {
			return nil
		}
		failures++
	}
}

// Disconnect tears the channel down: it cancels any pending backoff wait,
// closes an open connection and makes Run return. Calling it more than
// once is a no-op.
func (m *Manager) Disconnect() {
	m.stopOnce.Do(func() {
		close(m.stopped)

		m.mu.Lock()
		conn := m.conn
		m.conn = nil
		m.mu.Unlock()

		if conn != nil {
			_ = conn.Close()
		}
	})
}

// State reports the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// consume reads and forwards events until the connection dies. Frames
// that do not decode into an envelope are dropped without closing the
// connection, a malformed push must not cost the live subscription.
func (m *Manager) consume(ctx context.Context, conn Conn) {
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if !m.done(ctx) {
				m.logger.Warningf("connection lost: %v", err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			m.logger.Warningf("dropping malformed frame: %v", err)
			continue
		}

		switch ev.Type {
		case EventTaskUpdate, EventAccessUpdate, EventProviderUpdate, EventUserUpdate:
			m.onEvent(ev)
		default:
			m.logger.Debugf("ignoring unknown event type: %q", ev.Type)
		}
	}
}

// adopt registers the connection so Disconnect can close it. It returns
// false when the manager was stopped while the dial was in flight.
func (m *Manager) adopt(conn Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.stopped:
		return false
	default:
	}

	m.conn = conn
	return true
}

func (m *Manager) release(conn Conn) {
	m.mu.Lock()
	if m.conn == conn {
		m.conn = nil
	}
	m.mu.Unlock()

	_ = conn.Close()
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	changed := m.state != s
	m.state = s
	m.mu.Unlock()

	if changed {
		m.onStateChange(s)
	}
}

// backoff returns the wait before attempt n, doubling from the initial
// backoff up to the cap.
func (m *Manager) backoff(failures int) time.Duration {
	d := m.initial
	for i := 0; i < failures && d < m.max; i++ {
		d *= 2
	}
	if d > m.max {
		d = m.max
	}

	return d
}

// wait sleeps for d, returning false when the manager is being torn down.
func (m *Manager) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	case <-m.stopped:
		return false
	}
}

func (m *Manager) done(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-m.stopped:
		return true
	default:
		return false
	}
}
