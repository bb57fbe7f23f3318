package channel_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traduct/dashsync/internal/channel"
	"github.com/traduct/dashsync/internal/log"
)

// fakeConn is a scripted message connection. It serves the queued frames
// and then either blocks until closed or reports EOF.
type fakeConn struct {
	frames    chan []byte
	eof       bool
	closed    chan struct{}
	closeOnce sync.Once
	closes    atomic.Int32
}

func newFakeConn(eofWhenDrained bool, frames ...string) *fakeConn {
	c := &fakeConn{
		frames: make(chan []byte, len(frames)+8),
		eof:    eofWhenDrained,
		closed: make(chan struct{}),
	}
	for _, f := range frames {
		c.frames <- []byte(f)
	}

	return c
}

func (c *fakeConn) Read(ctx context.Context) ([]byte, error) {
	if c.eof {
		select {
		case f := <-c.frames:
			return f, nil
		default:
			return nil, io.EOF
		}
	}

	select {
	case f := <-c.frames:
		return f, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, errors.New("use of closed connection")
	}
}

func (c *fakeConn) Close() error {
	c.closes.Add(1)
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func staticDialer(conn channel.Conn) channel.Dialer {
	return func(context.Context, string) (channel.Conn, error) {
		return conn, nil
	}
}

func runManager(t *testing.T, m *channel.Manager) {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	t.Cleanup(func() {
		m.Disconnect()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for Run to return")
		}
	})
}

func TestNewManager(t *testing.T) {
	tests := map[string]struct {
		config channel.ManagerConfig
		expErr bool
	}{
		"valid config should create manager": {
			config: channel.ManagerConfig{
				WebsocketURL: "ws://localhost/api/ws",
				Dial:         staticDialer(newFakeConn(false)),
				Logger:       log.Noop,
			},
			expErr: false,
		},
		"missing url should fail": {
			config: channel.ManagerConfig{
				Dial: staticDialer(newFakeConn(false)),
			},
			expErr: true,
		},
		"nil callbacks and logger should default": {
			config: channel.ManagerConfig{
				WebsocketURL: "ws://localhost/api/ws",
				Dial:         staticDialer(newFakeConn(false)),
			},
			expErr: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			m, err := channel.NewManager(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(m)
			} else {
				require.NoError(err)
				require.NotNil(m)
			}
		})
	}
}

func TestManagerForwardsEvents(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	conn := newFakeConn(false,
		`{"type":"task.update","entity":{"id":"t1","progress":65}}`,
		`{"type":"access.update","entity":{"providerConfigId":"p1"}}`,
	)

	events := make(chan channel.Event, 10)
	m, err := channel.NewManager(channel.ManagerConfig{
		WebsocketURL: "ws://localhost/api/ws",
		Dial:         staticDialer(conn),
		OnEvent:      func(e channel.Event) { events <- e },
		Logger:       log.Noop,
	})
	require.NoError(err)
	runManager(t, m)

	for _, expType := range []string{"task.update", "access.update"} {
		select {
		case ev := <-events:
			assert.Equal(expType, ev.Type)
			assert.NotEmpty(ev.Entity)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for event")
		}
	}
}

func TestManagerDropsMalformedFramesWithoutClosing(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	conn := newFakeConn(false,
		`{not valid json`,
		`42`,
		`{"type":"task.update","entity":{"id":"t1"}}`,
	)

	events := make(chan channel.Event, 10)
	m, err := channel.NewManager(channel.ManagerConfig{
		WebsocketURL: "ws://localhost/api/ws",
		Dial:         staticDialer(conn),
		OnEvent:      func(e channel.Event) { events <- e },
		Logger:       log.Noop,
	})
	require.NoError(err)
	runManager(t, m)

	// The malformed frames are dropped and the valid one behind them
	// still arrives on the same connection.
	select {
	case ev := <-events:
		assert.Equal("task.update", ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	assert.Equal(int32(0), conn.closes.Load())
	assert.Equal(channel.StateConnected, m.State())
}

func TestManagerIgnoresUnknownEventTypes(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	conn := newFakeConn(false,
		`{"type":"billing.update","entity":{"id":"b1"}}`,
		`{"type":"user.update","entity":{"id":"u1"}}`,
	)

	events := make(chan channel.Event, 10)
	m, err := channel.NewManager(channel.ManagerConfig{
		WebsocketURL: "ws://localhost/api/ws",
		Dial:         staticDialer(conn),
		OnEvent:      func(e channel.Event) { events <- e },
		Logger:       log.Noop,
	})
	require.NoError(err)
	runManager(t, m)

	select {
	case ev := <-events:
		assert.Equal("user.update", ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
	assert.Empty(events)
}

func TestManagerReconnectBackoff(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var mu sync.Mutex
	var dialTimes []time.Time
	attempts := 0
	dialed := make(chan int, 10)

	dial := func(context.Context, string) (channel.Conn, error) {
		mu.Lock()
		defer mu.Unlock()

		dialTimes = append(dialTimes, time.Now())
		attempts++
		dialed <- attempts

		switch {
		case attempts <= 3:
			return nil, errors.New("connection refused")
		case attempts == 4:
			// Opens, then drops immediately.
			return newFakeConn(true), nil
		default:
			return newFakeConn(false), nil
		}
	}

	m, err := channel.NewManager(channel.ManagerConfig{
		WebsocketURL:   "ws://localhost/api/ws",
		Dial:           dial,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     100 * time.Millisecond,
		Logger:         log.Noop,
	})
	require.NoError(err)
	runManager(t, m)

	// Wait until the fifth attempt: three failures, one short-lived
	// connection and the final stable one.
	deadline := time.After(5 * time.Second)
	for got := 0; got < 5; {
		select {
		case got = <-dialed:
		case <-deadline:
			t.Fatal("timeout waiting for dial attempts")
		}
	}

	mu.Lock()
	gaps := make([]time.Duration, 0, len(dialTimes)-1)
	for i := 1; i < len(dialTimes); i++ {
		gaps = append(gaps, dialTimes[i].Sub(dialTimes[i-1]))
	}
	mu.Unlock()

	require.Len(gaps, 4)
	// Doubling from the initial backoff up to the cap.
	assert.GreaterOrEqual(gaps[0], 45*time.Millisecond)
	assert.Less(gaps[0], 100*time.Millisecond)
	assert.GreaterOrEqual(gaps[1], 95*time.Millisecond)
	assert.GreaterOrEqual(gaps[2], 95*time.Millisecond)
	// A successful open resets the backoff, so the wait after the drop is
	// the initial one again, not the capped one.
	assert.GreaterOrEqual(gaps[3], 45*time.Millisecond)
	assert.Less(gaps[3], 100*time.Millisecond)
}

func TestManagerStateTransitions(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var mu sync.Mutex
	attempts := 0
	dial := func(context.Context, string) (channel.Conn, error) {
		mu.Lock()
		defer mu.Unlock()

		attempts++
		if attempts == 1 {
			// Opens, then drops immediately.
			return newFakeConn(true), nil
		}
		return newFakeConn(false), nil
	}

	states := make(chan channel.State, 10)
	m, err := channel.NewManager(channel.ManagerConfig{
		WebsocketURL:   "ws://localhost/api/ws",
		Dial:           dial,
		OnStateChange:  func(s channel.State) { states <- s },
		InitialBackoff: 10 * time.Millisecond,
		Logger:         log.Noop,
	})
	require.NoError(err)

	assert.Equal(channel.StateReconnecting, m.State())
	runManager(t, m)

	exp := []channel.State{channel.StateConnected, channel.StateReconnecting, channel.StateConnected}
	for _, expState := range exp {
		select {
		case s := <-states:
			assert.Equal(expState, s)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for state change")
		}
	}
	assert.Equal(channel.StateConnected, m.State())
}

func TestManagerDisconnectIdempotent(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	conn := newFakeConn(false, `{"type":"task.update","entity":{"id":"t1"}}`)
	events := make(chan channel.Event, 10)
	m, err := channel.NewManager(channel.ManagerConfig{
		WebsocketURL: "ws://localhost/api/ws",
		Dial:         staticDialer(conn),
		OnEvent:      func(e channel.Event) { events <- e },
		Logger:       log.Noop,
	})
	require.NoError(err)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	m.Disconnect()
	m.Disconnect()

	select {
	case err := <-done:
		assert.NoError(err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for Run to return")
	}

	// A disconnected manager does not reconnect.
	assert.NoError(m.Run(context.Background()))
}

func TestManagerContextCancel(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m, err := channel.NewManager(channel.ManagerConfig{
		WebsocketURL: "ws://localhost/api/ws",
		Dial:         staticDialer(newFakeConn(false)),
		Logger:       log.Noop,
	})
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for Run to return")
	}
}
