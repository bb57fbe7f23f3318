package poll_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traduct/dashsync/internal/log"
	"github.com/traduct/dashsync/internal/poll"
)

func TestNewScheduler(t *testing.T) {
	tests := map[string]struct {
		config poll.SchedulerConfig
		expErr bool
	}{
		"valid config should create scheduler": {
			config: poll.SchedulerConfig{
				Refresh: func(context.Context) {},
				Logger:  log.Noop,
			},
			expErr: false,
		},
		"missing refresh func should fail": {
			config: poll.SchedulerConfig{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			s, err := poll.NewScheduler(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(s)
			} else {
				require.NoError(err)
				require.NotNil(s)
			}
		})
	}
}

func TestSchedulerPollsWhileNotLive(t *testing.T) {
	require := require.New(t)

	refreshed := make(chan struct{}, 10)
	s, err := poll.NewScheduler(poll.SchedulerConfig{
		Interval: 20 * time.Millisecond,
		Refresh:  func(context.Context) { refreshed <- struct{}{} },
		Logger:   log.Noop,
	})
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-refreshed:
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for polled refresh")
		}
	}

	cancel()
	require.NoError(<-done)
}

func TestSchedulerIdleWhileLive(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var refreshes atomic.Int32
	s, err := poll.NewScheduler(poll.SchedulerConfig{
		Interval: 10 * time.Millisecond,
		Refresh:  func(context.Context) { refreshes.Add(1) },
		Logger:   log.Noop,
	})
	require.NoError(err)
	s.SetLive(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	require.NoError(<-done)

	assert.Equal(int32(0), refreshes.Load())
}

func TestSchedulerResumesOnChannelDrop(t *testing.T) {
	require := require.New(t)

	refreshed := make(chan struct{}, 10)
	s, err := poll.NewScheduler(poll.SchedulerConfig{
		Interval: 15 * time.Millisecond,
		Refresh:  func(context.Context) { refreshed <- struct{}{} },
		Logger:   log.Noop,
	})
	require.NoError(err)
	s.SetLive(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Going live to down resumes the interval refreshes.
	s.SetLive(false)

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for polled refresh after channel drop")
	}

	cancel()
	require.NoError(<-done)
}

func TestSchedulerFocus(t *testing.T) {
	tests := map[string]struct {
		live         bool
		expRefreshes int32
	}{
		"focus while the channel is down should refetch": {
			live:         false,
			expRefreshes: 1,
		},
		"focus while live should be suppressed": {
			live:         true,
			expRefreshes: 0,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			var refreshes atomic.Int32
			s, err := poll.NewScheduler(poll.SchedulerConfig{
				Refresh: func(context.Context) { refreshes.Add(1) },
				Logger:  log.Noop,
			})
			require.NoError(err)
			s.SetLive(test.live)

			s.Focus(context.Background())

			assert.Equal(test.expRefreshes, refreshes.Load())
		})
	}
}
