package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryRunsImmediatelyAndRepeats(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	var runs atomic.Int32
	id, err := s.Every(context.Background(), "site-build", 50*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestEverySkipsCanceledContext(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var runs atomic.Int32
	_, err = s.Every(ctx, "site-build", 20*time.Millisecond, func(context.Context) { runs.Add(1) })
	require.NoError(t, err)

	s.Start()
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Stop())
	assert.Zero(t, runs.Load())
}

func TestEveryRejectsNonPositiveInterval(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	defer func() { _ = s.Stop() }()

	_, err = s.Every(context.Background(), "x", 0, func(context.Context) {})
	require.Error(t, err)
}
