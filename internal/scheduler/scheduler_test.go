package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRunner_RunsJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(zaptest.NewLogger(t), ctx)

	var calls atomic.Int32
	_, err := r.Add("tick", "@every 1s", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)

	r.Start()
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	r.Stop()
}

func TestRunner_InvalidSpec(t *testing.T) {
	r := New(nil, nil)

	_, err := r.Add("bad", "not a spec", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestRunner_FailingJobDoesNotStopSchedule(t *testing.T) {
	r := New(zaptest.NewLogger(t), context.Background())

	var calls atomic.Int32
	_, err := r.Add("flaky", "@every 1s", func(context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	})
	require.NoError(t, err)

	r.Start()
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 4*time.Second, 50*time.Millisecond)
	r.Stop()
}

func TestRunner_CanceledContextSkipsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(nil, ctx)

	var calls atomic.Int32
	r.run("noop", func(context.Context) error {
		calls.Add(1)
		return nil
	})
	assert.Equal(t, int32(0), calls.Load())
}
