package taskrunner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitDeliversResult(t *testing.T) {
	r := New(context.Background())
	defer r.Stop()

	require.NoError(t, r.Submit(Task{
		ID:   "scan-1",
		Kind: KindAnalysisPipeline,
		Run:  func(ctx context.Context) (any, error) { return 42, nil },
	}))

	select {
	case res := <-r.Results():
		assert.Equal(t, "scan-1", res.Task.ID)
		assert.Equal(t, 42, res.Value)
		assert.NoError(t, res.Err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}
}

func TestSubmitPropagatesError(t *testing.T) {
	r := New(context.Background())
	defer r.Stop()

	boom := errors.New("boom")
	require.NoError(t, r.Submit(Task{
		ID:   "status-1",
		Kind: KindStatusStream,
		Run:  func(ctx context.Context) (any, error) { return nil, boom },
	}))

	res := <-r.Results()
	assert.ErrorIs(t, res.Err, boom)
}

func TestStopCancelsInFlightTasks(t *testing.T) {
	r := New(context.Background())
	started := make(chan struct{})

	require.NoError(t, r.Submit(Task{
		ID:   "filesync-1",
		Kind: KindFileSyncSession,
		Run: func(ctx context.Context) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}))

	<-started
	r.Stop()

	res, ok := <-r.Results()
	require.True(t, ok)
	assert.ErrorIs(t, res.Err, context.Canceled)

	_, ok = <-r.Results()
	assert.False(t, ok)
}

func TestSubmitAfterStopFails(t *testing.T) {
	r := New(context.Background())
	r.Stop()
	err := r.Submit(Task{ID: "late", Kind: KindAnalysisPipeline, Run: func(ctx context.Context) (any, error) { return nil, nil }})
	assert.ErrorIs(t, err, ErrRunnerStopped)
}
