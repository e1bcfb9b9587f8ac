package migration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJobStateTerminal(t *testing.T) {
	require.False(t, JobQueued.Terminal())
	require.False(t, JobInProgress.Terminal())
	require.True(t, JobSucceeded.Terminal())
	require.True(t, JobFailed.Terminal())
}

func TestPollUntilStopsOnTerminalState(t *testing.T) {
	probes := 0
	state, err := PollUntil(context.Background(), time.Millisecond, func(ctx context.Context) (JobState, error) {
		probes++
		if probes < 3 {
			return JobInProgress, nil
		}
		return JobSucceeded, nil
	})
	require.NoError(t, err)
	require.Equal(t, JobSucceeded, state)
	require.Equal(t, 3, probes)
}

func TestPollUntilFirstProbeRunsImmediately(t *testing.T) {
	start := time.Now()
	state, err := PollUntil(context.Background(), time.Hour, func(ctx context.Context) (JobState, error) {
		return JobFailed, nil
	})
	require.NoError(t, err)
	require.Equal(t, JobFailed, state)
	require.Less(t, time.Since(start), time.Second)
}

func TestPollUntilProbeErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	state, err := PollUntil(context.Background(), time.Millisecond, func(ctx context.Context) (JobState, error) {
		return JobInProgress, boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, JobFailed, state)
}

func TestPollUntilCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	state, err := PollUntil(ctx, time.Hour, func(ctx context.Context) (JobState, error) {
		return JobInProgress, nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, JobFailed, state)
}
