package migration

import (
	"context"
	"time"
)

// JobState tracks one migration job. Jobs move queued → in-progress and end
// in exactly one terminal state; a job is never mutated after that.
type JobState string

const (
	JobQueued     JobState = "queued"
	JobInProgress JobState = "in-progress"
	JobSucceeded  JobState = "succeeded"
	JobFailed     JobState = "failed"
)

// Terminal reports whether the state ends the job.
func (s JobState) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// Job is one repository migration from a GitLab project to a GitHub
// repository.
type Job struct {
	SourceProject string
	TargetRepo    string
	State         JobState
	Err           error
}

// PollUntil probes at a fixed interval until probe reports a terminal state,
// and returns that state. The first probe runs immediately. A probe error or
// context cancellation aborts the loop.
func PollUntil(ctx context.Context, interval time.Duration, probe func(ctx context.Context) (JobState, error)) (JobState, error) {
	for {
		state, err := probe(ctx)
		if err != nil {
			return JobFailed, err
		}
		if state.Terminal() {
			return state, nil
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return JobFailed, ctx.Err()
		}
	}
}
