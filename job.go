package watermark

import "context"

// Job is a batch running on its own goroutine.
type Job[T any] struct {
	done   chan struct{}
	result T
}

func newJob[T any]() *Job[T] {
	return &Job[T]{done: make(chan struct{})}
}

func (j *Job[T]) finish(v T) {
	j.result = v
	close(j.done)
}

// Done is closed once the result is available.
func (j *Job[T]) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finishes or ctx is done. Giving up on the wait
// does not stop the job.
func (j *Job[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-j.done:
		return j.result, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
