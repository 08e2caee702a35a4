package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/marketdev/internal/metrics"
)

// SaveFunc performs one persistence call.
type SaveFunc func(ctx context.Context) error

// SaveResult is delivered for the latest save only.
type SaveResult struct {
	Seq uint64
	Err error
}

// RejectedError marks a save the server refused on purpose (validation,
// conflicts), as opposed to an unexpected failure.
type RejectedError struct {
	Err error
}

func (e *RejectedError) Error() string { return e.Err.Error() }

func (e *RejectedError) Unwrap() error { return e.Err }

// IsRejected reports whether err is an explicit rejection.
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}

// SaveQueue runs saves one at a time in submission order. Submitting a save
// cancels every earlier one still running or waiting, and results of those
// superseded saves are discarded, so the last edit wins.
type SaveQueue struct {
	mu       sync.Mutex
	base     context.Context
	stop     context.CancelFunc
	seq      uint64
	cancel   context.CancelFunc
	tail     chan struct{}
	closed   bool
	wg       sync.WaitGroup
	onResult func(SaveResult)
}

// NewSaveQueue returns a queue whose saves derive from ctx. onResult is called
// from the save goroutine.
func NewSaveQueue(ctx context.Context, onResult func(SaveResult)) *SaveQueue {
	base, stop := context.WithCancel(ctx)
	return &SaveQueue{base: base, stop: stop, onResult: onResult}
}

// Submit schedules fn behind the current save and returns its sequence number.
// After Close it returns 0 and fn never runs.
func (q *SaveQueue) Submit(fn SaveFunc) uint64 {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0
	}
	if q.cancel != nil {
		q.cancel()
	}
	q.seq++
	seq := q.seq
	ctx, cancel := context.WithCancel(q.base)
	q.cancel = cancel
	prev := q.tail
	done := make(chan struct{})
	q.tail = done
	q.wg.Add(1)
	q.mu.Unlock()

	go func() {
		defer q.wg.Done()
		defer close(done)
		defer cancel()

		if prev != nil {
			<-prev
		}

		var err error
		if ctx.Err() != nil {
			err = ctx.Err()
		} else {
			err = fn(ctx)
		}

		if !q.isLatest(seq) {
			metrics.RecordSave("superseded")
			return
		}
		recordOutcome(err)
		if q.onResult != nil {
			q.onResult(SaveResult{Seq: seq, Err: err})
		}
	}()
	return seq
}

// Latest returns the sequence number of the newest submitted save.
func (q *SaveQueue) Latest() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.seq
}

func (q *SaveQueue) isLatest(seq uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return seq == q.seq && q.base.Err() == nil
}

// Close cancels outstanding saves and waits for their goroutines.
func (q *SaveQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.stop()
	q.wg.Wait()
}

func recordOutcome(err error) {
	switch {
	case err == nil:
		metrics.RecordSave("saved")
	case IsRejected(err):
		metrics.RecordSave("rejected")
	default:
		metrics.RecordSave("failed")
	}
}
