// Package executor provides the execution contexts that completion callbacks
// are delivered on.
package executor

import (
	"context"
	"sync"
)

// Executor runs submitted functions on an execution context it owns.
type Executor interface {
	Post(fn func())
}

// Inline runs each function immediately on the posting goroutine.
type Inline struct{}

func (Inline) Post(fn func()) { fn() }

// MainQueue is a single-threaded FIFO executor, the stand-in for a UI thread.
// Functions run one at a time, in submission order, on the goroutine that
// called Run. Post never blocks.
type MainQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	stopped bool
}

func NewMainQueue() *MainQueue {
	q := &MainQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Post enqueues fn. Functions posted after Stop are dropped.
func (q *MainQueue) Post(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}
	q.queue = append(q.queue, fn)
	q.cond.Signal()
}

// Run drains the queue on the calling goroutine until ctx is done or Stop is
// called. Work already queued when Stop is called still runs.
func (q *MainQueue) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, q.Stop)
	defer stop()

	for {
		q.mu.Lock()
		for len(q.queue) == 0 && !q.stopped {
			q.cond.Wait()
		}
		if len(q.queue) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.queue[0]
		q.queue[0] = nil
		q.queue = q.queue[1:]
		q.mu.Unlock()

		fn()
	}
}

// Stop makes Run return once the queue is empty.
func (q *MainQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	q.cond.Broadcast()
}
