// Package event provides the single-threaded dispatch queue the state
// manager runs on, plus process shutdown plumbing.
package event

import (
	"context"
	"sync"
)

// Looper is a FIFO queue of handlers with a single consumer. Producers call
// Post from any goroutine; handlers run one at a time, to completion, in
// posting order. All state owned by the manager is touched only from inside
// handlers, which is the only concurrency control in the service.
type Looper struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

func NewLooper(queueSizeHint int) *Looper {
	if queueSizeHint < 0 {
		queueSizeHint = 0
	}
	return &Looper{
		queue: make([]func(), 0, queueSizeHint),
		wake:  make(chan struct{}, 1),
	}
}

// Post enqueues a handler and returns immediately.
func (l *Looper) Post(handler func()) {
	if handler == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, handler)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Looper) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	handler := l.queue[0]
	l.queue = l.queue[1:]
	return handler
}

// DispatchAll runs queued handlers until the queue is empty, including any
// posted by the handlers themselves, and returns the number dispatched.
// Tests drive the looper exclusively through this.
func (l *Looper) DispatchAll() int {
	count := 0
	for handler := l.next(); handler != nil; handler = l.next() {
		handler()
		count++
	}
	return count
}

// Run dispatches batches as they arrive until ctx is done. It must only be
// called from one goroutine.
func (l *Looper) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
			l.DispatchAll()
		}
	}
}
