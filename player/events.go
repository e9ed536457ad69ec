package player

import (
	"sync"

	"github.com/sourcegraph/conc"
)

// eventQueue delivers events in push order without ever blocking the
// pusher. Events wait in memory until the reader takes them, so a slow
// reader delays events but never loses them.
type eventQueue struct {
	out  chan Event
	wake chan struct{}
	done chan struct{}
	wg   conc.WaitGroup

	mu      sync.Mutex
	pending []Event
	closed  bool
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		out:  make(chan Event),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	q.wg.Go(q.run)
	return q
}

// C is closed once the queue is closed.
func (q *eventQueue) C() <-chan Event { return q.out }

// push is safe to call while holding other locks. It is a no-op after close.
func (q *eventQueue) push(e Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, e)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *eventQueue) run() {
	defer close(q.out)
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		for _, e := range batch {
			select {
			case q.out <- e:
			case <-q.done:
				return
			}
		}
		if len(batch) > 0 {
			continue
		}
		select {
		case <-q.wake:
		case <-q.done:
			return
		}
	}
}

// close drops undelivered events and waits for C to be closed.
func (q *eventQueue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.pending = nil
	q.mu.Unlock()

	close(q.done)
	q.wg.Wait()
}
