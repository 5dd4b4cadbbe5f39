package timedcache

import "sync/atomic"

type entry[V any] struct {
	val  V
	tick int64
}

type node[V any] struct {
	entry atomic.Pointer[entry[V]]
	next  atomic.Pointer[node[V]]
}

// queue is an unbounded lock-free FIFO (Michael-Scott). head always points to a
// sentinel node, the first queued entry lives in head.next.
type queue[V any] struct {
	head atomic.Pointer[node[V]]
	tail atomic.Pointer[node[V]]
}

func newQueue[V any]() *queue[V] {
	q := &queue[V]{}
	sentinel := &node[V]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	return q
}

func (q *queue[V]) enqueue(e *entry[V]) {
	n := &node[V]{}
	n.entry.Store(e)

	for {
		tail := q.tail.Load()
		next := tail.next.Load()

		if tail != q.tail.Load() {
			continue
		}

		if next != nil {
			// tail is lagging behind, help the other writer
			q.tail.CompareAndSwap(tail, next)

			continue
		}

		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)

			return
		}
	}
}

// peek returns the oldest entry without removing it.
func (q *queue[V]) peek() (*entry[V], bool) {
	for {
		head := q.head.Load()
		next := head.next.Load()

		if next == nil {
			return nil, false
		}

		e := next.entry.Load()
		if e != nil && head == q.head.Load() {
			return e, true
		}
	}
}

// dequeue removes and returns the oldest entry.
func (q *queue[V]) dequeue() (*entry[V], bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()

		if head != q.head.Load() {
			continue
		}

		if next == nil {
			return nil, false
		}

		if head == tail {
			q.tail.CompareAndSwap(tail, next)

			continue
		}

		e := next.entry.Load()
		if e == nil {
			// next already became the sentinel of a concurrent dequeue
			continue
		}

		if q.head.CompareAndSwap(head, next) {
			// next is the new sentinel, don't keep the value reachable from it
			next.entry.Store(nil)

			return e, true
		}
	}
}
