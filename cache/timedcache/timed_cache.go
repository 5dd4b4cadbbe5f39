package timedcache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/sessiongate/sessiongate/log"
)

const (
	// DefaultLifespan is used if Options.Lifespan is not set
	DefaultLifespan = 5 * time.Minute

	// sweepsPerLifespan is the reaper resolution: it wakes up this many times per lifespan.
	// It is also the lower bound for the lifespan in milliseconds.
	sweepsPerLifespan = 100

	minLifespan = sweepsPerLifespan * time.Millisecond
)

// DisposeFn releases the resources held by an evicted value. It takes ownership of val.
type DisposeFn[V any] func(val V) error

// Options configures a TimedCache. All hook functions are optional.
type Options struct {
	// Lifespan after which an unused entry becomes eligible for eviction
	Lifespan time.Duration

	// OnAfterPushFn is called after a value was pushed, with the new total entry count
	OnAfterPushFn func(newSize int)

	// OnPopHitFn is called if TryPop returned a value
	OnPopHitFn func()

	// OnPopMissFn is called if TryPop didn't find a value
	OnPopMissFn func()

	// OnReapFn is called for each entry removed by the reaper. stolen is true if the
	// entry was not stale anymore at the time it was dequeued.
	OnReapFn func(stolen bool)

	// OnDisposeErrorFn is called if the dispose function failed or panicked
	OnDisposeErrorFn func(err error)
}

// TimedCache is a keyed multi value cache. Values for one key are returned in FIFO order,
// values which were not popped within the lifespan are passed to the dispose function by a
// background reaper.
type TimedCache[K comparable, V any] struct {
	queues    sync.Map // K -> *queue[V]
	size      atomic.Int64
	keyCount  atomic.Int64
	lifespan  time.Duration
	disposeFn DisposeFn[V]
	options   Options
	now       func() int64
	done      chan struct{}

	// afterPeekFn runs between peek and dequeue of the reaper, tests use it to race a TryPop
	afterPeekFn func()
}

// NewTimedCache creates a new cache and starts the reaper. The reaper stops when ctx is done.
func NewTimedCache[K comparable, V any](ctx context.Context, disposeFn DisposeFn[V], options Options) *TimedCache[K, V] {
	c := newTimedCache[K, V](disposeFn, options)

	go c.periodicReap(ctx)

	return c
}

func newTimedCache[K comparable, V any](disposeFn DisposeFn[V], options Options) *TimedCache[K, V] {
	lifespan := options.Lifespan

	switch {
	case lifespan == 0:
		lifespan = DefaultLifespan
	case lifespan < minLifespan:
		logger().Debugf("lifespan %s is below the minimum, using %s", lifespan, minLifespan)

		lifespan = minLifespan
	}

	if disposeFn == nil {
		disposeFn = func(V) error { return nil }
	}

	return &TimedCache[K, V]{
		lifespan:  lifespan,
		disposeFn: disposeFn,
		options:   options,
		now:       monotonicTicks,
		done:      make(chan struct{}),
	}
}

func logger() *logrus.Entry {
	return log.PrefixedLog("timed_cache")
}

// Push appends the value to the queue of the key. It never blocks on other keys and never
// calls the dispose function.
func (c *TimedCache[K, V]) Push(key K, val V) {
	// count first, a concurrent TryPop may dequeue before enqueue returns
	newSize := c.size.Add(1)

	c.queueFor(key).enqueue(&entry[V]{val: val, tick: c.now()})

	if c.options.OnAfterPushFn != nil {
		c.options.OnAfterPushFn(int(newSize))
	}
}

// TryPop removes and returns the oldest value of the key. The value can already be older
// than the lifespan if the reaper didn't sweep it yet, the caller must check its
// validity before reuse.
func (c *TimedCache[K, V]) TryPop(key K) (val V, found bool) {
	if q, ok := c.loadQueue(key); ok {
		if e, ok := q.dequeue(); ok {
			c.size.Add(-1)

			if c.options.OnPopHitFn != nil {
				c.options.OnPopHitFn()
			}

			return e.val, true
		}
	}

	if c.options.OnPopMissFn != nil {
		c.options.OnPopMissFn()
	}

	return val, false
}

// TotalCount returns the number of queued values over all keys
func (c *TimedCache[K, V]) TotalCount() int {
	return int(c.size.Load())
}

// KeyCount returns the number of distinct keys which were pushed at least once
func (c *TimedCache[K, V]) KeyCount() int {
	return int(c.keyCount.Load())
}

// Lifespan returns the effective lifespan
func (c *TimedCache[K, V]) Lifespan() time.Duration {
	return c.lifespan
}

// Done returns a channel which is closed after the reaper stopped
func (c *TimedCache[K, V]) Done() <-chan struct{} {
	return c.done
}

// Drain removes every queued value regardless of its age and passes it to the dispose function.
func (c *TimedCache[K, V]) Drain() error {
	var err *multierror.Error

	c.queues.Range(func(_, v any) bool {
		q := v.(*queue[V])

		for {
			e, ok := q.dequeue()
			if !ok {
				break
			}

			c.size.Add(-1)

			err = multierror.Append(err, c.dispose(e.val))
		}

		return true
	})

	return err.ErrorOrNil()
}

func (c *TimedCache[K, V]) loadQueue(key K) (*queue[V], bool) {
	if v, ok := c.queues.Load(key); ok {
		return v.(*queue[V]), true
	}

	return nil, false
}

// queueFor returns the queue of the key and creates it if absent. Queues are never removed,
// otherwise a concurrent Push could create a second queue for the same key.
func (c *TimedCache[K, V]) queueFor(key K) *queue[V] {
	if q, ok := c.loadQueue(key); ok {
		return q
	}

	v, loaded := c.queues.LoadOrStore(key, newQueue[V]())
	if !loaded {
		c.keyCount.Add(1)
	}

	return v.(*queue[V])
}

func (c *TimedCache[K, V]) periodicReap(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.lifespan / sweepsPerLifespan)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.reap()
		case <-ctx.Done():
			logger().Debug("stopping reaper")

			return
		}
	}
}

// reap disposes all entries which are older than the lifespan.
func (c *TimedCache[K, V]) reap() {
	now := c.now()
	lifespanMs := c.lifespan.Milliseconds()

	if now < lifespanMs {
		// nothing can be stale yet
		return
	}

	cutoff := now - lifespanMs

	c.queues.Range(func(k, v any) bool {
		q := v.(*queue[V])

		for {
			head, ok := q.peek()

			// ticks are non-decreasing within a queue: all following entries are fresh too
			if !ok || head.tick >= cutoff {
				break
			}

			if c.afterPeekFn != nil {
				c.afterPeekFn()
			}

			e, ok := q.dequeue()
			if !ok {
				break
			}

			c.size.Add(-1)

			stolen := e.tick >= cutoff
			if stolen {
				// a concurrent TryPop took the stale head, e is fresh but gets disposed anyway
				logger().WithField("key", k).Debug("disposing entry which is not stale anymore")
			}

			if c.options.OnReapFn != nil {
				c.options.OnReapFn(stolen)
			}

			if err := c.dispose(e.val); err != nil {
				logger().WithField("key", k).Error(err)
			}
		}

		return true
	})
}

// dispose calls the dispose function and converts a panic into an error,
// a failing callback must not stop the reaper.
func (c *TimedCache[K, V]) dispose(val V) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispose function panicked: %v", r)
		}

		if err != nil && c.options.OnDisposeErrorFn != nil {
			c.options.OnDisposeErrorFn(err)
		}
	}()

	if err = c.disposeFn(val); err != nil {
		return fmt.Errorf("can't dispose value: %w", err)
	}

	return nil
}
