package session

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sessiongate/sessiongate/cache/timedcache"
	"github.com/sessiongate/sessiongate/config"
	"github.com/sessiongate/sessiongate/evt"
	"github.com/sessiongate/sessiongate/log"
)

const (
	poolLogPrefix         = "session_pool"
	defaultDisposeTimeout = 5 * time.Second

	eventBufferSize = 1024
)

type event struct {
	topic string
	args  []interface{}
}

// Stats is a snapshot of the pool state
type Stats struct {
	// Entries is the number of idle sessions
	Entries int
	// Keys is the number of distinct configuration tuples seen so far
	Keys int
	// Lifespan of an idle session
	Lifespan time.Duration
}

// Pool shares idle vendor sessions between requests with the same Key. Sessions which are
// idle longer than the configured lifespan are closed in background.
type Pool struct {
	cache          *timedcache.TimedCache[Key, Session]
	dialer         Dialer
	probe          bool
	disposeTimeout time.Duration
	events         chan event
}

// NewPool creates a pool on top of the dialer. Background eviction stops when ctx is done.
func NewPool(ctx context.Context, cfg config.SessionCacheConfig, dialer Dialer) *Pool {
	p := &Pool{
		dialer:         dialer,
		probe:          cfg.Probe,
		disposeTimeout: cfg.DisposeTimeout.ToDuration(),
		events:         make(chan event, eventBufferSize),
	}

	if p.disposeTimeout <= 0 {
		p.disposeTimeout = defaultDisposeTimeout
	}

	p.cache = timedcache.NewTimedCache[Key, Session](ctx, p.dispose, timedcache.Options{
		Lifespan: cfg.Lifespan.ToDuration(),
		OnAfterPushFn: func(newSize int) {
			p.publish(evt.SessionCacheChanged, newSize)
		},
		OnPopHitFn: func() {
			p.publish(evt.SessionCacheHit)
			p.publish(evt.SessionCacheChanged, p.cache.TotalCount())
		},
		OnPopMissFn: func() {
			p.publish(evt.SessionCacheMiss)
		},
		OnReapFn: func(stolen bool) {
			p.publish(evt.SessionReaped, stolen)
			p.publish(evt.SessionCacheChanged, p.cache.TotalCount())
		},
		OnDisposeErrorFn: func(err error) {
			p.publish(evt.SessionDisposeFailed, err)
		},
	})

	go p.publishEvents(ctx)

	return p
}

// publish hands the event to the publisher goroutine. The bus serializes all handlers
// with one lock, so cache callers never publish themselves. Events are dropped if the
// buffer is full.
func (p *Pool) publish(topic string, args ...interface{}) {
	select {
	case p.events <- event{topic: topic, args: args}:
	default:
	}
}

func (p *Pool) publishEvents(ctx context.Context) {
	for {
		select {
		case e := <-p.events:
			evt.Bus().Publish(e.topic, e.args...)
		case <-ctx.Done():
			return
		}
	}
}

func logger(ctx context.Context) *logrus.Entry {
	return log.FromCtx(ctx).WithField("prefix", poolLogPrefix)
}

// Acquire returns an idle session for the key or creates a new one. Idle sessions which
// fail the liveness probe are closed and the next one is tried.
func (p *Pool) Acquire(ctx context.Context, key Key, password string) (Session, error) {
	for {
		s, found := p.cache.TryPop(key)
		if !found {
			break
		}

		if !p.probe {
			return s, nil
		}

		err := s.Ping(ctx)
		if err == nil {
			logger(ctx).WithField("session", s.ID()).Debug("reusing pooled session")

			return s, nil
		}

		logger(ctx).WithField("session", s.ID()).Debugf("pooled session is dead: %s", err)
		p.publish(evt.SessionProbeFailed)

		p.Discard(ctx, s)
	}

	s, err := p.dialer.Dial(ctx, key, password)
	if err != nil {
		return nil, fmt.Errorf("can't create session for %s: %w", key, err)
	}

	logger(ctx).WithFields(logrus.Fields{
		"key":     key.String(),
		"session": s.ID(),
	}).Info("created vendor session")

	p.publish(evt.SessionDialed, key.Tenant)

	return s, nil
}

// Release returns the session to the pool, the caller must not use it afterwards
func (p *Pool) Release(key Key, s Session) {
	p.cache.Push(key, s)
}

// Discard closes a session which shouldn't be reused
func (p *Pool) Discard(ctx context.Context, s Session) {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.disposeTimeout)
	defer cancel()

	if err := s.Close(closeCtx); err != nil {
		logger(ctx).WithField("session", s.ID()).Warnf("can't close session: %s", err)
	}
}

// Stats returns the current pool state
func (p *Pool) Stats() Stats {
	return Stats{
		Entries:  p.cache.TotalCount(),
		Keys:     p.cache.KeyCount(),
		Lifespan: p.cache.Lifespan(),
	}
}

// Drain closes all idle sessions
func (p *Pool) Drain() error {
	return p.cache.Drain()
}

// Done returns a channel which is closed after background eviction stopped
func (p *Pool) Done() <-chan struct{} {
	return p.cache.Done()
}

func (p *Pool) dispose(s Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.disposeTimeout)
	defer cancel()

	if err := s.Close(ctx); err != nil {
		return fmt.Errorf("can't close session %s: %w", s.ID(), err)
	}

	log.PrefixedLog(poolLogPrefix).WithField("session", s.ID()).Debug("closed idle session")

	return nil
}
