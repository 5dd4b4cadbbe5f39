package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/sessiongate/sessiongate/api"
	"github.com/sessiongate/sessiongate/config"
	"github.com/sessiongate/sessiongate/log"
	"github.com/sessiongate/sessiongate/metrics"
	"github.com/sessiongate/sessiongate/redis"
	"github.com/sessiongate/sessiongate/session"
	"github.com/sessiongate/sessiongate/stats"
)

// Server exposes the REST API in front of the pooled vendor sessions
type Server struct {
	cfg        *config.Config
	pool       *session.Pool
	cancelPool context.CancelFunc
	listener   net.Listener
	httpMux    *chi.Mux
	httpServer *httpServer
	redis      *redis.Client
	tenants    *stats.Aggregator

	stopOnce sync.Once
	stopped  chan struct{}
}

func logger() *logrus.Entry {
	return log.PrefixedLog("server")
}

func getServerAddress(addr string) string {
	if !strings.Contains(addr, ":") {
		addr = fmt.Sprintf(":%s", addr)
	}

	return addr
}

// NewServer creates new server instance with passed config
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	poolCtx, cancelPool := context.WithCancel(ctx)

	redisClient, err := redis.New(poolCtx, &cfg.Redis)
	if err != nil {
		if cfg.Redis.Required {
			cancelPool()

			return nil, fmt.Errorf("can't connect to redis: %w", err)
		}

		logger().Warn("can't connect to redis, drain requests are not shared between instances: ", err)
	}

	listener, err := net.Listen("tcp", getServerAddress(cfg.Ports.HTTP))
	if err != nil {
		cancelPool()

		return nil, fmt.Errorf("start http listener on %s failed: %w", cfg.Ports.HTTP, err)
	}

	s := &Server{
		cfg:        cfg,
		pool:       session.NewPool(poolCtx, cfg.SessionCache, session.NewHTTPDialer(cfg.Vendor)),
		cancelPool: cancelPool,
		listener:   listener,
		redis:      redisClient,
		tenants:    stats.NewAggregator("tenants"),
		stopped:    make(chan struct{}),
	}

	if s.redis != nil {
		go s.consumeDrainRequests(poolCtx)
	}

	s.httpMux = createRouter(cfg)

	metrics.Start(s.httpMux, cfg.Metrics)
	api.RegisterEndpoint(s.httpMux, s)

	s.httpServer = newHTTPServer("http", s.httpMux)

	s.printConfiguration()

	return s, nil
}

// Addr returns the address of the http listener
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) printConfiguration() {
	logger().Info("current configuration:")

	s.cfg.LogConfig(logger())

	logger().Info("runtime information:")

	// force garbage collector
	runtime.GC()
	debug.FreeOSMemory()

	// gather memory stats
	var m runtime.MemStats

	runtime.ReadMemStats(&m)

	logger().Infof("MEM Alloc =        %10v MB", toMB(m.Alloc))
	logger().Infof("MEM HeapAlloc =    %10v MB", toMB(m.HeapAlloc))
	logger().Infof("MEM Sys =          %10v MB", toMB(m.Sys))
	logger().Infof("MEM NumGC =        %10v", m.NumGC)
	logger().Infof("RUN NumCPU =       %10d", runtime.NumCPU())
	logger().Infof("RUN NumGoroutine = %10d", runtime.NumGoroutine())
}

func (s *Server) printCacheStats() {
	cs := s.pool.Stats()

	logger().Infof("session cache: %d idle sessions, %d keys, lifespan %s", cs.Entries, cs.Keys, cs.Lifespan)

	logger().Info("top tenants (last 24h):")

	for _, e := range s.tenants.Top() {
		logger().Infof("%7d %s", e.Count, e.Key)
	}
}

func toMB(b uint64) uint64 {
	const bytesInKB = 1024

	return b / bytesInKB / bytesInKB
}

// Start starts the server, listener errors are sent to errCh
func (s *Server) Start(errCh chan<- error) {
	logger().Info("Starting server")

	go func() {
		logger().Infof("http server is up and running on addr/port %s", s.listener.Addr())

		if err := s.httpServer.Serve(s.listener); err != nil {
			errCh <- fmt.Errorf("start %s listener failed: %w", s.httpServer, err)
		}
	}()

	registerPrintConfigurationTrigger(s)
}

// Stop stops the http listener and closes all idle vendor sessions
func (s *Server) Stop(ctx context.Context) error {
	var err *multierror.Error

	s.stopOnce.Do(func() {
		logger().Info("Stopping server")

		close(s.stopped)

		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierror.Append(err, fmt.Errorf("stop http listener failed: %w", shutdownErr))
		}

		s.cancelPool()
		<-s.pool.Done()

		if drainErr := s.pool.Drain(); drainErr != nil {
			err = multierror.Append(err, fmt.Errorf("can't close idle sessions: %w", drainErr))
		}
	})

	return err.ErrorOrNil()
}

// CacheStats implements `api.CacheControl`
func (s *Server) CacheStats() api.CacheStats {
	cs := s.pool.Stats()

	return api.CacheStats{
		Entries:     cs.Entries,
		Keys:        cs.Keys,
		LifespanSec: cs.Lifespan.Seconds(),
	}
}

// DrainCache implements `api.CacheControl`. Other instances sharing the redis
// channel drain their sessions too.
func (s *Server) DrainCache() error {
	err := s.pool.Drain()

	if s.redis != nil {
		s.redis.PublishDrain()
	}

	return err
}

func (s *Server) consumeDrainRequests(ctx context.Context) {
	for {
		select {
		case <-s.redis.DrainChannel:
			logger().Info("draining session cache on request of other instance")

			if err := s.pool.Drain(); err != nil {
				logger().Warn("can't close idle sessions: ", err)
			}

		case <-ctx.Done():
			return
		}
	}
}

// ExecuteQuery implements `api.QueryExecutor`. The session goes back to the pool
// only if the query succeeded.
func (s *Server) ExecuteQuery(ctx context.Context, tenant, user, password string, payload []byte) ([]byte, error) {
	if !s.cfg.Vendor.IsEnabled() {
		return nil, errors.New("vendor url is not configured")
	}

	key := session.NewKey(s.cfg.Vendor.URL, tenant, user, password)

	sess, err := s.pool.Acquire(ctx, key, password)
	if err != nil {
		return nil, err
	}

	resp, err := sess.Query(ctx, payload)
	if err != nil {
		s.pool.Discard(ctx, sess)

		return nil, fmt.Errorf("query in session %s failed: %w", sess.ID(), err)
	}

	s.pool.Release(key, sess)
	s.tenants.Put(tenant)

	return resp, nil
}
