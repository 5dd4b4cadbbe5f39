package cmd

import (
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sessiongate/sessiongate/api"
	"github.com/sessiongate/sessiongate/log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type cacheControlMock struct {
	drainErr error
	drained  bool
}

func (m *cacheControlMock) CacheStats() api.CacheStats {
	return api.CacheStats{Entries: 2, Keys: 1, LifespanSec: 300}
}

func (m *cacheControlMock) DrainCache() error {
	m.drained = true

	return m.drainErr
}

var _ = Describe("Cache command", func() {
	var (
		ts         *httptest.Server
		control    *cacheControlMock
		loggerHook *test.Hook
	)

	BeforeEach(func() {
		control = &cacheControlMock{}

		router := chi.NewRouter()
		api.RegisterEndpoint(router, control)

		ts = testHTTPAPIServer(router.ServeHTTP)
		DeferCleanup(ts.Close)

		loggerHook = test.NewGlobal()
		log.Log().AddHook(loggerHook)
		DeferCleanup(loggerHook.Reset)
	})

	It("should have stats and drain sub commands", func() {
		c := newCacheCommand()

		names := []string{}
		for _, sub := range c.Commands() {
			names = append(names, sub.Name())
		}

		Expect(names).Should(ConsistOf("stats", "drain"))
	})

	Describe("stats", func() {
		It("should print the cache state", func() {
			Expect(cacheStats(newCacheCommand(), []string{})).Should(Succeed())

			var messages []string
			for _, e := range loggerHook.AllEntries() {
				messages = append(messages, e.Message)
			}

			Expect(messages).Should(ContainElements("idle sessions: 2", "keys: 1", "lifespan: 5m0s"))
		})
	})

	Describe("drain", func() {
		When("drain is called via REST", func() {
			It("should drain the cache", func() {
				Expect(drainCache(newCacheCommand(), []string{})).Should(Succeed())
				Expect(loggerHook.LastEntry().Message).Should(Equal("OK"))
				Expect(control.drained).Should(BeTrue())
			})
		})

		When("server reports an error", func() {
			It("should end with error", func() {
				control.drainErr = errors.New("vendor down")

				err := drainCache(newCacheCommand(), []string{})
				Expect(err).Should(MatchError(ContainSubstring("vendor down")))
			})
		})

		When("wrong url is used", func() {
			It("should end with error", func() {
				apiPort = 0

				err := drainCache(newCacheCommand(), []string{})
				Expect(err).Should(MatchError(ContainSubstring("connection refused")))
			})
		})
	})

	It("should return 405 for unknown methods", func() {
		resp, err := http.Get(ts.URL + api.PathCacheDrainPath)
		Expect(err).Should(Succeed())
		resp.Body.Close()

		Expect(resp.StatusCode).Should(Equal(http.StatusMethodNotAllowed))
	})
})
