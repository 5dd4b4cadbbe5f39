package api

import (
	"context"
	"errors"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Client", func() {
	var (
		control *cacheControlMock
		sut     *Client
		ctx     context.Context
	)

	BeforeEach(func() {
		control = &cacheControlMock{stats: CacheStats{Entries: 1, Keys: 1, LifespanSec: 60}}

		router := chi.NewRouter()
		RegisterEndpoint(router, control)

		srv := httptest.NewServer(router)
		DeferCleanup(srv.Close)

		sut = NewClient(srv.URL+"/", nil)
		ctx = context.Background()
	})

	It("should fetch the cache stats", func() {
		stats, err := sut.CacheStats(ctx)
		Expect(err).Should(Succeed())
		Expect(*stats).Should(Equal(control.stats))
	})

	It("should drain the cache", func() {
		Expect(sut.DrainCache(ctx)).Should(Succeed())
		Expect(control.drained).Should(BeTrue())
	})

	It("should return the server error message", func() {
		control.drainErr = errors.New("vendor down")

		err := sut.DrainCache(ctx)
		Expect(err).Should(MatchError(ContainSubstring("500")))
		Expect(err).Should(MatchError(ContainSubstring("vendor down")))
	})

	When("server is not reachable", func() {
		It("should fail", func() {
			sut = NewClient("http://127.0.0.1:1", nil)

			_, err := sut.CacheStats(ctx)
			Expect(err).Should(MatchError(ContainSubstring("can't execute request")))
		})
	})
})
