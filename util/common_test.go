package util

import (
	"net"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Common util", func() {
	Describe("NewHTTPTransport", func() {
		It("returns a new transport", func() {
			a := NewHTTPTransport()
			b := NewHTTPTransport()

			Expect(a).ShouldNot(BeIdenticalTo(b))
			Expect(a).ShouldNot(BeIdenticalTo(http.DefaultTransport))
			Expect(a.MaxIdleConns).Should(Equal(http.DefaultTransport.(*http.Transport).MaxIdleConns))
		})
	})

	Describe("HTTPClientIP", func() {
		var r *http.Request

		BeforeEach(func() {
			var err error

			r, err = http.NewRequest(http.MethodGet, "http://example.com", nil)
			Expect(err).Should(Succeed())
		})

		It("extracts the IP from RemoteAddr", func() {
			r.RemoteAddr = net.JoinHostPort("192.0.2.1", "78954")

			Expect(HTTPClientIP(r).String()).Should(Equal("192.0.2.1"))
		})

		It("extracts the IP from RemoteAddr without a port", func() {
			r.RemoteAddr = "192.0.2.1"

			Expect(HTTPClientIP(r).String()).Should(Equal("192.0.2.1"))
		})

		It("prefers the first X-Forwarded-For entry", func() {
			r.RemoteAddr = net.JoinHostPort("192.0.2.1", "1234")
			r.Header.Set("X-Forwarded-For", "198.51.100.7, 192.0.2.9")

			Expect(HTTPClientIP(r).String()).Should(Equal("198.51.100.7"))
		})

		It("falls back to RemoteAddr for an invalid X-Forwarded-For", func() {
			r.RemoteAddr = net.JoinHostPort("192.0.2.1", "1234")
			r.Header.Set("X-Forwarded-For", "garbage")

			Expect(HTTPClientIP(r).String()).Should(Equal("192.0.2.1"))
		})
	})
})
