package session

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Key", func() {
	It("should be equal for the same configuration tuple", func() {
		Expect(NewKey("http://v", "t", "u", "p")).Should(Equal(NewKey("http://v", "t", "u", "p")))
	})

	It("should differ for other credentials", func() {
		Expect(NewKey("http://v", "t", "u", "p1")).ShouldNot(Equal(NewKey("http://v", "t", "u", "p2")))
	})

	It("should not contain the password in its string representation", func() {
		k := NewKey("http://v", "tenant", "user", "topsecret")

		Expect(k.String()).Should(Equal("tenant/user@http://v"))
	})
})
