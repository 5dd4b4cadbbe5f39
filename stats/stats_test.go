package stats

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Aggregator", func() {
	var mockTime string

	BeforeEach(func() {
		now = func() time.Time {
			t, _ := time.Parse("20060102_1504", mockTime)

			return t
		}

		DeferCleanup(func() { now = time.Now })
	})

	putAll := func(a *Aggregator, keys ...string) {
		for _, k := range keys {
			a.Put(k)
		}
	}

	When("more keys than max are put", func() {
		It("should return only the top entries", func() {
			mockTime = "20200101_0101"
			a := NewAggregatorWithMax("tenants", 3)

			putAll(a, "a2", "a1", "a2", "a3", "a1", "a1", "a4", "a5", "a2", "a6", "a1", "a6", "a1")

			mockTime = "20200101_0201"

			a.Put("a1")

			Expect(a.Top()).Should(Equal([]Item{
				{Key: "a1", Count: 5},
				{Key: "a2", Count: 3},
				{Key: "a6", Count: 2},
			}))
		})
	})

	When("the running hour has not finished", func() {
		It("should not be part of the result", func() {
			mockTime = "20200105_0101"
			a := NewAggregator("tenants")

			putAll(a, "a1", "a1")

			Expect(a.Top()).Should(BeEmpty())

			mockTime = "20200105_0201"

			Expect(a.Top()).Should(Equal([]Item{{Key: "a1", Count: 2}}))
		})
	})

	It("should sum up several hours", func() {
		mockTime = "20200102_0101"
		a := NewAggregatorWithMax("tenants", 3)

		putAll(a, "a1", "a2", "a1")

		mockTime = "20200102_0201"

		putAll(a, "a2", "a2", "a3")

		mockTime = "20200102_0301"

		Expect(a.Top()).Should(Equal([]Item{
			{Key: "a2", Count: 3},
			{Key: "a1", Count: 2},
			{Key: "a3", Count: 1},
		}))
	})

	It("should only aggregate the last 24h", func() {
		mockTime = "20200103_0101"
		a := NewAggregatorWithMax("tenants", 3)

		putAll(a, "a1", "a2")

		mockTime = "20200103_0201"

		putAll(a, "a3", "a4")

		mockTime = "20200104_0130"

		Expect(a.Top()).Should(Equal([]Item{
			{Key: "a3", Count: 1},
			{Key: "a4", Count: 1},
		}))
	})

	It("should ignore blank keys", func() {
		mockTime = "20200104_0101"
		a := NewAggregator("tenants")

		putAll(a, "", "  ", "a1")

		mockTime = "20200104_0201"

		Expect(a.Top()).Should(HaveLen(1))
	})
})
