package timedcache

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Lock-free queue", func() {
	var sut *queue[int]

	BeforeEach(func() {
		sut = newQueue[int]()
	})

	When("queue is empty", func() {
		It("should not return anything", func() {
			_, ok := sut.peek()
			Expect(ok).Should(BeFalse())

			_, ok = sut.dequeue()
			Expect(ok).Should(BeFalse())
		})
	})

	When("entries are enqueued", func() {
		It("should return them in insertion order", func() {
			for i := 0; i < 5; i++ {
				sut.enqueue(&entry[int]{val: i, tick: int64(i)})
			}

			head, ok := sut.peek()
			Expect(ok).Should(BeTrue())
			Expect(head.val).Should(Equal(0))

			for i := 0; i < 5; i++ {
				e, ok := sut.dequeue()
				Expect(ok).Should(BeTrue())
				Expect(e.val).Should(Equal(i))
			}

			_, ok = sut.dequeue()
			Expect(ok).Should(BeFalse())
		})

		It("should not keep dequeued values reachable from the sentinel", func() {
			sut.enqueue(&entry[int]{val: 1})

			_, ok := sut.dequeue()
			Expect(ok).Should(BeTrue())

			Expect(sut.head.Load().entry.Load()).Should(BeNil())
		})
	})

	When("accessed concurrently", func() {
		It("should return every entry exactly once", func() {
			const (
				producers   = 8
				perProducer = 1000
			)

			var wg sync.WaitGroup

			for p := 0; p < producers; p++ {
				wg.Add(1)

				go func(p int) {
					defer GinkgoRecover()
					defer wg.Done()

					for i := 0; i < perProducer; i++ {
						sut.enqueue(&entry[int]{val: p*perProducer + i})
					}
				}(p)
			}

			var (
				mu   sync.Mutex
				seen = make(map[int]int)
			)

			consumers := sync.WaitGroup{}

			for c := 0; c < 4; c++ {
				consumers.Add(1)

				go func() {
					defer GinkgoRecover()
					defer consumers.Done()

					for {
						mu.Lock()
						total := len(seen)
						mu.Unlock()

						if total == producers*perProducer {
							return
						}

						if e, ok := sut.dequeue(); ok {
							mu.Lock()
							seen[e.val]++
							mu.Unlock()
						}
					}
				}()
			}

			wg.Wait()
			consumers.Wait()

			Expect(seen).Should(HaveLen(producers * perProducer))

			for _, cnt := range seen {
				Expect(cnt).Should(Equal(1))
			}
		})
	})
})
