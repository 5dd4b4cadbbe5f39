package config

import (
	"time"

	"github.com/creasty/defaults"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SessionCacheConfig", func() {
	var cfg SessionCacheConfig

	suiteBeforeEach()

	BeforeEach(func() {
		cfg = SessionCacheConfig{}
		Expect(defaults.Set(&cfg)).Should(Succeed())
	})

	It("should be valid with defaults", func() {
		Expect(cfg.validate()).Should(Succeed())
		Expect(cfg.IsEnabled()).Should(BeTrue())
	})

	It("should reject a zero dispose timeout", func() {
		cfg.DisposeTimeout = 0

		Expect(cfg.validate()).Should(MatchError(ContainSubstring("disposeTimeout")))
	})

	It("should reject a lifespan below the reaper resolution", func() {
		cfg.Lifespan = Duration(50 * time.Millisecond)

		Expect(cfg.validate()).Should(MatchError(ContainSubstring("lifespan")))
	})

	It("should log configuration", func() {
		cfg.LogConfig(logger)

		Expect(hook.Calls).Should(HaveLen(3))
		Expect(hook.Messages).Should(ContainElement("probe = true"))
	})
})
