package config

import (
	"time"

	"github.com/sessiongate/sessiongate/helpertest"
	"github.com/sessiongate/sessiongate/log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	suiteBeforeEach()

	Describe("NewDefaultConfig", func() {
		It("should apply default values", func() {
			cfg, err := NewDefaultConfig()
			Expect(err).Should(Succeed())

			Expect(cfg.Ports.HTTP).Should(Equal("4000"))
			Expect(cfg.Log.Level).Should(Equal(log.LevelInfo))
			Expect(cfg.Log.Timestamp).Should(BeTrue())
			Expect(cfg.SessionCache.Lifespan).Should(Equal(Duration(5 * time.Minute)))
			Expect(cfg.SessionCache.Probe).Should(BeTrue())
			Expect(cfg.Vendor.DialAttempts).Should(BeNumerically("==", 3))
			Expect(cfg.Metrics.Path).Should(Equal("/metrics"))
		})
	})

	Describe("LoadConfig", func() {
		When("config file is valid", func() {
			It("should merge file values with defaults", func() {
				f := helpertest.TempFile(`
log:
  level: debug
  format: json
ports:
  http: 127.0.0.1:4100
sessionCache:
  lifespan: 2m
vendor:
  url: https://vendor.example.com/api
  dialAttempts: 5
metrics:
  enable: true
`)

				cfg, err := LoadConfig(f.Name(), true)
				Expect(err).Should(Succeed())

				Expect(cfg.Log.Level).Should(Equal(log.LevelDebug))
				Expect(cfg.Log.Format).Should(Equal(log.FormatTypeJson))
				Expect(cfg.Ports.HTTP).Should(Equal("127.0.0.1:4100"))
				Expect(cfg.SessionCache.Lifespan.ToDuration()).Should(Equal(2 * time.Minute))
				Expect(cfg.SessionCache.DisposeTimeout.ToDuration()).Should(Equal(5 * time.Second))
				Expect(cfg.Vendor.URL).Should(Equal("https://vendor.example.com/api"))
				Expect(cfg.Vendor.DialAttempts).Should(BeNumerically("==", 5))
				Expect(cfg.Metrics.IsEnabled()).Should(BeTrue())
			})
		})

		When("config file contains unknown keys", func() {
			It("should fail", func() {
				f := helpertest.TempFile("unknown: 1\n")

				_, err := LoadConfig(f.Name(), true)
				Expect(err).Should(MatchError(ContainSubstring("wrong file structure")))
			})
		})

		When("config file contains invalid values", func() {
			It("should report all errors", func() {
				f := helpertest.TempFile(`
ports:
  http: ""
sessionCache:
  lifespan: 10ms
vendor:
  url: ftp://vendor
metrics:
  enable: true
  path: /api/metrics
`)

				_, err := LoadConfig(f.Name(), true)
				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(ContainSubstring("ports.http"))
				Expect(err.Error()).Should(ContainSubstring("sessionCache.lifespan"))
				Expect(err.Error()).Should(ContainSubstring("vendor.url"))
				Expect(err.Error()).Should(ContainSubstring("metrics.path"))
			})
		})

		When("config file does not exist", func() {
			It("should fail if mandatory", func() {
				_, err := LoadConfig("/does/not/exist.yml", true)
				Expect(err).Should(MatchError(ContainSubstring("can't read config file")))
			})

			It("should use defaults if not mandatory", func() {
				cfg, err := LoadConfig("/does/not/exist.yml", false)
				Expect(err).Should(Succeed())
				Expect(cfg.Ports.HTTP).Should(Equal("4000"))
			})
		})
	})

	Describe("LogConfig", func() {
		It("should log enabled and disabled sections", func() {
			cfg, err := NewDefaultConfig()
			Expect(err).Should(Succeed())

			cfg.LogConfig(logger)

			Expect(hook.Messages).Should(ContainElement("http port: 4000"))
			Expect(hook.Messages).Should(ContainElement("lifespan = 5 minutes"))
			Expect(hook.Messages).Should(ContainElement("vendor: disabled"))
			Expect(hook.Messages).Should(ContainElement("metrics: disabled"))
			Expect(hook.Messages).Should(ContainElement("redis: disabled"))
		})
	})
})
