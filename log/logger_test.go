package log

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

var _ = Describe("Logger", func() {
	When("hostname file is provided", func() {
		var (
			tmpFile *os.File
			err     error
		)
		JustBeforeEach(func() {
			tmpFile, err = os.CreateTemp("", "prefix")
			Expect(err).Should(Succeed())
			_, err = tmpFile.WriteString("Test-Hostname")
			Expect(err).Should(Succeed())
			DeferCleanup(func() { os.Remove(tmpFile.Name()) })
		})
		It("should use it", func() {
			hostname, err := getHostname(tmpFile.Name())
			Expect(err).Should(Succeed())
			Expect(hostname).Should(Equal("test-hostname"))
		})
	})
	When("hostname file is not provided", func() {
		It("should use the os hostname", func() {
			hostname1, err := os.Hostname()
			Expect(err).Should(Succeed())
			hostname2, err := getHostname("")
			Expect(err).Should(Succeed())
			Expect(hostname2).Should(Equal(hostname1))
		})
	})

	Describe("ConfigureLogger", func() {
		var buf *bytes.Buffer

		BeforeEach(func() {
			buf = &bytes.Buffer{}
			logger.Out = buf

			DeferCleanup(func() {
				ConfigureLogger(Config{Level: LevelInfo, Format: FormatTypeText, Timestamp: true})
				Silence()
			})
		})

		It("should apply the level", func() {
			ConfigureLogger(Config{Level: LevelWarn, Format: FormatTypeText})

			Expect(Log().GetLevel()).Should(Equal(logrus.WarnLevel))
		})

		It("should write JSON with instance id", func() {
			ConfigureLogger(Config{Level: LevelInfo, Format: FormatTypeJson, InstanceID: true})

			PrefixedLog("test").Info("hello")

			var fields map[string]interface{}
			Expect(json.Unmarshal(buf.Bytes(), &fields)).Should(Succeed())
			Expect(fields).Should(HaveKeyWithValue("msg", "hello"))
			Expect(fields).Should(HaveKeyWithValue("prefix", "test"))
			Expect(fields).Should(HaveKey("instanceId"))
		})
	})

	Describe("EscapeInput", func() {
		It("should remove line breaks", func() {
			Expect(EscapeInput("a\nb\r\nc")).Should(Equal("abc"))
		})
	})

	Describe("Enums", func() {
		It("should parse level names", func() {
			l, err := ParseLevel("debug")
			Expect(err).Should(Succeed())
			Expect(l).Should(Equal(LevelDebug))

			_, err = ParseLevel("verbose")
			Expect(err).Should(HaveOccurred())
		})
	})

	Describe("Context logger", func() {
		It("should carry fields into child contexts", func() {
			entry, hook := NewMockEntry()

			ctx, _ := NewCtx(context.Background(), entry)
			ctx, _ = CtxWithFields(ctx, logrus.Fields{"tenant": "acme"})

			child, cancel := context.WithCancel(ctx)
			defer cancel()

			logger := FromCtx(child)
			Expect(logger.Context).Should(BeIdenticalTo(child))

			logger.Info("hello")

			Expect(hook.Messages).Should(Equal([]string{"hello"}))
			Expect(hook.Fields[0]).Should(HaveKeyWithValue("tenant", "acme"))
		})

		It("should fall back to the global logger", func() {
			Expect(FromCtx(context.Background()).Logger).Should(BeIdenticalTo(Log()))
		})
	})
})
