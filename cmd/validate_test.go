package cmd

import (
	"github.com/sessiongate/sessiongate/helpertest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Validate command", func() {
	When("Validate is called with not existing configuration file", func() {
		It("should terminate with error", func() {
			c := NewRootCommand()
			c.SetArgs([]string{"validate", "--config", "/notexisting/path.yaml"})

			Expect(c.Execute()).Should(HaveOccurred())
		})
	})

	When("Validate is called with existing valid configuration file", func() {
		It("should terminate without error", func() {
			cfgFile := helpertest.TempFile("vendor:\n  url: https://vendor.example.com\nsessionCache:\n  lifespan: 10m\n")

			c := NewRootCommand()
			c.SetArgs([]string{"validate", "--config", cfgFile.Name()})

			Expect(c.Execute()).Should(Succeed())
		})
	})

	When("Validate is called with existing invalid configuration file", func() {
		It("should terminate with error", func() {
			cfgFile := helpertest.TempFile("vendor:\n  url: ftp://vendor.example.com\n")

			c := NewRootCommand()
			c.SetArgs([]string{"validate", "--config", cfgFile.Name()})

			Expect(c.Execute()).Should(HaveOccurred())
		})
	})
})
