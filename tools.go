//go:build tools
// +build tools

package tools

import (
	_ "github.com/abice/go-enum"
	_ "github.com/onsi/ginkgo/v2/ginkgo"
)
