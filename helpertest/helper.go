package helpertest

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

// TempFile creates temp file with passed data, the file is removed after the test
func TempFile(data string) *os.File {
	f, err := os.CreateTemp("", "prefix")
	gomega.ExpectWithOffset(1, err).Should(gomega.Succeed())

	_, err = f.WriteString(data)
	gomega.ExpectWithOffset(1, err).Should(gomega.Succeed())

	ginkgo.DeferCleanup(func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	})

	return f
}

// DoRequest serves the request with the handler and returns the recorded response
func DoRequest(r *http.Request, handler http.Handler) (*httptest.ResponseRecorder, *bytes.Buffer) {
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, r)

	return rr, rr.Body
}
