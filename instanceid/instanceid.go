package instanceid

import (
	"bytes"

	"github.com/google/uuid"
)

// nolint:gochecknoglobals
var id = uuid.New()

// String returns the id of this process as text. It is sent to the vendor and
// attached to log entries.
func String() string {
	return id.String()
}

// Bytes returns the id of this process in binary form
func Bytes() []byte {
	b, _ := id.MarshalBinary()

	return b
}

// Is returns true if comp is the binary id of this process
func Is(comp []byte) bool {
	return bytes.Equal(comp, Bytes())
}
