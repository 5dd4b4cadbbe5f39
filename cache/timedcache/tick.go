package timedcache

import "time"

// nolint:gochecknoglobals
var processStart = time.Now()

// monotonicTicks returns milliseconds elapsed since the package was initialized.
// time.Since uses the monotonic clock, so wall clock jumps don't affect it.
func monotonicTicks() int64 {
	return time.Since(processStart).Milliseconds()
}
