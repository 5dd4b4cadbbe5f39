//go:build linux
// +build linux

package main

import (
	"os"
	_ "time/tzdata"

	reaper "github.com/ramr/go-reaper"
)

//nolint:gochecknoinits
func init() {
	// running as init process in a container: collect orphaned children
	if os.Getpid() == 1 {
		go reaper.Reap()
	}
}
