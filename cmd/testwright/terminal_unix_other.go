//go:build !darwin && !freebsd && !openbsd && !netbsd && !dragonfly && !windows

package main

import "golang.org/x/sys/unix"

// linux and the rest use the TCGETS/TCSETS pair
const (
	termiosGet = unix.TCGETS
	termiosSet = unix.TCSETS
)
