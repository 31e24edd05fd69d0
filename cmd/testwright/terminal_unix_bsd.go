//go:build darwin || freebsd || openbsd || netbsd || dragonfly

package main

import "golang.org/x/sys/unix"

// bsd-family termios ioctls
const (
	termiosGet = unix.TIOCGETA
	termiosSet = unix.TIOCSETA
)
