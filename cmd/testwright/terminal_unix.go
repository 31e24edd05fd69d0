//go:build !windows

package main

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// suppressCtrlCEcho clears ECHOCTL on stdin so an interrupt during a recording
// session or an interactive prompt does not print "^C" into the output. the
// returned func puts the terminal back the way it was.
func suppressCtrlCEcho() func() {
	noop := func() {}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return noop
	}

	state, err := unix.IoctlGetTermios(fd, termiosGet)
	if err != nil {
		return noop
	}

	saved := *state
	state.Lflag &^= unix.ECHOCTL
	if err := unix.IoctlSetTermios(fd, termiosSet, state); err != nil {
		return noop
	}

	return func() {
		unix.IoctlSetTermios(fd, termiosSet, &saved) //nolint:errcheck // best-effort restore
	}
}
