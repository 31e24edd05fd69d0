//go:build windows

package main

// suppressCtrlCEcho has nothing to do on windows, the console does not echo ^C.
func suppressCtrlCEcho() func() {
	return func() {}
}
