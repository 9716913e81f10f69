//go:build darwin

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// startKeyboard switches stdin to unbuffered, no-echo mode and dispatches
// keys in the background. The returned func restores the terminal.
func startKeyboard(k keyActions) (func(), error) {
	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		return nil, err
	}

	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TIOCSETA, &newState); err != nil {
		return nil, err
	}

	go readKeys(os.Stdin.Read, k)
	return func() { unix.IoctlSetTermios(fd, unix.TIOCSETA, oldState) }, nil
}
