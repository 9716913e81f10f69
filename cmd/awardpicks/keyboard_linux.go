//go:build linux

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// startKeyboard switches stdin to unbuffered, no-echo mode and dispatches
// keys in the background. The returned func restores the terminal.
func startKeyboard(k keyActions) (func(), error) {
	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}

	// Output processing stays on so "\n" still returns the carriage
	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &newState); err != nil {
		return nil, err
	}

	go readKeys(os.Stdin.Read, k)
	return func() { unix.IoctlSetTermios(fd, unix.TCSETS, oldState) }, nil
}
