//go:build !linux && !darwin

package main

import (
	"os"

	"golang.org/x/term"
)

// startKeyboard puts the console in raw mode and dispatches keys in the
// background. The returned func restores the console.
func startKeyboard(k keyActions) (func(), error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	go readKeys(os.Stdin.Read, k)
	return func() { term.Restore(fd, oldState) }, nil
}
