//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package logger

func isTerminal(uintptr) bool {
	return false
}
