//go:build unix

package adapter

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isInterrupted(err error) bool {
	return errors.Is(err, unix.EINTR)
}

func isTemporaryAccept(err error) bool {
	return errors.Is(err, unix.ECONNABORTED) ||
		errors.Is(err, unix.EMFILE) ||
		errors.Is(err, unix.ENFILE) ||
		errors.Is(err, unix.ENOBUFS) ||
		errors.Is(err, unix.ENOMEM) ||
		errors.Is(err, unix.EAGAIN)
}

func isConnReset(err error) bool {
	return errors.Is(err, unix.ECONNRESET) || errors.Is(err, unix.EPIPE)
}
