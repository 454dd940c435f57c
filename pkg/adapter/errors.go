package adapter

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/1anyK1/realTime/internal/logger"
)

// ErrShutdownTimeout is returned when connections outlived ShutdownTimeout
// and had to be force-closed.
var ErrShutdownTimeout = errors.New("shutdown timeout exceeded")

// ErrEndpointInUse is returned when a non-socket file occupies the socket
// path.
var ErrEndpointInUse = errors.New("endpoint path is not a socket")

// IsInterrupted reports whether err is a transient interruption that the
// caller should simply retry (EINTR).
func IsInterrupted(err error) bool {
	return err != nil && isInterrupted(err)
}

// IsTemporaryAcceptError reports whether an accept error is worth retrying
// after a short delay, such as a descriptor limit or an aborted handshake.
func IsTemporaryAcceptError(err error) bool {
	return err != nil && isTemporaryAccept(err)
}

// IsPeerClosed reports whether err means the connection is already gone.
func IsPeerClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || isConnReset(err)
}

// listen binds network/address. For unix endpoints a stale socket file left
// by an earlier run is removed first.
func listen(network, address string) (net.Listener, error) {
	if network == "unix" {
		if err := removeStaleSocket(address); err != nil {
			return nil, err
		}
	}
	return net.Listen(network, address)
}

func removeStaleSocket(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("%w: %s", ErrEndpointInUse, path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stale socket %s: %w", path, err)
	}
	return nil
}

func unlinkEndpoint(network, address string) {
	if network != "unix" {
		return
	}
	if err := os.Remove(address); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to remove socket file", logger.KeyEndpoint, address, logger.KeyError, err)
	}
}
