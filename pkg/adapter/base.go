package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/1anyK1/realTime/internal/logger"
)

// ConnectionHandler represents a protocol-specific connection that can serve
// requests. The Serve method blocks until the peer disconnects or a fatal
// transport error occurs.
type ConnectionHandler interface {
	Serve(ctx context.Context)
}

// ConnectionFactory creates protocol-specific connection handlers for accepted
// connections. Protocol adapters implement this interface and pass themselves
// to BaseAdapter.ServeWithFactory().
type ConnectionFactory interface {
	NewConnection(id string, conn net.Conn) ConnectionHandler
}

// BaseConfig holds configuration common to all protocol adapters.
type BaseConfig struct {
	// Network is the listener network: "unix" or "tcp".
	Network string

	// Address is the socket path for "unix" or host:port for "tcp".
	Address string

	// MaxConnections limits the number of concurrent client connections.
	// 0 means unlimited.
	MaxConnections int

	// ShutdownTimeout is how long shutdown waits for in-flight connections
	// before force-closing them.
	ShutdownTimeout time.Duration

	// MetricsLogInterval is the interval at which to log server metrics.
	// 0 disables periodic metrics logging.
	MetricsLogInterval time.Duration
}

// MetricsRecorder allows protocol adapters to record connection lifecycle
// metrics. A nil recorder disables collection.
type MetricsRecorder interface {
	RecordConnectionAccepted()
	RecordConnectionClosed()
	RecordConnectionForceClosed()
	SetActiveConnections(count int32)
}

// OnConnectionClose is an optional callback invoked when a connection's serve
// goroutine completes, before it is untracked.
type OnConnectionClose func(id string)

// ConnInfo describes a tracked connection.
type ConnInfo struct {
	ID          string    `json:"id"`
	RemoteAddr  string    `json:"remote_addr"`
	ConnectedAt time.Time `json:"connected_at"`

	conn net.Conn
}

// BaseAdapter provides the shared listener lifecycle for protocol adapters:
// binding, the accept loop, connection tracking, graceful shutdown and
// periodic metrics logging. Protocol behavior is injected through a
// ConnectionFactory.
//
// All exported methods are safe for concurrent use.
type BaseAdapter struct {
	// Config holds the shared configuration.
	Config BaseConfig

	// protocolName is the human-readable protocol name for logging.
	protocolName string

	// Metrics is an optional recorder for connection lifecycle metrics.
	Metrics MetricsRecorder

	listener   net.Listener
	listenerMu sync.RWMutex

	// activeConns counts live serve goroutines.
	activeConns sync.WaitGroup

	shutdownOnce sync.Once

	// Shutdown is closed once shutdown has been initiated.
	Shutdown chan struct{}

	// ConnCount tracks the current number of active connections.
	ConnCount atomic.Int32

	// connSemaphore limits concurrent connections; nil when unlimited.
	connSemaphore chan struct{}

	// ShutdownCtx is handed to every connection. It is cancelled only when
	// remaining connections are force-closed.
	ShutdownCtx context.Context

	// CancelRequests cancels ShutdownCtx.
	CancelRequests context.CancelFunc

	// ActiveConnections maps connection id to *ConnInfo.
	ActiveConnections sync.Map

	// ListenerReady is closed when the listener is ready to accept
	// connections, or when binding failed.
	ListenerReady chan struct{}
	readyOnce     sync.Once

	// done is closed when ServeWithFactory has finished draining.
	done chan struct{}
}

// NewBaseAdapter creates a new BaseAdapter with the specified configuration.
// The adapter is created in a stopped state. Call ServeWithFactory() to start.
func NewBaseAdapter(config BaseConfig, protocol string) *BaseAdapter {
	if config.Network == "" {
		config.Network = "unix"
	}

	var connSemaphore chan struct{}
	if config.MaxConnections > 0 {
		connSemaphore = make(chan struct{}, config.MaxConnections)
		logger.Debug(protocol+" connection limit", "max_connections", config.MaxConnections)
	} else {
		logger.Debug(protocol+" connection limit", "max_connections", "unlimited")
	}

	shutdownCtx, cancelRequests := context.WithCancel(context.Background())

	return &BaseAdapter{
		Config:         config,
		protocolName:   protocol,
		Shutdown:       make(chan struct{}),
		connSemaphore:  connSemaphore,
		ShutdownCtx:    shutdownCtx,
		CancelRequests: cancelRequests,
		ListenerReady:  make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// ServeWithFactory binds the configured endpoint and runs the accept loop,
// delegating to factory for protocol-specific connection handling.
//
// Parameters:
//   - ctx: Controls the server lifecycle. Cancellation triggers graceful shutdown.
//   - factory: Creates a handler for each accepted connection.
//   - preAccept: Optional hook called after accept but before tracking.
//     Return false to reject the connection.
//   - onClose: Optional callback invoked when a connection's goroutine exits.
//
// Returns:
//   - nil on graceful shutdown
//   - error if the endpoint cannot be bound, accept fails fatally, or
//     connections had to be force-closed
func (b *BaseAdapter) ServeWithFactory(
	ctx context.Context,
	factory ConnectionFactory,
	preAccept func(net.Conn) bool,
	onClose OnConnectionClose,
) error {
	defer close(b.done)

	listener, err := listen(b.Config.Network, b.Config.Address)
	if err != nil {
		b.readyOnce.Do(func() { close(b.ListenerReady) })
		return fmt.Errorf("failed to create %s listener on %s: %w", b.protocolName, b.Config.Address, err)
	}
	defer unlinkEndpoint(b.Config.Network, b.Config.Address)

	b.listenerMu.Lock()
	b.listener = listener
	select {
	case <-b.Shutdown:
		// Stop ran before the listener existed.
		_ = listener.Close()
	default:
	}
	b.listenerMu.Unlock()
	b.readyOnce.Do(func() { close(b.ListenerReady) })

	logger.Info(b.protocolName+" server listening",
		"network", b.Config.Network, logger.KeyEndpoint, listener.Addr().String())

	// The signal path only cancels ctx; this goroutine is the one place
	// that turns cancellation into closing the listener.
	go func() {
		select {
		case <-ctx.Done():
			logger.Info(b.protocolName+" shutdown signal received", "reason", ctx.Err())
			b.initiateShutdown()
		case <-b.Shutdown:
		}
	}()

	if b.Config.MetricsLogInterval > 0 {
		go b.logMetrics(ctx)
	}

	var tempDelay time.Duration
	for {
		if b.connSemaphore != nil {
			select {
			case b.connSemaphore <- struct{}{}:
			case <-b.Shutdown:
				return b.gracefulShutdown()
			}
		}

		conn, err := listener.Accept()
		if err != nil {
			if b.connSemaphore != nil {
				<-b.connSemaphore
			}

			select {
			case <-b.Shutdown:
				return b.gracefulShutdown()
			default:
			}

			switch {
			case errors.Is(err, net.ErrClosed):
				return b.gracefulShutdown()
			case IsInterrupted(err):
				continue
			case IsTemporaryAcceptError(err):
				tempDelay = nextAcceptDelay(tempDelay)
				logger.Warn("Temporary error accepting "+b.protocolName+" connection",
					logger.KeyError, err, "retry_in", tempDelay)
				select {
				case <-time.After(tempDelay):
				case <-b.Shutdown:
					return b.gracefulShutdown()
				}
				continue
			default:
				logger.Error("Fatal error accepting "+b.protocolName+" connection", logger.KeyError, err)
				b.initiateShutdown()
				if shutdownErr := b.gracefulShutdown(); shutdownErr != nil {
					logger.Warn(b.protocolName+" shutdown after accept failure", logger.KeyError, shutdownErr)
				}
				return fmt.Errorf("%s accept: %w", b.protocolName, err)
			}
		}
		tempDelay = 0

		if preAccept != nil && !preAccept(conn) {
			_ = conn.Close()
			if b.connSemaphore != nil {
				<-b.connSemaphore
			}
			continue
		}

		info := &ConnInfo{
			ID:          uuid.NewString(),
			RemoteAddr:  remoteAddr(conn),
			ConnectedAt: time.Now(),
			conn:        conn,
		}

		b.activeConns.Add(1)
		current := b.ConnCount.Add(1)
		b.ActiveConnections.Store(info.ID, info)

		if b.Metrics != nil {
			b.Metrics.RecordConnectionAccepted()
			b.Metrics.SetActiveConnections(current)
		}

		logger.Debug(b.protocolName+" connection accepted",
			logger.KeyConnID, info.ID, logger.KeyClient, info.RemoteAddr, logger.KeyActive, current)

		handler := factory.NewConnection(info.ID, conn)

		go func(info *ConnInfo) {
			defer func() {
				if onClose != nil {
					onClose(info.ID)
				}

				b.ActiveConnections.Delete(info.ID)

				remaining := b.ConnCount.Add(-1)
				if b.connSemaphore != nil {
					<-b.connSemaphore
				}

				if b.Metrics != nil {
					b.Metrics.RecordConnectionClosed()
					b.Metrics.SetActiveConnections(remaining)
				}

				logger.Debug(b.protocolName+" connection closed",
					logger.KeyConnID, info.ID, logger.KeyActive, remaining)

				b.activeConns.Done()
			}()

			handler.Serve(b.ShutdownCtx)
		}(info)
	}
}

// initiateShutdown closes the shutdown channel and the listener. Active
// connections are left running. Safe to call multiple times.
func (b *BaseAdapter) initiateShutdown() {
	b.shutdownOnce.Do(func() {
		logger.Debug(b.protocolName + " shutdown initiated")

		close(b.Shutdown)

		b.listenerMu.Lock()
		if b.listener != nil {
			if err := b.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				logger.Debug("Error closing "+b.protocolName+" listener", logger.KeyError, err)
			}
		}
		b.listenerMu.Unlock()
	})
}

// gracefulShutdown waits up to ShutdownTimeout for active connections and
// force-closes whatever remains.
//
// Returns:
//   - nil if all connections completed on their own
//   - error if connections had to be force-closed
func (b *BaseAdapter) gracefulShutdown() error {
	logger.Info(b.protocolName+" graceful shutdown: waiting for active connections",
		logger.KeyActive, b.ConnCount.Load(), "timeout", b.Config.ShutdownTimeout)

	if b.waitConnections(b.Config.ShutdownTimeout) {
		logger.Info(b.protocolName + " graceful shutdown complete: all connections closed")
		b.CancelRequests()
		return nil
	}

	remaining := b.ConnCount.Load()
	logger.Warn(b.protocolName+" shutdown timeout exceeded - forcing closure",
		logger.KeyActive, remaining, "timeout", b.Config.ShutdownTimeout)

	b.CancelRequests()
	b.forceCloseConnections()

	// Closing the sockets unblocks every worker; wait for their cleanup so
	// the caller never outlives a connection goroutine.
	b.activeConns.Wait()

	return fmt.Errorf("%w: %d %s connections force-closed", ErrShutdownTimeout, remaining, b.protocolName)
}

// waitConnections reports whether all connections finished within timeout.
// A non-positive timeout does not wait.
func (b *BaseAdapter) waitConnections(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		b.activeConns.Wait()
		close(done)
	}()

	if timeout <= 0 {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// forceCloseConnections closes every tracked connection.
func (b *BaseAdapter) forceCloseConnections() {
	logger.Info("Force-closing active " + b.protocolName + " connections")

	closedCount := 0
	b.ActiveConnections.Range(func(key, value any) bool {
		info := value.(*ConnInfo)

		if err := info.conn.Close(); err != nil {
			logger.Debug("Error force-closing connection", logger.KeyConnID, info.ID, logger.KeyError, err)
		} else {
			closedCount++
			logger.Debug("Force-closed connection", logger.KeyConnID, info.ID)
			if b.Metrics != nil {
				b.Metrics.RecordConnectionForceClosed()
			}
		}
		return true
	})

	if closedCount == 0 {
		logger.Debug("No connections to force-close")
	} else {
		logger.Info("Force-closed connections", logger.KeyCount, closedCount)
	}
}

// Stop initiates shutdown and waits for ServeWithFactory to finish draining.
//
// Stop is safe to call multiple times and concurrently with
// ServeWithFactory(). If ctx expires first, remaining connections are
// force-closed and the context error is returned.
func (b *BaseAdapter) Stop(ctx context.Context) error {
	b.initiateShutdown()

	select {
	case <-b.ListenerReady:
	case <-ctx.Done():
		return ctx.Err()
	}

	b.listenerMu.RLock()
	started := b.listener != nil
	b.listenerMu.RUnlock()
	if !started {
		return nil
	}

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		logger.Warn(b.protocolName+" shutdown context cancelled",
			logger.KeyActive, b.ConnCount.Load(), logger.KeyError, ctx.Err())
		b.CancelRequests()
		b.forceCloseConnections()
		return ctx.Err()
	}
}

// logMetrics periodically logs server metrics for monitoring.
func (b *BaseAdapter) logMetrics(ctx context.Context) {
	ticker := time.NewTicker(b.Config.MetricsLogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.Shutdown:
			return
		case <-ticker.C:
			logger.Info(b.protocolName+" metrics", "active_connections", b.ConnCount.Load())
		}
	}
}

// GetActiveConnections returns the current number of active connections.
func (b *BaseAdapter) GetActiveConnections() int32 {
	return b.ConnCount.Load()
}

// Connections returns a snapshot of the tracked connections.
func (b *BaseAdapter) Connections() []ConnInfo {
	var out []ConnInfo
	b.ActiveConnections.Range(func(_, value any) bool {
		info := value.(*ConnInfo)
		out = append(out, ConnInfo{ID: info.ID, RemoteAddr: info.RemoteAddr, ConnectedAt: info.ConnectedAt})
		return true
	})
	return out
}

// GetListenerAddr returns the address the server is listening on.
// This method blocks until the listener is ready, making it safe for tests.
// It returns "" if binding failed.
func (b *BaseAdapter) GetListenerAddr() string {
	<-b.ListenerReady

	b.listenerMu.RLock()
	defer b.listenerMu.RUnlock()

	if b.listener == nil {
		return ""
	}
	return b.listener.Addr().String()
}

// IsReady reports whether the listener is bound and shutdown has not begun.
func (b *BaseAdapter) IsReady() bool {
	select {
	case <-b.Shutdown:
		return false
	default:
	}

	b.listenerMu.RLock()
	defer b.listenerMu.RUnlock()
	return b.listener != nil
}

// Endpoint returns the configured network and address.
func (b *BaseAdapter) Endpoint() (network, address string) {
	return b.Config.Network, b.Config.Address
}

// Protocol returns the human-readable protocol name.
func (b *BaseAdapter) Protocol() string {
	return b.protocolName
}

func remoteAddr(conn net.Conn) string {
	if a := conn.RemoteAddr(); a != nil && a.String() != "" {
		return a.String()
	}
	return "@"
}

func nextAcceptDelay(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}
