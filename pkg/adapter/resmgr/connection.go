package resmgr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/1anyK1/realTime/internal/logger"
	"github.com/1anyK1/realTime/internal/telemetry"
	"github.com/1anyK1/realTime/pkg/adapter"
	"github.com/1anyK1/realTime/pkg/protocol"
)

// Command outcome labels used for metrics.
const (
	statusOK       = "ok"
	statusEOD      = "eod"
	statusRejected = "rejected"
	statusClosed   = "closed"
	statusError    = "error"
)

// Connection is the open context of one client: its socket and its private
// offset into the device. Only the goroutine running Serve touches it.
type Connection struct {
	server *Adapter
	conn   net.Conn
	id     string
	remote string

	// offset is the cursor into the device, 0 <= offset <= capacity.
	offset int
}

func newConnection(server *Adapter, id string, conn net.Conn) *Connection {
	remote := "@"
	if a := conn.RemoteAddr(); a != nil && a.String() != "" {
		remote = a.String()
	}
	return &Connection{server: server, conn: conn, id: id, remote: remote}
}

// Serve runs the command loop until the peer disconnects or a transport
// error occurs. The socket is closed on every exit path, including a panic.
func (c *Connection) Serve(ctx context.Context) {
	defer c.handleConnectionClose()

	ctx = logger.WithContext(ctx, logger.NewLogContext(c.id, c.remote))
	logger.DebugCtx(ctx, "Open", logger.KeyOffset, c.offset)

	var cmd [1]byte
	for {
		select {
		case <-ctx.Done():
			logger.DebugCtx(ctx, "Connection closed due to server shutdown")
			return
		default:
		}

		if err := c.readCommand(cmd[:]); err != nil {
			c.logTransportError(ctx, "Error reading command", err)
			return
		}

		if err := c.dispatch(ctx, cmd[0]); err != nil {
			c.logTransportError(ctx, "Error serving command", err)
			return
		}
	}
}

// dispatch serves one command: it times it, wraps it in a span and records
// the outcome. A returned error ends the connection.
func (c *Connection) dispatch(ctx context.Context, b byte) error {
	cmd, _ := protocol.ParseCommand(b)
	name := cmd.String()
	start := time.Now()

	ctx = logger.WithContext(ctx, logger.FromContext(ctx).WithCommand(name))
	ctx, span := telemetry.StartCommandSpan(ctx, name, c.id, c.offset)
	defer span.End()
	if telemetry.IsEnabled() {
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx)))
	}

	var (
		status string
		err    error
	)
	switch cmd {
	case protocol.Read:
		status, err = c.handleRead(ctx)
	case protocol.Write:
		status, err = c.handleWrite(ctx)
	default:
		status, err = c.handleUnknown(ctx, b)
	}

	if err != nil {
		// A peer hanging up mid-command is a normal end of the session.
		if isPeerGone(err) {
			status = statusClosed
		} else {
			status = statusError
			telemetry.RecordError(ctx, err)
		}
	}
	if c.server.metrics != nil {
		c.server.metrics.RecordCommand(name, time.Since(start), status)
	}
	return err
}

// handleRead sends up to one chunk from the cursor and advances it by what
// was actually sent. At end of device nothing is sent and the cursor stays.
func (c *Connection) handleRead(ctx context.Context) (string, error) {
	dev := c.server.device
	n := min(c.server.config.ChunkSize, dev.Capacity()-c.offset)

	if n <= 0 {
		telemetry.SetAttributes(ctx, telemetry.EOD(true), telemetry.BytesRead(0))
		logger.DebugCtx(ctx, "Read at end of device", logger.KeyOffset, c.offset, logger.KeyEOD, true)
		return statusEOD, nil
	}

	data := dev.ReadAt(c.offset, n)
	sent, err := c.writeAll(data)
	c.offset += sent

	telemetry.SetAttributes(ctx, telemetry.Count(n), telemetry.BytesRead(sent))
	if c.server.metrics != nil {
		c.server.metrics.RecordBytes("read", sent)
	}
	if err != nil {
		return statusError, fmt.Errorf("send read reply: %w", err)
	}

	logger.DebugCtx(ctx, "Read", logger.KeyOffset, c.offset-sent, logger.KeyBytesRead, sent)
	return statusOK, nil
}

// handleWrite performs a single receive of up to one chunk, stores it at the
// cursor (truncated at the end of the device) and acknowledges the count.
func (c *Connection) handleWrite(ctx context.Context) (string, error) {
	buf := c.server.bufs.Get()
	defer c.server.bufs.Put(buf)

	n, err := c.readOnce(buf)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return statusError, err
	}

	written := c.server.device.WriteAt(c.offset, buf[:n])
	at := c.offset
	c.offset += written
	// A write at end of device stores nothing; only a shortened store counts
	// as truncated.
	truncated := written > 0 && written < n

	telemetry.SetAttributes(ctx,
		telemetry.Count(n),
		telemetry.BytesWritten(written),
		telemetry.Truncated(truncated))
	if c.server.metrics != nil {
		c.server.metrics.RecordBytes("write", written)
		if truncated {
			c.server.metrics.RecordTruncatedWrite()
		}
	}

	logger.DebugCtx(ctx, "Write", logger.KeyOffset, at, logger.KeyCount, n, logger.KeyBytesWritten, written)

	if _, err := c.writeAll(protocol.FormatAck(written)); err != nil {
		return statusError, fmt.Errorf("send write ack: %w", err)
	}
	return statusOK, nil
}

func (c *Connection) handleUnknown(ctx context.Context, b byte) (string, error) {
	logger.DebugCtx(ctx, "Unknown command", "byte", fmt.Sprintf("0x%02x", b))

	if _, err := c.writeAll([]byte(protocol.UnknownCommandReply)); err != nil {
		return statusError, fmt.Errorf("send error reply: %w", err)
	}
	return statusRejected, nil
}

// readCommand reads exactly one byte, retrying interrupted reads.
func (c *Connection) readCommand(b []byte) error {
	for {
		n, err := c.conn.Read(b[:1])
		if n == 1 {
			return nil
		}
		if err == nil {
			continue
		}
		if adapter.IsInterrupted(err) {
			continue
		}
		return err
	}
}

// readOnce performs one receive into buf, retrying only interruptions.
func (c *Connection) readOnce(buf []byte) (int, error) {
	for {
		n, err := c.conn.Read(buf)
		if err != nil && n == 0 && adapter.IsInterrupted(err) {
			continue
		}
		return n, err
	}
}

// writeAll sends p completely, retrying interrupted and partial writes, and
// reports how many bytes went out.
func (c *Connection) writeAll(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := c.conn.Write(p[total:])
		total += n
		if err != nil {
			if adapter.IsInterrupted(err) {
				continue
			}
			return total, err
		}
	}
	return total, nil
}

func isPeerGone(err error) bool {
	return errors.Is(err, io.EOF) || adapter.IsPeerClosed(err)
}

func (c *Connection) logTransportError(ctx context.Context, msg string, err error) {
	switch {
	case errors.Is(err, io.EOF):
		logger.DebugCtx(ctx, "Connection closed by client")
	case adapter.IsPeerClosed(err):
		logger.DebugCtx(ctx, "Connection closed", logger.KeyError, err)
	default:
		logger.WarnCtx(ctx, msg, logger.KeyError, err)
	}
}

// handleConnectionClose recovers a panic in the command loop and closes the
// socket.
func (c *Connection) handleConnectionClose() {
	if r := recover(); r != nil {
		logger.Error("Panic in connection handler",
			logger.KeyConnID, c.id,
			logger.KeyClient, c.remote,
			logger.KeyError, r,
			"stack", string(debug.Stack()))
	}

	_ = c.conn.Close()
	logger.Debug("Close", logger.KeyConnID, c.id, logger.KeyOffset, c.offset)
}
