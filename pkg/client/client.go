// Package client speaks the resource manager wire protocol.
//
// A reply to "r" may legitimately be zero bytes long, which on a stream
// socket cannot be told apart from a reply that has not arrived yet. The
// client therefore waits ReplyTimeout for the first byte of a reply and
// treats silence as end-of-device. Once bytes start arriving it keeps
// collecting them until the chunk is complete or SettleTimeout passes
// without more data.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1anyK1/realTime/internal/logger"
	"github.com/1anyK1/realTime/pkg/protocol"
)

const (
	// DefaultReplyTimeout is how long to wait for the first byte of a reply.
	DefaultReplyTimeout = 500 * time.Millisecond

	// DefaultSettleTimeout is the quiet period that ends a partial reply.
	DefaultSettleTimeout = 20 * time.Millisecond

	// DefaultDialTimeout bounds connection establishment.
	DefaultDialTimeout = 5 * time.Second
)

var (
	// ErrEndOfDevice is returned by Read when the server sent no data.
	ErrEndOfDevice = errors.New("end of device")

	// ErrPayloadTooLarge is returned by Write when the payload exceeds one
	// chunk. The server consumes one chunk per write; the rest would be
	// parsed as commands.
	ErrPayloadTooLarge = errors.New("payload larger than chunk size")

	// ErrEmptyPayload is returned by Write for a zero-length payload, which
	// cannot be delivered on a stream socket.
	ErrEmptyPayload = errors.New("empty payload")

	// ErrNoReply is returned when a reply that must be non-empty never came.
	ErrNoReply = errors.New("no reply from server")
)

// Options configures a Client.
type Options struct {
	// Network is "unix" (default) or "tcp".
	Network string

	// ChunkSize must match the server's chunk size.
	ChunkSize int

	ReplyTimeout  time.Duration
	SettleTimeout time.Duration
	DialTimeout   time.Duration
}

func (o *Options) applyDefaults() {
	if o.Network == "" {
		o.Network = "unix"
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = protocol.DefaultChunkSize
	}
	if o.ReplyTimeout <= 0 {
		o.ReplyTimeout = DefaultReplyTimeout
	}
	if o.SettleTimeout <= 0 {
		o.SettleTimeout = DefaultSettleTimeout
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = DefaultDialTimeout
	}
}

// Client is one connection to the server, and so one cursor on the device.
// Requests are serialized; a Client is safe for concurrent use but
// concurrent callers share the cursor.
type Client struct {
	conn net.Conn
	opts Options
	mu   sync.Mutex
}

// Dial connects to the server at address.
func Dial(ctx context.Context, address string, opts Options) (*Client, error) {
	opts.applyDefaults()

	d := net.Dialer{Timeout: opts.DialTimeout}
	conn, err := d.DialContext(ctx, opts.Network, address)
	if err != nil {
		return nil, fmt.Errorf("dial %s %s: %w", opts.Network, address, err)
	}
	logger.Debug("Connected to resource manager", "network", opts.Network, "address", address)

	return &Client{conn: conn, opts: opts}, nil
}

// New wraps an established connection.
func New(conn net.Conn, opts Options) *Client {
	opts.applyDefaults()
	return &Client{conn: conn, opts: opts}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Read requests the next chunk at the connection's cursor. It returns
// ErrEndOfDevice when the server replies with zero bytes.
func (c *Client) Read(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(ctx, []byte{protocol.CmdRead}); err != nil {
		return nil, err
	}
	data, err := c.collect(ctx, c.opts.ChunkSize)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEndOfDevice
	}
	return data, nil
}

// ReadAll issues reads on this connection until end-of-device and returns
// everything received.
func (c *Client) ReadAll(ctx context.Context) ([]byte, error) {
	var out bytes.Buffer
	for {
		chunk, err := c.Read(ctx)
		if errors.Is(err, ErrEndOfDevice) {
			return out.Bytes(), nil
		}
		if err != nil {
			return out.Bytes(), err
		}
		out.Write(chunk)
	}
}

// Write stores data at the connection's cursor and returns the number of
// bytes the server accepted, which is less than len(data) when the write
// reached the end of the device.
func (c *Client) Write(ctx context.Context, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, ErrEmptyPayload
	}
	if len(data) > c.opts.ChunkSize {
		return 0, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(data), c.opts.ChunkSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(ctx, []byte{protocol.CmdWrite}); err != nil {
		return 0, err
	}
	if err := c.send(ctx, data); err != nil {
		return 0, err
	}

	reply, err := c.collect(ctx, c.opts.ChunkSize)
	if err != nil {
		return 0, err
	}
	if len(reply) == 0 {
		return 0, ErrNoReply
	}
	n, err := protocol.ParseAck(reply)
	if err != nil {
		return 0, fmt.Errorf("write reply %q: %w", reply, err)
	}
	return n, nil
}

// Raw sends an arbitrary command byte and returns whatever the server
// replied within the reply window. An empty reply is not an error.
func (c *Client) Raw(ctx context.Context, cmd byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(ctx, []byte{cmd}); err != nil {
		return nil, err
	}
	return c.collect(ctx, c.opts.ChunkSize)
}

func (c *Client) send(ctx context.Context, p []byte) error {
	deadline := time.Now().Add(c.opts.DialTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	for len(p) > 0 {
		n, err := c.conn.Write(p)
		if err != nil {
			return fmt.Errorf("send: %w", err)
		}
		p = p[n:]
	}
	return nil
}

// collect reads one reply of at most limit bytes.
func (c *Client) collect(ctx context.Context, limit int) ([]byte, error) {
	buf := make([]byte, limit)
	got := 0
	wait := c.opts.ReplyTimeout

	for got < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		deadline := time.Now().Add(wait)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}

		n, err := c.conn.Read(buf[got:])
		got += n
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				if ctxErr := ctx.Err(); ctxErr != nil && got == 0 {
					return nil, ctxErr
				}
				break
			}
			if got > 0 {
				break
			}
			return nil, fmt.Errorf("receive: %w", err)
		}
		wait = c.opts.SettleTimeout
	}

	return buf[:got], nil
}
