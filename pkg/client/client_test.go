package client

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1anyK1/realTime/pkg/adapter"
	"github.com/1anyK1/realTime/pkg/adapter/resmgr"
	"github.com/1anyK1/realTime/pkg/device"
	"github.com/1anyK1/realTime/pkg/protocol"
)

const testChunk = 64

func startServer(t *testing.T, capacity int) (string, *device.Device) {
	t.Helper()

	dev, err := device.NewWithPattern(capacity)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "c.sock")
	srv := resmgr.New(resmgr.Config{
		BaseConfig: adapter.BaseConfig{
			Network:         "unix",
			Address:         path,
			ShutdownTimeout: time.Second,
		},
		ChunkSize: testChunk,
	}, dev, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx)
	}()
	<-srv.ListenerReady
	require.True(t, srv.IsReady())

	t.Cleanup(func() {
		cancel()
		<-done
	})
	return path, dev
}

func dial(t *testing.T, path string) *Client {
	t.Helper()
	c, err := Dial(context.Background(), path, Options{
		ChunkSize:    testChunk,
		ReplyTimeout: 150 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRead_UntilEndOfDevice(t *testing.T) {
	path, _ := startServer(t, 100)
	c := dial(t, path)
	ctx := context.Background()

	first, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, first, testChunk)
	assert.Equal(t, device.PatternByte(0), first[0])

	second, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 100-testChunk)

	_, err = c.Read(ctx)
	assert.ErrorIs(t, err, ErrEndOfDevice)

	// End-of-device does not move the cursor; it stays at the end.
	_, err = c.Read(ctx)
	assert.ErrorIs(t, err, ErrEndOfDevice)
}

func TestReadAll(t *testing.T) {
	path, dev := startServer(t, 200)
	c := dial(t, path)

	data, err := c.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dev.Snapshot(), data)
}

func TestWrite_HELLO(t *testing.T) {
	path, dev := startServer(t, device.DefaultCapacity)
	w := dial(t, path)

	n, err := w.Write(context.Background(), []byte("HELLO"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	r := dial(t, path)
	got, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(got[:5]))
	assert.Equal(t, device.PatternByte(5), got[5])
	assert.Equal(t, []byte("HELLO"), dev.Snapshot()[:5])
}

func TestWrite_TruncatedAtCapacity(t *testing.T) {
	path, _ := startServer(t, 8)
	c := dial(t, path)
	ctx := context.Background()

	n, err := c.Write(ctx, []byte("ABCDEF"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	n, err = c.Write(ctx, []byte("GHIJ"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = c.Write(ctx, []byte("K"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWrite_RejectedLocally(t *testing.T) {
	path, dev := startServer(t, 32)
	c := dial(t, path)

	_, err := c.Write(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = c.Write(context.Background(), make([]byte, testChunk+1))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	assert.Zero(t, dev.Stats().Writes)
}

func TestRaw_UnknownCommand(t *testing.T) {
	path, _ := startServer(t, 16)
	c := dial(t, path)
	ctx := context.Background()

	reply, err := c.Raw(ctx, 'x')
	require.NoError(t, err)
	assert.True(t, protocol.IsUnknownCommandReply(reply))

	// The connection stays usable.
	data, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, data, 16)
}

func TestDial_NoServer(t *testing.T) {
	_, err := Dial(context.Background(), filepath.Join(t.TempDir(), "missing.sock"), Options{})
	require.Error(t, err)
}

func TestRead_ServerClosed(t *testing.T) {
	server, peer := net.Pipe()
	c := New(peer, Options{ReplyTimeout: time.Second})
	go func() {
		b := make([]byte, 1)
		_, _ = server.Read(b)
		_ = server.Close()
	}()

	_, err := c.Read(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEndOfDevice))
}

func TestRead_ContextCancelled(t *testing.T) {
	server, peer := net.Pipe()
	defer func() { _ = server.Close() }()
	c := New(peer, Options{ReplyTimeout: time.Minute})

	go func() {
		b := make([]byte, 1)
		_, _ = server.Read(b)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Read(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWrite_MalformedAck(t *testing.T) {
	server, peer := net.Pipe()
	defer func() { _ = server.Close() }()
	c := New(peer, Options{ChunkSize: 8, ReplyTimeout: time.Second})

	go func() {
		b := make([]byte, 8)
		_, _ = server.Read(b[:1])
		_, _ = server.Read(b)
		_, _ = server.Write([]byte("NOPE"))
	}()

	_, err := c.Write(context.Background(), []byte("ab"))
	assert.ErrorIs(t, err, protocol.ErrMalformedAck)
}
