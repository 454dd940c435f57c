package adapter

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoFactory serves connections by echoing every byte back.
type echoFactory struct {
	served atomic.Int32
}

type echoConn struct {
	conn net.Conn
}

func (f *echoFactory) NewConnection(_ string, conn net.Conn) ConnectionHandler {
	f.served.Add(1)
	return &echoConn{conn: conn}
}

func (c *echoConn) Serve(_ context.Context) {
	defer c.conn.Close()
	_, _ = io.Copy(c.conn, c.conn)
}

type testServer struct {
	adapter *BaseAdapter
	path    string
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

func startServer(t *testing.T, cfg BaseConfig) *testServer {
	t.Helper()

	if cfg.Address == "" {
		cfg.Address = filepath.Join(t.TempDir(), "s.sock")
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 2 * time.Second
	}

	b := NewBaseAdapter(cfg, "TEST")
	ctx, cancel := context.WithCancel(context.Background())
	s := &testServer{adapter: b, path: cfg.Address, cancel: cancel, done: make(chan struct{})}
	go func() {
		s.err = b.ServeWithFactory(ctx, &echoFactory{}, nil, nil)
		close(s.done)
	}()
	require.NotEmpty(t, b.GetListenerAddr())

	t.Cleanup(func() {
		cancel()
		select {
		case <-s.done:
		case <-time.After(5 * time.Second):
		}
	})
	return s
}

func (s *testServer) dial(t *testing.T) net.Conn {
	t.Helper()
	conn, err := net.Dial("unix", s.path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *testServer) wait(t *testing.T) error {
	t.Helper()
	select {
	case <-s.done:
		return s.err
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
		return nil
	}
}

func echo(t *testing.T, conn net.Conn, msg string) {
	t.Helper()
	_, err := conn.Write([]byte(msg))
	require.NoError(t, err)
	buf := make([]byte, len(msg))
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	assert.Equal(t, msg, string(buf))
}

// ============================================================================
// Endpoint lifecycle
// ============================================================================

func TestServe_RemovesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.sock")

	l, err := net.Listen("unix", path)
	require.NoError(t, err)
	l.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, l.Close())
	_, err = os.Lstat(path)
	require.NoError(t, err, "stale socket should exist before start")

	s := startServer(t, BaseConfig{Address: path})
	echo(t, s.dial(t), "hi")
}

func TestServe_RefusesNonSocketFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.sock")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o644))

	b := NewBaseAdapter(BaseConfig{Address: path}, "TEST")
	err := b.ServeWithFactory(context.Background(), &echoFactory{}, nil, nil)

	assert.ErrorIs(t, err, ErrEndpointInUse)
	assert.Empty(t, b.GetListenerAddr())
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "keep", string(data))
}

func TestServe_BindFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "s.sock")

	b := NewBaseAdapter(BaseConfig{Address: path}, "TEST")
	err := b.ServeWithFactory(context.Background(), &echoFactory{}, nil, nil)
	require.Error(t, err)
	assert.False(t, b.IsReady())
}

func TestServe_CancelRemovesSocket(t *testing.T) {
	s := startServer(t, BaseConfig{})
	assert.True(t, s.adapter.IsReady())

	s.cancel()
	require.NoError(t, s.wait(t))

	_, err := os.Lstat(s.path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "socket file should be removed")
	assert.False(t, s.adapter.IsReady())
}

// ============================================================================
// Connections
// ============================================================================

func TestServe_ConcurrentConnections(t *testing.T) {
	s := startServer(t, BaseConfig{})

	a := s.dial(t)
	b := s.dial(t)
	echo(t, a, "one")
	echo(t, b, "two")

	require.Eventually(t, func() bool {
		return s.adapter.GetActiveConnections() == 2
	}, time.Second, 10*time.Millisecond)

	conns := s.adapter.Connections()
	require.Len(t, conns, 2)
	assert.NotEqual(t, conns[0].ID, conns[1].ID)
	for _, c := range conns {
		assert.NotEmpty(t, c.ID)
		assert.False(t, c.ConnectedAt.IsZero())
	}

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool {
		return s.adapter.GetActiveConnections() == 1
	}, time.Second, 10*time.Millisecond)
	echo(t, b, "still here")
}

func TestServe_MaxConnections(t *testing.T) {
	s := startServer(t, BaseConfig{MaxConnections: 1})

	first := s.dial(t)
	echo(t, first, "a")

	second := s.dial(t)
	_, err := second.Write([]byte("b"))
	require.NoError(t, err)

	// The second connection is queued in the backlog until a slot frees.
	require.NoError(t, second.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, err = second.Read(make([]byte, 1))
	require.Error(t, err)

	require.NoError(t, first.Close())
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1)
	_, err = io.ReadFull(second, buf)
	require.NoError(t, err)
	assert.Equal(t, "b", string(buf))
}

// ============================================================================
// Shutdown
// ============================================================================

func TestShutdown_InFlightConnectionNotInterrupted(t *testing.T) {
	s := startServer(t, BaseConfig{ShutdownTimeout: 5 * time.Second})
	conn := s.dial(t)
	echo(t, conn, "before")

	s.cancel()

	// New connections are refused once the listener is gone.
	require.Eventually(t, func() bool {
		c, err := net.Dial("unix", s.path)
		if err == nil {
			_ = c.Close()
		}
		return err != nil
	}, time.Second, 10*time.Millisecond)

	echo(t, conn, "after")
	require.NoError(t, conn.Close())
	assert.NoError(t, s.wait(t))
}

func TestShutdown_ForceClosesAfterTimeout(t *testing.T) {
	s := startServer(t, BaseConfig{ShutdownTimeout: 100 * time.Millisecond})
	conn := s.dial(t)
	echo(t, conn, "x")

	s.cancel()
	err := s.wait(t)
	assert.ErrorIs(t, err, ErrShutdownTimeout)
	assert.Zero(t, s.adapter.GetActiveConnections())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, err = conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestStop_Idempotent(t *testing.T) {
	s := startServer(t, BaseConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, s.adapter.Stop(ctx))
	require.NoError(t, s.adapter.Stop(ctx))
	assert.NoError(t, s.wait(t))
}

func TestNextAcceptDelay(t *testing.T) {
	d := nextAcceptDelay(0)
	assert.Equal(t, 5*time.Millisecond, d)
	for i := 0; i < 20; i++ {
		d = nextAcceptDelay(d)
	}
	assert.Equal(t, time.Second, d)
}
