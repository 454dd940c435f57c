package resmgr

import (
	"context"
	"net"

	"github.com/1anyK1/realTime/internal/logger"
	"github.com/1anyK1/realTime/pkg/adapter"
	"github.com/1anyK1/realTime/pkg/bufpool"
	"github.com/1anyK1/realTime/pkg/device"
	"github.com/1anyK1/realTime/pkg/metrics"
	"github.com/1anyK1/realTime/pkg/protocol"
)

// Config configures the resource manager adapter.
type Config struct {
	adapter.BaseConfig

	// ChunkSize bounds a single read reply or write payload.
	ChunkSize int
}

// Adapter serves the device over the single-byte command protocol.
//
// It embeds BaseAdapter for the listener lifecycle and implements
// adapter.ConnectionFactory so every accepted connection gets its own
// Connection with a private offset cursor. The device is the only state
// shared between connections.
type Adapter struct {
	*adapter.BaseAdapter

	config  Config
	device  *device.Device
	metrics metrics.ResmgrMetrics
	bufs    *bufpool.Pool
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates an adapter serving dev. m may be nil to disable metrics.
func New(cfg Config, dev *device.Device, m metrics.ResmgrMetrics) *Adapter {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = protocol.DefaultChunkSize
	}

	base := adapter.NewBaseAdapter(cfg.BaseConfig, "resmgr")
	if m != nil {
		base.Metrics = m
	}

	return &Adapter{
		BaseAdapter: base,
		config:      cfg,
		device:      dev,
		metrics:     m,
		bufs:        bufpool.New(cfg.ChunkSize),
	}
}

// Serve binds the endpoint and serves connections until ctx is cancelled.
func (a *Adapter) Serve(ctx context.Context) error {
	logger.Info("Starting resource manager",
		logger.KeyEndpoint, a.config.Address,
		logger.KeyCapacity, a.device.Capacity(),
		"chunk_size", a.config.ChunkSize)

	return a.ServeWithFactory(ctx, a, nil, nil)
}

// NewConnection implements adapter.ConnectionFactory.
func (a *Adapter) NewConnection(id string, conn net.Conn) adapter.ConnectionHandler {
	return newConnection(a, id, conn)
}

// Device returns the served device.
func (a *Adapter) Device() *device.Device {
	return a.device
}

// ChunkSize returns the effective transfer chunk size.
func (a *Adapter) ChunkSize() int {
	return a.config.ChunkSize
}
