// Package device implements the fixed-size byte buffer shared by every
// client connection.
//
// All access goes through ReadAt and WriteAt, which take the device lock only
// for the duration of the copy. Callers never hold the lock while doing I/O.
package device

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the device size used when none is configured.
const DefaultCapacity = 256

// ErrInvalidCapacity is returned by New for a non-positive capacity.
var ErrInvalidCapacity = errors.New("device capacity must be positive")

// Device is a byte-addressable buffer of fixed capacity.
type Device struct {
	mu   sync.Mutex
	data []byte

	reads        atomic.Uint64
	writes       atomic.Uint64
	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64
}

// Stats are cumulative transfer counters.
type Stats struct {
	Reads        uint64 `json:"reads"`
	Writes       uint64 `json:"writes"`
	BytesRead    uint64 `json:"bytes_read"`
	BytesWritten uint64 `json:"bytes_written"`
}

// New creates a zeroed device of the given capacity.
func New(capacity int) (*Device, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return &Device{data: make([]byte, capacity)}, nil
}

// NewWithPattern creates a device and fills it with the alphabet pattern.
func NewWithPattern(capacity int) (*Device, error) {
	d, err := New(capacity)
	if err != nil {
		return nil, err
	}
	d.Fill()
	return d, nil
}

// PatternByte is the initial content of offset i: 'A' + i mod 26.
func PatternByte(i int) byte {
	return byte('A' + i%26)
}

// Fill resets the whole device to the alphabet pattern.
func (d *Device) Fill() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.data {
		d.data[i] = PatternByte(i)
	}
}

// Capacity returns the device size in bytes.
func (d *Device) Capacity() int {
	return len(d.data)
}

// ReadAt returns a copy of up to maxLen bytes starting at offset. The result
// is empty when offset is at or past the end of the device.
func (d *Device) ReadAt(offset, maxLen int) []byte {
	if offset < 0 || maxLen <= 0 || offset >= len(d.data) {
		return []byte{}
	}
	n := min(maxLen, len(d.data)-offset)
	out := make([]byte, n)

	d.mu.Lock()
	copy(out, d.data[offset:offset+n])
	d.mu.Unlock()

	d.reads.Add(1)
	d.bytesRead.Add(uint64(n))
	return out
}

// WriteAt copies data into the device at offset, truncating anything that
// would go past the end, and returns the number of bytes stored.
func (d *Device) WriteAt(offset int, data []byte) int {
	if offset < 0 || offset >= len(d.data) || len(data) == 0 {
		return 0
	}
	n := min(len(data), len(d.data)-offset)

	d.mu.Lock()
	copy(d.data[offset:offset+n], data[:n])
	d.mu.Unlock()

	d.writes.Add(1)
	d.bytesWritten.Add(uint64(n))
	return n
}

// Snapshot returns a copy of the full device content.
func (d *Device) Snapshot() []byte {
	out := make([]byte, len(d.data))
	d.mu.Lock()
	copy(out, d.data)
	d.mu.Unlock()
	return out
}

// Stats returns the cumulative counters.
func (d *Device) Stats() Stats {
	return Stats{
		Reads:        d.reads.Load(),
		Writes:       d.writes.Load(),
		BytesRead:    d.bytesRead.Load(),
		BytesWritten: d.bytesWritten.Load(),
	}
}
