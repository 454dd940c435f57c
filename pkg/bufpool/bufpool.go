// Package bufpool provides fixed-size reusable byte slices for transfer
// buffers.
//
// Every connection receives write payloads into a buffer of exactly one
// chunk. A Pool hands out slices of that size from a sync.Pool so that a busy
// server does not allocate a fresh chunk per command.
//
// Usage:
//
//	pool := bufpool.New(chunkSize)
//	buf := pool.Get()
//	defer pool.Put(buf)
package bufpool

import "sync"

// Pool hands out byte slices of one fixed size.
type Pool struct {
	size int
	pool sync.Pool
}

// New creates a pool of size-byte buffers. A non-positive size yields a pool
// whose buffers are empty.
func New(size int) *Pool {
	if size < 0 {
		size = 0
	}
	p := &Pool{size: size}
	p.pool.New = func() any {
		buf := make([]byte, p.size)
		return &buf
	}
	return p
}

// Size returns the length of every buffer handed out by Get.
func (p *Pool) Size() int {
	return p.size
}

// Get returns a buffer of length Size(). Its content is unspecified.
func (p *Pool) Get() []byte {
	return *(p.pool.Get().(*[]byte))
}

// Put returns buf to the pool. Buffers whose capacity does not match the pool
// size are dropped so a resized slice never leaks into later Gets.
func (p *Pool) Put(buf []byte) {
	if cap(buf) != p.size {
		return
	}
	buf = buf[:p.size]
	p.pool.Put(&buf)
}
