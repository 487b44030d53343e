// Package bufpool pools the per-worker network read buffers so a long
// download doesn't churn one 1 MiB allocation per read call per worker.
package bufpool

import "sync"

// Pool hands out fixed-size byte slices backed by a sync.Pool.
type Pool struct {
	size int
	pool sync.Pool
}

// New creates a pool of buffers of the given size.
func New(size int) *Pool {
	p := &Pool{size: size}
	p.pool.New = func() interface{} {
		buf := make([]byte, size)
		return &buf
	}

	return p
}

// Get returns a buffer of the pool's configured size.
func (p *Pool) Get() []byte {
	bufPtr := p.pool.Get().(*[]byte)

	return *bufPtr
}

// Put zeroes and returns buf to the pool. buf must have been obtained
// from Get and not be resliced to a different capacity.
func (p *Pool) Put(buf []byte) {
	if cap(buf) != p.size {
		return
	}

	for i := range buf {
		buf[i] = 0
	}

	p.pool.Put(&buf)
}
