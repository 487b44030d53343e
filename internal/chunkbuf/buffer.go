// Package chunkbuf stages a worker's incoming bytes in memory until enough
// have accumulated to flush as one write, bounding total in-flight memory
// across all workers sharing a Limiter.
package chunkbuf

import (
	"bytes"
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the aggregate number of bytes all workers may hold
// staged-but-unwritten at once. Acquire blocks until capacity is
// available rather than ever rejecting or dropping bytes: the engine
// always waits for room, never silently discards data.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter creates a Limiter with the given byte capacity.
func NewLimiter(capacityBytes int64) *Limiter {
	return &Limiter{sem: semaphore.NewWeighted(capacityBytes)}
}

// Acquire blocks until n bytes of capacity are available, or ctx is done.
func (l *Limiter) Acquire(ctx context.Context, n int64) error {
	return l.sem.Acquire(ctx, n)
}

// Release returns n bytes of capacity to the pool, called once the bytes
// acquired for them have actually been written out.
func (l *Limiter) Release(n int64) {
	l.sem.Release(n)
}

// Buffer accumulates one worker's bytes and emits them once chunkSize has
// been reached, so the writer performs one mmap write per chunk instead of
// one per network read.
type Buffer struct {
	limiter   *Limiter
	chunkSize int64
	buf       bytes.Buffer
}

// NewBuffer creates a Buffer that emits chunks of chunkSize bytes, staging
// against limiter for back-pressure.
func NewBuffer(limiter *Limiter, chunkSize int64) *Buffer {
	return &Buffer{limiter: limiter, chunkSize: chunkSize}
}

// Write stages data, blocking on the shared Limiter until room is
// available. It returns a non-nil chunk once the accumulated size reaches
// chunkSize; the caller owns the returned slice and must call Release with
// its length once it has been written out.
func (b *Buffer) Write(ctx context.Context, data []byte) ([]byte, error) {
	if err := b.limiter.Acquire(ctx, int64(len(data))); err != nil {
		return nil, err
	}

	b.buf.Write(data)

	if int64(b.buf.Len()) < b.chunkSize {
		return nil, nil
	}

	return b.drain(), nil
}

// Flush emits whatever is currently staged, even if below chunkSize. Used
// once a worker reaches the end of its assigned range.
func (b *Buffer) Flush() []byte {
	if b.buf.Len() == 0 {
		return nil
	}

	return b.drain()
}

func (b *Buffer) drain() []byte {
	chunk := make([]byte, b.buf.Len())
	copy(chunk, b.buf.Bytes())
	b.buf.Reset()

	return chunk
}

// Release returns n bytes to the shared Limiter after chunk has been
// durably written.
func (b *Buffer) Release(n int64) {
	b.limiter.Release(n)
}

// Discard drops whatever is currently staged without writing it out,
// releasing its capacity back to the Limiter. A retried attempt calls this
// before refetching so bytes staged by the failed attempt never mix with
// the bytes the retry reads from the network.
func (b *Buffer) Discard() {
	if b.buf.Len() == 0 {
		return
	}

	n := int64(b.buf.Len())
	b.buf.Reset()
	b.limiter.Release(n)
}
