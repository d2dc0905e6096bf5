package buffer

import "sync"

// Pool hands out Buffers of one fixed capacity. A buffer is owned by a
// single connection between Get and Put.
type Pool struct {
	size int
	pool sync.Pool
}

// NewPool creates a pool of buffers with the given capacity
func NewPool(size int) *Pool {
	p := &Pool{size: size}
	p.pool.New = func() interface{} {
		return New(size)
	}
	return p
}

// Get returns an empty buffer
func (p *Pool) Get() *Buffer {
	b := p.pool.Get().(*Buffer)
	b.Reset()
	return b
}

// Put returns a buffer to the pool
func (p *Pool) Put(b *Buffer) {
	if b == nil || b.Cap() != p.size {
		// Non-standard size, let GC handle it
		return
	}
	b.Reset()
	p.pool.Put(b)
}
