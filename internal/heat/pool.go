package heat

import "sync"

// bufferPool recycles sweep scratch buffers of any length.
type bufferPool[T Float] struct {
	pool sync.Pool
}

func newBufferPool[T Float]() *bufferPool[T] {
	return &bufferPool[T]{
		pool: sync.Pool{
			New: func() interface{} {
				b := make([]T, 0)
				return &b
			},
		},
	}
}

// Get returns a buffer of length n. Contents are unspecified.
func (p *bufferPool[T]) Get(n int) *[]T {
	b := p.pool.Get().(*[]T)
	if cap(*b) < n {
		*b = make([]T, n)
	}
	*b = (*b)[:n]
	return b
}

func (p *bufferPool[T]) Put(b *[]T) {
	p.pool.Put(b)
}
