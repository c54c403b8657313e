package proxy

import (
	"sync"
)

// relayBufferSize is the copy buffer per relay direction. A tunable, not a
// correctness parameter.
const relayBufferSize = 32 * 1024

type bufferPool struct {
	pool sync.Pool
}

func newBufferPool(size int) *bufferPool {
	bp := &bufferPool{}
	bp.pool.New = func() any {
		b := make([]byte, size)
		return &b
	}
	return bp
}

func (p *bufferPool) Get() []byte {
	return *p.pool.Get().(*[]byte)
}

func (p *bufferPool) Put(b []byte) {
	// The pointer indirection costs one small allocation per Put, but
	// putting the slice header into the interface directly would
	// allocate the same amount.
	p.pool.Put(&b)
}
