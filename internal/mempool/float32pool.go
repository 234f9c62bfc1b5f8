// Package mempool recycles the float32 buffers used for inference tensors.
package mempool

import (
	"sync"
	"sync/atomic"
)

// bucketStep is the granularity of pooled buffer sizes, in elements.
const bucketStep = 4096

var (
	pools  sync.Map // bucket size -> *sync.Pool of *[]float32
	reused atomic.Int64
	fresh  atomic.Int64
)

func bucket(n int) int {
	if n <= bucketStep {
		return bucketStep
	}
	return (n + bucketStep - 1) / bucketStep * bucketStep
}

func poolFor(size int) *sync.Pool {
	if p, ok := pools.Load(size); ok {
		return p.(*sync.Pool)
	}
	p, _ := pools.LoadOrStore(size, &sync.Pool{})
	return p.(*sync.Pool)
}

// GetFloat32 returns a buffer of length n. Its contents are not zeroed; the
// caller must overwrite every element it reads.
func GetFloat32(n int) []float32 {
	if n <= 0 {
		return nil
	}
	size := bucket(n)
	if v := poolFor(size).Get(); v != nil {
		buf := *(v.(*[]float32))
		reused.Add(1)
		return buf[:n]
	}
	fresh.Add(1)
	return make([]float32, n, size)
}

// PutFloat32 hands buf back for reuse. Buffers that did not come from
// GetFloat32 are dropped. buf must not be used afterwards.
func PutFloat32(buf []float32) {
	c := cap(buf)
	if c == 0 || c%bucketStep != 0 {
		return
	}
	buf = buf[:c]
	poolFor(c).Put(&buf)
}

// Stats reports how many GetFloat32 calls were served from the pool and how
// many allocated.
func Stats() (reusedBuffers, allocatedBuffers int64) {
	return reused.Load(), fresh.Load()
}
