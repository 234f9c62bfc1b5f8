package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucket(t *testing.T) {
	assert.Equal(t, bucketStep, bucket(1))
	assert.Equal(t, bucketStep, bucket(bucketStep))
	assert.Equal(t, 2*bucketStep, bucket(bucketStep+1))
	assert.Equal(t, 300*bucketStep, bucket(3*640*640))
}

func TestGetFloat32(t *testing.T) {
	buf := GetFloat32(100)
	assert.Len(t, buf, 100)
	assert.Equal(t, bucketStep, cap(buf))

	assert.Nil(t, GetFloat32(0))
	assert.Nil(t, GetFloat32(-3))
}

func TestPutThenGetReuses(t *testing.T) {
	const n = 3 * 64 * 64
	buf := GetFloat32(n)
	buf[0] = 42
	PutFloat32(buf)

	// sync.Pool may drop entries at any GC, so only the shape is guaranteed.
	again := GetFloat32(n)
	assert.Len(t, again, n)
	assert.Equal(t, bucket(n), cap(again))
}

func TestPutForeignBuffers(t *testing.T) {
	assert.NotPanics(t, func() {
		PutFloat32(nil)
		PutFloat32(make([]float32, 10))
		PutFloat32(make([]float32, 0, 3*bucketStep))
	})
}

func TestStats(t *testing.T) {
	r0, a0 := Stats()
	buf := GetFloat32(7 * bucketStep)
	PutFloat32(buf)
	_ = GetFloat32(7 * bucketStep)
	r1, a1 := Stats()
	assert.Equal(t, int64(2), (r1-r0)+(a1-a0))
}

func BenchmarkGetPut(b *testing.B) {
	for b.Loop() {
		buf := GetFloat32(3 * 640 * 640)
		PutFloat32(buf)
	}
}
