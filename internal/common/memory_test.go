package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMemoryStats(t *testing.T) {
	stats := GetMemoryStats()
	assert.Positive(t, stats.Alloc)
	assert.Positive(t, stats.TotalAlloc)
	assert.Positive(t, stats.Sys)
	assert.Positive(t, stats.HeapInuse)

	str := stats.String()
	assert.Contains(t, str, "Alloc:")
	assert.Contains(t, str, "Heap:")
	assert.Contains(t, str, "KB")
}
