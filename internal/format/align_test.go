package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignUp(t *testing.T) {
	cases := []struct {
		n, align, want uint64
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{17, 16, 32},
		{4095, 4096, 4096},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AlignUp(c.n, c.align), "AlignUp(%d, %d)", c.n, c.align)
	}
}

func TestAlignDown(t *testing.T) {
	cases := []struct {
		n, align, want uint64
	}{
		{0, 8, 0},
		{7, 8, 0},
		{8, 8, 8},
		{15, 8, 8},
		{4097, 4096, 4096},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AlignDown(c.n, c.align), "AlignDown(%d, %d)", c.n, c.align)
	}
}

func TestIsAligned(t *testing.T) {
	assert.True(t, IsAligned(0, 8))
	assert.True(t, IsAligned(64, 8))
	assert.False(t, IsAligned(63, 8))
}

func TestIsPowerOfTwo(t *testing.T) {
	assert.False(t, IsPowerOfTwo(0))
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(8))
	assert.False(t, IsPowerOfTwo(12))
	assert.True(t, IsPowerOfTwo(1<<32))
}

func TestPutReadU64(t *testing.T) {
	b := make([]byte, 16)
	PutU64(b, 8, 0xDEADBEEFCAFE)
	assert.Equal(t, uint64(0xDEADBEEFCAFE), ReadU64(b, 8))
	assert.Equal(t, uint64(0), ReadU64(b, 0))
}
