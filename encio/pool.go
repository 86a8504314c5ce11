package encio

import (
	"math/bits"
	"sync"
)

// buffers[i] holds buffers with a cap of 1<<i.
var buffers [32]sync.Pool

// GetBuffer returns a buffer with a len of n from the pool.
// Buffers larger than 2GB are allocated.
func GetBuffer(n int) []byte {
	if n <= 0 {
		return []byte{}
	}

	i := bits.Len(uint(n - 1))
	if i >= len(buffers) {
		return make([]byte, n)
	}

	if b, ok := buffers[i].Get().(*[]byte); ok {
		return (*b)[:n]
	}
	return make([]byte, n, 1<<i)
}

// PutBuffer places a buffer in the pool.
// Buffers that didn't come from GetBuffer are discarded.
func PutBuffer(buff []byte) {
	c := cap(buff)
	if c == 0 || c&(c-1) != 0 {
		return
	}

	i := bits.Len(uint(c)) - 1
	if i >= len(buffers) {
		return
	}
	buff = buff[:0]
	buffers[i].Put(&buff)
}
