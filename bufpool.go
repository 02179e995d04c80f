package fracpack

import (
	"bytes"
	"sync"
)

// writerPool reuses Writers across Pack calls.
// This reduces GC pressure by avoiding a fresh growth sequence for every value.
var writerPool = sync.Pool{
	New: func() any {
		// A 4KB default is chosen to avoid re-allocations for common call payloads.
		return NewWriter(make([]byte, 0, 4096))
	},
}

// maxPooledWriter keeps one oversized value from pinning a large buffer in the pool.
const maxPooledWriter = 64 * 1024

func getWriter() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

func putWriter(w *Writer) {
	if cap(w.B) > maxPooledWriter {
		return
	}
	writerPool.Put(w)
}

// bytesBufPool reuses buffers for reading whole messages from a stream.
var bytesBufPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}
