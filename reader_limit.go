package fracpack

import (
	"bytes"
	"fmt"
	"io"
)

// ReadAll reads r to EOF into a new slice, failing with ErrMessageTooLarge if
// more than limit bytes arrive. A limit <= 0 means no limit.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	src := r
	if limit > 0 {
		// One byte past the limit distinguishes "exactly limit" from "too large".
		src = &io.LimitedReader{R: r, N: limit + 1}
	}
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, err
	}
	if limit > 0 && int64(buf.Len()) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrMessageTooLarge, limit)
	}
	return bytes.Clone(buf.Bytes()), nil
}
