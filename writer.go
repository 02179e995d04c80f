package fracpack

import (
	"io"
	"math"
)

// Writer is a growable output buffer for packing fracpack values.
// It tracks the first error that occurs; after an error, all subsequent
// write operations become no-ops. A Writer has a single owner for the
// duration of a pack call.
type Writer struct {
	B     []byte
	err   error // first error encountered. Subsequent writes become no-ops.
	depth int
	limit int
}

var (
	_ io.Writer       = (*Writer)(nil)
	_ io.ByteWriter   = (*Writer)(nil)
	_ io.StringWriter = (*Writer)(nil)
	_ io.WriterTo     = (*Writer)(nil)
)

// NewWriter creates a Writer that appends to buf[:0].
func NewWriter(buf []byte) *Writer {
	return &Writer{B: buf[:0], limit: DefaultMaxDepth}
}

func (w *Writer) Len() int      { return len(w.B) }
func (w *Writer) Bytes() []byte { return w.B }
func (w *Writer) Err() error    { return w.err }

// Reset empties the buffer and clears the latched error, keeping capacity.
func (w *Writer) Reset() {
	w.B = w.B[:0]
	w.err = nil
	w.depth = 0
	if w.limit == 0 {
		w.limit = DefaultMaxDepth
	}
}

// setError records the first non-nil error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// enter tracks nesting while packing; pointer cycles in a value graph stop here.
func (w *Writer) enter() bool {
	w.depth++
	if w.limit > 0 && w.depth > w.limit {
		w.setError(ErrDepthExceeded)
		return false
	}
	return true
}

func (w *Writer) leave() { w.depth-- }

// Write implements the io.Writer interface.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.B = append(w.B, p...)
	return len(p), nil
}

// WriteByte implements the io.ByteWriter interface.
func (w *Writer) WriteByte(c byte) error {
	if w.err != nil {
		return w.err
	}
	w.B = append(w.B, c)
	return nil
}

// WriteString implements the io.StringWriter interface.
func (w *Writer) WriteString(s string) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.B = append(w.B, s...)
	return len(s), nil
}

// WriteTo copies the packed bytes to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := dst.Write(w.B)
	return int64(n), err
}

// --- Primitive Write Operations ---

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

func (w *Writer) WriteUint8(v uint8) {
	if w.err != nil {
		return
	}
	w.B = append(w.B, v)
}

func (w *Writer) WriteUint16(v uint16) {
	if w.err != nil {
		return
	}
	w.B = Order.AppendUint16(w.B, v)
}

func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	w.B = Order.AppendUint32(w.B, v)
}

func (w *Writer) WriteUint64(v uint64) {
	if w.err != nil {
		return
	}
	w.B = Order.AppendUint64(w.B, v)
}

func (w *Writer) WriteInt8(v int8)   { w.WriteUint8(uint8(v)) }
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteBytes writes b with a u32 length prefix.
func (w *Writer) WriteBytes(b []byte) {
	n, ok := toUint32(len(b))
	if !ok {
		w.setError(ErrOffsetOverflow)
		return
	}
	w.WriteUint32(n)
	_, _ = w.Write(b)
}

// WriteText writes s with a u32 length prefix.
func (w *Writer) WriteText(s string) {
	n, ok := toUint32(len(s))
	if !ok {
		w.setError(ErrOffsetOverflow)
		return
	}
	w.WriteUint32(n)
	_, _ = w.WriteString(s)
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) {
	if w.err != nil || n <= 0 {
		return
	}
	w.B = append(w.B, make([]byte, n)...)
}
