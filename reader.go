package fracpack

import (
	"fmt"
	"math"
)

// DefaultMaxDepth bounds composite nesting while packing and decoding.
const DefaultMaxDepth = 256

// Reader decodes fracpack data from an immutable byte slice.
// Positions are explicit: every read takes a cursor and advances it,
// so a composite value can walk its fixed region and its heap independently.
// Readers over distinct buffers share no state.
type Reader struct {
	B     []byte
	opts  Options
	depth int
}

// NewReader creates a Reader over b.
func NewReader(b []byte, opts Options) *Reader {
	return &Reader{B: b, opts: opts.normalize()}
}

// Options returns the decode policy of the reader.
func (r *Reader) Options() Options { return r.opts }

func (r *Reader) enter() error {
	r.depth++
	if r.depth > r.opts.MaxDepth {
		return fmt.Errorf("%w: limit %d", ErrDepthExceeded, r.opts.MaxDepth)
	}
	return nil
}

func (r *Reader) leave() { r.depth-- }

// --- Primitive Read Operations ---

func (r *Reader) ReadUint8(pos *uint32) (uint8, error) {
	b, err := r.take(pos, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadBool(pos *uint32) (bool, error) {
	at := *pos
	b, err := r.ReadUint8(pos)
	if err != nil {
		return false, err
	}
	if b > 1 {
		return false, fmt.Errorf("%w: bool 0x%02x at %d", ErrBadScalar, b, at)
	}
	return b == 1, nil
}

func (r *Reader) ReadUint16(pos *uint32) (uint16, error) {
	b, err := r.take(pos, 2)
	if err != nil {
		return 0, err
	}
	return Order.Uint16(b), nil
}

func (r *Reader) ReadUint32(pos *uint32) (uint32, error) {
	b, err := r.take(pos, 4)
	if err != nil {
		return 0, err
	}
	return Order.Uint32(b), nil
}

func (r *Reader) ReadUint64(pos *uint32) (uint64, error) {
	b, err := r.take(pos, 8)
	if err != nil {
		return 0, err
	}
	return Order.Uint64(b), nil
}

func (r *Reader) ReadFloat32(pos *uint32) (float32, error) {
	v, err := r.ReadUint32(pos)
	return math.Float32frombits(v), err
}

func (r *Reader) ReadFloat64(pos *uint32) (float64, error) {
	v, err := r.ReadUint64(pos)
	return math.Float64frombits(v), err
}

// ReadBytes returns the n bytes at *pos without copying.
func (r *Reader) ReadBytes(pos *uint32, n uint32) ([]byte, error) {
	return r.take(pos, n)
}

// ReadText reads a u32 length prefix and that many UTF-8 bytes.
func (r *Reader) ReadText(pos *uint32) ([]byte, error) {
	n, err := r.ReadUint32(pos)
	if err != nil {
		return nil, err
	}
	at := *pos
	b, err := r.take(pos, n)
	if err != nil {
		return nil, err
	}
	if !validString(b) {
		return nil, fmt.Errorf("%w: at %d", ErrBadUTF8, at)
	}
	return b, nil
}
