package fracpack

import (
	"fmt"
	"reflect"
)

// Packable is the per-type contract of the fracpack encoding.
type Packable interface {
	// FixedSize is the number of bytes the type occupies in a parent's fixed region.
	FixedSize() uint32

	// IsVariableSize reports whether the type is stored on the parent's heap,
	// behind a 4-byte relative offset in the fixed region.
	IsVariableSize() bool

	// Pack appends the encoding of v to w. Errors are latched in w.
	Pack(w *Writer, v reflect.Value)

	// Unpack decodes the value at *pos into v, which must be settable, and
	// advances *pos past the value and everything it owns on the heap.
	Unpack(r *Reader, pos *uint32, v reflect.Value) error

	// Verify validates the value at *pos without materializing it.
	// It fails exactly when Unpack fails, with the same error.
	Verify(r *Reader, pos *uint32) error
}

// Options controls decoding policy.
type Options struct {
	// TolerateUnknownVariants makes Unpack and Verify skip a union whose
	// discriminant is out of range, using its declared payload size. When
	// false, both fail with ErrBadEnumIndex.
	TolerateUnknownVariants bool

	// MaxDepth bounds composite nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

func (o Options) normalize() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

// Codec packs, unpacks and verifies Go values with a fixed decode policy.
// A Codec holds no per-call state and is safe for concurrent use.
type Codec struct {
	opts Options
	reg  *Registry
}

// New returns a Codec using the default registry.
func New(opts Options) *Codec {
	return NewWithRegistry(DefaultRegistry, opts)
}

// NewWithRegistry returns a Codec describing types through reg.
func NewWithRegistry(reg *Registry, opts Options) *Codec {
	return &Codec{opts: opts.normalize(), reg: reg}
}

// Options returns the decode policy of c.
func (c *Codec) Options() Options { return c.opts }

// Registry returns the registry c describes types with.
func (c *Codec) Registry() *Registry { return c.reg }

// describe resolves the descriptor of a top-level value; pointers there are transparent.
func (c *Codec) describe(rt reflect.Type) (*Type, error) {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return c.reg.Type(rt)
}

// Pack encodes v into a new byte slice.
func (c *Codec) Pack(v any) ([]byte, error) {
	w := getWriter()
	defer putWriter(w)
	if err := c.PackTo(w, v); err != nil {
		return nil, err
	}
	return append([]byte(nil), w.Bytes()...), nil
}

// PackTo appends the encoding of v to w.
func (c *Codec) PackTo(w *Writer, v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ErrNilValue
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ErrNilValue
	}
	t, err := c.reg.Type(rv.Type())
	if err != nil {
		return err
	}
	w.limit = c.opts.MaxDepth
	t.Pack(w, rv)
	return w.Err()
}

// Unpack decodes data into v, which must be a non-nil pointer.
// The whole of data must be consumed.
func (c *Codec) Unpack(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrInvalidTarget
	}
	rv = rv.Elem()
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}
	t, err := c.reg.Type(rv.Type())
	if err != nil {
		return err
	}

	r := NewReader(data, c.opts)
	var pos uint32
	if err := t.Unpack(r, &pos, rv); err != nil {
		return err
	}
	return checkTrailing(data, pos)
}

// Verify checks that data holds exactly one valid value of type rt.
func (c *Codec) Verify(data []byte, rt reflect.Type) error {
	t, err := c.describe(rt)
	if err != nil {
		return err
	}
	return c.VerifyType(data, t)
}

// VerifyType checks that data holds exactly one valid value described by t.
func (c *Codec) VerifyType(data []byte, t Packable) error {
	if t == nil {
		return fmt.Errorf("%w: verify without a type", ErrNilValue)
	}
	r := NewReader(data, c.opts)
	var pos uint32
	if err := t.Verify(r, &pos); err != nil {
		return err
	}
	return checkTrailing(data, pos)
}
