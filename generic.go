package fracpack

import (
	"io"
	"reflect"
)

// std is the strict codec behind the package-level functions.
var std = New(Options{})

// Pack encodes v with the default, strict codec.
func Pack(v any) ([]byte, error) { return std.Pack(v) }

// MustPack is like Pack but panics on error. It is intended for values whose
// types are known to be packable, such as fixtures and constants.
func MustPack(v any) []byte {
	b, err := std.Pack(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Unpack decodes data into v, which must be a non-nil pointer.
func Unpack(data []byte, v any) error { return std.Unpack(data, v) }

// Unpacked decodes data as a T.
func Unpacked[T any](data []byte) (T, error) {
	var v T
	err := std.Unpack(data, &v)
	return v, err
}

// Verify checks that data holds exactly one valid T without decoding it.
func Verify[T any](data []byte) error {
	return std.Verify(data, reflect.TypeFor[T]())
}

// FixedSizeOf returns the fixed-region footprint of T.
func FixedSizeOf[T any]() (uint32, error) {
	t, err := std.describe(reflect.TypeFor[T]())
	if err != nil {
		return 0, err
	}
	return t.FixedSize(), nil
}

// WriteTo packs v and writes the encoding to dst.
func WriteTo(dst io.Writer, v any) (int64, error) {
	w := getWriter()
	defer putWriter(w)
	if err := std.PackTo(w, v); err != nil {
		return 0, err
	}
	n, err := w.WriteTo(dst)
	if err == nil && n < int64(w.Len()) {
		return n, io.ErrShortWrite
	}
	return n, err
}

// ReadFrom reads a whole message of at most limit bytes from src and unpacks it into v.
func ReadFrom(src io.Reader, limit int64, v any) (int64, error) {
	data, err := ReadAll(src, limit)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), std.Unpack(data, v)
}
