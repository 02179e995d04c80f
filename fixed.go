package fracpack

import (
	"reflect"

	"golang.org/x/exp/constraints"
)

func packScalar(w *Writer, k Kind, v reflect.Value) {
	switch k {
	case Bool:
		w.WriteBool(v.Bool())
	case Uint8:
		w.WriteUint8(uint8(v.Uint()))
	case Uint16:
		w.WriteUint16(uint16(v.Uint()))
	case Uint32:
		w.WriteUint32(uint32(v.Uint()))
	case Uint64:
		w.WriteUint64(v.Uint())
	case Int8:
		w.WriteInt8(int8(v.Int()))
	case Int16:
		w.WriteInt16(int16(v.Int()))
	case Int32:
		w.WriteInt32(int32(v.Int()))
	case Int64:
		w.WriteInt64(v.Int())
	case Float32:
		w.WriteFloat32(float32(v.Float()))
	case Float64:
		w.WriteFloat64(v.Float())
	}
}

// decodeScalar reads a scalar at *pos, storing it in v unless v is the zero Value.
func decodeScalar(r *Reader, pos *uint32, k Kind, v reflect.Value) error {
	switch k {
	case Bool:
		b, err := r.ReadBool(pos)
		if err == nil && v.IsValid() {
			v.SetBool(b)
		}
		return err
	case Uint8:
		x, err := r.ReadUint8(pos)
		return setUint(v, x, err)
	case Uint16:
		x, err := r.ReadUint16(pos)
		return setUint(v, x, err)
	case Uint32:
		x, err := r.ReadUint32(pos)
		return setUint(v, x, err)
	case Uint64:
		x, err := r.ReadUint64(pos)
		return setUint(v, x, err)
	case Int8:
		x, err := r.ReadUint8(pos)
		return setInt(v, int8(x), err)
	case Int16:
		x, err := r.ReadUint16(pos)
		return setInt(v, int16(x), err)
	case Int32:
		x, err := r.ReadUint32(pos)
		return setInt(v, int32(x), err)
	case Int64:
		x, err := r.ReadUint64(pos)
		return setInt(v, int64(x), err)
	case Float32:
		x, err := r.ReadFloat32(pos)
		return setFloat(v, x, err)
	case Float64:
		x, err := r.ReadFloat64(pos)
		return setFloat(v, x, err)
	}
	return ErrUnsupportedType
}

func setUint[T constraints.Unsigned](v reflect.Value, x T, err error) error {
	if err == nil && v.IsValid() {
		v.SetUint(uint64(x))
	}
	return err
}

func setInt[T constraints.Signed](v reflect.Value, x T, err error) error {
	if err == nil && v.IsValid() {
		v.SetInt(int64(x))
	}
	return err
}

func setFloat[T constraints.Float](v reflect.Value, x T, err error) error {
	if err == nil && v.IsValid() {
		v.SetFloat(float64(x))
	}
	return err
}
