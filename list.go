package fracpack

import (
	"fmt"
	"reflect"
)

// packVector writes a u32 element count followed by the elements laid out
// like the fields of a frozen struct.
func (t *Type) packVector(w *Writer, v reflect.Value) {
	n, ok := toUint32(v.Len())
	if !ok {
		w.setError(fmt.Errorf("%w: vector of %d elements", ErrOffsetOverflow, v.Len()))
		return
	}
	w.WriteUint32(n)
	if t.Elem.Kind == Uint8 {
		_, _ = w.Write(v.Bytes())
		return
	}
	t.packElems(w, v)
}

// packElems writes the elements of a vector or array without a count.
func (t *Type) packElems(w *Writer, v reflect.Value) {
	elem := t.Elem
	n := v.Len()
	if !elem.variable {
		for i := 0; i < n; i++ {
			elem.Pack(w, v.Index(i))
		}
		return
	}

	slots := make([]Slot, n)
	for i := 0; i < n; i++ {
		slots[i] = elem.embeddedFixedPack(w, v.Index(i))
	}
	for i := 0; i < n; i++ {
		elem.embeddedVariablePack(w, v.Index(i), slots[i])
	}
}

func (t *Type) decodeVector(r *Reader, pos *uint32, v reflect.Value) error {
	n, err := r.ReadUint32(pos)
	if err != nil {
		return err
	}
	if t.Elem.Kind == Uint8 {
		b, err := r.ReadBytes(pos, n)
		if err == nil && v.IsValid() {
			if n == 0 {
				v.SetZero()
			} else {
				v.SetBytes(append([]byte(nil), b...))
			}
		}
		return err
	}
	return t.decodeElems(r, pos, v, n)
}

// decodeElems decodes n elements. The element fixed regions are bounds-checked
// as a whole before anything is allocated, so a forged count cannot force a
// large allocation.
func (t *Type) decodeElems(r *Reader, pos *uint32, v reflect.Value, n uint32) error {
	elem := t.Elem
	size, ok := checkedMul(n, elem.fixedSize)
	if !ok {
		return fmt.Errorf("%w: %d elements of %d bytes", ErrTruncatedData, n, elem.fixedSize)
	}
	if err := r.need(*pos, size); err != nil {
		return err
	}
	if v.IsValid() && t.Kind == Vector {
		if n == 0 {
			v.SetZero()
		} else {
			v.Set(reflect.MakeSlice(v.Type(), int(n), int(n)))
		}
	}

	fixed := *pos
	heap := fixed + size
	for i := uint32(0); i < n; i++ {
		var ev reflect.Value
		if v.IsValid() {
			ev = v.Index(int(i))
		}
		if err := elem.embeddedDecode(r, &fixed, &heap, ev); err != nil {
			return err
		}
	}
	*pos = heap
	return nil
}
