package fracpack

import (
	"reflect"
)

// Pack implements Packable.
func (t *Type) Pack(w *Writer, v reflect.Value) {
	if w.err != nil {
		return
	}
	switch t.Kind {
	case String:
		w.WriteText(v.String())
		return
	case Alias:
		t.Elem.Pack(w, t.aliasValue(v))
		return
	}
	if t.Kind.IsScalar() {
		packScalar(w, t.Kind, v)
		return
	}

	if !w.enter() {
		return
	}
	defer w.leave()
	switch t.Kind {
	case Vector:
		t.packVector(w, v)
	case Array:
		t.packElems(w, v)
	case Optional:
		slot := t.embeddedFixedPack(w, v)
		t.embeddedVariablePack(w, v, slot)
	case Struct, Tuple:
		t.packStruct(w, v)
	case Union:
		t.packUnion(w, v)
	}
}

// Unpack implements Packable.
func (t *Type) Unpack(r *Reader, pos *uint32, v reflect.Value) error {
	if !v.IsValid() || !v.CanSet() {
		return ErrInvalidTarget
	}
	return t.decode(r, pos, v)
}

// Verify implements Packable.
func (t *Type) Verify(r *Reader, pos *uint32) error {
	return t.decode(r, pos, reflect.Value{})
}

// decode is the single traversal behind Unpack and Verify. When v is the zero
// Value nothing is materialized, but every bound and offset is still checked.
func (t *Type) decode(r *Reader, pos *uint32, v reflect.Value) error {
	switch t.Kind {
	case String:
		b, err := r.ReadText(pos)
		if err == nil && v.IsValid() {
			v.SetString(string(b))
		}
		return err
	case Alias:
		return t.Elem.decode(r, pos, t.aliasTarget(v))
	}
	if t.Kind.IsScalar() {
		return decodeScalar(r, pos, t.Kind, v)
	}

	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()
	switch t.Kind {
	case Vector:
		return t.decodeVector(r, pos, v)
	case Array:
		return t.decodeElems(r, pos, v, uint32(t.Len))
	case Optional:
		return t.decodeOptional(r, pos, v)
	case Struct, Tuple:
		return t.decodeStruct(r, pos, v)
	case Union:
		return t.decodeUnion(r, pos, v)
	}
	return ErrUnsupportedType
}
