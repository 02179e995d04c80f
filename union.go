package fracpack

import (
	"bytes"
	"fmt"
	"reflect"
)

// UnknownVariant holds a union payload whose discriminant is not declared.
// A union struct may carry a *UnknownVariant field: decoding under the
// tolerant policy stores skipped variants there, and packing a union with no
// case set writes it back unchanged.
type UnknownVariant struct {
	Index   uint8
	Payload []byte
}

// activeCase returns the index of the single non-nil case, or -1 if none is set.
func (t *Type) activeCase(v reflect.Value) (int, error) {
	idx := -1
	for i := range t.Cases {
		if v.Field(t.Cases[i].index).IsNil() {
			continue
		}
		if idx >= 0 {
			return -1, fmt.Errorf("%w: %s has %s and %s", ErrAmbiguousVariant, t, t.Cases[idx].Name, t.Cases[i].Name)
		}
		idx = i
	}
	return idx, nil
}

func (t *Type) unknownVariant(v reflect.Value) *UnknownVariant {
	if t.unknown < 0 {
		return nil
	}
	u, _ := v.Field(t.unknown).Interface().(*UnknownVariant)
	return u
}

// packUnion writes the discriminant, reserves the u32 payload size, packs the
// case payload and patches the size with the bytes written after the slot.
func (t *Type) packUnion(w *Writer, v reflect.Value) {
	idx, err := t.activeCase(v)
	if err != nil {
		w.setError(err)
		return
	}
	if idx < 0 {
		u := t.unknownVariant(v)
		if u == nil {
			w.setError(fmt.Errorf("%w: %s", ErrNoVariant, t))
			return
		}
		if int(u.Index) < len(t.Cases) {
			w.setError(fmt.Errorf("%w: unknown variant %d is declared by %s", ErrBadEnumIndex, u.Index, t))
			return
		}
		w.WriteUint8(u.Index)
		w.WriteBytes(u.Payload)
		return
	}

	c := &t.Cases[idx]
	w.WriteUint8(uint8(idx))
	size := w.Reserve(4)
	c.Type.Pack(w, v.Field(c.index).Elem())
	w.PatchSizeSince(size)
}

func (t *Type) clearCases(v reflect.Value) {
	for i := range t.Cases {
		v.Field(t.Cases[i].index).SetZero()
	}
	if t.unknown >= 0 {
		v.Field(t.unknown).SetZero()
	}
}

// decodeUnion reads the discriminant and payload size, then decodes the case.
// The payload must consume exactly the declared size.
func (t *Type) decodeUnion(r *Reader, pos *uint32, v reflect.Value) error {
	at := *pos
	idx, err := r.ReadUint8(pos)
	if err != nil {
		return err
	}
	size, err := r.ReadUint32(pos)
	if err != nil {
		return err
	}
	start := *pos
	if err := r.need(start, size); err != nil {
		return err
	}
	end := start + size

	if int(idx) >= len(t.Cases) {
		if !r.opts.TolerateUnknownVariants {
			return fmt.Errorf("%w: %d at %d, %s has %d variants", ErrBadEnumIndex, idx, at, t, len(t.Cases))
		}
		if v.IsValid() {
			t.clearCases(v)
			if t.unknown >= 0 {
				u := &UnknownVariant{Index: idx, Payload: bytes.Clone(r.B[start:end])}
				v.Field(t.unknown).Set(reflect.ValueOf(u))
			}
		}
		*pos = end
		return nil
	}

	c := &t.Cases[idx]
	var cv reflect.Value
	if v.IsValid() {
		t.clearCases(v)
		field := v.Field(c.index)
		p := reflect.New(field.Type().Elem())
		field.Set(p)
		cv = p.Elem()
	}
	if err := c.Type.decode(r, pos, cv); err != nil {
		return err
	}
	if *pos != end {
		return fmt.Errorf("%w: variant %s declared %d bytes, used %d", ErrBadSize, c.Name, size, *pos-start)
	}
	return nil
}

// CaseByName returns the union case with the given wire name and its discriminant.
func (t *Type) CaseByName(name string) (Case, int, bool) {
	for i := range t.Cases {
		if t.Cases[i].Name == name {
			return t.Cases[i], i, true
		}
	}
	return Case{}, -1, false
}
