package fracpack

import (
	"fmt"
	"reflect"
)

// embeddedFixedPack writes v's slot in a parent's fixed region. A fixed-size
// value is written inline. A variable-size value gets a sentinel, or a
// reserved offset slot that embeddedVariablePack patches once the parent's
// heap reaches it.
func (t *Type) embeddedFixedPack(w *Writer, v reflect.Value) Slot {
	if t.Kind == Alias {
		return t.Elem.embeddedFixedPack(w, t.aliasValue(v))
	}
	if !t.variable {
		t.Pack(w, v)
		return Slot{}
	}
	switch {
	case t.Kind == Optional && v.IsNil():
		w.WriteUint32(sentinelAbsent)
		return Slot{}
	case t.Kind == Optional && t.Elem.isContainer() && t.Elem.isEmpty(v.Elem()):
		w.WriteUint32(sentinelEmpty)
		return Slot{}
	case t.isContainer() && t.isEmpty(v):
		w.WriteUint32(sentinelEmpty)
		return Slot{}
	}
	return w.Reserve(4)
}

// embeddedVariablePack patches s with the distance to the heap end and appends v there.
func (t *Type) embeddedVariablePack(w *Writer, v reflect.Value, s Slot) {
	if t.Kind == Alias {
		t.Elem.embeddedVariablePack(w, t.aliasValue(v), s)
		return
	}
	if !s.Valid() {
		return
	}
	w.PatchOffset(s)
	if t.Kind == Optional {
		t.Elem.Pack(w, v.Elem())
		return
	}
	t.Pack(w, v)
}

// embeddedDecode reads v's slot at *fixed. Heap data must start exactly at
// *heap, which then advances past it.
func (t *Type) embeddedDecode(r *Reader, fixed, heap *uint32, v reflect.Value) error {
	if t.Kind == Alias {
		return t.Elem.embeddedDecode(r, fixed, heap, t.aliasTarget(v))
	}
	if !t.variable {
		return t.decode(r, fixed, v)
	}

	slot := *fixed
	off, err := r.ReadUint32(fixed)
	if err != nil {
		return err
	}

	inner := t
	if t.Kind == Optional {
		if off == sentinelAbsent {
			if v.IsValid() {
				v.SetZero()
			}
			return nil
		}
		inner = t.Elem
		if v.IsValid() {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
	}
	if off == sentinelEmpty && inner.isContainer() {
		if v.IsValid() {
			v.SetZero()
		}
		return nil
	}
	if off < minOffset {
		return fmt.Errorf("%w: offset %d at %d", ErrBadOffset, off, slot)
	}
	if at, ok := checkedAdd(slot, off); !ok || at != *heap {
		return fmt.Errorf("%w: offset %d at %d does not reach heap at %d", ErrBadOffset, off, slot, *heap)
	}
	return inner.decode(r, heap, v)
}

// decodeOptional decodes a top-level optional: an offset slot followed by its heap.
func (t *Type) decodeOptional(r *Reader, pos *uint32, v reflect.Value) error {
	if err := r.need(*pos, 4); err != nil {
		return err
	}
	fixed := *pos
	heap := fixed + 4
	if err := t.embeddedDecode(r, &fixed, &heap, v); err != nil {
		return err
	}
	*pos = heap
	return nil
}
