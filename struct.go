package fracpack

import (
	"fmt"
	"reflect"
)

// packStruct writes a struct or tuple: the u16 fixed-region size unless frozen,
// then one slot per field, then the heap payloads of variable-size fields in
// field order. Each offset slot is reserved during the first pass and patched
// in the second, when the heap has grown to where its payload begins.
func (t *Type) packStruct(w *Writer, v reflect.Value) {
	var prefix Slot
	if !t.Frozen {
		prefix = w.Reserve(2)
	}
	start := w.Len()

	slots := make([]Slot, len(t.Fields))
	for i := range t.Fields {
		f := &t.Fields[i]
		slots[i] = f.Type.embeddedFixedPack(w, f.value(v))
	}

	if !t.Frozen {
		fixed := w.Len() - start
		if fixed > maxFixedRegion {
			w.setError(fmt.Errorf("%w: %s uses %d bytes", ErrFixedRegionTooLarge, t, fixed))
			return
		}
		w.PatchUint16(prefix, uint16(fixed))
	}

	for i := range t.Fields {
		f := &t.Fields[i]
		f.Type.embeddedVariablePack(w, f.value(v), slots[i])
	}
}

// decodeStruct mirrors packStruct. The fixed region ends at a boundary given by
// the prefix (or the static size when frozen); the heap starts there.
//
// An older writer may have stopped the fixed region before trailing optional
// fields; those decode as absent. A region longer than the known fields is
// rejected with ErrUnknownFields.
func (t *Type) decodeStruct(r *Reader, pos *uint32, v reflect.Value) error {
	size := t.innerSize
	if !t.Frozen {
		prefix, err := r.ReadUint16(pos)
		if err != nil {
			return err
		}
		size = uint32(prefix)
	}

	fixed := *pos
	end, ok := checkedAdd(fixed, size)
	if !ok {
		return fmt.Errorf("%w: fixed region of %d bytes at %d", ErrBadOffset, size, fixed)
	}
	if err := r.need(fixed, size); err != nil {
		return err
	}

	heap := end
	for i := range t.Fields {
		f := &t.Fields[i]
		if next, ok := checkedAdd(fixed, f.Type.fixedSize); !ok || next > end {
			if fixed == end && f.Type.Kind == Optional {
				if fv := f.target(v); fv.IsValid() {
					fv.SetZero()
				}
				continue
			}
			return fmt.Errorf("%w: field %s of %s crosses the fixed region end at %d", ErrBadOffset, f.Name, t, end)
		}
		if err := f.Type.embeddedDecode(r, &fixed, &heap, f.target(v)); err != nil {
			return err
		}
	}
	if fixed != end {
		return fmt.Errorf("%w: %d bytes in %s", ErrUnknownFields, end-fixed, t)
	}

	*pos = heap
	return nil
}

func (t *Type) fieldIndex(name string) int {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// FieldByName returns the field with the given wire name.
func (t *Type) FieldByName(name string) (Field, bool) {
	if i := t.fieldIndex(name); i >= 0 {
		return t.Fields[i], true
	}
	return Field{}, false
}
