package fracpack

// Slot is a handle to bytes reserved in a Writer and filled in later by a patch.
// The zero Slot reserves nothing.
type Slot struct {
	pos  int
	size int
}

// Pos returns the buffer position of the slot.
func (s Slot) Pos() int { return s.pos }

// Valid reports whether the slot reserves any bytes.
func (s Slot) Valid() bool { return s.size > 0 }

// Reserve appends n zero bytes and returns a handle for patching them.
func (w *Writer) Reserve(n int) Slot {
	if w.err != nil || n <= 0 {
		return Slot{}
	}
	s := Slot{pos: len(w.B), size: n}
	w.WriteZeros(n)
	return s
}

// PatchUint16 fills a 2-byte slot.
func (w *Writer) PatchUint16(s Slot, v uint16) {
	if w.err != nil {
		return
	}
	if s.size != 2 || s.pos+2 > len(w.B) {
		w.setError(ErrInvalidPatch)
		return
	}
	Order.PutUint16(w.B[s.pos:], v)
}

// PatchUint32 fills a 4-byte slot.
func (w *Writer) PatchUint32(s Slot, v uint32) {
	if w.err != nil {
		return
	}
	if s.size != 4 || s.pos+4 > len(w.B) {
		w.setError(ErrInvalidPatch)
		return
	}
	Order.PutUint32(w.B[s.pos:], v)
}

// PatchOffset fills a 4-byte slot with the distance from the slot to the
// current end of the buffer, where the slot's payload is about to be appended.
func (w *Writer) PatchOffset(s Slot) {
	off, ok := toUint32(len(w.B) - s.pos)
	if !ok {
		w.setError(ErrOffsetOverflow)
		return
	}
	w.PatchUint32(s, off)
}

// PatchSizeSince fills a 4-byte slot with the number of bytes written after it.
func (w *Writer) PatchSizeSince(s Slot) {
	n, ok := toUint32(len(w.B) - s.pos - s.size)
	if !ok {
		w.setError(ErrOffsetOverflow)
		return
	}
	w.PatchUint32(s, n)
}
