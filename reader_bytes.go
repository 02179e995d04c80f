package fracpack

import "fmt"

// Len returns the size of the input.
func (r *Reader) Len() int { return len(r.B) }

// Available returns the number of bytes from pos to the end of the input.
func (r *Reader) Available(pos uint32) int {
	if int(pos) >= len(r.B) {
		return 0
	}
	return len(r.B) - int(pos)
}

// need checks that n bytes are readable at pos.
func (r *Reader) need(pos, n uint32) error {
	end, ok := checkedAdd(pos, n)
	if !ok || int(end) > len(r.B) {
		return fmt.Errorf("%w: need %d bytes at %d, have %d", ErrTruncatedData, n, pos, r.Available(pos))
	}
	return nil
}

// take returns the n bytes at *pos and advances it.
func (r *Reader) take(pos *uint32, n uint32) ([]byte, error) {
	if err := r.need(*pos, n); err != nil {
		return nil, err
	}
	b := r.B[*pos : *pos+n : *pos+n]
	*pos += n
	return b, nil
}
