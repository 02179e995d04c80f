package fracpack

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/constraints"
)

// Order is the byte order of every fracpack scalar.
var Order = binary.LittleEndian

const (
	// maxFixedRegion is the largest fixed region an extensible struct prefix can describe.
	maxFixedRegion = math.MaxUint16

	// sentinelEmpty marks an empty string or vector in an embedded offset slot.
	sentinelEmpty = 0
	// sentinelAbsent marks an absent optional in an embedded offset slot.
	sentinelAbsent = 1
	// minOffset is the smallest offset that can point at heap data.
	minOffset = 4
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// checkedAdd returns a+b and whether the sum stayed within T.
func checkedAdd[T constraints.Unsigned](a, b T) (T, bool) {
	s := a + b
	return s, s >= a
}

// checkedMul returns a*b and whether the product stayed within T.
func checkedMul[T constraints.Unsigned](a, b T) (T, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	return p, p/b == a
}

// toUint32 narrows n, reporting false when it does not fit.
func toUint32[T constraints.Integer](n T) (uint32, bool) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// checkTrailing rejects input that continues past the end of the decoded value.
func checkTrailing(data []byte, end uint32) error {
	if int(end) < len(data) {
		return fmt.Errorf("%w: %d bytes after offset %d", ErrTrailingData, len(data)-int(end), end)
	}
	return nil
}

// lowerCamel derives a wire name from an exported Go identifier.
// A leading run of capitals is lowered as one word: ID -> id, JSONValue -> jsonValue.
func lowerCamel(name string) string {
	runes := []rune(name)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return name
	case n > 1 && n < len(runes) && unicode.IsLower(runes[n]):
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

func validString(b []byte) bool { return utf8.Valid(b) }
