package fracpack

import "errors"

var (
	// ErrBadOffset indicates an embedded offset that does not land exactly on the
	// current heap position, or a fixed region whose end precedes its start.
	ErrBadOffset = errors.New("fracpack: bad offset")

	// ErrBadSize indicates a union whose declared payload size disagrees with the
	// number of bytes its payload actually consumed.
	ErrBadSize = errors.New("fracpack: bad size")

	// ErrBadEnumIndex indicates a union discriminant at or beyond the number of declared variants.
	ErrBadEnumIndex = errors.New("fracpack: bad enum index")

	// ErrTruncatedData indicates a read past the end of the input buffer.
	ErrTruncatedData = errors.New("fracpack: truncated data")

	// ErrTrailingData is returned by top-level decoding when bytes remain after the value.
	ErrTrailingData = errors.New("fracpack: trailing data found after decoding")

	// ErrBadScalar indicates a scalar with an out-of-domain value, such as a bool other than 0 or 1.
	ErrBadScalar = errors.New("fracpack: bad scalar value")

	// ErrBadUTF8 indicates a string payload that is not valid UTF-8.
	ErrBadUTF8 = errors.New("fracpack: string is not valid utf-8")

	// ErrUnknownFields indicates an extensible struct whose fixed region is larger
	// than the fields this build knows about.
	ErrUnknownFields = errors.New("fracpack: fixed region holds unknown fields")

	// ErrDepthExceeded indicates nesting deeper than the configured limit.
	ErrDepthExceeded = errors.New("fracpack: nesting depth exceeded")

	// ErrFixedRegionTooLarge indicates an extensible struct whose fixed region does not fit the u16 prefix.
	ErrFixedRegionTooLarge = errors.New("fracpack: fixed region exceeds 65535 bytes")

	// ErrOffsetOverflow indicates a length or heap offset that does not fit in a u32.
	ErrOffsetOverflow = errors.New("fracpack: offset or length exceeds u32")

	// ErrInvalidPatch indicates a patch through a slot of a different width.
	ErrInvalidPatch = errors.New("fracpack: patch does not match reserved slot")

	// ErrNoVariant indicates a union value with no case set.
	ErrNoVariant = errors.New("fracpack: union has no variant set")

	// ErrAmbiguousVariant indicates a union value with more than one case set.
	ErrAmbiguousVariant = errors.New("fracpack: union has more than one variant set")

	// ErrNilValue indicates a nil value passed where a concrete value is required.
	ErrNilValue = errors.New("fracpack: nil value")

	// ErrInvalidTarget indicates an Unpack destination that is not a non-nil pointer.
	ErrInvalidTarget = errors.New("fracpack: unpack target must be a non-nil pointer")

	// ErrUnsupportedType indicates a Go type with no fracpack representation.
	ErrUnsupportedType = errors.New("fracpack: unsupported type")

	// ErrMessageTooLarge is returned by ReadAll when the input exceeds its limit.
	ErrMessageTooLarge = errors.New("fracpack: message exceeds size limit")
)
