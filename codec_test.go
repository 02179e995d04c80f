package fracpack

import (
	"bytes"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Writer Test Suite ---

type WriterTestSuite struct {
	suite.Suite
	writer *Writer
}

// SetupTest runs before each test in the suite, ensuring a clean state.
func (s *WriterTestSuite) SetupTest() {
	s.writer = NewWriter(nil)
}

func (s *WriterTestSuite) TestBasicWrites() {
	s.writer.WriteUint8(0xAA)
	s.writer.WriteUint16(0xBBCC)
	s.writer.WriteUint32(0xDDEEFF00)
	s.writer.WriteUint64(0x0102030405060708)
	s.writer.WriteBool(true)
	s.writer.WriteBytes([]byte{5, 6, 7})
	s.writer.WriteZeros(2)

	s.Require().NoError(s.writer.Err())
	expected := []byte{
		0xAA,       // WriteUint8
		0xCC, 0xBB, // WriteUint16 (Little Endian)
		0x00, 0xFF, 0xEE, 0xDD, // WriteUint32 (Little Endian)
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // WriteUint64 (Little Endian)
		0x01,                   // WriteBool
		0x03, 0x00, 0x00, 0x00, // WriteBytes length
		5, 6, 7, // WriteBytes
		0, 0, // WriteZeros
	}
	s.Assert().Equal(expected, s.writer.Bytes())
	s.Assert().Equal(len(expected), s.writer.Len())
}

func (s *WriterTestSuite) TestReserveAndPatch() {
	s.T().Run("PatchAfterAppend", func(t *testing.T) {
		w := NewWriter(nil)
		w.WriteUint8(0x7F)
		size := w.Reserve(4)
		w.WriteUint32(0x11111111)
		w.WriteUint16(0x2222)
		w.PatchSizeSince(size)

		require.NoError(t, w.Err())
		assert.Equal(t, 1, size.Pos())
		assert.Equal(t, []byte{0x7F, 6, 0, 0, 0, 0x11, 0x11, 0x11, 0x11, 0x22, 0x22}, w.Bytes())
	})

	s.T().Run("OffsetIsDistanceFromSlot", func(t *testing.T) {
		w := NewWriter(nil)
		slot := w.Reserve(4)
		w.WriteUint32(0)
		w.PatchOffset(slot)
		require.NoError(t, w.Err())
		assert.Equal(t, []byte{8, 0, 0, 0, 0, 0, 0, 0}, w.Bytes())
	})

	s.T().Run("MismatchedPatchIsLatched", func(t *testing.T) {
		w := NewWriter(nil)
		slot := w.Reserve(2)
		w.PatchUint32(slot, 1)
		require.ErrorIs(t, w.Err(), ErrInvalidPatch)

		// This subsequent write should be a no-op because an error state is set.
		w.WriteUint8(0xFF)
		assert.Equal(t, []byte{0, 0}, w.Bytes())
	})

	s.T().Run("ZeroSlotIsInvalid", func(t *testing.T) {
		assert.False(t, Slot{}.Valid())
		assert.True(t, NewWriter(nil).Reserve(4).Valid())
	})
}

func (s *WriterTestSuite) TestWriteTo() {
	s.writer.WriteUint32(42)
	var buf bytes.Buffer
	n, err := s.writer.WriteTo(&buf)
	s.Require().NoError(err)
	s.Assert().EqualValues(4, n)
	s.Assert().Equal([]byte{42, 0, 0, 0}, buf.Bytes())

	s.writer.Reset()
	s.Assert().Zero(s.writer.Len())
}

// TestWriter runs the WriterTestSuite.
func TestWriter(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

// --- Reader Test Suite ---

type ReaderTestSuite struct {
	suite.Suite
}

func (s *ReaderTestSuite) TestSuccessfulReads() {
	data := []byte{
		0xAA,       // uint8
		0xCC, 0xBB, // uint16
		0x00, 0xFF, 0xEE, 0xDD, // uint32
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // uint64
		0x01,             // bool
		0x11, 0x22, 0x33, // raw bytes
	}
	r := NewReader(data, Options{})
	var pos uint32

	v8, err := r.ReadUint8(&pos)
	s.Require().NoError(err)
	v16, err := r.ReadUint16(&pos)
	s.Require().NoError(err)
	v32, err := r.ReadUint32(&pos)
	s.Require().NoError(err)
	v64, err := r.ReadUint64(&pos)
	s.Require().NoError(err)
	b, err := r.ReadBool(&pos)
	s.Require().NoError(err)
	read, err := r.ReadBytes(&pos, 3)
	s.Require().NoError(err)

	s.Assert().Equal(uint8(0xAA), v8)
	s.Assert().Equal(uint16(0xBBCC), v16)
	s.Assert().Equal(uint32(0xDDEEFF00), v32)
	s.Assert().Equal(uint64(0x0102030405060708), v64)
	s.Assert().True(b)
	s.Assert().Equal([]byte{0x11, 0x22, 0x33}, read)
	s.Assert().EqualValues(len(data), pos)
	s.Assert().Zero(r.Available(pos))
}

func (s *ReaderTestSuite) TestErrorHandling() {
	s.T().Run("ReadPastEnd", func(t *testing.T) {
		r := NewReader([]byte{0x01, 0x02, 0x03}, Options{})
		var pos uint32
		_, err := r.ReadUint32(&pos)
		assert.ErrorIs(t, err, ErrTruncatedData)
		assert.Zero(t, pos, "cursor must not move on a failed read")
	})

	s.T().Run("CursorOverflow", func(t *testing.T) {
		r := NewReader([]byte{0x01}, Options{})
		pos := uint32(0xFFFFFFFE)
		_, err := r.ReadUint32(&pos)
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	s.T().Run("BoolOutOfDomain", func(t *testing.T) {
		r := NewReader([]byte{0x02}, Options{})
		var pos uint32
		_, err := r.ReadBool(&pos)
		assert.ErrorIs(t, err, ErrBadScalar)
	})

	s.T().Run("InvalidText", func(t *testing.T) {
		r := NewReader([]byte{2, 0, 0, 0, 0xC3, 0x28}, Options{})
		var pos uint32
		_, err := r.ReadText(&pos)
		assert.ErrorIs(t, err, ErrBadUTF8)
	})
}

// TestReader runs the ReaderTestSuite.
func TestReader(t *testing.T) {
	suite.Run(t, new(ReaderTestSuite))
}

// --- Registry ---

func TestRegistryLayout(t *testing.T) {
	tests := []struct {
		name     string
		typ      reflect.Type
		kind     Kind
		fixed    uint32
		variable bool
	}{
		{"Scalar", reflect.TypeFor[uint16](), Uint16, 2, false},
		{"String", reflect.TypeFor[string](), String, 4, true},
		{"FrozenStruct", reflect.TypeFor[Point](), Struct, 8, false},
		{"ExtensibleStruct", reflect.TypeFor[PointExt](), Struct, 4, true},
		{"FixedArray", reflect.TypeFor[[3]int16](), Array, 6, false},
		{"VariableArray", reflect.TypeFor[[2]string](), Array, 4, true},
		{"Optional", reflect.TypeFor[*int32](), Optional, 4, true},
		{"Union", reflect.TypeFor[E](), Union, 4, true},
		{"Tuple", reflect.TypeFor[struct{ A, B uint8 }](), Tuple, 4, true},
		{"Alias", reflect.TypeFor[Account](), Alias, 8, false},
		{"StructAlias", reflect.TypeFor[Wrapped](), Alias, 4, false},
		{"StructTuple", reflect.TypeFor[Coords](), Tuple, 4, true},
	}
	reg := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := reg.Type(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, typ.Kind)
			assert.Equal(t, tt.fixed, typ.FixedSize())
			assert.Equal(t, tt.variable, typ.IsVariableSize())
		})
	}
}

func TestRegistryNames(t *testing.T) {
	typ, err := TypeFor[Definitionish]()
	require.NoError(t, err)
	names := make([]string, len(typ.Fields))
	for i, f := range typ.Fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"name", "userTypes", "customJson", "id", "jsonValue"}, names)
	assert.Equal(t, "Definitionish", typ.Name)

	f, ok := typ.FieldByName("customJson")
	require.True(t, ok)
	assert.Equal(t, Bool, f.Type.Kind)
}

func TestRegistryCycles(t *testing.T) {
	reg := NewRegistry()
	typ, err := reg.Type(reflect.TypeFor[Node]())
	require.NoError(t, err)

	children, ok := typ.FieldByName("children")
	require.True(t, ok)
	assert.Same(t, typ, children.Type.Elem, "a self reference resolves to the same descriptor")

	next, ok := typ.FieldByName("next")
	require.True(t, ok)
	assert.Equal(t, Optional, next.Type.Kind)
	assert.Same(t, typ, next.Type.Elem)
}

func TestRegistryUnsupported(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
	}{
		{"PlatformInt", reflect.TypeFor[int]()},
		{"Map", reflect.TypeFor[map[string]int32]()},
		{"NestedOptional", reflect.TypeFor[**int32]()},
		{"Interface", reflect.TypeFor[error]()},
		{"FieldOfPlatformInt", reflect.TypeFor[struct{ X int }]()},
		{"UnionValueCase", reflect.TypeFor[badUnion]()},
		{"ZeroSizeElement", reflect.TypeFor[[]empty]()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry().Type(tt.typ)
			assert.ErrorIs(t, err, ErrUnsupportedType)
		})
	}
}

func TestRegistryConcurrent(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	results := make([]*Type, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			typ, err := reg.Type(reflect.TypeFor[Outer]())
			assert.NoError(t, err)
			results[i] = typ
		}(i)
	}
	wg.Wait()
	for _, typ := range results[1:] {
		assert.Same(t, results[0], typ)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "i32", Int32.String())
	assert.Equal(t, "string", String.String())
	assert.Equal(t, "unknown", Kind(200).String())
	assert.True(t, Float64.IsScalar())
	assert.False(t, String.IsScalar())
	assert.True(t, String.IsBuiltin())
}

func TestLowerCamel(t *testing.T) {
	for in, want := range map[string]string{
		"X":          "x",
		"UserTypes":  "userTypes",
		"ID":         "id",
		"JSONValue":  "jsonValue",
		"CustomJSON": "customJSON",
		"already":    "already",
	} {
		assert.Equal(t, want, lowerCamel(in), in)
	}
}
