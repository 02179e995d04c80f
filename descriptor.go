package fracpack

import (
	"reflect"
	"strings"
)

// Kind identifies the shape of a described type.
type Kind uint8

const (
	Invalid Kind = iota
	Bool
	Uint8
	Uint16
	Uint32
	Uint64
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	String
	Struct
	Tuple
	Union
	Vector
	Array
	Optional
	Alias
)

var kindNames = [...]string{
	Invalid:  "invalid",
	Bool:     "bool",
	Uint8:    "u8",
	Uint16:   "u16",
	Uint32:   "u32",
	Uint64:   "u64",
	Int8:     "i8",
	Int16:    "i16",
	Int32:    "i32",
	Int64:    "i64",
	Float32:  "f32",
	Float64:  "f64",
	String:   "string",
	Struct:   "struct",
	Tuple:    "tuple",
	Union:    "union",
	Vector:   "vector",
	Array:    "array",
	Optional: "optional",
	Alias:    "alias",
}

var scalarSizes = [...]uint32{
	Bool:    1,
	Uint8:   1,
	Uint16:  2,
	Uint32:  4,
	Uint64:  8,
	Int8:    1,
	Int16:   2,
	Int32:   4,
	Int64:   8,
	Float32: 4,
	Float64: 8,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether k is a fixed-width number or bool.
func (k Kind) IsScalar() bool { return k >= Bool && k <= Float64 }

// IsBuiltin reports whether k has a builtin schema name.
func (k Kind) IsBuiltin() bool { return k.IsScalar() || k == String }

// Field is a member of a struct or tuple, in declaration order.
type Field struct {
	Name string
	Type *Type

	index    int  // Go struct field index
	indirect bool // transparent pointer
}

// Case is a variant of a union. Its position in Type.Cases is its discriminant.
type Case struct {
	Name string
	Type *Type

	index int // Go struct field index of the case pointer
}

// Type describes the wire shape of one Go type. Types are built once by a
// Registry and shared by the codec and the schema builder.
type Type struct {
	Kind   Kind
	Name   string // user type name; empty for builtins, containers and unnamed tuples
	GoType reflect.Type
	Elem   *Type // Vector, Array, Optional, Alias
	Len    int   // Array
	Fields []Field
	Cases  []Case

	// Frozen marks a struct whose definition will not change; it packs without a prefix.
	Frozen     bool
	CustomJSON bool

	fixedSize uint32 // footprint when embedded in a parent's fixed region
	innerSize uint32 // Struct, Tuple: size of the value's own fixed region
	variable  bool
	laidOut   bool
	unknown   int // Go field index of the *UnknownVariant holder, -1 when absent
}

var _ Packable = (*Type)(nil)

// FixedSize returns the bytes the type occupies inside a parent's fixed region.
func (t *Type) FixedSize() uint32 { return t.fixedSize }

// IsVariableSize reports whether the type is embedded through a heap offset.
func (t *Type) IsVariableSize() bool { return t.variable }

func (t *Type) String() string {
	switch t.Kind {
	case Vector:
		return "vector<" + t.Elem.String() + ">"
	case Optional:
		return "optional<" + t.Elem.String() + ">"
	case Array:
		return "array<" + t.Elem.String() + ">"
	case Tuple:
		if t.Name != "" {
			return t.Name
		}
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Type.String()
		}
		return "tuple<" + strings.Join(parts, ",") + ">"
	}
	if t.Name != "" {
		return t.Name
	}
	return t.Kind.String()
}

// wrapsField reports whether an alias reads its value from a single struct field.
func (t *Type) wrapsField() bool { return t.Kind == Alias && len(t.Fields) == 1 }

// isContainer reports whether an empty value can use the empty-container offset.
func (t *Type) isContainer() bool {
	switch t.Kind {
	case String, Vector:
		return true
	case Alias:
		return t.Elem.isContainer()
	}
	return false
}

func (t *Type) isEmpty(v reflect.Value) bool {
	switch t.Kind {
	case String, Vector:
		return v.Len() == 0
	case Alias:
		return t.Elem.isEmpty(t.aliasValue(v))
	}
	return false
}

// layout computes embedded and fixed-region sizes. Only frozen structs, arrays
// and aliases depend on their children, and Go forbids cycles through those
// by value, so the recursion terminates.
func (t *Type) layout() {
	if t.laidOut {
		return
	}
	t.laidOut = true
	switch t.Kind {
	case String, Vector, Optional, Union:
		t.fixedSize, t.variable = 4, true
	case Struct, Tuple:
		var inner uint32
		var anyVariable bool
		for _, f := range t.Fields {
			f.Type.layout()
			inner += f.Type.fixedSize
			anyVariable = anyVariable || f.Type.variable
		}
		t.innerSize = inner
		switch {
		case !t.Frozen, anyVariable:
			t.fixedSize, t.variable = 4, true
		default:
			t.fixedSize = inner
		}
	case Array:
		t.Elem.layout()
		if t.Elem.variable {
			t.fixedSize, t.variable = 4, true
		} else {
			t.fixedSize = uint32(t.Len) * t.Elem.fixedSize
		}
	case Alias:
		t.Elem.layout()
		t.fixedSize, t.variable = t.Elem.fixedSize, t.Elem.variable
	default:
		if t.Kind.IsScalar() {
			t.fixedSize = scalarSizes[t.Kind]
		}
	}
}

// value returns the field of v for packing; a nil transparent pointer reads as the zero value.
func (f *Field) value(v reflect.Value) reflect.Value {
	fv := v.Field(f.index)
	if f.indirect {
		if fv.IsNil() {
			return reflect.Zero(fv.Type().Elem())
		}
		return fv.Elem()
	}
	return fv
}

// target returns the settable field of v for decoding, or the zero Value when verifying.
func (f *Field) target(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	fv := v.Field(f.index)
	if f.indirect {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		return fv.Elem()
	}
	return fv
}

func (t *Type) aliasValue(v reflect.Value) reflect.Value {
	if t.wrapsField() {
		return t.Fields[0].value(v)
	}
	return v
}

func (t *Type) aliasTarget(v reflect.Value) reflect.Value {
	if t.wrapsField() {
		return t.Fields[0].target(v)
	}
	return v
}
