// Package schema describes fracpack types as a self-contained document that
// tooling can consume without access to the Go source.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema is an ordered list of user type definitions. Nested types appear
// before the types that reference them.
type Schema struct {
	UserTypes []Definition `json:"userTypes" yaml:"userTypes" cbor:"userTypes"`
}

// Definition names a user type. Exactly one of Alias, StructFields and
// UnionFields is set, except for definitions that only carry Methods.
type Definition struct {
	Name                    string     `json:"name" yaml:"name" cbor:"name"`
	Alias                   *TypeRef   `json:"alias,omitempty" yaml:"alias,omitempty" cbor:"alias,omitempty"`
	StructFields            *FieldList `json:"structFields,omitempty" yaml:"structFields,omitempty" cbor:"structFields,omitempty"`
	UnionFields             *FieldList `json:"unionFields,omitempty" yaml:"unionFields,omitempty" cbor:"unionFields,omitempty"`
	CustomJSON              *bool      `fracpack:"customJson" json:"customJson,omitempty" yaml:"customJson,omitempty" cbor:"customJson,omitempty"`
	DefinitionWillNotChange *bool      `json:"definitionWillNotChange,omitempty" yaml:"definitionWillNotChange,omitempty" cbor:"definitionWillNotChange,omitempty"`
	Methods                 *[]Method  `json:"methods,omitempty" yaml:"methods,omitempty" cbor:"methods,omitempty"`
}

// Field is a named member of a struct, a union variant or a method argument.
type Field struct {
	Name string  `json:"name" yaml:"name" cbor:"name"`
	Type TypeRef `json:"type" yaml:"type" cbor:"type"`
}

// Method describes a callable entry point of a definition.
type Method struct {
	Name    string    `json:"name" yaml:"name" cbor:"name"`
	Returns TypeRef   `json:"returns" yaml:"returns" cbor:"returns"`
	Args    FieldList `json:"args" yaml:"args" cbor:"args"`
}

// FieldList is an ordered list of fields. It always renders as a list, never null.
type FieldList []Field

func (l FieldList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Field(l))
}

// TypeRef refers to a type. Exactly one case is set.
type TypeRef struct {
	_ struct{} `fracpack:",union"`

	BuiltinType *string   `json:"builtinType,omitempty" yaml:"builtinType,omitempty" cbor:"builtinType,omitempty"`
	UserType    *string   `json:"userType,omitempty" yaml:"userType,omitempty" cbor:"userType,omitempty"`
	Vector      *TypeRef  `json:"vector,omitempty" yaml:"vector,omitempty" cbor:"vector,omitempty"`
	Optional    *TypeRef  `json:"optional,omitempty" yaml:"optional,omitempty" cbor:"optional,omitempty"`
	Tuple       *TypeList `json:"tuple,omitempty" yaml:"tuple,omitempty" cbor:"tuple,omitempty"`
	Array       *ArrayRef `json:"array,omitempty" yaml:"array,omitempty" cbor:"array,omitempty"`
}

// TypeList is the element list of a tuple.
type TypeList []TypeRef

func (l TypeList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]TypeRef(l))
}

// ArrayRef is a fixed-length array of Type. It renders as the pair [type, size].
type ArrayRef struct {
	_ struct{} `fracpack:",tuple" cbor:",toarray"`

	Type TypeRef
	Size uint32
}

func (a ArrayRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.Type, a.Size})
}

func (a *ArrayRef) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("schema: array reference has %d elements, want [type, size]", len(pair))
	}
	if err := json.Unmarshal(pair[0], &a.Type); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &a.Size)
}

func (a ArrayRef) MarshalYAML() (any, error) {
	return []any{a.Type, a.Size}, nil
}

func (a *ArrayRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return fmt.Errorf("schema: line %d: array reference must be [type, size]", node.Line)
	}
	if err := node.Content[0].Decode(&a.Type); err != nil {
		return err
	}
	return node.Content[1].Decode(&a.Size)
}

// Builtin refers to a builtin type such as "i32" or "string".
func Builtin(name string) TypeRef { return TypeRef{BuiltinType: &name} }

// User refers to a Definition by name.
func User(name string) TypeRef { return TypeRef{UserType: &name} }

func VectorOf(elem TypeRef) TypeRef   { return TypeRef{Vector: &elem} }
func OptionalOf(elem TypeRef) TypeRef { return TypeRef{Optional: &elem} }

// TupleOf refers to an unnamed tuple; with no elements it is the unit type.
func TupleOf(elems ...TypeRef) TypeRef {
	l := TypeList(elems)
	return TypeRef{Tuple: &l}
}

func ArrayOf(elem TypeRef, size uint32) TypeRef {
	return TypeRef{Array: &ArrayRef{Type: elem, Size: size}}
}

// String renders r compactly, e.g. "vector<optional<Point>>".
func (r TypeRef) String() string {
	switch {
	case r.BuiltinType != nil:
		return *r.BuiltinType
	case r.UserType != nil:
		return *r.UserType
	case r.Vector != nil:
		return "vector<" + r.Vector.String() + ">"
	case r.Optional != nil:
		return "optional<" + r.Optional.String() + ">"
	case r.Tuple != nil:
		parts := make([]string, len(*r.Tuple))
		for i, e := range *r.Tuple {
			parts[i] = e.String()
		}
		return "tuple<" + strings.Join(parts, ",") + ">"
	case r.Array != nil:
		return "array<" + r.Array.Type.String() + "," + strconv.FormatUint(uint64(r.Array.Size), 10) + ">"
	}
	return "<invalid>"
}

// Lookup returns the definition with the given name.
func (s *Schema) Lookup(name string) (*Definition, bool) {
	for i := range s.UserTypes {
		if s.UserTypes[i].Name == name {
			return &s.UserTypes[i], true
		}
	}
	return nil, false
}
