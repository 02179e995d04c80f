package schema

import (
	"fmt"
	"reflect"

	"github.com/oy3o/fracpack"
	"go.uber.org/zap"
)

// Builder accumulates the Schema of one or more root types. A Builder owns its
// state and is not safe for concurrent use; build concurrently with separate
// Builders.
type Builder struct {
	reg    *fracpack.Registry
	log    *zap.Logger
	refs   map[*fracpack.Type]TypeRef
	names  map[string]*fracpack.Type
	schema Schema
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger definitions are reported to at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// WithRegistry sets the registry types are described with.
func WithRegistry(r *fracpack.Registry) Option {
	return func(b *Builder) { b.reg = r }
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		reg:   fracpack.DefaultRegistry,
		log:   fracpack.Logger(),
		refs:  make(map[*fracpack.Type]TypeRef),
		names: make(map[string]*fracpack.Type),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Of returns the schema of T.
func Of[T any](opts ...Option) (Schema, error) {
	return Describe(reflect.TypeFor[T](), opts...)
}

// Describe returns the schema of rt.
func Describe(rt reflect.Type, opts ...Option) (Schema, error) {
	b := NewBuilder(opts...)
	if _, err := b.Add(rt); err != nil {
		return Schema{}, err
	}
	return b.Schema(), nil
}

// Schema returns the definitions added so far.
func (b *Builder) Schema() Schema { return b.schema }

// Add describes rt and every type it references, returning a reference to it.
// Pointers at the top level are transparent. A type added twice yields the
// same reference and a single definition.
func (b *Builder) Add(rt reflect.Type) (TypeRef, error) {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	t, err := b.reg.Type(rt)
	if err != nil {
		return TypeRef{}, err
	}
	return b.ref(t), nil
}

// ref returns the reference of t. Named types are cached before their
// members are visited, so a cycle resolves to the pending reference.
func (b *Builder) ref(t *fracpack.Type) TypeRef {
	if r, ok := b.refs[t]; ok {
		return r
	}
	if t.Kind.IsBuiltin() {
		r := Builtin(t.Kind.String())
		b.refs[t] = r
		return r
	}

	switch t.Kind {
	case fracpack.Vector:
		r := VectorOf(b.ref(t.Elem))
		b.refs[t] = r
		return r

	case fracpack.Optional:
		r := OptionalOf(b.ref(t.Elem))
		b.refs[t] = r
		return r

	case fracpack.Array:
		r := ArrayOf(b.ref(t.Elem), uint32(t.Len))
		b.refs[t] = r
		return r

	case fracpack.Tuple:
		if t.Name == "" {
			r := b.tuple(t)
			b.refs[t] = r
			return r
		}
		name := b.reserve(t)
		b.refs[t] = User(name)
		alias := b.tuple(t)
		b.define(Definition{Name: name, Alias: &alias}, "struct tuple")

	case fracpack.Alias:
		name := b.reserve(t)
		b.refs[t] = User(name)
		alias := b.ref(t.Elem)
		b.define(Definition{Name: name, Alias: &alias}, "alias")

	case fracpack.Struct:
		name := b.reserve(t)
		b.refs[t] = User(name)
		fields := make(FieldList, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Type: b.ref(f.Type)}
		}
		d := Definition{Name: name, StructFields: &fields}
		if t.CustomJSON {
			d.CustomJSON = fracpack.Ptr(true)
		}
		if t.Frozen {
			d.DefinitionWillNotChange = fracpack.Ptr(true)
		}
		b.define(d, "struct")

	case fracpack.Union:
		name := b.reserve(t)
		b.refs[t] = User(name)
		cases := make(FieldList, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = Field{Name: c.Name, Type: b.ref(c.Type)}
		}
		d := Definition{Name: name, UnionFields: &cases}
		if t.CustomJSON {
			d.CustomJSON = fracpack.Ptr(true)
		}
		b.define(d, "union")
	}
	return b.refs[t]
}

func (b *Builder) tuple(t *fracpack.Type) TypeRef {
	elems := make([]TypeRef, len(t.Fields))
	for i, f := range t.Fields {
		elems[i] = b.ref(f.Type)
	}
	return TupleOf(elems...)
}

// reserve picks the definition name of t. Distinct types sharing a Go name,
// such as types from different packages, get a numeric suffix.
func (b *Builder) reserve(t *fracpack.Type) string {
	base := t.Name
	if base == "" {
		base = t.Kind.String()
	}
	name := base
	for i := 2; ; i++ {
		if _, taken := b.names[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
	b.names[name] = t
	return name
}

func (b *Builder) define(d Definition, shape string) {
	b.schema.UserTypes = append(b.schema.UserTypes, d)
	b.log.Debug("schema definition added",
		zap.String("name", d.Name),
		zap.String("shape", shape),
		zap.Int("index", len(b.schema.UserTypes)-1))
}

// MethodSpec describes a method for AddMethods. A nil Returns means the method
// returns nothing, described as the empty tuple.
type MethodSpec struct {
	Name    string
	Args    []ArgSpec
	Returns reflect.Type
}

// ArgSpec is a named method argument.
type ArgSpec struct {
	Name string
	Type reflect.Type
}

// Arg returns an argument of type T.
func Arg[T any](name string) ArgSpec {
	return ArgSpec{Name: name, Type: reflect.TypeFor[T]()}
}

// AddMethods attaches methods to the definition called name, creating a
// definition that only carries methods when there is none.
func (b *Builder) AddMethods(name string, methods ...MethodSpec) error {
	list := make([]Method, 0, len(methods))
	for _, ms := range methods {
		m := Method{Name: ms.Name, Returns: TupleOf(), Args: make(FieldList, 0, len(ms.Args))}
		if ms.Returns != nil {
			r, err := b.Add(ms.Returns)
			if err != nil {
				return fmt.Errorf("method %s: returns: %w", ms.Name, err)
			}
			m.Returns = r
		}
		for _, a := range ms.Args {
			r, err := b.Add(a.Type)
			if err != nil {
				return fmt.Errorf("method %s: argument %s: %w", ms.Name, a.Name, err)
			}
			m.Args = append(m.Args, Field{Name: a.Name, Type: r})
		}
		list = append(list, m)
	}

	if d, ok := b.schema.Lookup(name); ok {
		if d.Methods == nil {
			d.Methods = &[]Method{}
		}
		*d.Methods = append(*d.Methods, list...)
		return nil
	}
	if _, taken := b.names[name]; taken {
		return fmt.Errorf("schema: %s is not a definition", name)
	}
	b.names[name] = nil
	b.define(Definition{Name: name, Methods: &list}, "methods")
	return nil
}
