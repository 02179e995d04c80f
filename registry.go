package fracpack

import (
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// Registry builds and caches a Type for each Go type.
// Lookups are lock-free; building is serialized so that a cyclic type graph is
// published only once it is complete.
type Registry struct {
	mu    sync.Mutex
	types *xsync.Map[reflect.Type, *Type]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{types: xsync.NewMap[reflect.Type, *Type]()}
}

// DefaultRegistry is used by the package-level functions and New.
var DefaultRegistry = NewRegistry()

// TypeOf describes rt using the default registry.
func TypeOf(rt reflect.Type) (*Type, error) { return DefaultRegistry.Type(rt) }

// TypeFor describes T using the default registry.
func TypeFor[T any]() (*Type, error) { return DefaultRegistry.Type(reflect.TypeFor[T]()) }

// Type returns the descriptor of rt, building it and everything it references on first use.
func (r *Registry) Type(rt reflect.Type) (*Type, error) {
	if rt == nil {
		return nil, ErrNilValue
	}
	if t, ok := r.types.Load(rt); ok {
		return t, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.types.Load(rt); ok {
		return t, nil
	}

	c := &compiler{reg: r, building: make(map[reflect.Type]*Type)}
	t, err := c.compile(rt)
	if err != nil {
		return nil, err
	}
	for _, bt := range c.order {
		bt.layout()
	}
	for _, bt := range c.order {
		if err := bt.check(); err != nil {
			return nil, err
		}
	}
	for _, bt := range c.order {
		r.types.Store(bt.GoType, bt)
		Logger().Debug("fracpack type compiled",
			zap.Stringer("go_type", bt.GoType),
			zap.Stringer("kind", bt.Kind),
			zap.Uint32("fixed_size", bt.fixedSize),
			zap.Bool("variable", bt.variable))
	}
	return t, nil
}

// compiler holds the state of one build. building is the "currently building"
// marker: a type is entered there before its children are resolved, so a
// reference back to it resolves to the same, still incomplete, *Type.
type compiler struct {
	reg      *Registry
	building map[reflect.Type]*Type
	order    []*Type
}

var (
	unknownVariantType = reflect.TypeFor[*UnknownVariant]()

	basicTypes = map[reflect.Kind]reflect.Type{
		reflect.Bool:    reflect.TypeFor[bool](),
		reflect.Uint8:   reflect.TypeFor[uint8](),
		reflect.Uint16:  reflect.TypeFor[uint16](),
		reflect.Uint32:  reflect.TypeFor[uint32](),
		reflect.Uint64:  reflect.TypeFor[uint64](),
		reflect.Int8:    reflect.TypeFor[int8](),
		reflect.Int16:   reflect.TypeFor[int16](),
		reflect.Int32:   reflect.TypeFor[int32](),
		reflect.Int64:   reflect.TypeFor[int64](),
		reflect.Float32: reflect.TypeFor[float32](),
		reflect.Float64: reflect.TypeFor[float64](),
		reflect.String:  reflect.TypeFor[string](),
	}

	scalarKinds = map[reflect.Kind]Kind{
		reflect.Bool:    Bool,
		reflect.Uint8:   Uint8,
		reflect.Uint16:  Uint16,
		reflect.Uint32:  Uint32,
		reflect.Uint64:  Uint64,
		reflect.Int8:    Int8,
		reflect.Int16:   Int16,
		reflect.Int32:   Int32,
		reflect.Int64:   Int64,
		reflect.Float32: Float32,
		reflect.Float64: Float64,
		reflect.String:  String,
	}
)

func (c *compiler) mark(t *Type) {
	c.building[t.GoType] = t
	c.order = append(c.order, t)
}

func (c *compiler) compile(rt reflect.Type) (*Type, error) {
	if t, ok := c.reg.types.Load(rt); ok {
		return t, nil
	}
	if t, ok := c.building[rt]; ok {
		return t, nil
	}
	if rt.Name() != "" && rt.Kind() != reflect.Struct && rt != basicTypes[rt.Kind()] {
		return c.compileAlias(rt)
	}

	switch rt.Kind() {
	case reflect.Slice:
		t := &Type{Kind: Vector, GoType: rt}
		c.mark(t)
		elem, err := c.compile(rt.Elem())
		if err != nil {
			return nil, err
		}
		t.Elem = elem
		return t, nil

	case reflect.Array:
		t := &Type{Kind: Array, GoType: rt, Len: rt.Len()}
		c.mark(t)
		elem, err := c.compile(rt.Elem())
		if err != nil {
			return nil, err
		}
		t.Elem = elem
		return t, nil

	case reflect.Pointer:
		if rt.Elem().Kind() == reflect.Pointer {
			return nil, fmt.Errorf("%w: nested optional %s", ErrUnsupportedType, rt)
		}
		t := &Type{Kind: Optional, GoType: rt}
		c.mark(t)
		elem, err := c.compile(rt.Elem())
		if err != nil {
			return nil, err
		}
		t.Elem = elem
		return t, nil

	case reflect.Struct:
		return c.compileStruct(rt)
	}

	if k, ok := scalarKinds[rt.Kind()]; ok {
		t := &Type{Kind: k, GoType: rt}
		c.mark(t)
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, rt)
}

// compileAlias describes a defined non-struct type as a named rename of its underlying type.
func (c *compiler) compileAlias(rt reflect.Type) (*Type, error) {
	var under reflect.Type
	switch rt.Kind() {
	case reflect.Slice:
		under = reflect.SliceOf(rt.Elem())
	case reflect.Array:
		under = reflect.ArrayOf(rt.Len(), rt.Elem())
	case reflect.Pointer:
		under = reflect.PointerTo(rt.Elem())
	default:
		under = basicTypes[rt.Kind()]
	}
	if under == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, rt)
	}

	t := &Type{Kind: Alias, Name: rt.Name(), GoType: rt}
	c.mark(t)
	elem, err := c.compile(under)
	if err != nil {
		return nil, err
	}
	t.Elem = elem
	return t, nil
}

func (c *compiler) compileStruct(rt reflect.Type) (*Type, error) {
	so := structOptionsOf(rt)
	fields, tags := wireFields(rt)

	t := &Type{
		Kind:       Struct,
		Name:       rt.Name(),
		GoType:     rt,
		Frozen:     so.frozen,
		CustomJSON: so.customJSON,
		unknown:    -1,
	}
	switch {
	case so.union:
		t.Kind = Union
	case rt.Name() == "":
		t.Kind = Tuple
	case so.tuple && len(fields) == 1:
		t.Kind = Alias
	case so.tuple:
		t.Kind = Tuple
	}
	c.mark(t)

	if t.Kind == Union {
		return t, c.compileCases(t, fields, tags)
	}
	for i, sf := range fields {
		ft := sf.Type
		indirect := tags[i].ref && ft.Kind() == reflect.Pointer
		if indirect {
			ft = ft.Elem()
		}
		fd, err := c.compile(ft)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", rt, sf.Name, err)
		}
		t.Fields = append(t.Fields, Field{Name: tags[i].name, Type: fd, index: sf.Index[0], indirect: indirect})
	}
	if t.Kind == Alias {
		t.Elem = t.Fields[0].Type
	}
	return t, nil
}

func (c *compiler) compileCases(t *Type, fields []reflect.StructField, tags []fieldTag) error {
	for i, sf := range fields {
		if sf.Type == unknownVariantType {
			t.unknown = sf.Index[0]
			continue
		}
		if sf.Type.Kind() != reflect.Pointer {
			return fmt.Errorf("%w: union case %s.%s must be a pointer", ErrUnsupportedType, t.GoType, sf.Name)
		}
		ct, err := c.compile(sf.Type.Elem())
		if err != nil {
			return fmt.Errorf("%s.%s: %w", t.GoType, sf.Name, err)
		}
		t.Cases = append(t.Cases, Case{Name: tags[i].name, Type: ct, index: sf.Index[0]})
	}
	if len(t.Cases) == 0 || len(t.Cases) > math.MaxUint8 {
		return fmt.Errorf("%w: union %s has %d variants", ErrUnsupportedType, t.GoType, len(t.Cases))
	}
	return nil
}

// check rejects shapes that are only detectable once sizes are known.
func (t *Type) check() error {
	switch t.Kind {
	case Vector:
		if t.Elem.fixedSize == 0 {
			return fmt.Errorf("%w: zero-size vector element %s", ErrUnsupportedType, t.Elem)
		}
	case Optional:
		elem := t.Elem
		for elem.Kind == Alias {
			elem = elem.Elem
		}
		if elem.Kind == Optional {
			return fmt.Errorf("%w: nested optional %s", ErrUnsupportedType, t.GoType)
		}
	case Struct, Tuple:
		if !t.Frozen && t.innerSize > maxFixedRegion {
			return fmt.Errorf("%w: %s", ErrFixedRegionTooLarge, t)
		}
	}
	return nil
}
