package schema

import (
	"reflect"
	"sync"
	"testing"

	"github.com/oy3o/fracpack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type Point struct {
	X int32
	Y int32
}

type pkgPoint = Point

type Frozen struct {
	_ struct{} `fracpack:",frozen,customjson"`
	A uint8
}

type Node struct {
	Value    int32
	Children []Node
	Next     *Node
}

type Circle struct {
	R float32
}

type Rect struct {
	_ struct{} `fracpack:",frozen"`
	W uint16
	H uint16
}

type Shape struct {
	_      struct{} `fracpack:",union"`
	Circle *Circle
	Rect   *Rect
	Empty  *struct{}
}

type Account uint64

type Wrapped struct {
	_ struct{} `fracpack:",tuple"`
	V uint32
}

type Coords struct {
	_   struct{} `fracpack:",tuple"`
	Lat float64
	Lon float64
}

type Everything struct {
	Acct   Account
	W      Wrapped
	C      Coords
	Pair   struct{ A uint8; B string }
	Grid   [3]int16
	Raw    []byte
	Maybe  *Point
	Points []Point
	Shape  Shape
	Ref    *Circle `fracpack:",ref"`
}

func names(s Schema) []string {
	out := make([]string, len(s.UserTypes))
	for i, d := range s.UserTypes {
		out[i] = d.Name
	}
	return out
}

func TestSchemaOfPoint(t *testing.T) {
	s, err := Of[Point]()
	require.NoError(t, err)
	assert.Equal(t, Schema{UserTypes: []Definition{{
		Name: "Point",
		StructFields: &FieldList{
			{Name: "x", Type: Builtin("i32")},
			{Name: "y", Type: Builtin("i32")},
		},
	}}}, s)

	out, err := s.Encode(FormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userTypes":[{"name":"Point","structFields":[
		{"name":"x","type":{"builtinType":"i32"}},
		{"name":"y","type":{"builtinType":"i32"}}]}]}`, string(out))
}

func TestSchemaAnnotations(t *testing.T) {
	s, err := Of[Frozen]()
	require.NoError(t, err)
	require.Len(t, s.UserTypes, 1)
	d := s.UserTypes[0]
	assert.Equal(t, fracpack.Ptr(true), d.CustomJSON)
	assert.Equal(t, fracpack.Ptr(true), d.DefinitionWillNotChange)

	s, err = Of[Point]()
	require.NoError(t, err)
	assert.Nil(t, s.UserTypes[0].CustomJSON, "false annotations are omitted")
	assert.Nil(t, s.UserTypes[0].DefinitionWillNotChange)
}

func TestSchemaShapes(t *testing.T) {
	s, err := Of[Everything]()
	require.NoError(t, err)
	assert.Equal(t, []string{"Account", "Wrapped", "Coords", "Point", "Circle", "Rect", "Shape", "Everything"}, names(s))

	lookup := func(name string) Definition {
		d, ok := s.Lookup(name)
		require.True(t, ok, name)
		return *d
	}

	assert.Equal(t, Builtin("u64"), *lookup("Account").Alias)
	assert.Equal(t, Builtin("u32"), *lookup("Wrapped").Alias, "a single-field tuple struct is a rename")
	assert.Equal(t, TupleOf(Builtin("f64"), Builtin("f64")), *lookup("Coords").Alias)
	assert.Equal(t, fracpack.Ptr(true), lookup("Rect").DefinitionWillNotChange)

	shape := lookup("Shape")
	assert.Nil(t, shape.StructFields)
	assert.Equal(t, &FieldList{
		{Name: "circle", Type: User("Circle")},
		{Name: "rect", Type: User("Rect")},
		{Name: "empty", Type: TupleOf()},
	}, shape.UnionFields)

	assert.Equal(t, &FieldList{
		{Name: "acct", Type: User("Account")},
		{Name: "w", Type: User("Wrapped")},
		{Name: "c", Type: User("Coords")},
		{Name: "pair", Type: TupleOf(Builtin("u8"), Builtin("string"))},
		{Name: "grid", Type: ArrayOf(Builtin("i16"), 3)},
		{Name: "raw", Type: VectorOf(Builtin("u8"))},
		{Name: "maybe", Type: OptionalOf(User("Point"))},
		{Name: "points", Type: VectorOf(User("Point"))},
		{Name: "shape", Type: User("Shape")},
		{Name: "ref", Type: User("Circle")},
	}, lookup("Everything").StructFields)
}

func TestSchemaCycles(t *testing.T) {
	s, err := Of[*Node]()
	require.NoError(t, err)
	require.Equal(t, []string{"Node"}, names(s))
	assert.Equal(t, &FieldList{
		{Name: "value", Type: Builtin("i32")},
		{Name: "children", Type: VectorOf(User("Node"))},
		{Name: "next", Type: OptionalOf(User("Node"))},
	}, s.UserTypes[0].StructFields)
}

func TestSchemaDeterminism(t *testing.T) {
	first, err := Of[Everything]()
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Schema, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := Of[Everything](WithRegistry(fracpack.NewRegistry()))
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()
	for _, s := range results {
		assert.Equal(t, first, s)
	}
}

func TestSchemaDeduplicates(t *testing.T) {
	b := NewBuilder()
	r1, err := b.Add(reflect.TypeFor[Point]())
	require.NoError(t, err)
	r2, err := b.Add(reflect.TypeFor[*Point]())
	require.NoError(t, err)
	_, err = b.Add(reflect.TypeFor[[]Point]())
	require.NoError(t, err)

	assert.Equal(t, User("Point"), r1)
	assert.Equal(t, r1, r2)
	assert.Equal(t, []string{"Point"}, names(b.Schema()))
}

func TestSchemaNameCollision(t *testing.T) {
	type Point struct {
		Z string
	}
	type Both struct {
		A pkgPoint
		B Point
	}
	s, err := Of[Both]()
	require.NoError(t, err)
	assert.Equal(t, []string{"Point", "Point_2", "Both"}, names(s))

	both, _ := s.Lookup("Both")
	assert.Equal(t, User("Point_2"), (*both.StructFields)[1].Type)
}

func TestSchemaUnsupported(t *testing.T) {
	_, err := Of[map[string]int32]()
	assert.ErrorIs(t, err, fracpack.ErrUnsupportedType)

	_, err = Of[struct{ N int }]()
	assert.ErrorIs(t, err, fracpack.ErrUnsupportedType)
}

func TestSchemaMethods(t *testing.T) {
	b := NewBuilder()
	err := b.AddMethods("Example",
		MethodSpec{Name: "hi"},
		MethodSpec{Name: "add", Args: []ArgSpec{Arg[int32]("a"), Arg[int32]("b")}, Returns: reflect.TypeFor[int32]()},
		MethodSpec{Name: "multiply", Args: []ArgSpec{Arg[int32]("a"), Arg[int32]("b")}, Returns: reflect.TypeFor[int32]()},
	)
	require.NoError(t, err)

	s := b.Schema()
	require.Equal(t, []string{"Example"}, names(s))
	args := FieldList{{Name: "a", Type: Builtin("i32")}, {Name: "b", Type: Builtin("i32")}}
	assert.Equal(t, &[]Method{
		{Name: "hi", Returns: TupleOf(), Args: FieldList{}},
		{Name: "add", Returns: Builtin("i32"), Args: args},
		{Name: "multiply", Returns: Builtin("i32"), Args: args},
	}, s.UserTypes[0].Methods)
	assert.Nil(t, s.UserTypes[0].StructFields)

	t.Run("AttachToType", func(t *testing.T) {
		b := NewBuilder()
		_, err := b.Add(reflect.TypeFor[Point]())
		require.NoError(t, err)
		require.NoError(t, b.AddMethods("Point", MethodSpec{
			Name: "move",
			Args: []ArgSpec{Arg[Point]("to")},
		}))

		s := b.Schema()
		require.Len(t, s.UserTypes, 1)
		require.NotNil(t, s.UserTypes[0].Methods)
		assert.Equal(t, User("Point"), (*s.UserTypes[0].Methods)[0].Args[0].Type)
	})

	t.Run("BadArgument", func(t *testing.T) {
		err := NewBuilder().AddMethods("Example", MethodSpec{
			Name: "bad",
			Args: []ArgSpec{Arg[chan int]("c")},
		})
		assert.ErrorIs(t, err, fracpack.ErrUnsupportedType)
	})
}

func TestBuilderLogsDefinitions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := Of[Everything](WithLogger(zap.New(core)), WithRegistry(fracpack.NewRegistry()))
	require.NoError(t, err)

	added := logs.FilterMessage("schema definition added").All()
	require.Len(t, added, 8)
	assert.Equal(t, "Everything", added[7].ContextMap()["name"])
	assert.Equal(t, "union", added[6].ContextMap()["shape"])
}

func TestTypeRefString(t *testing.T) {
	tests := []struct {
		ref  TypeRef
		want string
	}{
		{Builtin("i32"), "i32"},
		{VectorOf(OptionalOf(User("Point"))), "vector<optional<Point>>"},
		{ArrayOf(Builtin("u8"), 4), "array<u8,4>"},
		{TupleOf(), "tuple<>"},
		{TupleOf(Builtin("bool"), User("Node")), "tuple<bool,Node>"},
		{TypeRef{}, "<invalid>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ref.String())
	}
}
