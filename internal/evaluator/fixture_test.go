package evaluator

import (
	"testing"

	"github.com/funvibe/objmodel/internal/symbols"
	"github.com/funvibe/objmodel/internal/typesystem"
)

// world is a small sealed hierarchy shared by the tests:
//
//	Foo (runtime fields)      secret:private=42  kind:protected="foo"  id:public=1
//	 └─ Bar                   secret:private="bar"  label:public="b"
//	Other                     unrelated to Foo
type world struct {
	ctx   *Context
	foo   *typesystem.TypeDescriptor
	bar   *typesystem.TypeDescriptor
	other *typesystem.TypeDescriptor
}

func newWorld(t *testing.T) *world {
	t.Helper()

	foo := typesystem.NewType("Foo", typesystem.KindClass)
	must(t, foo.EnableRuntimeFields())
	mustField(t, foo, "secret", typesystem.AccessPrivate, 42)
	mustField(t, foo, "kind", typesystem.AccessProtected, "foo")
	mustField(t, foo, "id", typesystem.AccessPublic, 1)
	mustCtor(t, foo, typesystem.ConstructorDescriptor{Access: typesystem.AccessPublic})
	must(t, foo.Seal())

	bar := typesystem.NewType("Bar", typesystem.KindClass)
	must(t, bar.Extend(foo))
	mustField(t, bar, "secret", typesystem.AccessPrivate, "bar")
	mustField(t, bar, "label", typesystem.AccessPublic, "b")
	mustCtor(t, bar, typesystem.ConstructorDescriptor{Access: typesystem.AccessPublic})
	must(t, bar.Seal())

	other := typesystem.NewType("Other", typesystem.KindClass)
	mustCtor(t, other, typesystem.ConstructorDescriptor{Access: typesystem.AccessPublic})
	must(t, other.Seal())

	reg := symbols.NewRegistry()
	for _, td := range []*typesystem.TypeDescriptor{foo, bar, other} {
		must(t, reg.Register(td))
	}
	return &world{ctx: NewContext(reg), foo: foo, bar: bar, other: other}
}

func (w *world) new(t *testing.T, td *typesystem.TypeDescriptor) *Instance {
	t.Helper()
	inst, err := w.ctx.New(td)
	if err != nil {
		t.Fatalf("New(%s) failed: %v", td.Name(), err)
	}
	return inst
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func mustField(t *testing.T, td *typesystem.TypeDescriptor, name string, access typesystem.Access, def any) *typesystem.FieldDescriptor {
	t.Helper()
	f, err := td.DeclareField(name, access, def)
	if err != nil {
		t.Fatalf("DeclareField(%s) failed: %v", name, err)
	}
	return f
}

func mustMethod(t *testing.T, td *typesystem.TypeDescriptor, name string, access typesystem.Access, params int) *typesystem.MethodDescriptor {
	t.Helper()
	m, err := td.DeclareMethod(name, access, params, false)
	if err != nil {
		t.Fatalf("DeclareMethod(%s) failed: %v", name, err)
	}
	return m
}

func mustCtor(t *testing.T, td *typesystem.TypeDescriptor, c typesystem.ConstructorDescriptor) *typesystem.ConstructorDescriptor {
	t.Helper()
	ctor, err := td.DeclareConstructor(c)
	if err != nil {
		t.Fatalf("DeclareConstructor failed: %v", err)
	}
	return ctor
}

type pair struct {
	key   string
	value Value
}

func collect(seq func(func(string, Value) bool)) []pair {
	var out []pair
	seq(func(k string, v Value) bool {
		out = append(out, pair{k, v})
		return true
	})
	return out
}
