package snapshot

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/funvibe/objmodel/internal/evaluator"
	"github.com/funvibe/objmodel/internal/symbols"
	"github.com/funvibe/objmodel/internal/typesystem"
)

// runtimeWith builds Account (runtime fields) <- Savings and Plain.
func runtimeWith(t *testing.T) *evaluator.Context {
	t.Helper()
	ctor := typesystem.ConstructorDescriptor{Params: []typesystem.ParamKind{typesystem.ParamContext}, FieldsOnly: true}

	account := typesystem.NewType("Account", typesystem.KindClass)
	account.EnableRuntimeFields()
	account.DeclareField("owner", typesystem.AccessPublic, "")
	account.DeclareField("balance", typesystem.AccessProtected, 0)
	account.DeclareField("pin", typesystem.AccessPrivate, 0)
	account.DeclareConstructor(ctor)

	savings := typesystem.NewType("Savings", typesystem.KindClass)
	savings.DeclareField("pin", typesystem.AccessPrivate, 0)
	savings.DeclareField("rate", typesystem.AccessPublic, 1.5)
	savings.DeclareConstructor(ctor)

	plain := typesystem.NewType("Plain", typesystem.KindClass)
	plain.DeclareField("x", typesystem.AccessPublic, 0)
	plain.DeclareConstructor(ctor)

	reg := symbols.NewRegistry()
	if err := reg.RegisterAll([]*typesystem.TypeDescriptor{account, plain}); err != nil {
		t.Fatal(err)
	}
	if err := savings.Extend(account); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterAll([]*typesystem.TypeDescriptor{savings}); err != nil {
		t.Fatal(err)
	}
	return evaluator.NewContext(reg)
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "objects.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func set(t *testing.T, inst *evaluator.Instance, name string, v evaluator.Value, caller *typesystem.TypeDescriptor) {
	t.Helper()
	if err := evaluator.WriteProperty(inst, name, v, caller); err != nil {
		t.Fatalf("WriteProperty(%s) failed: %v", name, err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	rt := runtimeWith(t)
	s := openStore(t)

	savings := rt.Registry.MustLookup("Savings")
	account := rt.Registry.MustLookup("Account")
	inst, err := rt.New(savings)
	if err != nil {
		t.Fatal(err)
	}
	set(t, inst, "owner", "ann", nil)
	set(t, inst, "balance", 120, account)
	set(t, inst, "pin", 1111, account)
	set(t, inst, "pin", 2222, savings)
	tags := evaluator.NewArray()
	tags.Set("b", "gold")
	tags.Set("a", true)
	set(t, inst, "tags", tags, nil)

	if err := s.Save(ctx, inst); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := s.Load(ctx, inst.ID, rt)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got == inst || got.ID != inst.ID || got.Type() != savings {
		t.Errorf("Load = %v, want a new Savings with id %s", got, inst.ID)
	}

	want := evaluator.ToArray(inst)
	have := evaluator.ToArray(got)
	if !reflect.DeepEqual(have.Keys(), want.Keys()) {
		t.Fatalf("keys = %q, want %q", have.Keys(), want.Keys())
	}
	for _, k := range []string{" Savings pin", " Account pin", " * balance", "owner", "rate"} {
		w, _ := want.Get(k)
		h, _ := have.Get(k)
		if h != w {
			t.Errorf("%q = %v (%T), want %v (%T)", k, h, h, w, w)
		}
	}
	if !evaluator.InstancesEqual(got, inst) {
		t.Errorf("loaded instance differs from the saved one")
	}
	loadedTags, _ := evaluator.ReadProperty(got, "tags", nil)
	if keys := loadedTags.(*evaluator.Array).Keys(); !reflect.DeepEqual(keys, []string{"b", "a"}) {
		t.Errorf("tags keys = %v, want insertion order", keys)
	}
}

func TestSaveReplaces(t *testing.T) {
	ctx := context.Background()
	rt := runtimeWith(t)
	s := openStore(t)

	inst, _ := rt.New(rt.Registry.MustLookup("Account"))
	set(t, inst, "extra", 1, nil)
	if err := s.Save(ctx, inst); err != nil {
		t.Fatal(err)
	}
	evaluator.UnsetProperty(inst, "extra")
	if err := s.Save(ctx, inst); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != inst.ID || entries[0].Type != "Account" || entries[0].Fields != 3 {
		t.Errorf("List = %+v, want one Account with 3 fields", entries)
	}
	got, _ := s.Load(ctx, inst.ID, rt)
	if evaluator.RuntimeFieldsCount(got) != 0 {
		t.Errorf("stale runtime field survived the second save")
	}
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	rt := runtimeWith(t)
	s := openStore(t)

	if _, err := s.Load(ctx, uuid.New(), rt); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(unknown) err = %v, want ErrNotFound", err)
	}

	// rows naming a field Plain does not declare need a runtime field slot
	id := uuid.New()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO objects (id, type, saved_at) VALUES (?, 'Plain', 0)`, id.String()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO fields VALUES (?, 0, 'ghost', '1')`, id.String()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, id, rt); !errors.Is(err, typesystem.ErrUnsupportedType) {
		t.Errorf("Load(ghost field) err = %v, want ErrUnsupportedType", err)
	}

	other := uuid.New()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO objects (id, type, saved_at) VALUES (?, 'Gone', 0)`, other.String()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, other, rt); !errors.Is(err, typesystem.ErrMemberNotFound) {
		t.Errorf("Load(unregistered type) err = %v, want ErrMemberNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	rt := runtimeWith(t)
	s := openStore(t)

	inst, _ := rt.New(rt.Registry.MustLookup("Plain"))
	if err := s.Save(ctx, inst); err != nil {
		t.Fatal(err)
	}
	if ok, err := s.Delete(ctx, inst.ID); err != nil || !ok {
		t.Errorf("Delete = %v, %v; want true", ok, err)
	}
	if ok, _ := s.Delete(ctx, inst.ID); ok {
		t.Errorf("second Delete reported a removed snapshot")
	}
	if entries, _ := s.List(ctx); len(entries) != 0 {
		t.Errorf("List after Delete = %v", entries)
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		key  string
		want fieldKey
	}{
		{"name", fieldKey{access: typesystem.AccessPublic, name: "name"}},
		{" * name", fieldKey{access: typesystem.AccessProtected, name: "name"}},
		{" Foo secret", fieldKey{access: typesystem.AccessPrivate, declarer: "Foo", name: "secret"}},
		{" odd", fieldKey{access: typesystem.AccessPublic, name: " odd"}},
	}
	for _, tt := range tests {
		if got := parseKey(tt.key); got != tt.want {
			t.Errorf("parseKey(%q) = %+v, want %+v", tt.key, got, tt.want)
		}
	}
}

func TestValueCodec(t *testing.T) {
	inner := evaluator.NewArray()
	inner.Set("deep", nil)
	nested := evaluator.NewArray()
	nested.Set("z", 1)
	nested.Set("a", 2.5)
	nested.Set("inner", inner)

	for _, v := range []evaluator.Value{nil, true, 42, -7, 3.25, 2.0, -0.5, 1e300, math.Inf(-1), "text", "", "\xff", "bad\xffutf8"} {
		raw, err := encodeValue(v)
		if err != nil {
			t.Fatalf("encodeValue(%v) failed: %v", v, err)
		}
		got, err := decodeValue(raw)
		if err != nil {
			t.Fatalf("decodeValue(%s) failed: %v", raw, err)
		}
		if got != v {
			t.Errorf("round trip of %#v = %#v", v, got)
		}
	}

	raw, err := encodeValue(nested)
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodeValue(raw)
	if err != nil {
		t.Fatal(err)
	}
	arr := got.(*evaluator.Array)
	if !reflect.DeepEqual(arr.Keys(), []string{"z", "a", "inner"}) {
		t.Errorf("keys = %v", arr.Keys())
	}
	if in, _ := arr.Get("inner"); !in.(*evaluator.Array).Has("deep") {
		t.Errorf("nested array lost its entries")
	}
}

func TestValueCodecKeepsKinds(t *testing.T) {
	bin := evaluator.NewArray()
	bin.Set("\xfe", "\xff")
	bin.Set("two", 2.0)
	bin.Set("n", 2)

	raw, err := encodeValue(bin)
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodeValue(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !evaluator.ValuesEqual(got, bin) {
		t.Errorf("round trip of %s lost data", raw)
	}
	arr := got.(*evaluator.Array)
	if v, _ := arr.Get("two"); v != 2.0 {
		t.Errorf("two = %#v, want float64 2", v)
	}
	if v, _ := arr.Get("n"); v != 2 {
		t.Errorf("n = %#v, want int 2", v)
	}

	if _, err := encodeValue([]int{1}); !errors.Is(err, typesystem.ErrUnsupportedType) {
		t.Errorf("encodeValue of a host slice: expected ErrUnsupportedType, got %v", err)
	}
	for _, bad := range []string{`{"f":"x"}`, `{"b":"!!"}`, `{"a":[["k"]]}`, `{"f":"1","b":"AA=="}`, `1.5`, `1 2`} {
		if _, err := decodeValue([]byte(bad)); err == nil {
			t.Errorf("decodeValue(%s) succeeded", bad)
		}
	}
}

func TestSaveLoadExactValues(t *testing.T) {
	ctx := context.Background()
	rt := runtimeWith(t)
	s := openStore(t)

	inst, err := rt.New(rt.Registry.MustLookup("Account"))
	if err != nil {
		t.Fatal(err)
	}
	set(t, inst, "owner", "bad\xffutf8", nil)
	set(t, inst, "ratio", 2.0, nil)
	if err := s.Save(ctx, inst); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, inst.ID, rt)
	if err != nil {
		t.Fatal(err)
	}
	if owner, _ := evaluator.ReadProperty(got, "owner", nil); owner != "bad\xffutf8" {
		t.Errorf("owner = %q, want the original bytes", owner)
	}
	if ratio, _ := evaluator.ReadProperty(got, "ratio", nil); ratio != 2.0 {
		t.Errorf("ratio = %#v, want float64 2", ratio)
	}
	if !evaluator.InstancesEqual(got, inst) {
		t.Errorf("loaded instance differs from the saved one")
	}
}

func TestSaveLoadShadowedField(t *testing.T) {
	ctx := context.Background()
	ctor := typesystem.ConstructorDescriptor{Params: []typesystem.ParamKind{typesystem.ParamContext}, FieldsOnly: true}

	base := typesystem.NewType("Base", typesystem.KindClass)
	base.DeclareField("x", typesystem.AccessPublic, "base")
	base.DeclareConstructor(ctor)
	derived := typesystem.NewType("Derived", typesystem.KindClass)
	derived.DeclareField("x", typesystem.AccessPublic, "derived")
	derived.DeclareConstructor(ctor)

	reg := symbols.NewRegistry()
	if err := reg.RegisterAll([]*typesystem.TypeDescriptor{base}); err != nil {
		t.Fatal(err)
	}
	if err := derived.Extend(base); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterAll([]*typesystem.TypeDescriptor{derived}); err != nil {
		t.Fatal(err)
	}
	rt := evaluator.NewContext(reg)
	s := openStore(t)

	inst, err := rt.New(derived)
	if err != nil {
		t.Fatal(err)
	}
	set(t, inst, "x", "written", nil)
	if err := s.Save(ctx, inst); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, inst.ID, rt)
	if err != nil {
		t.Fatal(err)
	}
	if x, _ := evaluator.ReadProperty(got, "x", nil); x != "written" {
		t.Errorf("x = %v after Load, want written", x)
	}
	if !evaluator.InstancesEqual(got, inst) {
		t.Errorf("loaded instance differs from the saved one")
	}
}
