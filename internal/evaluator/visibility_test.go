package evaluator

import (
	"testing"

	"github.com/funvibe/objmodel/internal/typesystem"
)

func TestIsFieldVisible(t *testing.T) {
	w := newWorld(t)
	secret, _ := w.foo.Field("secret")
	kind, _ := w.foo.Field("kind")
	id, _ := w.foo.Field("id")
	barSecret, _ := w.bar.Field("secret")

	tests := []struct {
		name   string
		field  *typesystem.FieldDescriptor
		caller *typesystem.TypeDescriptor
		want   bool
	}{
		{"public from global", id, nil, true},
		{"public from unrelated", id, w.other, true},
		{"private from declarer", secret, w.foo, true},
		{"private from subclass", secret, w.bar, false},
		{"private from global", secret, nil, false},
		{"subclass private from base", barSecret, w.foo, false},
		{"protected from declarer", kind, w.foo, true},
		{"protected from subclass", kind, w.bar, true},
		{"protected from unrelated", kind, w.other, false},
		{"protected from global", kind, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFieldVisible(tt.field, tt.caller); got != tt.want {
				t.Errorf("IsFieldVisible(%s, %v) = %v, want %v", tt.field, tt.caller, got, tt.want)
			}
		})
	}
}

func TestProtectedVisibilityIsSymmetric(t *testing.T) {
	w := newWorld(t)
	// a protected member declared by the subclass is visible to the base
	f := &typesystem.FieldDescriptor{Name: "p", DeclaringType: w.bar, Access: typesystem.AccessProtected}
	if !IsFieldVisible(f, w.foo) {
		t.Errorf("protected field of Bar must be visible from Foo")
	}
	if !IsFieldVisible(f, w.bar) {
		t.Errorf("protected field of Bar must be visible from Bar")
	}
	if IsFieldVisible(f, w.other) {
		t.Errorf("protected field of Bar must not be visible from Other")
	}
}

func TestInternalNeverVisible(t *testing.T) {
	w := newWorld(t)
	f := &typesystem.FieldDescriptor{Name: "_host", DeclaringType: w.foo, Access: typesystem.AccessInternal}
	for _, caller := range []*typesystem.TypeDescriptor{nil, w.foo, w.bar, w.other} {
		if IsFieldVisible(f, caller) {
			t.Errorf("internal field visible from %v", caller)
		}
	}
	m := &typesystem.MethodDescriptor{Name: "host", DeclaringType: w.foo, Access: typesystem.AccessInternal}
	if IsMethodVisible(m, w.foo) {
		t.Errorf("internal method visible from its declarer")
	}
}
