package evaluator

import (
	"reflect"
	"testing"
)

func TestArrayOrder(t *testing.T) {
	a := NewArray()
	a.Set("b", 1)
	a.Set("a", 2)
	a.Set("c", 3)
	a.Set("b", 10)

	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(a.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", a.Keys(), want)
	}
	if v, _ := a.Get("b"); v != 10 {
		t.Errorf("Get(b) = %v, want 10", v)
	}

	if !a.Delete("b") || a.Delete("b") {
		t.Errorf("Delete(b) must succeed exactly once")
	}
	a.Set("b", 20)
	if want := []string{"a", "c", "b"}; !reflect.DeepEqual(a.Keys(), want) {
		t.Errorf("Keys() after re-add = %v, want %v", a.Keys(), want)
	}
	if v, ok := a.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) after delete = %v, %v", v, ok)
	}
	if a.Len() != 3 || a.Has("missing") {
		t.Errorf("Len() = %d", a.Len())
	}
}

func TestArrayDeepCopy(t *testing.T) {
	inner := NewArray()
	inner.Set("x", 1)
	outer := NewArray()
	outer.Set("inner", inner)
	outer.Set("n", 5)

	c := outer.DeepCopy().(*Array)
	c.Set("n", 6)
	ci, _ := c.Get("inner")
	ci.(*Array).Set("x", 2)

	if v, _ := outer.Get("n"); v != 5 {
		t.Errorf("copy shares scalar storage")
	}
	if v, _ := inner.Get("x"); v != 1 {
		t.Errorf("copy shares nested array")
	}
}
