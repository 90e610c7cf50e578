package evaluator

import "testing"

func TestValuesEqual(t *testing.T) {
	arr := func(kv ...any) *Array {
		a := NewArray()
		for i := 0; i+1 < len(kv); i += 2 {
			a.Set(kv[i].(string), kv[i+1])
		}
		return a
	}
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil", nil, nil, true},
		{"nil and zero", nil, 0, false},
		{"ints", 1, 1, true},
		{"int and float", 1, 1.0, false},
		{"strings", "a", "b", false},
		{"arrays", arr("a", 1, "b", arr("c", true)), arr("a", 1, "b", arr("c", true)), true},
		{"order matters", arr("a", 1, "b", 2), arr("b", 2, "a", 1), false},
		{"nested differs", arr("b", arr("c", true)), arr("b", arr("c", false)), false},
		{"lengths", arr("a", 1), arr("a", 1, "b", 2), false},
		{"host values", []int{1}, []int{1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValuesEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ValuesEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestInstancesEqual(t *testing.T) {
	w := newWorld(t)
	a := w.new(t, w.foo)
	b := w.new(t, w.foo)
	if !InstancesEqual(a, b) {
		t.Fatal("fresh instances of one type differ")
	}

	must(t, WriteProperty(a, "color", "red", nil))
	if InstancesEqual(a, b) {
		t.Error("runtime fields ignored")
	}
	must(t, WriteProperty(b, "color", "red", nil))
	if !InstancesEqual(a, b) {
		t.Error("equal runtime fields compare unequal")
	}

	must(t, WriteProperty(b, "id", 2, nil))
	if InstancesEqual(a, b) {
		t.Error("declared fields ignored")
	}
	if InstancesEqual(a, w.new(t, w.bar)) {
		t.Error("instances of different types compare equal")
	}
}
