package evaluator

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestArrayMarshalJSON(t *testing.T) {
	inner := NewArray()
	inner.Set("0", "x")
	a := NewArray()
	a.Set("z", 1)
	a.Set("a", inner)
	a.Set("q\"", nil)

	got, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if want := `{"z":1,"a":{"0":"x"},"q\"":null}`; string(got) != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{`null`, nil},
		{`true`, true},
		{`42`, 42},
		{`-3`, -3},
		{`2.5`, 2.5},
		{`"s"`, "s"},
	}
	for _, tt := range tests {
		got, err := ParseJSON([]byte(tt.input))
		if err != nil {
			t.Errorf("ParseJSON(%s) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseJSON(%s) = %#v, want %#v", tt.input, got, tt.want)
		}
	}

	got, err := ParseJSON([]byte(`{"b": [1, "two"], "a": {}}`))
	if err != nil {
		t.Fatal(err)
	}
	arr := got.(*Array)
	if !reflect.DeepEqual(arr.Keys(), []string{"b", "a"}) {
		t.Errorf("keys = %v, want document order", arr.Keys())
	}
	list, _ := arr.Get("b")
	if v, _ := list.(*Array).Get("1"); v != "two" {
		t.Errorf("b[1] = %v", v)
	}

	for _, bad := range []string{``, `{`, `[1,]`, `1 2`} {
		if _, err := ParseJSON([]byte(bad)); err == nil {
			t.Errorf("ParseJSON(%q) must fail", bad)
		}
	}
}
