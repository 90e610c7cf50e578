package evaluator

import (
	"iter"
)

// Array is a string-keyed map that remembers first-write order.
// Overwriting a key keeps its position; deleting and re-adding appends it.
type Array struct {
	keys   []string
	values []Value
	index  map[string]int
}

func NewArray() *Array {
	return &Array{index: make(map[string]int)}
}

func (a *Array) Len() int { return len(a.keys) }

func (a *Array) Get(key string) (Value, bool) {
	i, ok := a.index[key]
	if !ok {
		return nil, false
	}
	return a.values[i], true
}

func (a *Array) Has(key string) bool {
	_, ok := a.index[key]
	return ok
}

func (a *Array) Set(key string, v Value) {
	if i, ok := a.index[key]; ok {
		a.values[i] = v
		return
	}
	a.index[key] = len(a.keys)
	a.keys = append(a.keys, key)
	a.values = append(a.values, v)
}

// Delete removes key and reports whether it was present.
func (a *Array) Delete(key string) bool {
	i, ok := a.index[key]
	if !ok {
		return false
	}
	delete(a.index, key)
	a.keys = append(a.keys[:i], a.keys[i+1:]...)
	a.values = append(a.values[:i], a.values[i+1:]...)
	for j := i; j < len(a.keys); j++ {
		a.index[a.keys[j]] = j
	}
	return true
}

// Keys returns the keys in order.
func (a *Array) Keys() []string {
	return append([]string(nil), a.keys...)
}

// All iterates over the entries in order.
func (a *Array) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for i, k := range a.keys {
			if !yield(k, a.values[i]) {
				return
			}
		}
	}
}

// DeepCopy copies the array and every nested value with value semantics.
func (a *Array) DeepCopy() Value {
	out := &Array{
		keys:   append([]string(nil), a.keys...),
		values: make([]Value, len(a.values)),
		index:  make(map[string]int, len(a.index)),
	}
	for i, v := range a.values {
		out.values[i] = CopyValue(v)
	}
	for k, i := range a.index {
		out.index[k] = i
	}
	return out
}
