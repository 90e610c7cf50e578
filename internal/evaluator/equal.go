package evaluator

// ValuesEqual performs a strict deep equality check between two guest values.
// Arrays are equal when they hold the same keys in the same order with equal
// values; ints and floats never compare equal to each other. Values of any
// other host type are never equal.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch aVal := a.(type) {
	case *Array:
		bVal, ok := b.(*Array)
		if !ok {
			return false
		}
		if aVal == bVal {
			return true
		}
		if aVal.Len() != bVal.Len() {
			return false
		}
		// arrays keep insertion order, so iterate in lockstep
		for i, k := range aVal.keys {
			if bVal.keys[i] != k {
				return false
			}
			if !ValuesEqual(aVal.values[i], bVal.values[i]) {
				return false
			}
		}
		return true
	case bool, int, float64, string:
		return a == b
	}
	return false
}

// InstancesEqual reports whether a and b are of the same type and hold equal
// declared and runtime fields. Identities are not compared.
func InstancesEqual(a, b *Instance) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.typ != b.typ || len(a.slots) != len(b.slots) {
		return false
	}
	for i := range a.slots {
		if !ValuesEqual(a.slots[i], b.slots[i]) {
			return false
		}
	}
	if RuntimeFieldsCount(a) != RuntimeFieldsCount(b) {
		return false
	}
	if a.runtime == nil || b.runtime == nil {
		return true
	}
	return ValuesEqual(a.runtime, b.runtime)
}
