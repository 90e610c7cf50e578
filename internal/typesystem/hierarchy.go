package typesystem

import "iter"

// ForEachLevel calls visit for t and each of its base types, most derived first.
func ForEachLevel(t *TypeDescriptor, visit func(level *TypeDescriptor)) {
	for level := t; level != nil; level = level.base {
		visit(level)
	}
}

// Levels is ForEachLevel as an iterator.
func Levels(t *TypeDescriptor) iter.Seq[*TypeDescriptor] {
	return func(yield func(*TypeDescriptor) bool) {
		for level := t; level != nil; level = level.base {
			if !yield(level) {
				return
			}
		}
	}
}

// IsSubclassOf reports whether t strictly derives from other through the base chain.
func (t *TypeDescriptor) IsSubclassOf(other *TypeDescriptor) bool {
	if t == nil || other == nil {
		return false
	}
	for level := t.base; level != nil; level = level.base {
		if level == other {
			return true
		}
	}
	return false
}

// IsAssignableFrom reports whether a value of type other can be used as t:
// other is t, derives from t, or implements t.
func (t *TypeDescriptor) IsAssignableFrom(other *TypeDescriptor) bool {
	if t == nil || other == nil {
		return false
	}
	if t == other || other.IsSubclassOf(t) {
		return true
	}
	if t.kind != KindInterface {
		return false
	}
	for _, i := range AllInterfaces(other) {
		if i == t {
			return true
		}
	}
	return false
}

// IsInheritance reports whether a and b are related by inheritance in either direction.
func IsInheritance(a, b *TypeDescriptor) bool {
	return a.IsAssignableFrom(b) || b.IsAssignableFrom(a)
}

// AllInterfaces returns every interface t implements: the declared ones in
// declaration order, each followed by the interfaces it extends, then the
// interfaces of the base chain. Duplicates are dropped.
func AllInterfaces(t *TypeDescriptor) []*TypeDescriptor {
	var out []*TypeDescriptor
	seen := make(map[*TypeDescriptor]bool)

	var add func(i *TypeDescriptor)
	add = func(i *TypeDescriptor) {
		if seen[i] {
			return
		}
		seen[i] = true
		out = append(out, i)
		for _, parent := range i.interfaces {
			add(parent)
		}
	}

	for level := t; level != nil; level = level.base {
		for _, i := range level.interfaces {
			add(i)
		}
	}
	return out
}
