package evaluator

import (
	"iter"

	"github.com/funvibe/objmodel/internal/typesystem"
)

// FieldFilter selects the declared fields an enumeration yields.
type FieldFilter func(f *typesystem.FieldDescriptor) bool

// VisibleTo keeps the fields visible from caller.
func VisibleTo(caller *typesystem.TypeDescriptor) FieldFilter {
	return func(f *typesystem.FieldDescriptor) bool {
		return IsFieldVisible(f, caller)
	}
}

// Reflectable keeps every field except host-internal ones. It ignores the
// caller and is used for formatting output.
func Reflectable(f *typesystem.FieldDescriptor) bool {
	return f.Access.Reflectable()
}

// Enumerate yields the instance fields of inst as (formatted key, value) pairs:
// declared fields level by level, most derived first, then the runtime fields
// in first-write order when includeRuntime is set.
//
// Host-internal fields are never yielded, whatever the filter says.
func Enumerate(inst *Instance, filter FieldFilter, format Format, includeRuntime bool) iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for level := range typesystem.Levels(inst.typ) {
			if level.Hidden() {
				continue
			}
			for _, f := range level.Fields() {
				if !f.IsInstanceField() || !f.Access.Reflectable() {
					continue
				}
				if filter != nil && !filter(f) {
					continue
				}
				if !yield(format.FieldKey(f, level), inst.slots[f.Slot]) {
					return
				}
			}
		}

		if !includeRuntime || inst.runtime == nil {
			return
		}
		// runtime fields carry no access metadata and are all public
		for k, v := range inst.runtime.All() {
			if !yield(format.RuntimeKey(k), v) {
				return
			}
		}
	}
}

// EnumerateVisible yields the fields visible from caller under their plain names.
func EnumerateVisible(inst *Instance, caller *typesystem.TypeDescriptor) iter.Seq2[string, Value] {
	return Enumerate(inst, VisibleTo(caller), PlainFormat, true)
}

// EnumerateForPrint yields every field keyed the way print_r shows it.
func EnumerateForPrint(inst *Instance) iter.Seq2[string, Value] {
	return Enumerate(inst, Reflectable, PrintFormat, true)
}

// EnumerateForDump yields every field keyed the way var_dump shows it.
func EnumerateForDump(inst *Instance) iter.Seq2[string, Value] {
	return Enumerate(inst, Reflectable, DumpFormat, true)
}

// FieldsCount returns the number of fields Enumerate would yield with the
// Reflectable filter, without walking the values.
func FieldsCount(inst *Instance) int {
	count := 0
	for level := range typesystem.Levels(inst.typ) {
		if level.Hidden() {
			continue
		}
		for _, f := range level.Fields() {
			if f.IsInstanceField() && f.Access.Reflectable() {
				count++
			}
		}
	}
	return count + RuntimeFieldsCount(inst)
}

// ToArray casts inst to an array: each field keyed by ArrayFormat, values
// deep-copied, runtime fields last. A public or protected field shadowed by a
// subclass shares its key with the shadowing field; the most derived one wins,
// as it does for ReadProperty.
func ToArray(inst *Instance) *Array {
	arr := NewArray()
	for k, v := range Enumerate(inst, Reflectable, ArrayFormat, true) {
		if arr.Has(k) {
			continue
		}
		arr.Set(k, CopyValue(v))
	}
	return arr
}
