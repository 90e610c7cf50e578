package evaluator

import (
	"iter"

	"github.com/funvibe/objmodel/internal/typesystem"
)

// ResolveConstant finds the class constant name of t. The class chain is
// searched most derived first, then the implemented interfaces in declaration
// order. The first match wins.
func ResolveConstant(t *typesystem.TypeDescriptor, name string) (*typesystem.FieldDescriptor, error) {
	for level := range typesystem.Levels(t) {
		if c, ok := level.Constant(name); ok && c.Access.Reflectable() {
			return c, nil
		}
	}
	for _, i := range typesystem.AllInterfaces(t) {
		if c, ok := i.Constant(name); ok && c.Access.Reflectable() {
			return c, nil
		}
	}
	return nil, typesystem.NewMemberError(typesystem.ErrMemberNotFound, t, name)
}

// ResolveVisibleConstant is ResolveConstant followed by a visibility check for caller.
func ResolveVisibleConstant(t *typesystem.TypeDescriptor, name string, caller *typesystem.TypeDescriptor) (*typesystem.FieldDescriptor, error) {
	c, err := ResolveConstant(t, name)
	if err != nil {
		return nil, err
	}
	if !IsFieldVisible(c, caller) {
		return nil, typesystem.NewMemberError(typesystem.ErrMemberInaccessible, t, name)
	}
	return c, nil
}

// DeclaredConstants iterates over the constants of the class chain, then
// those of the implemented interfaces.
func DeclaredConstants(t *typesystem.TypeDescriptor) iter.Seq[*typesystem.FieldDescriptor] {
	return func(yield func(*typesystem.FieldDescriptor) bool) {
		for level := range typesystem.Levels(t) {
			for _, c := range level.Constants() {
				if c.Access.Reflectable() && !yield(c) {
					return
				}
			}
		}
		for _, i := range typesystem.AllInterfaces(t) {
			for _, c := range i.Constants() {
				if c.Access.Reflectable() && !yield(c) {
					return
				}
			}
		}
	}
}
