package evaluator

import (
	"errors"
	"iter"

	"github.com/funvibe/objmodel/internal/typesystem"
)

type MemberKind int

const (
	MemberField MemberKind = iota
	MemberRuntimeField
	MemberMethod
	MemberConstant
)

func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberRuntimeField:
		return "runtime field"
	case MemberMethod:
		return "method"
	case MemberConstant:
		return "constant"
	default:
		return "unknown"
	}
}

// Member is a resolved member of a type or instance.
type Member struct {
	Kind MemberKind
	Name string
	// Field is set for MemberField and MemberConstant.
	Field *typesystem.FieldDescriptor
	// Overloads is set for MemberMethod.
	Overloads *typesystem.OverloadSet
}

// DeclaredProperty returns the most derived non-constant field name of t.
// Runtime fields are not considered.
func DeclaredProperty(t *typesystem.TypeDescriptor, name string) (*typesystem.FieldDescriptor, bool) {
	for level := range typesystem.Levels(t) {
		if f, ok := level.Field(name); ok && f.Access.Reflectable() {
			return f, true
		}
	}
	return nil, false
}

// DeclaredProperties iterates over the non-constant fields of t, most derived first.
func DeclaredProperties(t *typesystem.TypeDescriptor) iter.Seq[*typesystem.FieldDescriptor] {
	return func(yield func(*typesystem.FieldDescriptor) bool) {
		for level := range typesystem.Levels(t) {
			for _, f := range level.Fields() {
				if f.Access.Reflectable() && !yield(f) {
					return
				}
			}
		}
	}
}

// RuntimeProperty describes runtime field name of t. With a nil inst it only
// checks that t supports runtime fields; otherwise the field must exist on inst.
func RuntimeProperty(t *typesystem.TypeDescriptor, name string, inst *Instance) (Member, bool) {
	if !t.SupportsRuntimeFields() {
		return Member{}, false
	}
	if inst != nil {
		if inst.runtime == nil || !inst.runtime.Has(name) {
			return Member{}, false
		}
	}
	return Member{Kind: MemberRuntimeField, Name: name}, true
}

// RuntimeProperties lists the runtime fields of inst in first-write order.
func RuntimeProperties(inst *Instance) []Member {
	if inst.runtime == nil {
		return nil
	}
	out := make([]Member, 0, inst.runtime.Len())
	for k := range inst.runtime.All() {
		out = append(out, Member{Kind: MemberRuntimeField, Name: k})
	}
	return out
}

// LookupProperty resolves property name of inst as seen from caller: the most
// derived visible declared instance field, else a runtime field.
func LookupProperty(inst *Instance, name string, caller *typesystem.TypeDescriptor) (Member, error) {
	hidden := false
	for level := range typesystem.Levels(inst.typ) {
		f, ok := level.Field(name)
		if !ok || !f.IsInstanceField() || !f.Access.Reflectable() {
			continue
		}
		if IsFieldVisible(f, caller) {
			return Member{Kind: MemberField, Name: name, Field: f}, nil
		}
		hidden = true
	}
	if m, ok := RuntimeProperty(inst.typ, name, inst); ok {
		return m, nil
	}
	if hidden {
		return Member{}, typesystem.NewMemberError(typesystem.ErrMemberInaccessible, inst.typ, name)
	}
	return Member{}, typesystem.NewMemberError(typesystem.ErrMemberNotFound, inst.typ, name)
}

// ReadProperty returns the value of property name as seen from caller.
func ReadProperty(inst *Instance, name string, caller *typesystem.TypeDescriptor) (Value, error) {
	m, err := LookupProperty(inst, name, caller)
	if err != nil {
		return nil, err
	}
	if m.Kind == MemberField {
		return inst.Slot(m.Field), nil
	}
	v, _ := inst.runtime.Get(name)
	return v, nil
}

// WriteProperty assigns property name as seen from caller. Assigning a name
// with no declaration creates a runtime field.
func WriteProperty(inst *Instance, name string, v Value, caller *typesystem.TypeDescriptor) error {
	m, err := LookupProperty(inst, name, caller)
	switch {
	case err == nil && m.Kind == MemberField:
		inst.SetSlot(m.Field, v)
		return nil
	case err == nil:
		inst.runtime.Set(name, v)
		return nil
	case !errors.Is(err, typesystem.ErrMemberNotFound):
		return err
	}

	if !typesystem.IsAllowedName(name) {
		return typesystem.NewMemberError(typesystem.ErrInvalidName, inst.typ, name)
	}
	store, err := EnsureRuntimeFields(inst)
	if err != nil {
		return err
	}
	store.Set(name, v)
	return nil
}

// UnsetProperty removes runtime field name and reports whether it existed.
// Declared fields can not be removed.
func UnsetProperty(inst *Instance, name string) bool {
	if inst.runtime == nil {
		return false
	}
	return inst.runtime.Delete(name)
}

// LookupMethod resolves method name of t visible from caller.
func (r *Resolver) LookupMethod(t *typesystem.TypeDescriptor, name string, caller *typesystem.TypeDescriptor) (Member, error) {
	set, err := r.ResolveVisibleMethod(t, name, caller)
	if err != nil {
		return Member{}, err
	}
	return Member{Kind: MemberMethod, Name: set.Name(), Overloads: set}, nil
}

// LookupConstant resolves class constant name of t visible from caller.
func LookupConstant(t *typesystem.TypeDescriptor, name string, caller *typesystem.TypeDescriptor) (Member, error) {
	c, err := ResolveVisibleConstant(t, name, caller)
	if err != nil {
		return Member{}, err
	}
	return Member{Kind: MemberConstant, Name: name, Field: c}, nil
}
