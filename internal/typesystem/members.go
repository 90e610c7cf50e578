package typesystem

import (
	"fmt"

	"github.com/funvibe/objmodel/internal/config"
)

// FieldDescriptor describes a declared field or class constant.
type FieldDescriptor struct {
	Name          string
	DeclaringType *TypeDescriptor
	Access        Access
	IsConstant    bool
	IsStatic      bool
	// Default is the initial slot value of an instance field, the value of a
	// static field, or the value of a constant.
	Default any
	// Slot is the storage index of an instance field within its instance,
	// assigned by Seal. It is -1 for constants and static fields.
	Slot int
}

// IsInstanceField reports whether the field occupies a storage slot.
func (f *FieldDescriptor) IsInstanceField() bool {
	return !f.IsConstant && !f.IsStatic
}

func (f *FieldDescriptor) String() string {
	return fmt.Sprintf("%s %s::%s", f.Access, f.DeclaringType.Name(), f.Name)
}

// MethodDescriptor is a single overload candidate.
type MethodDescriptor struct {
	Name          string
	DeclaringType *TypeDescriptor
	Access        Access
	IsStatic      bool
	Params        int
}

func (m *MethodDescriptor) String() string {
	return fmt.Sprintf("%s %s::%s/%d", m.Access, m.DeclaringType.Name(), m.Name, m.Params)
}

// overrides reports whether m replaces the inherited candidate other.
func (m *MethodDescriptor) overrides(other *MethodDescriptor) bool {
	return m.Params == other.Params && m.IsStatic == other.IsStatic
}

// OverloadSet groups the same-named candidates visible at one point of a hierarchy.
// Candidates are ordered most-derived first.
type OverloadSet struct {
	name    string
	methods []*MethodDescriptor
}

// NewOverloadSet creates an overload set, failing when it exceeds MaxOverloads.
func NewOverloadSet(name string, methods ...*MethodDescriptor) (*OverloadSet, error) {
	if len(methods) > config.MaxOverloads {
		return nil, fmt.Errorf("%w: %s has %d candidates, at most %d are supported", ErrTooManyOverloads, name, len(methods), config.MaxOverloads)
	}
	return &OverloadSet{name: name, methods: methods}, nil
}

func (s *OverloadSet) Name() string { return s.name }
func (s *OverloadSet) Len() int     { return len(s.methods) }

// At returns the i-th candidate.
func (s *OverloadSet) At(i int) *MethodDescriptor { return s.methods[i] }

// Methods returns a copy of the candidates.
func (s *OverloadSet) Methods() []*MethodDescriptor {
	return append([]*MethodDescriptor(nil), s.methods...)
}

// AllMask returns the mask with one bit set per candidate.
func (s *OverloadSet) AllMask() (uint64, error) {
	n := len(s.methods)
	switch {
	case n > config.MaxOverloads:
		return 0, fmt.Errorf("%w: %s has %d candidates", ErrTooManyOverloads, s.name, n)
	case n == 64:
		return ^uint64(0), nil
	default:
		return (uint64(1) << n) - 1, nil
	}
}

// Filter returns a new set holding the candidates whose bit is set in mask.
func (s *OverloadSet) Filter(mask uint64) *OverloadSet {
	var kept []*MethodDescriptor
	for i, m := range s.methods {
		if mask&(uint64(1)<<i) != 0 {
			kept = append(kept, m)
		}
	}
	return &OverloadSet{name: s.name, methods: kept}
}

// ParamKind tells whether a constructor parameter is supplied by the caller or
// implicitly by the runtime.
type ParamKind int

const (
	ParamValue ParamKind = iota
	ParamContext
)

// ConstructorDescriptor describes a host constructor of a compiled class.
type ConstructorDescriptor struct {
	DeclaringType *TypeDescriptor
	Access        Access
	IsStatic      bool
	// FieldsOnly marks the constructor reserved for rebuilding storage
	// without running user constructor logic.
	FieldsOnly bool
	// Hidden constructors are not visible to the guest runtime.
	Hidden bool
	Params []ParamKind
	// Body runs after the instance storage has been allocated.
	// self is the allocated instance and args holds one value per parameter.
	Body func(self any, args []any) error
}

// ImplicitParamsCount returns the number of leading runtime-supplied parameters.
func (c *ConstructorDescriptor) ImplicitParamsCount() int {
	n := 0
	for _, p := range c.Params {
		if p != ParamContext {
			break
		}
		n++
	}
	return n
}

// IsFieldsOnly reports whether c is a usable fields-only constructor: marked,
// non-static, taking exactly the implicit context argument.
func (c *ConstructorDescriptor) IsFieldsOnly() bool {
	return c.FieldsOnly && !c.IsStatic && len(c.Params) == 1 && c.Params[0] == ParamContext
}
