package typesystem

import (
	"fmt"
	"sync/atomic"
)

// TypeKind distinguishes instantiable classes from interfaces and traits.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
	KindTrait
)

func (k TypeKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindTrait:
		return "trait"
	default:
		return "unknown"
	}
}

// Instantiable reports whether objects of this kind can be allocated.
func (k TypeKind) Instantiable() bool { return k == KindClass }

// ParseKind maps a kind keyword to its TypeKind.
func ParseKind(s string) (TypeKind, bool) {
	switch s {
	case "", "class":
		return KindClass, true
	case "interface":
		return KindInterface, true
	case "trait":
		return KindTrait, true
	}
	return KindClass, false
}

var lastTypeID atomic.Int64

// TypeDescriptor is the metadata of one compiled guest class.
//
// A descriptor is populated through its Declare* methods and published with
// Seal. A sealed descriptor never changes again and may be read concurrently.
type TypeDescriptor struct {
	id         int64
	name       string
	kind       TypeKind
	base       *TypeDescriptor
	interfaces []*TypeDescriptor
	hidden     bool
	sealed     bool

	runtimeFields bool

	fields     []*FieldDescriptor
	fieldIndex map[string]*FieldDescriptor

	constants  []*FieldDescriptor
	constIndex map[string]*FieldDescriptor

	methods     map[string]*OverloadSet // folded name -> declared candidates
	methodOrder []string

	// runtimeMethods holds declared and inherited candidates, built by Seal.
	runtimeMethods map[string]*OverloadSet

	ctors []*ConstructorDescriptor
	slots int
}

// NewType starts a new, unsealed descriptor.
func NewType(name string, kind TypeKind) *TypeDescriptor {
	return &TypeDescriptor{
		id:         lastTypeID.Add(1),
		name:       name,
		kind:       kind,
		fieldIndex: make(map[string]*FieldDescriptor),
		constIndex: make(map[string]*FieldDescriptor),
		methods:    make(map[string]*OverloadSet),
	}
}

func (t *TypeDescriptor) ID() int64                     { return t.id }
func (t *TypeDescriptor) Name() string                  { return t.name }
func (t *TypeDescriptor) Kind() TypeKind                { return t.kind }
func (t *TypeDescriptor) Base() *TypeDescriptor         { return t.base }
func (t *TypeDescriptor) Hidden() bool                  { return t.hidden }
func (t *TypeDescriptor) Sealed() bool                  { return t.sealed }
func (t *TypeDescriptor) SupportsRuntimeFields() bool   { return t.runtimeFields }
func (t *TypeDescriptor) InstanceFieldCount() int       { return t.slots }
func (t *TypeDescriptor) Interfaces() []*TypeDescriptor { return t.interfaces }

func (t *TypeDescriptor) String() string { return t.name }

// Fields returns the fields declared at this level, in declaration order.
func (t *TypeDescriptor) Fields() []*FieldDescriptor { return t.fields }

// Field returns the field declared at this level under name.
func (t *TypeDescriptor) Field(name string) (*FieldDescriptor, bool) {
	f, ok := t.fieldIndex[name]
	return f, ok
}

// Constants returns the constants declared at this level, in declaration order.
func (t *TypeDescriptor) Constants() []*FieldDescriptor { return t.constants }

// Constant returns the constant declared at this level under name.
func (t *TypeDescriptor) Constant(name string) (*FieldDescriptor, bool) {
	c, ok := t.constIndex[name]
	return c, ok
}

// DeclaredMethods returns the overload set declared at this level only.
func (t *TypeDescriptor) DeclaredMethods(name string) (*OverloadSet, bool) {
	s, ok := t.methods[FoldName(name)]
	return s, ok
}

// RuntimeMethods returns the candidates callable through an instance of t,
// including inherited ones. Only available once sealed.
func (t *TypeDescriptor) RuntimeMethods(name string) (*OverloadSet, bool) {
	s, ok := t.runtimeMethods[FoldName(name)]
	return s, ok
}

// MethodNames returns the declared method names of this level in declaration order.
func (t *TypeDescriptor) MethodNames() []string {
	names := make([]string, 0, len(t.methodOrder))
	for _, key := range t.methodOrder {
		names = append(names, t.methods[key].name)
	}
	return names
}

// Constructors returns the declared host constructors.
func (t *TypeDescriptor) Constructors() []*ConstructorDescriptor { return t.ctors }

func (t *TypeDescriptor) checkMutable() error {
	if t.sealed {
		return fmt.Errorf("%w: %s", ErrSealed, t.name)
	}
	return nil
}

// Extend sets the base type. The base must already be sealed.
func (t *TypeDescriptor) Extend(base *TypeDescriptor) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	if base != nil && !base.sealed {
		return fmt.Errorf("%w: %s extends %s", ErrUnsealedDependency, t.name, base.name)
	}
	t.base = base
	return nil
}

// Implement appends interfaces in declaration order. Each must already be sealed.
func (t *TypeDescriptor) Implement(ifaces ...*TypeDescriptor) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	for _, i := range ifaces {
		if !i.sealed {
			return fmt.Errorf("%w: %s implements %s", ErrUnsealedDependency, t.name, i.name)
		}
		t.interfaces = append(t.interfaces, i)
	}
	return nil
}

// EnableRuntimeFields gives instances of t a runtime field slot.
func (t *TypeDescriptor) EnableRuntimeFields() error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	t.runtimeFields = true
	return nil
}

// SetHidden marks t as invisible to the guest runtime.
func (t *TypeDescriptor) SetHidden() error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	t.hidden = true
	return nil
}

func (t *TypeDescriptor) declareField(name string, access Access, static bool, def any) (*FieldDescriptor, error) {
	if err := t.checkMutable(); err != nil {
		return nil, err
	}
	if !IsAllowedName(name) {
		return nil, NewMemberError(ErrInvalidName, t, name)
	}
	if _, dup := t.fieldIndex[name]; dup {
		return nil, NewMemberError(ErrDuplicateMember, t, name)
	}
	f := &FieldDescriptor{Name: name, DeclaringType: t, Access: access, IsStatic: static, Default: def, Slot: -1}
	t.fields = append(t.fields, f)
	t.fieldIndex[name] = f
	return f, nil
}

// DeclareField declares an instance field with its initial value.
func (t *TypeDescriptor) DeclareField(name string, access Access, def any) (*FieldDescriptor, error) {
	return t.declareField(name, access, false, def)
}

// DeclareStaticField declares a static field.
func (t *TypeDescriptor) DeclareStaticField(name string, access Access, value any) (*FieldDescriptor, error) {
	return t.declareField(name, access, true, value)
}

// DeclareConstant declares a class constant.
func (t *TypeDescriptor) DeclareConstant(name string, access Access, value any) (*FieldDescriptor, error) {
	if err := t.checkMutable(); err != nil {
		return nil, err
	}
	if !IsAllowedName(name) {
		return nil, NewMemberError(ErrInvalidName, t, name)
	}
	if _, dup := t.constIndex[name]; dup {
		return nil, NewMemberError(ErrDuplicateMember, t, name)
	}
	c := &FieldDescriptor{Name: name, DeclaringType: t, Access: access, IsConstant: true, IsStatic: true, Default: value, Slot: -1}
	t.constants = append(t.constants, c)
	t.constIndex[name] = c
	return c, nil
}

// DeclareMethod adds a candidate to the overload set of name at this level.
func (t *TypeDescriptor) DeclareMethod(name string, access Access, params int, static bool) (*MethodDescriptor, error) {
	if err := t.checkMutable(); err != nil {
		return nil, err
	}
	if !IsAllowedName(name) {
		return nil, NewMemberError(ErrInvalidName, t, name)
	}
	m := &MethodDescriptor{Name: name, DeclaringType: t, Access: access, IsStatic: static, Params: params}
	key := FoldName(name)
	set, ok := t.methods[key]
	if !ok {
		set = &OverloadSet{name: name}
		t.methods[key] = set
		t.methodOrder = append(t.methodOrder, key)
	}
	for _, other := range set.methods {
		if other.overrides(m) {
			return nil, NewMemberError(ErrDuplicateMember, t, name)
		}
	}
	set.methods = append(set.methods, m)
	return m, nil
}

// DeclareConstructor adds a host constructor. The descriptor is copied.
func (t *TypeDescriptor) DeclareConstructor(c ConstructorDescriptor) (*ConstructorDescriptor, error) {
	if err := t.checkMutable(); err != nil {
		return nil, err
	}
	c.DeclaringType = t
	c.Params = append([]ParamKind(nil), c.Params...)
	ctor := &c
	t.ctors = append(t.ctors, ctor)
	return ctor, nil
}

// Seal lays out instance storage, builds the runtime method table and
// publishes the descriptor. Sealing twice is a no-op.
func (t *TypeDescriptor) Seal() error {
	if t.sealed {
		return nil
	}
	if !IsAllowedName(t.name) {
		return NewMemberError(ErrInvalidName, t, "")
	}

	slot := 0
	if t.base != nil {
		slot = t.base.slots
		// the slot is a field of the base and is inherited with it
		t.runtimeFields = t.runtimeFields || t.base.runtimeFields
	}
	for _, f := range t.fields {
		if f.IsInstanceField() {
			f.Slot = slot
			slot++
		}
	}

	runtime, err := t.buildRuntimeMethods()
	if err != nil {
		return err
	}

	t.slots = slot
	t.runtimeMethods = runtime
	t.sealed = true
	return nil
}

func (t *TypeDescriptor) buildRuntimeMethods() (map[string]*OverloadSet, error) {
	runtime := make(map[string]*OverloadSet, len(t.methods))
	for _, key := range t.methodOrder {
		declared := t.methods[key]
		runtime[key] = &OverloadSet{name: declared.name, methods: append([]*MethodDescriptor(nil), declared.methods...)}
	}

	var parents []*TypeDescriptor
	if t.base != nil {
		parents = append(parents, t.base)
	}
	if t.kind == KindInterface {
		parents = append(parents, t.interfaces...)
	}

	for _, p := range parents {
		for key, inherited := range p.runtimeMethods {
			own, ok := runtime[key]
			if !ok {
				runtime[key] = inherited
				continue
			}
			if own == inherited {
				continue
			}
			merged := &OverloadSet{name: own.name, methods: append([]*MethodDescriptor(nil), own.methods...)}
		next:
			for _, m := range inherited.methods {
				for _, o := range merged.methods {
					if o == m || o.overrides(m) {
						continue next
					}
				}
				merged.methods = append(merged.methods, m)
			}
			runtime[key] = merged
		}
	}

	for _, set := range runtime {
		if _, err := set.AllMask(); err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
	}
	return runtime, nil
}
