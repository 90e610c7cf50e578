package evaluator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/funvibe/objmodel/internal/symbols"
	"github.com/funvibe/objmodel/internal/typesystem"
)

// Value is any guest value held by a field.
type Value = any

// Copier is implemented by values with copy-on-assignment semantics.
type Copier interface {
	DeepCopy() Value
}

// CopyValue returns a deep copy of v when v has value semantics and v itself otherwise.
func CopyValue(v Value) Value {
	if c, ok := v.(Copier); ok {
		return c.DeepCopy()
	}
	return v
}

// Context is the implicit construction context threaded through constructors.
// It bundles the registry with the per-type caches built on top of it.
type Context struct {
	Registry  *symbols.Registry
	Resolver  *Resolver
	Factories *Factories
}

func NewContext(registry *symbols.Registry) *Context {
	return &Context{
		Registry:  registry,
		Resolver:  NewResolver(),
		Factories: NewFactories(),
	}
}

// Instance is an object of a compiled guest class.
//
// Declared fields live in fixed slots laid out by the type descriptor. Fields
// assigned at run time without a declaration live in a separate, lazily
// created store (see EnsureRuntimeFields).
type Instance struct {
	ID uuid.UUID

	typ     *typesystem.TypeDescriptor
	ctx     *Context
	slots   []Value
	runtime *Array
}

// allocate creates storage for t with every declared field at its default value.
// No constructor logic runs.
func allocate(t *typesystem.TypeDescriptor, ctx *Context) *Instance {
	inst := &Instance{
		ID:    uuid.New(),
		typ:   t,
		ctx:   ctx,
		slots: make([]Value, t.InstanceFieldCount()),
	}
	typesystem.ForEachLevel(t, func(level *typesystem.TypeDescriptor) {
		for _, f := range level.Fields() {
			if f.IsInstanceField() {
				inst.slots[f.Slot] = CopyValue(f.Default)
			}
		}
	})
	return inst
}

func (i *Instance) Type() *typesystem.TypeDescriptor { return i.typ }
func (i *Instance) Context() *Context                { return i.ctx }

// Slot returns the value of a declared instance field of the instance's hierarchy.
func (i *Instance) Slot(f *typesystem.FieldDescriptor) Value {
	return i.slots[f.Slot]
}

// SetSlot assigns a declared instance field of the instance's hierarchy.
func (i *Instance) SetSlot(f *typesystem.FieldDescriptor, v Value) {
	i.slots[f.Slot] = v
}

func (i *Instance) String() string {
	return fmt.Sprintf("%s#%s", i.typ.Name(), i.ID)
}
