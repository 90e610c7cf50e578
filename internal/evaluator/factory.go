package evaluator

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/funvibe/objmodel/internal/typesystem"
)

// Factory allocates an object for deserialization and clone paths without
// running the guest constructor.
type Factory func(ctx *Context) (*Instance, error)

// Factories caches one Factory per type.
type Factories struct {
	mu    sync.RWMutex
	built map[*typesystem.TypeDescriptor]Factory
}

func NewFactories() *Factories {
	return &Factories{built: make(map[*typesystem.TypeDescriptor]Factory)}
}

// Get returns the factory of t, building it on first use.
func (fs *Factories) Get(t *typesystem.TypeDescriptor) Factory {
	fs.mu.RLock()
	f, ok := fs.built[t]
	fs.mu.RUnlock()
	if ok {
		return f
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if f, ok := fs.built[t]; ok {
		return f
	}
	f = BuildFactory(t)
	fs.built[t] = f
	return f
}

// BuildFactory picks the host constructor used to allocate objects of t.
//
// In order of preference: a fields-only constructor, a parameterless one, one
// taking only the implicit context. Static and hidden constructors never
// qualify. Interfaces and traits get a factory failing with
// ErrNotInstantiable; types with no usable constructor one failing with
// ErrConstructionUnsupported.
func BuildFactory(t *typesystem.TypeDescriptor) Factory {
	if !t.Kind().Instantiable() {
		return func(*Context) (*Instance, error) {
			return nil, typesystem.NewMemberError(typesystem.ErrNotInstantiable, t, "")
		}
	}

	var parameterless, contextOnly *typesystem.ConstructorDescriptor
	for _, c := range t.Constructors() {
		if c.IsStatic || c.Hidden {
			continue
		}
		if c.IsFieldsOnly() {
			return construct(t, c)
		}
		switch {
		case len(c.Params) == 0 && parameterless == nil:
			parameterless = c
		case len(c.Params) == 1 && c.Params[0] == typesystem.ParamContext && contextOnly == nil:
			contextOnly = c
		}
	}

	switch {
	case parameterless != nil:
		return construct(t, parameterless)
	case contextOnly != nil:
		return construct(t, contextOnly)
	}
	return func(*Context) (*Instance, error) {
		return nil, fmt.Errorf("%w: no constructor of %s can create an empty instance", typesystem.ErrConstructionUnsupported, t.Name())
	}
}

func construct(t *typesystem.TypeDescriptor, c *typesystem.ConstructorDescriptor) Factory {
	return func(ctx *Context) (*Instance, error) {
		inst := allocate(t, ctx)
		if c.Body == nil {
			return inst, nil
		}
		args := make([]any, len(c.Params))
		for i, p := range c.Params {
			if p == typesystem.ParamContext {
				args[i] = ctx
			}
		}
		if err := c.Body(inst, args); err != nil {
			return nil, fmt.Errorf("constructing %s: %w", t.Name(), err)
		}
		return inst, nil
	}
}

// New allocates an instance of t through its cached factory.
func (ctx *Context) New(t *typesystem.TypeDescriptor) (*Instance, error) {
	return ctx.Factories.Get(t)(ctx)
}

// Clone allocates a new instance of the same type through the factory and
// copies the declared and runtime fields of inst into it.
func (ctx *Context) Clone(inst *Instance) (*Instance, error) {
	out, err := ctx.New(inst.typ)
	if err != nil {
		return nil, err
	}
	for i, v := range inst.slots {
		out.slots[i] = CopyValue(v)
	}
	if inst.runtime != nil {
		out.runtime = inst.runtime.DeepCopy().(*Array)
	}
	out.ID = uuid.New()
	return out, nil
}
