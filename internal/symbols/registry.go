package symbols

import (
	"fmt"
	"sync"

	"github.com/funvibe/objmodel/internal/typesystem"
)

// Registry is the process-scoped table of loaded type descriptors.
//
// Types register once, in dependency order, and are never removed.
// Lookups by name are case-insensitive, as guest class names are.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*typesystem.TypeDescriptor
	byID   map[int64]*typesystem.TypeDescriptor
	order  []*typesystem.TypeDescriptor
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*typesystem.TypeDescriptor),
		byID:   make(map[int64]*typesystem.TypeDescriptor),
	}
}

// Register publishes a sealed descriptor. Its base type and interfaces must
// already be registered here.
func (r *Registry) Register(t *typesystem.TypeDescriptor) error {
	if !t.Sealed() {
		return fmt.Errorf("%w: %s", typesystem.ErrUnsealedDependency, t.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := typesystem.FoldName(t.Name())
	if existing, ok := r.byName[key]; ok {
		if existing == t {
			return nil
		}
		return fmt.Errorf("%w: type %s already registered", typesystem.ErrDuplicateMember, t.Name())
	}
	if base := t.Base(); base != nil && r.byID[base.ID()] != base {
		return fmt.Errorf("%w: %s extends unregistered %s", typesystem.ErrUnsealedDependency, t.Name(), base.Name())
	}
	for _, i := range t.Interfaces() {
		if r.byID[i.ID()] != i {
			return fmt.Errorf("%w: %s implements unregistered %s", typesystem.ErrUnsealedDependency, t.Name(), i.Name())
		}
	}

	r.byName[key] = t
	r.byID[t.ID()] = t
	r.order = append(r.order, t)
	return nil
}

// Lookup finds a registered type by name.
func (r *Registry) Lookup(name string) (*typesystem.TypeDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[typesystem.FoldName(name)]
	return t, ok
}

// MustLookup is Lookup for names that are known to exist.
func (r *Registry) MustLookup(name string) *typesystem.TypeDescriptor {
	t, ok := r.Lookup(name)
	if !ok {
		panic("symbols: type not registered: " + name)
	}
	return t
}

// Resolve is Lookup returning a MemberNotFound error for unknown names.
func (r *Registry) Resolve(name string) (*typesystem.TypeDescriptor, error) {
	if t, ok := r.Lookup(name); ok {
		return t, nil
	}
	return nil, &typesystem.MemberError{Kind: typesystem.ErrMemberNotFound, Type: name}
}

// ByID finds a registered type by its handle.
func (r *Registry) ByID(id int64) (*typesystem.TypeDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	return t, ok
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []*typesystem.TypeDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*typesystem.TypeDescriptor(nil), r.order...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
