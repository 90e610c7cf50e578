package evaluator

import (
	"errors"
	"sync"

	"github.com/funvibe/objmodel/internal/typesystem"
)

type overloadKey struct {
	typ    *typesystem.TypeDescriptor
	caller *typesystem.TypeDescriptor
	name   string
}

// Resolver selects the overload candidates of a method visible to a caller.
//
// When only some candidates are visible, the reduced set is built once per
// (type, caller, name) and kept for the lifetime of the resolver. Type
// descriptors are never unloaded, so the cache is not evicted.
type Resolver struct {
	mu      sync.RWMutex
	reduced map[overloadKey]*typesystem.OverloadSet
}

func NewResolver() *Resolver {
	return &Resolver{reduced: make(map[overloadKey]*typesystem.OverloadSet)}
}

// ResolveVisibleMethod returns the candidates of method name on t visible from
// caller (nil for the global scope).
//
// It fails with ErrMemberNotFound when no level declares name and with
// ErrMemberInaccessible when candidates exist but none is visible.
func (r *Resolver) ResolveVisibleMethod(t *typesystem.TypeDescriptor, name string, caller *typesystem.TypeDescriptor) (*typesystem.OverloadSet, error) {
	set, err := r.resolve(t, name, caller)
	if err != nil {
		var me *typesystem.MemberError
		if errors.As(err, &me) && me.Type != t.Name() {
			// report against the type the caller asked about
			return nil, typesystem.NewMemberError(me.Kind, t, name)
		}
		return nil, err
	}
	return set, nil
}

func (r *Resolver) resolve(t *typesystem.TypeDescriptor, name string, caller *typesystem.TypeDescriptor) (*typesystem.OverloadSet, error) {
	set, ok := t.RuntimeMethods(name)
	if !ok {
		// a private method of the calling subclass hides the missing one
		if caller != nil && caller != t && t.IsAssignableFrom(caller) {
			return r.resolve(caller, name, caller)
		}
		return nil, typesystem.NewMemberError(typesystem.ErrMemberNotFound, t, name)
	}

	all, err := set.AllMask()
	if err != nil {
		return nil, err
	}
	visible := all

	if caller == nil || !typesystem.IsInheritance(t, caller) {
		for i := 0; i < set.Len(); i++ {
			if set.At(i).Access != typesystem.AccessPublic {
				visible &^= 1 << i
			}
		}
	} else {
		for i := 0; i < set.Len(); i++ {
			m := set.At(i)
			if (m.Access == typesystem.AccessPrivate && m.DeclaringType != caller) || !m.Access.Reflectable() {
				visible &^= 1 << i
			}
		}
		if visible == 0 && caller != t {
			// look for a private override in the calling class
			found, err := r.resolve(caller, name, caller)
			if errors.Is(err, typesystem.ErrMemberNotFound) {
				return nil, typesystem.NewMemberError(typesystem.ErrMemberInaccessible, t, name)
			}
			return found, err
		}
	}

	switch visible {
	case all:
		return set, nil
	case 0:
		return nil, typesystem.NewMemberError(typesystem.ErrMemberInaccessible, t, name)
	default:
		return r.reducedSet(overloadKey{typ: t, caller: caller, name: typesystem.FoldName(name)}, set, visible), nil
	}
}

func (r *Resolver) reducedSet(key overloadKey, set *typesystem.OverloadSet, mask uint64) *typesystem.OverloadSet {
	r.mu.RLock()
	cached, ok := r.reduced[key]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.reduced[key]; ok {
		return cached
	}
	cached = set.Filter(mask)
	r.reduced[key] = cached
	return cached
}

// CachedSets returns the number of reduced overload sets built so far.
func (r *Resolver) CachedSets() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reduced)
}
