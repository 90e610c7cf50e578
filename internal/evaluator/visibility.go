package evaluator

import (
	"github.com/funvibe/objmodel/internal/typesystem"
)

// IsFieldVisible reports whether code running in caller may see f.
// A nil caller is the global scope.
//
// Private members are visible to their declaring type only. Protected members
// are visible along the inheritance line in both directions, so a base class
// sees the protected members of its subclasses as well.
func IsFieldVisible(f *typesystem.FieldDescriptor, caller *typesystem.TypeDescriptor) bool {
	return isVisible(f.Access, f.DeclaringType, caller)
}

// IsMethodVisible is IsFieldVisible for a single overload candidate.
func IsMethodVisible(m *typesystem.MethodDescriptor, caller *typesystem.TypeDescriptor) bool {
	return isVisible(m.Access, m.DeclaringType, caller)
}

func isVisible(access typesystem.Access, declaring, caller *typesystem.TypeDescriptor) bool {
	switch access {
	case typesystem.AccessPublic:
		return true
	case typesystem.AccessPrivate:
		return caller != nil && caller == declaring
	case typesystem.AccessProtected:
		return caller != nil && typesystem.IsInheritance(caller, declaring)
	default:
		return false
	}
}
