package typesystem

// Access is the declared visibility of a field, constant, method or constructor.
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
	AccessInternal // host-internal, never reflectable
)

// String returns the string representation of the access level
func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	case AccessInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Reflectable reports whether members with this access level take part in
// lookups and enumerations at all.
func (a Access) Reflectable() bool {
	return a == AccessPublic || a == AccessProtected || a == AccessPrivate
}

// ParseAccess maps a lowercase access keyword to its Access value.
// "family" is accepted as an alias of protected.
func ParseAccess(s string) (Access, bool) {
	switch s {
	case "", "public":
		return AccessPublic, true
	case "protected", "family":
		return AccessProtected, true
	case "private":
		return AccessPrivate, true
	case "internal":
		return AccessInternal, true
	}
	return AccessPublic, false
}
