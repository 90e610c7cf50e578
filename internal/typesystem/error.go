package typesystem

import (
	"errors"
	"fmt"
)

var (
	ErrMemberNotFound          = errors.New("member not found")
	ErrMemberInaccessible      = errors.New("member inaccessible")
	ErrUnsupportedType         = errors.New("type does not support runtime fields")
	ErrNotInstantiable         = errors.New("type is not instantiable")
	ErrConstructionUnsupported = errors.New("construction not supported")
	ErrTooManyOverloads        = errors.New("too many overloads")
	ErrDuplicateMember         = errors.New("duplicate member")
	ErrInvalidName             = errors.New("invalid name")
	ErrSealed                  = errors.New("type descriptor is sealed")
	ErrUnsealedDependency      = errors.New("dependency is not sealed")
)

// MemberError reports a failed operation on a member of a type.
// It unwraps to one of the sentinel errors above.
type MemberError struct {
	Kind   error
	Type   string
	Member string
}

func (e *MemberError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Type)
	}
	return fmt.Sprintf("%s: %s::%s", e.Kind, e.Type, e.Member)
}

func (e *MemberError) Unwrap() error {
	return e.Kind
}

// NewMemberError builds a MemberError for member of t. t may be nil.
func NewMemberError(kind error, t *TypeDescriptor, member string) *MemberError {
	name := "<global>"
	if t != nil {
		name = t.Name()
	}
	return &MemberError{Kind: kind, Type: name, Member: member}
}
