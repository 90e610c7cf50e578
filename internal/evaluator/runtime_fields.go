package evaluator

import (
	"github.com/funvibe/objmodel/internal/typesystem"
)

// EnsureRuntimeFields returns the runtime field store of inst, attaching an
// empty one on first use. Types without a runtime field slot fail with
// ErrUnsupportedType.
//
// The store is not synchronized; concurrent writers of one instance must
// coordinate themselves.
func EnsureRuntimeFields(inst *Instance) (*Array, error) {
	if !inst.typ.SupportsRuntimeFields() {
		return nil, typesystem.NewMemberError(typesystem.ErrUnsupportedType, inst.typ, "")
	}
	if inst.runtime == nil {
		inst.runtime = NewArray()
	}
	return inst.runtime, nil
}

// RuntimeFields returns the runtime field store of inst, or nil if none was created.
func RuntimeFields(inst *Instance) *Array {
	return inst.runtime
}

// RuntimeFieldsCount returns the number of runtime fields of inst.
func RuntimeFieldsCount(inst *Instance) int {
	if inst.runtime == nil {
		return 0
	}
	return inst.runtime.Len()
}
