package evaluator

import (
	"github.com/funvibe/objmodel/internal/typesystem"
)

// Format shapes enumeration keys. The print, dump and array conventions are
// observable program output and must stay byte-for-byte stable.
type Format interface {
	// FieldKey formats a declared field; declarer is the level declaring it.
	FieldKey(f *typesystem.FieldDescriptor, declarer *typesystem.TypeDescriptor) string
	// RuntimeKey formats a runtime field. Runtime fields are always public.
	RuntimeKey(key string) string
}

var (
	PlainFormat Format = plainFormat{}
	PrintFormat Format = printFormat{}
	DumpFormat  Format = dumpFormat{}
	ArrayFormat Format = arrayFormat{}
)

// FormatByName maps "plain", "print", "dump" and "array" to their Format.
func FormatByName(name string) (Format, bool) {
	switch name {
	case "", "plain":
		return PlainFormat, true
	case "print":
		return PrintFormat, true
	case "dump":
		return DumpFormat, true
	case "array":
		return ArrayFormat, true
	}
	return nil, false
}

type plainFormat struct{}

func (plainFormat) FieldKey(f *typesystem.FieldDescriptor, _ *typesystem.TypeDescriptor) string {
	return f.Name
}

func (plainFormat) RuntimeKey(key string) string { return key }

// name, name:protected, name:Class:private
type printFormat struct{}

func (printFormat) FieldKey(f *typesystem.FieldDescriptor, declarer *typesystem.TypeDescriptor) string {
	switch f.Access {
	case typesystem.AccessPrivate:
		return f.Name + ":" + declarer.Name() + ":private"
	case typesystem.AccessProtected:
		return f.Name + ":protected"
	}
	return f.Name
}

func (printFormat) RuntimeKey(key string) string { return key }

// "name", "name":protected, "name":Class":private
type dumpFormat struct{}

func (dumpFormat) FieldKey(f *typesystem.FieldDescriptor, declarer *typesystem.TypeDescriptor) string {
	name := `"` + f.Name + `"`
	switch f.Access {
	case typesystem.AccessPrivate:
		return name + ":" + declarer.Name() + `":private`
	case typesystem.AccessProtected:
		return name + ":protected"
	}
	return name
}

func (dumpFormat) RuntimeKey(key string) string { return `"` + key + `"` }

// name, " * name", " Class name"
type arrayFormat struct{}

func (arrayFormat) FieldKey(f *typesystem.FieldDescriptor, declarer *typesystem.TypeDescriptor) string {
	switch f.Access {
	case typesystem.AccessPrivate:
		return " " + declarer.Name() + " " + f.Name
	case typesystem.AccessProtected:
		return " * " + f.Name
	}
	return f.Name
}

func (arrayFormat) RuntimeKey(key string) string { return key }
