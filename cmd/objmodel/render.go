package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/funvibe/objmodel/internal/evaluator"
)

// printObject writes inst in print_r layout:
//
//	Foo Object
//	(
//	    [secret:Foo:private] => 42
//	)
func printObject(w io.Writer, inst *evaluator.Instance) error {
	var b strings.Builder
	b.WriteString(inst.Type().Name() + " Object\n(\n")
	for k, v := range evaluator.EnumerateForPrint(inst) {
		fmt.Fprintf(&b, "    [%s] => ", k)
		printValue(&b, v, 1)
		b.WriteByte('\n')
	}
	b.WriteString(")\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func printValue(b *strings.Builder, v evaluator.Value, depth int) {
	arr, ok := v.(*evaluator.Array)
	if !ok {
		b.WriteString(scalarString(v))
		return
	}
	indent := strings.Repeat("    ", depth*2)
	b.WriteString("Array\n" + indent + "(\n")
	for k, item := range arr.All() {
		fmt.Fprintf(b, "%s    [%s] => ", indent, k)
		printValue(b, item, depth+1)
		b.WriteByte('\n')
	}
	b.WriteString(indent + ")\n")
}

func scalarString(v evaluator.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "1"
		}
		return ""
	case string:
		return x
	}
	return fmt.Sprint(v)
}

// dumpObject writes inst in var_dump layout:
//
//	object(Foo)#1 (1) {
//	  ["secret":Foo":private]=>
//	  int(42)
//	}
func dumpObject(w io.Writer, inst *evaluator.Instance) error {
	var b strings.Builder
	fmt.Fprintf(&b, "object(%s)#%s (%d) {\n", inst.Type().Name(), inst.ID, evaluator.FieldsCount(inst))
	for k, v := range evaluator.EnumerateForDump(inst) {
		fmt.Fprintf(&b, "  [%s]=>\n  ", k)
		dumpTo(&b, v, 2)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func dumpValue(w io.Writer, v evaluator.Value) error {
	var b strings.Builder
	dumpTo(&b, v, 1)
	_, err := io.WriteString(w, b.String())
	return err
}

// dumpTo writes v with nested entries indented depth levels; depth is at least 1.
func dumpTo(b *strings.Builder, v evaluator.Value, depth int) {
	indent := strings.Repeat("  ", depth)
	switch x := v.(type) {
	case nil:
		b.WriteString("NULL\n")
	case bool:
		fmt.Fprintf(b, "bool(%t)\n", x)
	case int:
		fmt.Fprintf(b, "int(%d)\n", x)
	case float64:
		fmt.Fprintf(b, "float(%s)\n", strconv.FormatFloat(x, 'g', -1, 64))
	case string:
		// var_dump prints the raw bytes between the quotes
		fmt.Fprintf(b, "string(%d) \"%s\"\n", len(x), x)
	case *evaluator.Array:
		fmt.Fprintf(b, "array(%d) {\n", x.Len())
		for k, item := range x.All() {
			fmt.Fprintf(b, "%s[\"%s\"]=>\n%s", indent, k, indent)
			dumpTo(b, item, depth+1)
		}
		b.WriteString(strings.Repeat("  ", depth-1) + "}\n")
	default:
		fmt.Fprintf(b, "%v\n", v)
	}
}
