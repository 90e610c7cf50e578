package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/funvibe/objmodel/internal/config"
	"github.com/funvibe/objmodel/internal/typesystem"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the manifest and list its types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		p := newPalette(out)
		for _, t := range rt.Registry.Types() {
			fmt.Fprintf(out, "%s %s", t.Kind(), p.typeName(t.Name()))
			if base := t.Base(); base != nil {
				fmt.Fprintf(out, " extends %s", base.Name())
			}
			if ifaces := t.Interfaces(); len(ifaces) > 0 {
				names := make([]string, len(ifaces))
				for i, iface := range ifaces {
					names[i] = iface.Name()
				}
				fmt.Fprintf(out, " implements %s", strings.Join(names, ", "))
			}
			fmt.Fprintln(out)
			describe(out, p, t)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func describe(out io.Writer, p palette, t *typesystem.TypeDescriptor) {
	for _, c := range t.Constants() {
		fmt.Fprintf(out, "  const %s %s = %v\n", p.access(c.Access), c.Name, c.Default)
	}
	for _, f := range t.Fields() {
		static := ""
		if f.IsStatic {
			static = "static "
		}
		fmt.Fprintf(out, "  %s%s $%s = %v\n", static, p.access(f.Access), p.key(f.Name), f.Default)
	}
	for _, name := range t.MethodNames() {
		set, _ := t.DeclaredMethods(name)
		for _, m := range set.Methods() {
			fmt.Fprintf(out, "  %s %s/%d\n", p.access(m.Access), m.Name, m.Params)
		}
	}
	for _, c := range t.Constructors() {
		var flags []string
		if c.IsStatic {
			flags = append(flags, "static")
		}
		if c.FieldsOnly {
			flags = append(flags, "fields-only")
		}
		if c.Hidden {
			flags = append(flags, "hidden")
		}
		implicit := c.ImplicitParamsCount()
		fmt.Fprintf(out, "  %s %s(%d implicit, %d explicit)", p.access(c.Access), config.ConstructorName, implicit, len(c.Params)-implicit)
		if len(flags) > 0 {
			fmt.Fprintf(out, " %s", strings.Join(flags, " "))
		}
		fmt.Fprintln(out)
	}
	if t.SupportsRuntimeFields() {
		fmt.Fprintln(out, "  (runtime fields)")
	}
}
