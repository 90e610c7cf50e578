package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/objmodel/internal/evaluator"
	"github.com/funvibe/objmodel/internal/typesystem"
)

var (
	callerName string
	resolveAll bool

	resolveCmd = &cobra.Command{
		Use:   "resolve TYPE METHOD",
		Short: "Show the overloads of a method visible from a caller",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			t, err := rt.Registry.Resolve(args[0])
			if err != nil {
				return err
			}
			caller, err := lookupCaller(rt, callerName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := newPalette(out)
			if resolveAll {
				// every candidate, each checked on its own
				set, ok := t.RuntimeMethods(args[1])
				if !ok {
					return typesystem.NewMemberError(typesystem.ErrMemberNotFound, t, args[1])
				}
				for _, c := range set.Methods() {
					mark := "visible"
					if !evaluator.IsMethodVisible(c, caller) {
						mark = "hidden"
					}
					fmt.Fprintf(out, "%s %s\n", candidate(p, c), mark)
				}
				return nil
			}

			m, err := rt.Resolver.LookupMethod(t, args[1], caller)
			if err != nil {
				return err
			}
			for _, c := range m.Overloads.Methods() {
				fmt.Fprintln(out, candidate(p, c))
			}
			return nil
		},
	}

	constCmd = &cobra.Command{
		Use:   "const TYPE NAME",
		Short: "Resolve a class constant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			t, err := rt.Registry.Resolve(args[0])
			if err != nil {
				return err
			}
			caller, err := lookupCaller(rt, callerName)
			if err != nil {
				return err
			}
			m, err := evaluator.LookupConstant(t, args[1], caller)
			if err != nil {
				return err
			}
			v, err := json.Marshal(m.Field.Default)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s::%s = %s\n", m.Field.DeclaringType.Name(), m.Name, v)
			return nil
		},
	}
)

func init() {
	for _, cmd := range []*cobra.Command{resolveCmd, constCmd} {
		cmd.Flags().StringVar(&callerName, "caller", "", "class whose code performs the lookup (default: global scope)")
		rootCmd.AddCommand(cmd)
	}
	resolveCmd.Flags().BoolVar(&resolveAll, "all", false, "list every candidate and whether the caller sees it on its own")
}

func candidate(p palette, c *typesystem.MethodDescriptor) string {
	static := ""
	if c.IsStatic {
		static = " static"
	}
	return fmt.Sprintf("%s::%s/%d %s%s", c.DeclaringType.Name(), c.Name, c.Params, p.access(c.Access), static)
}
