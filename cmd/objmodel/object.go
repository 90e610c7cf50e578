package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/objmodel/internal/evaluator"
)

var objectOpts = struct {
	set    []string
	caller string
}{}

// objectCmd builds one of the commands that allocate an object, assign the
// --set properties and render it.
func objectCmd(use, short string, render func(cmd *cobra.Command, inst *evaluator.Instance) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " TYPE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			inst, err := newObject(rt, args[0], objectOpts.set, objectOpts.caller)
			if err != nil {
				return err
			}
			return render(cmd, inst)
		},
	}
	cmd.Flags().StringArrayVar(&objectOpts.set, "set", nil, "assign a property, name=value (JSON value), repeatable")
	cmd.Flags().StringVar(&objectOpts.caller, "caller", "", "class whose code assigns the properties")
	return cmd
}

func newObject(rt *evaluator.Context, typeName string, set []string, caller string) (*evaluator.Instance, error) {
	t, err := rt.Registry.Resolve(typeName)
	if err != nil {
		return nil, err
	}
	inst, err := rt.New(t)
	if err != nil {
		return nil, err
	}
	from, err := lookupCaller(rt, caller)
	if err != nil {
		return nil, err
	}
	keys, values, err := assignments(set)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		if err := evaluator.WriteProperty(inst, k, values[i], from); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func init() {
	rootCmd.AddCommand(
		objectCmd("print", "Render an object the way print_r does", func(cmd *cobra.Command, inst *evaluator.Instance) error {
			return printObject(cmd.OutOrStdout(), inst)
		}),
		objectCmd("dump", "Render an object the way var_dump does", func(cmd *cobra.Command, inst *evaluator.Instance) error {
			return dumpObject(cmd.OutOrStdout(), inst)
		}),
		objectCmd("array", "Render the (array) cast of an object", func(cmd *cobra.Command, inst *evaluator.Instance) error {
			return dumpValue(cmd.OutOrStdout(), evaluator.ToArray(inst))
		}),
		objectCmd("fields", "Count the fields of an object", func(cmd *cobra.Command, inst *evaluator.Instance) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), evaluator.FieldsCount(inst))
			return err
		}),
	)
}
