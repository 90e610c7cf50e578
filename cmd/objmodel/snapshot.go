package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/funvibe/objmodel/internal/config"
	"github.com/funvibe/objmodel/internal/snapshot"
)

var (
	snapshotDB string

	snapshotCmd = &cobra.Command{
		Use:   "snapshot",
		Short: "Store and restore objects in a sqlite database",
	}

	snapshotSaveCmd = &cobra.Command{
		Use:   "save TYPE",
		Short: "Create an object, assign the --set properties and store it",
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
			store, err := snapshot.Open(cmd.Context(), snapshotDB)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(cmd.Context(), inst); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), inst.ID)
			return nil
		},
	}

	snapshotLoadCmd = &cobra.Command{
		Use:   "load ID",
		Short: "Restore a stored object and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			store, err := snapshot.Open(cmd.Context(), snapshotDB)
			if err != nil {
				return err
			}
			defer store.Close()
			inst, err := store.Load(cmd.Context(), id, rt)
			if err != nil {
				return err
			}
			return printObject(cmd.OutOrStdout(), inst)
		},
	}

	snapshotListCmd = &cobra.Command{
		Use:   "list",
		Short: "List stored objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := snapshot.Open(cmd.Context(), snapshotDB)
			if err != nil {
				return err
			}
			defer store.Close()
			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tFIELDS\tSAVED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.ID, e.Type, e.Fields, e.SavedAt.Format(time.DateTime))
			}
			return tw.Flush()
		},
	}

	snapshotDeleteCmd = &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			store, err := snapshot.Open(cmd.Context(), snapshotDB)
			if err != nil {
				return err
			}
			defer store.Close()
			ok, err := store.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", snapshot.ErrNotFound, id)
			}
			return nil
		},
	}
)

func init() {
	snapshotCmd.PersistentFlags().StringVar(&snapshotDB, "db", env.Str(config.EnvDatabase, config.DefaultDatabase), "sqlite database ($"+config.EnvDatabase+")")
	snapshotSaveCmd.Flags().StringArrayVar(&objectOpts.set, "set", nil, "assign a property, name=value (JSON value), repeatable")
	snapshotSaveCmd.Flags().StringVar(&objectOpts.caller, "caller", "", "class whose code assigns the properties")

	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotLoadCmd, snapshotListCmd, snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}
