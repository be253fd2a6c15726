package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <location>",
		Short: "Print the config IDs stored in a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.store(ctx, args[0])
			if err != nil {
				return err
			}
			snap, err := store.Load(ctx, args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\tCONFIG\n")
			for _, e := range snap.Entries() {
				fmt.Fprintf(tw, "%d\t%s\n", e.ID, e.Key)
			}
			fmt.Fprintf(tw, "\nnext ID\t%d\n", snap.Counter)
			return tw.Flush()
		},
	}
}

func newConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <from> <to>",
		Short: "Re-encode a checkpoint, e.g. JSON to YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.store(ctx, args...)
			if err != nil {
				return err
			}
			snap, err := store.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if err := store.Save(ctx, args[1], snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d configs to %s\n", snap.Counter, args[1])
			return nil
		},
	}
}
