package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLinkCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "link <source-path> <target-path>",
		Short: "Add a soft link between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			node, err := w.Store.AddLink(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), node)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %s -> %s\n", args[0], args[1])
			return nil
		},
	}
}

func newUnlinkCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <source-path> <target>",
		Short: "Remove a soft link; the target is a node path or id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			// Accept a path for convenience; fall back to treating the
			// argument as a node id.
			targetID := args[1]
			if target, err := w.Store.Read(ctx, args[1]); err == nil && target != nil {
				targetID = target.Metadata.ID
			}

			node, err := w.Store.RemoveLink(ctx, args[0], targetID)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), node)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %s -> %s\n", args[0], targetID)
			return nil
		},
	}
}
