package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGraphCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Show the node graph: hard (containment) and soft (link) edges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			g, err := w.Store.Graph(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOut {
				return c.printJSON(out, g)
			}

			fmt.Fprintf(out, "%d nodes, %d edges\n", len(g.Nodes), len(g.Edges))
			for _, e := range g.Edges {
				label := e.Type
				if e.Label != "" {
					label += ", " + e.Label
				}
				fmt.Fprintf(out, "%s -> %s  (%s)\n", e.Source, e.Target, label)
			}
			return nil
		},
	}
}
