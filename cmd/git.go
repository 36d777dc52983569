package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log [path]",
		Short: "Show commit history, optionally scoped to one path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			commits, err := w.Manager.History(ctx, path, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOut {
				return c.printJSON(out, commits)
			}
			for _, commit := range commits {
				fmt.Fprintf(out, "%s  %s  %s\n",
					shortHash(commit.Hash), commit.Date, commit.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits")
	return cmd
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the repository state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			st, err := w.Manager.RepoStatus(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOut {
				return c.printJSON(out, st)
			}

			fmt.Fprintf(out, "On branch %s\n", st.Branch)
			if st.Ahead > 0 || st.Behind > 0 {
				fmt.Fprintf(out, "Ahead %d, behind %d\n", st.Ahead, st.Behind)
			}
			if st.Clean {
				fmt.Fprintln(out, "Working tree clean")
				return nil
			}
			for _, ch := range st.Changes {
				fmt.Fprintf(out, "%-2s %s\n", ch.Status, ch.Path)
			}
			return nil
		},
	}
}

func newBranchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "branch [name]",
		Short: "List branches, or create one without switching",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				if err := w.Manager.CreateBranch(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "Created branch %s\n", args[0])
				return nil
			}

			branches, err := w.Manager.Branches(ctx)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(out, branches)
			}
			for _, b := range branches {
				marker := " "
				if b.Current {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, b.Name)
			}
			return nil
		},
	}
}

func newCheckoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch>",
		Short: "Switch to a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			if err := w.Manager.Checkout(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to branch %s\n", args[0])
			return nil
		},
	}
}

func newPushCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Push the work branch to the configured remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			if err := w.Manager.Push(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pushed")
			return nil
		},
	}
}

func newPullCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Pull the work branch from the configured remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			if err := w.Manager.Pull(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pulled")
			return nil
		},
	}
}
