package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftworks/weft/internal/store"
)

func newTasksCmd(c *cli) *cobra.Command {
	var (
		status   string
		assignee string
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List task nodes as a flat todo view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			tasks, err := w.Store.Tasks(ctx, store.TaskFilter{
				Status:   status,
				Assignee: assignee,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOut {
				return c.printJSON(out, tasks)
			}
			for _, t := range tasks {
				line := fmt.Sprintf("%-12s %-8s %-44s %s", t.Status, t.Priority, t.Path, t.Title)
				if t.Assignee != "" {
					line += "  @" + t.Assignee
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only tasks with this status")
	cmd.Flags().StringVar(&assignee, "assignee", "", "only tasks assigned to this name")

	cmd.AddCommand(
		newTasksAddCmd(c),
		newTasksUpdateCmd(c),
		newTasksDoneCmd(c),
	)
	return cmd
}

func newTasksAddCmd(c *cli) *cobra.Command {
	var spec store.TaskSpec

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			spec.Title = args[0]
			node, err := w.Store.CreateTask(ctx, spec)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), node)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", node.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&spec.Description, "description", "", "what the task is about")
	cmd.Flags().StringVar(&spec.Status, "status", "", "initial status (default todo)")
	cmd.Flags().StringVar(&spec.Priority, "priority", "", "priority (default medium)")
	cmd.Flags().StringVar(&spec.Assignee, "assignee", "", "who the task is assigned to")
	cmd.Flags().StringVar(&spec.DueDate, "due", "", "due date")
	cmd.Flags().StringVar(&spec.Parent, "parent", "", "parent directory (default tasks/)")
	return cmd
}

func newTasksUpdateCmd(c *cli) *cobra.Command {
	var (
		title       string
		description string
		status      string
		priority    string
		assignee    string
		due         string
	)

	cmd := &cobra.Command{
		Use:   "update <path>",
		Short: "Update task fields on a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates := map[string]any{}
			add := func(flag, key string, val string) {
				if cmd.Flags().Changed(flag) {
					updates[key] = val
				}
			}
			add("title", "title", title)
			add("description", "description", description)
			add("status", "status", status)
			add("priority", "priority", priority)
			add("assignee", "assignee", assignee)
			add("due", "dueDate", due)
			if len(updates) == 0 {
				return fmt.Errorf("nothing to update; pass --status, --priority, --assignee, --due, --title, or --description")
			}

			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			node, err := w.Store.UpdateTask(ctx, args[0], updates)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), node)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", node.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority")
	cmd.Flags().StringVar(&assignee, "assignee", "", "new assignee")
	cmd.Flags().StringVar(&due, "due", "", "new due date")
	return cmd
}

func newTasksDoneCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "done <path>",
		Short: "Mark a task done, stamping its completion date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			node, err := w.Store.CompleteTask(ctx, args[0])
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), node)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %s\n", node.Path)
			return nil
		},
	}
}
