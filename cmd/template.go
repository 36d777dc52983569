package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftworks/weft/api"
)

func newTemplateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage node templates",
	}
	cmd.AddCommand(
		newTemplateListCmd(c),
		newTemplateSaveCmd(c),
		newTemplateNewCmd(c),
		newTemplateRmCmd(c),
	)
	return cmd
}

func newTemplateListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the project's templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			tpls, err := w.Engine.List(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOut {
				return c.printJSON(out, tpls)
			}
			for _, t := range tpls {
				fmt.Fprintln(out, nodeLine(t))
			}
			return nil
		},
	}
}

func newTemplateSaveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "save <source-path> <name>",
		Short: "Save an existing node as a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			tpl, err := w.Engine.SaveFrom(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), tpl)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved template %s\n", tpl.Path)
			return nil
		},
	}
}

func newTemplateNewCmd(c *cli) *cobra.Command {
	var (
		templateName string
		parent       string
		description  string
	)

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a node from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			var overrides map[string]any
			if description != "" {
				overrides = map[string]any{"description": description}
			}
			node, err := w.Engine.Instantiate(ctx, parent, args[0], templateName, overrides)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), node)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s from template %s\n", node.Path, templateName)
			return nil
		},
	}

	cmd.Flags().StringVar(&templateName, "template", api.DefaultTemplateName, "template to instantiate")
	cmd.Flags().StringVar(&parent, "parent", "", "parent directory (default nodes/)")
	cmd.Flags().StringVar(&description, "description", "", "description substituted into the template")
	return cmd
}

func newTemplateRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			if err := w.Engine.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %s\n", args[0])
			return nil
		},
	}
}
