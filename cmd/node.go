package cmd

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/weftworks/weft/api"
	"github.com/weftworks/weft/internal/store"
)

func newCreateCmd(c *cli) *cobra.Command {
	var (
		parent      string
		nodeType    string
		content     string
		description string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a markdown node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			meta := map[string]any{}
			if description != "" {
				meta["description"] = description
			}
			if len(tags) > 0 {
				meta["tags"] = tags
			}
			var body *string
			if cmd.Flags().Changed("content") {
				body = &content
			}

			node, err := w.Store.Create(ctx, parent, args[0], nodeType, meta, body)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), node)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", node.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", api.NodesDir, "parent directory (empty for the project root)")
	cmd.Flags().StringVar(&nodeType, "type", "file", "node type recorded in metadata")
	cmd.Flags().StringVar(&content, "content", "", "initial body (default: a heading with the title)")
	cmd.Flags().StringVar(&description, "description", "", "description metadata field")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag to attach (repeatable)")
	return cmd
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <path>",
		Short: "Show one node: metadata, links, and content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			node, err := w.Store.Read(ctx, args[0])
			if err != nil {
				return err
			}
			if node == nil {
				return fmt.Errorf("node not found: %s", args[0])
			}
			out := cmd.OutOrStdout()
			if c.jsonOut {
				return c.printJSON(out, node)
			}

			fmt.Fprintf(out, "Path:     %s\n", node.Path)
			fmt.Fprintf(out, "Title:    %s\n", node.Metadata.Title)
			fmt.Fprintf(out, "Type:     %s\n", node.Metadata.Type)
			fmt.Fprintf(out, "ID:       %s\n", node.Metadata.ID)
			fmt.Fprintf(out, "Modified: %s\n", node.Metadata.Modified)
			if len(node.Metadata.Tags) > 0 {
				fmt.Fprintf(out, "Tags:     %s\n", strings.Join(node.Metadata.Tags, ", "))
			}
			if len(node.SoftLinks) > 0 {
				fmt.Fprintf(out, "Links:    %s\n", strings.Join(node.SoftLinks, ", "))
			}
			if node.IsDirectory {
				fmt.Fprintf(out, "Children: %d\n", len(node.HardLinks.Children))
				for _, child := range node.HardLinks.Children {
					fmt.Fprintf(out, "  %s\n", child)
				}
			}
			if node.Content != nil {
				fmt.Fprintf(out, "\n%s", *node.Content)
			}
			return nil
		},
	}
}

func newUpdateCmd(c *cli) *cobra.Command {
	var (
		title       string
		description string
		content     string
		sets        []string
		unsets      []string
	)

	cmd := &cobra.Command{
		Use:   "update <path>",
		Short: "Update a node's metadata and/or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseSetFlags(sets)
			if err != nil {
				return err
			}
			if updates == nil {
				updates = map[string]any{}
			}
			if cmd.Flags().Changed("title") {
				updates["title"] = title
			}
			if cmd.Flags().Changed("description") {
				updates["description"] = description
			}
			for _, key := range unsets {
				updates[key] = nil
			}
			var body *string
			if cmd.Flags().Changed("content") {
				body = &content
			}
			if len(updates) == 0 && body == nil {
				return fmt.Errorf("nothing to update; pass --title, --content, --set, or --unset")
			}

			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			node, err := w.Store.Update(ctx, args[0], updates, body)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), node)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", node.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&content, "content", "", "replacement body")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "metadata field as key=value; values parse as JSON when possible (repeatable)")
	cmd.Flags().StringArrayVar(&unsets, "unset", nil, "metadata field to delete (repeatable)")
	return cmd
}

func newRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a node (directories recursively)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			if err := w.Store.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newMkdirCmd(c *cli) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a directory node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			node, err := w.Store.CreateFolder(ctx, parent, args[0])
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), node)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s/\n", node.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "parent directory (default: the project root)")
	return cmd
}

func newLsCmd(c *cli) *cobra.Command {
	var includeTemplates bool

	cmd := &cobra.Command{
		Use:   "ls [directory]",
		Short: "List nodes in path order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			nodes, err := w.Store.List(ctx, store.ListOptions{
				Dir:              dir,
				IncludeTemplates: includeTemplates,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOut {
				return c.printJSON(out, nodes)
			}
			for _, n := range nodes {
				fmt.Fprintln(out, nodeLine(n))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeTemplates, "templates", false, "include nodes under templates/")
	return cmd
}

func newSearchCmd(c *cli) *cobra.Command {
	var (
		nodeType string
		selector string
		hasTask  bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search nodes by text, type, task presence, or JSONPath selector",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, done, err := c.workspace(ctx)
			if err != nil {
				return err
			}
			defer done()

			opts := store.SearchOptions{
				Type:     nodeType,
				Selector: selector,
			}
			if len(args) == 1 {
				opts.Query = args[0]
			}
			if cmd.Flags().Changed("has-task") {
				opts.HasTask = &hasTask
			}

			nodes, err := w.Store.Search(ctx, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOut {
				return c.printJSON(out, nodes)
			}
			for _, n := range nodes {
				fmt.Fprintln(out, nodeLine(n))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&nodeType, "type", "", "only nodes of this metadata type")
	cmd.Flags().StringVar(&selector, "selector", "", "JSONPath over the node document, e.g. '$.metadata.tags[?(@ == \"urgent\")]'")
	cmd.Flags().BoolVar(&hasTask, "has-task", false, "only nodes with (=true) or without (=false) task metadata")
	return cmd
}

// parseSetFlags turns key=value pairs into metadata updates. Values that
// parse as JSON keep their parsed type; everything else stays a string.
func parseSetFlags(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, val, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("bad --set %q, want key=value", pair)
		}
		if parsed, err := oj.ParseString(val); err == nil {
			m[key] = parsed
		} else {
			m[key] = val
		}
	}
	return m, nil
}
