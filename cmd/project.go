package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftworks/weft/api"
	"github.com/weftworks/weft/internal/repo"
	"github.com/weftworks/weft/internal/workspace"
)

func newProjectCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage the project registry",
	}
	cmd.AddCommand(
		newProjectInitCmd(c),
		newProjectListCmd(c),
		newProjectRmCmd(c),
	)
	return cmd
}

func newProjectInitCmd(c *cli) *cobra.Command {
	var (
		description string
		repoPath    string
		remoteURL   string
		branch      string
		autoPush    bool
	)

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Register a project and provision its repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			gitType := "local"
			if remoteURL != "" {
				gitType = "remote"
			}
			proj := api.NewProject(args[0], description, api.GitConfig{
				Type:     gitType,
				Path:     repoPath,
				URL:      remoteURL,
				Branch:   branch,
				AutoPush: autoPush,
			})

			reg, err := c.openRegistry()
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()
			if err := reg.Create(ctx, proj); err != nil {
				return err
			}

			w, err := workspace.Open(c.cfg, proj, c.log)
			if err != nil {
				return err
			}
			if err := w.Provision(ctx); err != nil {
				return err
			}

			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), proj)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized project %s (%s) at %s\n",
				proj.Name, proj.ID, w.Root())
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&repoPath, "path", "", "repository path (default <projects root>/<id>)")
	cmd.Flags().StringVar(&remoteURL, "remote", "", "git remote URL")
	cmd.Flags().StringVar(&branch, "branch", "", "work branch (default main)")
	cmd.Flags().BoolVar(&autoPush, "auto-push", false, "push after every recorded change")
	return cmd
}

func newProjectListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.openRegistry()
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			projects, err := reg.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOut {
				return c.printJSON(out, projects)
			}
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects registered.")
				return nil
			}
			for _, p := range projects {
				fmt.Fprintf(out, "%-24s %-36s %s\n",
					p.Name, p.ID, repo.ResolvePath(c.cfg.ProjectsRoot, p))
			}
			return nil
		},
	}
}

func newProjectRmCmd(c *cli) *cobra.Command {
	var keepFiles bool

	cmd := &cobra.Command{
		Use:   "rm <name|id>",
		Short: "Remove a project from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			reg, err := c.openRegistry()
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			proj, err := reg.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if !keepFiles {
				w, err := workspace.Open(c.cfg, proj, c.log)
				if err != nil {
					return err
				}
				if err := w.Manager.DeleteRepository(ctx); err != nil {
					return err
				}
			}
			if err := reg.Delete(ctx, proj.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed project %s\n", proj.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepFiles, "keep-files", false, "keep the repository on disk")
	return cmd
}
