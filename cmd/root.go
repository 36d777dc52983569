// Package cmd implements the weft command line interface.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/weftworks/weft/api"
	"github.com/weftworks/weft/internal/config"
	"github.com/weftworks/weft/internal/registry"
	"github.com/weftworks/weft/internal/workspace"
)

// version is stamped at build time via ldflags.
var version = "dev"

// cli carries the state shared by every command: global flag values,
// the loaded configuration, and the logger.
type cli struct {
	configPath string
	projectRef string
	verbose    bool
	jsonOut    bool

	cfg *config.Config
	log *zap.Logger
}

// NewRootCmd builds the full command tree. Each invocation gets fresh
// flag state, which keeps repeated executions in one process independent.
func NewRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "weft",
		Short: "Git-versioned markdown node store",
		Long: `Weft manages projects of markdown nodes: files and directories with
YAML front matter, soft links between nodes, templates, and task
metadata, with every mutation recorded as a git commit.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			log, err := c.buildLogger()
			if err != nil {
				return err
			}
			c.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default ~/.weft/weft.hcl)")
	pf.StringVarP(&c.projectRef, "project", "p", "", "project name or id (default: the sole registered project)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&c.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		newProjectCmd(c),
		newCreateCmd(c),
		newShowCmd(c),
		newUpdateCmd(c),
		newRmCmd(c),
		newMkdirCmd(c),
		newLsCmd(c),
		newSearchCmd(c),
		newLinkCmd(c),
		newUnlinkCmd(c),
		newTemplateCmd(c),
		newTasksCmd(c),
		newGraphCmd(c),
		newLogCmd(c),
		newStatusCmd(c),
		newBranchCmd(c),
		newCheckoutCmd(c),
		newPushCmd(c),
		newPullCmd(c),
		newServeCmd(c),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildLogger returns a console logger at warn so one-shot commands stay
// quiet; --verbose lowers it to debug. Output goes to stderr, keeping
// stdout clean for results.
func (c *cli) buildLogger() (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if c.cfg.Log.JSON {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if c.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

// serveLogger honors the configured level; the stdio server is long
// running so the file-tuned verbosity applies there.
func (c *cli) serveLogger() (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if c.cfg.Log.JSON {
		zcfg = zap.NewProductionConfig()
	}
	lvl, err := zapcore.ParseLevel(c.cfg.Log.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if c.verbose {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// openRegistry opens the project catalog, creating its directory on
// first use.
func (c *cli) openRegistry() (*registry.Registry, error) {
	if err := os.MkdirAll(filepath.Dir(c.cfg.Registry), 0o755); err != nil {
		return nil, fmt.Errorf("create registry directory: %w", err)
	}
	return registry.Open(c.cfg.Registry)
}

// project resolves --project, falling back to the sole registered entry.
func (c *cli) project(ctx context.Context, reg *registry.Registry) (api.Project, error) {
	if c.projectRef != "" {
		return reg.Resolve(ctx, c.projectRef)
	}
	projects, err := reg.List(ctx)
	if err != nil {
		return api.Project{}, err
	}
	switch len(projects) {
	case 0:
		return api.Project{}, fmt.Errorf("no projects registered; run 'weft project init <name>' first")
	case 1:
		return projects[0], nil
	default:
		return api.Project{}, fmt.Errorf("%d projects registered; pick one with --project", len(projects))
	}
}

// workspace opens the selected project's workspace, provisioning its
// tree. The returned cleanup closes the registry handle.
func (c *cli) workspace(ctx context.Context) (*workspace.Workspace, func(), error) {
	reg, err := c.openRegistry()
	if err != nil {
		return nil, nil, err
	}
	proj, err := c.project(ctx, reg)
	if err != nil {
		_ = reg.Close()
		return nil, nil, err
	}
	w, err := workspace.Open(c.cfg, proj, c.log)
	if err != nil {
		_ = reg.Close()
		return nil, nil, err
	}
	if err := w.Provision(ctx); err != nil {
		_ = reg.Close()
		return nil, nil, err
	}
	return w, func() { _ = reg.Close() }, nil
}

var prettyJSON = func() oj.Options {
	o := oj.DefaultOptions
	o.Sort = true
	o.Indent = 2
	return o
}()

// printJSON renders v as indented JSON with sorted keys.
func (c *cli) printJSON(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	doc, err := oj.Parse(raw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, oj.JSON(doc, &prettyJSON))
	return err
}

// nodeLine is the one-line listing format: kind, path, title.
func nodeLine(n *api.Node) string {
	kind := n.Metadata.Type
	if n.IsDirectory {
		kind = "folder"
	}
	if kind == "" {
		kind = "file"
	}
	return fmt.Sprintf("%-8s %-44s %s", kind, n.Path, n.Metadata.Title)
}

// shortHash trims a commit hash for human output.
func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
