package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/weftworks/weft/internal/agent"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve projects to LLM agents over MCP stdio",
		Long: `Serve starts an MCP server on stdin/stdout exposing node, template,
task, graph, and history tools for every registered project. Logs go to
stderr so the protocol stream stays clean.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := c.serveLogger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			reg, err := c.openRegistry()
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			opener := agent.NewOpener(c.cfg, reg, log)
			defer opener.Close()

			log.Info("mcp server starting", zap.String("version", version))
			return agent.ServeStdio(agent.NewServer(opener, version))
		},
	}
}
