package cli

import (
	"context"

	"github.com/ppiankov/covercheck/internal/logging"
	"github.com/ppiankov/covercheck/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the validate tool over MCP (stdio)",
	Long: `Run covercheck as a Model Context Protocol server on stdin/stdout.
The server exposes one tool, validate_insurance_document, which takes
{"document_text": "..."} and returns the validation report.

Logs go to stderr; stdout carries the protocol only.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, false)
	if err != nil {
		return err
	}

	srv, err := mcpserver.NewServer(a.pipeline, Version)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logging.New("mcp").Info("serving MCP on stdio", "vessels", a.holder.Current().Len())
	return srv.Run(ctx)
}
