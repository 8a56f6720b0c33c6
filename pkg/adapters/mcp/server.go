// Package mcp exposes the compiler and simulator as MCP tools so
// agent hosts can compile and run decision-language programs.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/spool"
	"github.com/aretw0/spool/pkg/machine"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps an MCP server with the spool tool set.
type Server struct {
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates the MCP server and registers the tools.
func NewServer(logger *slog.Logger) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer("spool-mcp", spool.Version),
		logger:    logger,
	}
	s.registerTools()
	return s
}

// ServeStdio serves MCP over stdin/stdout until the host disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	compileTool := mcp.NewTool("compile_program",
		mcp.WithDescription("Compile a decision-language program to a Turing machine and return its YAML transition table"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Decision-language source code")),
		mcp.WithBoolean("optimize", mcp.Description("Run the optimizer passes (default true)")),
	)
	s.mcpServer.AddTool(compileTool, s.handleCompile)

	runTool := mcp.NewTool("run_program",
		mcp.WithDescription("Compile a decision-language program and run the machine on an input string"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Decision-language source code")),
		mcp.WithString("input", mcp.Description("Input string for the machine")),
		mcp.WithNumber("limit", mcp.Description("Step budget for the run")),
	)
	s.mcpServer.AddTool(runTool, s.handleRun)
}

func (s *Server) handleCompile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := []spool.Option{spool.WithOptimize(request.GetBool("optimize", true))}
	m, err := spool.Compile(source, opts...)
	if err != nil {
		s.logger.Debug("compile failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(machine.ToYAML(m)), nil
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	input := request.GetString("input", "")
	limit := request.GetInt("limit", 0)

	opts := []spool.Option{}
	if limit > 0 {
		opts = append(opts, spool.WithStepLimit(limit))
	}
	res, err := spool.Run(source, input, opts...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verdict := "REJECT"
	if res.Accepted {
		verdict = "ACCEPT"
	}
	if res.HitLimit {
		verdict = "STEP LIMIT EXCEEDED"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s after %d steps\nfinal tape: %s", verdict, res.Steps, res.FinalTape)), nil
}
