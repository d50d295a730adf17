// Package mcp serves the tool registry to MCP clients over stdio.
package mcp

import (
	"context"
	"io"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
)

const instructions = "Personal assistant tools: calendar, tasks, email, notifications, " +
	"knowledge base, web search, file storage and long-term memory."

type Server struct {
	mcp    *server.MCPServer
	stdin  io.Reader
	stdout io.Writer
}

// NewServer registers every tool of the dispatcher. Calls are routed through
// the same Dispatch the agent uses, so failures come back as text results.
func NewServer(tools core.ToolDispatcher, stdin io.Reader, stdout io.Writer) *Server {
	s := server.NewMCPServer(
		core.SazedName,
		core.SazedVersion,
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)

	for _, t := range tools.Schemas() {
		name := t.Name
		tool := mcpproto.NewToolWithRawSchema(name, t.Description, t.InputSchema)
		s.AddTool(tool, func(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
			args := req.GetArguments()
			if args == nil {
				args = map[string]any{}
			}
			log.FromCtx(ctx).Debug().Str("tool", name).Msg("mcp tool call")
			return mcpproto.NewToolResultText(tools.Dispatch(ctx, name, args)), nil
		})
	}

	return &Server{mcp: s, stdin: stdin, stdout: stdout}
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("serving tools over MCP stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, s.stdin, s.stdout)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}
