// Package mcptools exposes the task tools over MCP stdio so external
// agents can call the same executor surface the orchestrator uses.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"taskchat/app/service/tasks"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
)

type Service struct {
	executor tasks.Executor
	server   *server.MCPServer
}

func New(di *do.Injector) (*Service, error) {
	executor := do.MustInvoke[*tasks.Service](di)

	s := &Service{
		executor: executor,
		server:   server.NewMCPServer("taskchat", "1.0.0"),
	}

	for _, spec := range executor.Specs() {
		schema, err := json.Marshal(spec.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to encode schema for %s: %w", spec.Name, err)
		}

		tool := mcp.NewToolWithRawSchema(spec.Name, spec.Description, schema)

		s.server.AddTool(tool, s.makeHandler(spec.Name))
	}

	return s, nil
}

func (s *Service) makeHandler(toolName string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := s.executor.Execute(ctx, toolName, request.GetArguments())

		if !result.Success {
			return mcp.NewToolResultError(result.Error), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode result: %w", err)
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout until the
// context is cancelled.
func (s *Service) ServeStdio(ctx context.Context) error {
	return server.NewStdioServer(s.server).Listen(ctx, os.Stdin, os.Stdout)
}
