package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"callscope/internal/application/commands"
	"callscope/internal/application/explorer"
)

// RegisterDiffTools adds the graph comparison tools to the MCP server.
func RegisterDiffTools(s *server.MCPServer, ws *explorer.Workspace) {
	s.AddTool(startDiffTool(), startDiffHandler(ws))
	s.AddTool(cancelDiffTool(), cancelDiffHandler(ws))
	s.AddTool(diffStatusTool(), diffStatusHandler(ws))
}

// --- start_diff ---

func startDiffTool() mcp.Tool {
	return mcp.NewTool("start_diff",
		mcp.WithDescription("Start comparing a graph against another. Every call edge gets a diff value; use diff_status to follow progress and top_edges once it succeeded."),
		graphParam(),
		mcp.WithString("other_graph",
			mcp.Description("Graph to compare against"),
			mcp.Required(),
		),
		mcp.WithNumber("max_iterations",
			mcp.Description(fmt.Sprintf("Iteration limit of the comparison (default %d)", explorer.DefaultDiffMaxIterations)),
		),
	)
}

func startDiffHandler(ws *explorer.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewStartDiffCommand(ws,
			req.GetString("graph", ""),
			req.GetString("other_graph", ""),
			req.GetInt("max_iterations", 0),
		)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- cancel_diff ---

func cancelDiffTool() mcp.Tool {
	return mcp.NewTool("cancel_diff",
		mcp.WithDescription("Stop the running comparison of a graph."),
		graphParam(),
	)
}

func cancelDiffHandler(ws *explorer.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewCancelDiffCommand(ws, req.GetString("graph", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- diff_status ---

func diffStatusTool() mcp.Tool {
	return mcp.NewTool("diff_status",
		mcp.WithDescription("Report the state of the comparison of a graph started in this session."),
		graphParam(),
	)
}

func diffStatusHandler(ws *explorer.Workspace) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("graph", "")
		g, ok := ws.Graph(name)
		if !ok {
			return toolError(fmt.Errorf("no diff started for %s", name))
		}
		return mcp.NewToolResultText(formatDiff(g.Diff())), nil
	}
}

func formatDiff(s explorer.DiffState) string {
	line := string(s.Status)
	if s.Other != "" {
		line += fmt.Sprintf("  vs %s  %d/%d iterations", s.Other, s.CurrentIterations, s.MaxIterations)
	}
	if s.Message != "" {
		line += "  " + s.Message
	}
	return line
}
