package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"callscope/internal/application/commands"
	"callscope/internal/application/explorer"
	"callscope/internal/domain"
	"callscope/internal/ports"
)

// RegisterReadTools adds all graph query tools to the MCP server.
// index may be nil, in which case search_methods is not registered.
func RegisterReadTools(s *server.MCPServer, ws *explorer.Workspace, index ports.MethodIndex) {
	s.AddTool(listGraphsTool(), listGraphsHandler(ws))
	s.AddTool(getMethodTool(), getMethodHandler(ws))
	s.AddTool(getNeighborsTool(), getNeighborsHandler(ws))
	s.AddTool(getEdgeTool(), getEdgeHandler(ws))
	s.AddTool(topEdgesTool(), topEdgesHandler(ws))
	s.AddTool(methodTreeTool(), methodTreeHandler(ws))
	s.AddTool(recentQueriesTool(), recentQueriesHandler(ws))
	if index != nil {
		s.AddTool(searchMethodsTool(), searchMethodsHandler(ws, index))
	}
}

// --- list_graphs ---

func listGraphsTool() mcp.Tool {
	return mcp.NewTool("list_graphs",
		mcp.WithDescription("List the call graphs available on the service with their node and edge counts and the last completed diff."),
	)
}

func listGraphsHandler(ws *explorer.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		graphs, err := commands.NewListGraphsCommand(ws).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(graphs, formatGraph)
	}
}

// --- get_method ---

func getMethodTool() mcp.Tool {
	return mcp.NewTool("get_method",
		mcp.WithDescription("Get a method with its enclosing classes and packages. Optionally include the call path from an entrypoint."),
		graphParam(),
		mcp.WithString("id",
			mcp.Description("Method ID"),
			mcp.Required(),
		),
		mcp.WithBoolean("with_entrypoint",
			mcp.Description("Include the call path from an entrypoint to the method"),
		),
	)
}

func getMethodHandler(ws *explorer.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewMethodCommand(ws,
			req.GetString("graph", ""),
			req.GetString("id", ""),
			req.GetBool("with_entrypoint", false),
		)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatQuery(result)
	}
}

// --- get_neighbors ---

func getNeighborsTool() mcp.Tool {
	return mcp.NewTool("get_neighbors",
		mcp.WithDescription("Get the callers or callees of a method, or a single one of them when neighbor_id is given."),
		graphParam(),
		mcp.WithString("id",
			mcp.Description("Method ID"),
			mcp.Required(),
		),
		mcp.WithString("relation",
			mcp.Description("Direction of the calls"),
			mcp.Enum("callers", "callees"),
			mcp.Required(),
		),
		mcp.WithString("neighbor_id",
			mcp.Description("Only return this caller or callee"),
		),
	)
}

func getNeighborsHandler(ws *explorer.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewNeighborsCommand(ws,
			req.GetString("graph", ""),
			req.GetString("id", ""),
			req.GetString("relation", ""),
			req.GetString("neighbor_id", ""),
		)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatQuery(result)
	}
}

// --- get_edge ---

func getEdgeTool() mcp.Tool {
	return mcp.NewTool("get_edge",
		mcp.WithDescription("Get a call edge by its ID, written source->target, with both endpoint methods."),
		graphParam(),
		mcp.WithString("edge_id",
			mcp.Description("Edge ID (e.g. 12->57)"),
			mcp.Required(),
		),
	)
}

func getEdgeHandler(ws *explorer.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewEdgeCommand(ws, req.GetString("graph", ""), req.GetString("edge_id", ""), true)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatQuery(result)
	}
}

// --- top_edges ---

func topEdgesTool() mcp.Tool {
	return mcp.NewTool("top_edges",
		mcp.WithDescription("Get the call edges whose diff value is largest, ranked. Requires a completed diff."),
		graphParam(),
		mcp.WithNumber("n",
			mcp.Description("Number of edges. Omit to extend the previous ranking."),
		),
	)
}

func topEdgesHandler(ws *explorer.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewTopEdgesCommand(ws, req.GetString("graph", ""), req.GetInt("n", 0))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatQuery(result)
	}
}

// --- method_tree ---

func methodTreeTool() mcp.Tool {
	return mcp.NewTool("method_tree",
		mcp.WithDescription("Display the packages, classes and methods of a graph as a tree."),
		graphParam(),
	)
}

func methodTreeHandler(ws *explorer.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		root, err := commands.NewMethodTreeCommand(ws, req.GetString("graph", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		var sb strings.Builder
		renderTree(&sb, root, "")
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func renderTree(sb *strings.Builder, node *domain.TreeNode, prefix string) {
	if node.Parent != nil {
		if node.IsMethod() {
			fmt.Fprintf(sb, "%s%s  [%s]\n", prefix, node.Name, node.ID)
		} else {
			fmt.Fprintf(sb, "%s%s\n", prefix, node.Name)
		}
		prefix += "  "
	}
	for _, child := range node.Children {
		renderTree(sb, child, prefix)
	}
}

// --- search_methods ---

func searchMethodsTool() mcp.Tool {
	return mcp.NewTool("search_methods",
		mcp.WithDescription("Search methods by name or class path. The graph is indexed on first use."),
		mcp.WithString("query",
			mcp.Description("Search query"),
			mcp.Required(),
		),
		mcp.WithString("graph",
			mcp.Description("Graph to search. Omit to search every indexed graph."),
		),
	)
}

func searchMethodsHandler(ws *explorer.Workspace, index ports.MethodIndex) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}

		graph := req.GetString("graph", "")
		if graph != "" {
			if _, err := commands.NewRebuildIndexCommand(ws, index, graph, false).Execute(ctx); err != nil {
				return toolError(err)
			}
		}

		results, err := commands.NewSearchCommand(index, graph, query).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, r := range results {
			fmt.Fprintf(&sb, "%s  %s  %s\n", r.Graph, r.ID, r.QualifiedName())
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- recent_queries ---

func recentQueriesTool() mcp.Tool {
	return mcp.NewTool("recent_queries",
		mcp.WithDescription("List the most recent query results of this session, newest first."),
	)
}

func recentQueriesHandler(ws *explorer.Workspace) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return formatEntities(ws.Contexts(), formatContext)
	}
}

// --- helpers ---

func graphParam() mcp.ToolOption {
	return mcp.WithString("graph",
		mcp.Description("Graph name"),
		mcp.Required(),
	)
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatQuery(result *commands.QueryResult) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	sb.WriteString(result.Message)
	sb.WriteByte('\n')
	writeElements(&sb, result.Elements)
	return mcp.NewToolResultText(sb.String()), nil
}

func writeElements(sb *strings.Builder, elems domain.Elements) {
	if len(elems.Nodes) > 0 {
		sb.WriteString("\nNodes:\n")
		for _, n := range elems.Nodes {
			sb.WriteString(formatNode(n))
			sb.WriteByte('\n')
		}
	}
	if len(elems.Edges) > 0 {
		sb.WriteString("\nEdges:\n")
		for _, e := range elems.Edges {
			sb.WriteString(formatEdge(e))
			sb.WriteByte('\n')
		}
	}
}

func formatGraph(g domain.GraphInfo) string {
	line := fmt.Sprintf("%s  %d nodes  %d edges", g.Name, g.NodeCount, g.EdgeCount)
	if g.HasDiff() {
		line += fmt.Sprintf("  diff vs %s (%d iterations)", g.OtherGraph, g.Iterations)
	}
	return line
}

func formatNode(n domain.Node) string {
	label := n.Data.Label
	if n.Data.Display != "" {
		label = n.Data.Display
	}
	if label == "" {
		label = n.Data.Name
	}
	kind := "method"
	if !n.IsLeaf() {
		kind = "group"
	}
	line := fmt.Sprintf("%s  %s  %s", n.Data.ID, kind, label)
	if n.Data.Parent != "" {
		line += "  in " + n.Data.Parent
	}
	if n.Data.IsEntrypoint {
		line += "  (entrypoint)"
	}
	return line
}

func formatEdge(e domain.Edge) string {
	line := e.Data.ID
	if e.IsRelevant() {
		line += fmt.Sprintf("  value %g", e.DiffValue())
	}
	return line
}

func formatContext(qc explorer.QueryContext) string {
	return fmt.Sprintf("%s  %s  %s  %d nodes  %d edges",
		qc.Timestamp.Format("15:04:05"), qc.Graph, qc.Title, len(qc.Elements.Nodes), len(qc.Elements.Edges))
}
