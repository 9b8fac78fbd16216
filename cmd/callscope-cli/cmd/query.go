package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"callscope/internal/application/commands"
	"callscope/internal/domain"
)

var (
	withEntrypoint bool
	withoutNodes   bool
)

var methodCmd = &cobra.Command{
	Use:   "method <graph> <method-id>",
	Short: "Show a method and the groups containing it",
	Long: `Show a method with its enclosing classes and packages.

With --entrypoint the path from an entrypoint of the graph down to the
method is included.

Examples:
  callscope-cli method app-v1 1234
  callscope-cli method app-v1 1234 --entrypoint`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		result, err := commands.NewMethodCommand(GetWorkspace(), args[0], args[1], withEntrypoint).Execute(ctx)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var neighborsCmd = &cobra.Command{
	Use:   "neighbors <graph> <method-id> <callers|callees> [neighbor-id]",
	Short: "Show the callers or callees of a method",
	Long: `Show every caller or callee of a method, or a single one when a
neighbor id is given, with the calls joining them.

Examples:
  callscope-cli neighbors app-v1 1234 callees
  callscope-cli neighbors app-v1 1234 callers 5678`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		neighborID := ""
		if len(args) == 4 {
			neighborID = args[3]
		}
		result, err := commands.NewNeighborsCommand(GetWorkspace(), args[0], args[1], args[2], neighborID).Execute(ctx)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var edgeCmd = &cobra.Command{
	Use:   "edge <graph> <source->target>",
	Short: "Show a call between two methods",
	Long: `Show a call edge and, unless --no-nodes is set, both methods.

Example:
  callscope-cli edge app-v1 1234->5678`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		result, err := commands.NewEdgeCommand(GetWorkspace(), args[0], args[1], !withoutNodes).Execute(ctx)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

var topEdgesCmd = &cobra.Command{
	Use:   "top-edges <graph> [n]",
	Short: "Show the calls changed most by the last diff",
	Long: `Show the n calls with the largest diff value. Without n the next
batch of edges after the ones already fetched is shown.

Examples:
  callscope-cli top-edges app-v1
  callscope-cli top-edges app-v1 50`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		n := 0
		if len(args) == 2 {
			var err error
			if n, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid edge count %q: %w", args[1], err)
			}
		}
		result, err := commands.NewTopEdgesCommand(GetWorkspace(), args[0], n).Execute(ctx)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

func printResult(result *commands.QueryResult) {
	fmt.Println(result.Message)
	for _, n := range result.Elements.Nodes {
		fmt.Println(formatNode(n))
	}
	for _, e := range result.Elements.Edges {
		fmt.Println(formatEdge(e))
	}
}

func formatNode(n domain.Node) string {
	kind := "method"
	if !n.IsLeaf() {
		kind = "group"
	}
	label := n.Data.Label
	if label == "" {
		label = n.Data.Name
	}
	parts := []string{n.Data.ID, kind, label}
	if n.Data.Parent != "" {
		parts = append(parts, "in "+n.Data.Parent)
	}
	if n.Data.IsEntrypoint {
		parts = append(parts, "(entrypoint)")
	}
	return strings.Join(parts, "\t")
}

func formatEdge(e domain.Edge) string {
	if e.Data.Value == nil {
		return e.Data.ID
	}
	return fmt.Sprintf("%s\t%g", e.Data.ID, e.DiffValue())
}

func init() {
	methodCmd.Flags().BoolVarP(&withEntrypoint, "entrypoint", "e", false, "include the path from an entrypoint")
	edgeCmd.Flags().BoolVar(&withoutNodes, "no-nodes", false, "omit the endpoint methods")

	rootCmd.AddCommand(methodCmd)
	rootCmd.AddCommand(neighborsCmd)
	rootCmd.AddCommand(edgeCmd)
	rootCmd.AddCommand(topEdgesCmd)
}
