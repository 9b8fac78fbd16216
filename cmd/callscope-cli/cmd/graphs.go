package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"callscope/internal/application"
	"callscope/internal/application/commands"
)

var graphsCmd = &cobra.Command{
	Use:   "graphs",
	Short: "List the graphs on the service",
	Long: `List the graphs stored on the service with their size and the last
completed diff.

Example:
  callscope-cli graphs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		graphs, err := commands.NewListGraphsCommand(GetWorkspace()).Execute(ctx)
		if err != nil {
			return err
		}

		if len(graphs) == 0 {
			fmt.Println("No graphs found")
			return nil
		}

		for _, g := range graphs {
			line := fmt.Sprintf("%s\t%d nodes\t%d edges", g.Name, g.NodeCount, g.EdgeCount)
			if g.HasDiff() {
				line += fmt.Sprintf("\tdiff vs %s (%d iterations)", g.OtherGraph, g.Iterations)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <graph>",
	Short: "Display the method tree of a graph",
	Long: `Display the packages, classes and methods of a graph.

Example:
  callscope-cli tree app-v1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		root, err := commands.NewMethodTreeCommand(GetWorkspace(), args[0]).Execute(ctx)
		if err != nil {
			return err
		}

		for _, child := range root.Children {
			printTree(child, 0)
		}
		return nil
	},
}

func printTree(node *application.TreeNode, depth int) {
	if node == nil {
		return
	}

	indent := strings.Repeat("  ", depth)
	if node.IsMethod() {
		fmt.Printf("%s%s [%s]\n", indent, node.Name, node.ID)
		return
	}
	fmt.Printf("%s%s\n", indent, node.Name)

	for _, child := range node.Children {
		printTree(child, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(graphsCmd)
	rootCmd.AddCommand(treeCmd)
}
