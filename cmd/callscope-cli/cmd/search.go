package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"callscope/internal/application/commands"
)

var (
	searchGraph  string
	searchLimit  int
	forceRebuild bool
)

var errNoIndex = errors.New("search index unavailable")

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search methods by name",
	Long: `Search the indexed methods by name or class path.

Results are ranked by relevance using fuzzy matching. With --graph the
graph is indexed first when needed and the search is limited to it.

Examples:
  callscope-cli search parse
  callscope-cli search util.Parser --graph app-v1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		ctx := context.Background()

		index := GetIndex()
		if index == nil {
			return errNoIndex
		}
		if searchGraph != "" {
			if _, err := commands.NewRebuildIndexCommand(GetWorkspace(), index, searchGraph, false).Execute(ctx); err != nil {
				return err
			}
		}

		search := commands.NewSearchCommand(index, searchGraph, query)
		if searchLimit > 0 {
			search.Limit = searchLimit
		}
		results, err := search.Execute(ctx)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No results found")
			return nil
		}

		for _, r := range results {
			fmt.Printf("[%s] %s %s\n", r.Graph, r.ID, r.QualifiedName())
		}
		return nil
	},
}

var indexCmd = &cobra.Command{
	Use:   "index <graph>",
	Short: "Index the methods of a graph for search",
	Long: `Store the method tree of a graph in the local search index.

Graphs already indexed are skipped unless --force is set.

Examples:
  callscope-cli index app-v1
  callscope-cli index app-v1 --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		index := GetIndex()
		if index == nil {
			return errNoIndex
		}
		result, err := commands.NewRebuildIndexCommand(GetWorkspace(), index, args[0], forceRebuild).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchGraph, "graph", "g", "", "graph to search, indexed first when needed")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", commands.DefaultSearchLimit, "maximum candidates read from the index")
	indexCmd.Flags().BoolVarP(&forceRebuild, "force", "f", false, "rebuild even when already indexed")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(indexCmd)
}
