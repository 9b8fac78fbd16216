package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"callscope/internal/application/commands"
)

var (
	preloadNeighbors   bool
	preloadConcurrency int
)

var preloadCmd = &cobra.Command{
	Use:   "preload <graph> <method-id>...",
	Short: "Fetch methods into the cache",
	Long: `Fetch a set of methods, and optionally their callers and callees,
concurrently. Reports how many elements the cache holds afterwards.

Example:
  callscope-cli preload app-v1 1234 5678 --neighbors`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		preload := commands.NewPreloadCommand(GetWorkspace(), args[0], args[1:], preloadNeighbors)
		if preloadConcurrency > 0 {
			preload.Concurrency = preloadConcurrency
		}
		result, err := preload.Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	preloadCmd.Flags().BoolVar(&preloadNeighbors, "neighbors", false, "also fetch callers and callees")
	preloadCmd.Flags().IntVarP(&preloadConcurrency, "concurrency", "c", commands.DefaultPreloadConcurrency, "requests run at once")

	rootCmd.AddCommand(preloadCmd)
}
