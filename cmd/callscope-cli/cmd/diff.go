package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"callscope/internal/application/commands"
	"callscope/internal/application/explorer"
	"callscope/internal/domain"
)

var maxIterations int

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare graphs",
	Long: `Start, follow and cancel the job comparing a graph against another.

A finished diff gives every call of the graph a value ranking how much it
changed; see top-edges.`,
}

var diffStartCmd = &cobra.Command{
	Use:   "start <graph> <other-graph>",
	Short: "Compare a graph against another",
	Long: `Start comparing a graph against another and return once the service
accepted the job. Use watch to follow the progress instead.

Examples:
  callscope-cli diff start app-v2 app-v1
  callscope-cli diff start app-v2 app-v1 --max-iterations 200`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return startDiff(context.Background(), cmd, args[0], args[1])
	},
}

var diffWatchCmd = &cobra.Command{
	Use:   "watch <graph> <other-graph>",
	Short: "Compare a graph against another and follow the progress",
	Long: `Start comparing a graph against another and print the progress of the
job until it finishes or fails. Interrupting stops following, the job
keeps running on the service.

Example:
  callscope-cli diff watch app-v2 app-v1`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := startDiff(ctx, cmd, args[0], args[1]); err != nil {
			return err
		}
		return watch(ctx, args[0])
	},
}

func startDiff(ctx context.Context, cmd *cobra.Command, graph, other string) error {
	iterations := maxIterations
	if !cmd.Flags().Changed("max-iterations") {
		iterations = cfg.DiffMaxIterations
	}
	result, err := commands.NewStartDiffCommand(GetWorkspace(), graph, other, iterations).Execute(ctx)
	if err != nil {
		return err
	}
	fmt.Println(result.Message)
	return nil
}

var diffCancelCmd = &cobra.Command{
	Use:   "cancel <graph>",
	Short: "Cancel the running comparison of a graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewCancelDiffCommand(GetWorkspace(), args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func watch(ctx context.Context, graph string) error {
	result, err := commands.NewWatchDiffCommand(GetWorkspace(), graph, func(s explorer.DiffState) {
		switch s.Status {
		case domain.DiffSaving:
			fmt.Println("Saving results...")
		case domain.DiffRunning:
			fmt.Printf("Iteration %d/%d\n", s.CurrentIterations, s.MaxIterations)
		}
	}).Execute(ctx)
	if err != nil {
		return err
	}
	fmt.Println(result.Message)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{diffStartCmd, diffWatchCmd} {
		c.Flags().IntVarP(&maxIterations, "max-iterations", "m", 0, "iteration cap of the job (default from config)")
		diffCmd.AddCommand(c)
	}
	diffCmd.AddCommand(diffCancelCmd)
	rootCmd.AddCommand(diffCmd)
}
