package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"callscope/internal/application/explorer"
	"callscope/internal/config"
	"callscope/internal/logger"
	"callscope/internal/logger/console"
	"callscope/internal/ports"
	"callscope/internal/wiring"
)

var (
	apiURL   string
	dataDir  string
	timeout  time.Duration
	debug    bool
	cfg      config.Config
	services *wiring.Services
)

var rootCmd = &cobra.Command{
	Use:   "callscope-cli",
	Short: "CLI for exploring call graphs",
	Long: `callscope-cli is a command-line interface for a call-graph analysis
service.

It lists the stored graphs, queries methods, their callers and callees
and the calls between them, searches methods by name, and runs diffs
that rank the calls changed between two graphs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger.Init(console.New(console.Params{Debug: cfg.Debug}))

		services, err = wiring.Build(cfg)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if services == nil {
			return nil
		}
		return services.Close()
	},
}

// applyFlags overrides the loaded settings with the flags set on the command line
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("api") {
		c.APIURL = apiURL
	}
	if flags.Changed("data-dir") {
		c.DataDir = dataDir
	}
	if flags.Changed("timeout") {
		c.HTTPTimeout = timeout
	}
	if flags.Changed("debug") {
		c.Debug = debug
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&apiURL, "api", "a", config.DefaultAPIURL, "URL of the call-graph service")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory of the search index")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultHTTPTimeout, "timeout of service requests")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug messages")
}

// GetWorkspace returns the initialized workspace
func GetWorkspace() *explorer.Workspace {
	return services.Workspace
}

// GetIndex returns the search index, nil when unavailable
func GetIndex() ports.MethodIndex {
	return services.MethodIndex()
}
