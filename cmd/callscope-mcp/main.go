package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"

	mcpadapter "callscope/internal/adapters/mcp"
	"callscope/internal/adapters/metrics"
	"callscope/internal/config"
	"callscope/internal/logger"
	"callscope/internal/logger/console"
	"callscope/internal/wiring"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run serves MCP on stdio until the client disconnects and returns the
// exit code, so deferred cleanup runs before the process exits
func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "callscope-mcp: %v\n", err)
		return 1
	}

	flags := flag.NewFlagSet("callscope-mcp", flag.ContinueOnError)
	apiFlag := flags.String("api", cfg.APIURL, "URL of the call-graph service")
	metricsFlag := flags.String("metrics-addr", "", "address serving prometheus metrics, disabled when empty")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	cfg.APIURL = *apiFlag
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "callscope-mcp: %v\n", err)
		return 1
	}

	// stdout carries the protocol
	logger.Init(console.New(console.Params{Debug: cfg.Debug, Writer: os.Stderr, Prefix: "callscope-mcp"}))

	reg := prometheus.NewRegistry()
	s, err := wiring.Build(cfg, wiring.WithMetrics(reg))
	if err != nil {
		logger.Error("startup failed", "err", err)
		return 1
	}
	defer s.Close()

	if *metricsFlag != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		srv := &http.Server{Addr: *metricsFlag, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "addr", *metricsFlag, "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("serving metrics", "addr", *metricsFlag)
	}

	mcpServer := server.NewMCPServer(
		"callscope-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, s.Workspace, s.MethodIndex())
	mcpadapter.RegisterDiffTools(mcpServer, s.Workspace)

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("server stopped", "err", err)
		return 1
	}
	return 0
}
