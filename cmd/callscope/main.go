package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"callscope/internal/adapters/tui"
	"callscope/internal/adapters/tui/views"
	"callscope/internal/config"
	"callscope/internal/logger"
	"callscope/internal/logger/console"
	"callscope/internal/wiring"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run drives the TUI and returns the exit code, so the log file and the
// session are closed before the process exits
func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	flags := flag.NewFlagSet("callscope", flag.ContinueOnError)
	apiFlag := flags.String("api", cfg.APIURL, "URL of the call-graph service")
	graphFlag := flags.String("graph", "", "graph to open on start")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	cfg.APIURL = *apiFlag
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// The terminal belongs to the UI, logs go to a file
	fileLogger, closer, err := console.OpenFile(cfg.LogPath(), cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()
	logger.Init(fileLogger)

	s, err := wiring.Build(cfg, wiring.WithSurfaceFactory(views.NewCanvasSurface))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer s.Close()

	app := tui.NewApp(s.Workspace, s.MethodIndex(), tui.Options{
		Graph:             *graphFlag,
		DiffMaxIterations: cfg.DiffMaxIterations,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Error("tui stopped", "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
