package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ai-mapper/backend/analyzer"
	"github.com/ai-mapper/backend/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Stdin is read when the input file is "-". Set before calling Run().
	Stdin io.Reader

	// LogLevel applies to diagnostics written to stderr.
	LogLevel string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	return &Main{
		Stdin:    os.Stdin,
		LogLevel: level,
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("geoscore"),
		kong.Description("Score a page for search (SEO) and generative engine (GEO) visibility."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'geoscore --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:   m.LogLevel,
		Format:  logging.FormatConsole,
		Console: stderr,
	})
	defer func() { _ = logger.Sync() }()
	deps.Logger = logger

	if cmd == "analyze" {
		svc := analyzer.New(analyzer.Options{
			FetchTimeout:   cli.Analyze.Timeout,
			SignalTimeout:  cli.Analyze.Timeout,
			DisableSignals: !cli.Analyze.Signals,
			Logger:         logger,
		})
		defer svc.Close()
		deps.Analyzer = svc
	}

	return kongCtx.Run(deps)
}
