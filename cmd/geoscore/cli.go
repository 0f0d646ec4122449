package main

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ai-mapper/backend/analyzer"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *zap.Logger
	Analyzer *analyzer.Service
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Analyze    AnalyzeCmd    `cmd:"" help:"Score an HTML or text document"`
	Benchmarks BenchmarksCmd `cmd:"" help:"List industry benchmark bands"`
}

// AnalyzeCmd is the "analyze" subcommand.
type AnalyzeCmd struct {
	File        string        `arg:"" optional:"" help:"Document to score, or - for stdin. Omit to fetch --url."`
	URL         string        `short:"u" help:"Page URL; used as the base for relative links, or fetched when no file is given"`
	Text        bool          `short:"t" help:"Treat the input as plain text instead of HTML"`
	ContentType string        `short:"c" name:"content-type" help:"Content type key, e.g. pressRelease or blogArticle"`
	Industry    string        `short:"i" help:"Industry key to benchmark against"`
	Signals     bool          `short:"s" help:"Probe robots.txt, sitemap, llms.txt and IndexNow for --url"`
	Timeout     time.Duration `default:"15s" help:"Timeout for network requests"`
	JSON        bool          `short:"j" name:"json" help:"Print the full report as JSON"`
}

// BenchmarksCmd is the "benchmarks" subcommand.
type BenchmarksCmd struct {
	JSON bool `short:"j" name:"json" help:"Print the table as JSON"`
}
