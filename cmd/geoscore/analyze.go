package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ai-mapper/backend/analyzer"
	"github.com/ai-mapper/backend/recommend"
)

// maxRecommendations caps the text listing; --json prints all of them.
const maxRecommendations = 8

// Run executes the analyze command.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	req, err := c.request(deps.Stdin)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	rep, err := deps.Analyzer.Analyze(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	printReport(deps.Stdout, rep)
	return nil
}

func (c *AnalyzeCmd) request(stdin io.Reader) (analyzer.Request, error) {
	req := analyzer.Request{
		URL:         c.URL,
		ContentType: c.ContentType,
		Industry:    c.Industry,
		SkipSignals: !c.Signals,
	}

	var body []byte
	switch c.File {
	case "":
		if strings.TrimSpace(c.URL) == "" {
			return req, errors.New("a file, - for stdin, or --url is required")
		}
		return req, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return req, fmt.Errorf("failed to read stdin: %w", err)
		}
		body = data
	default:
		data, err := os.ReadFile(c.File)
		if err != nil {
			return req, fmt.Errorf("failed to read %s: %w", c.File, err)
		}
		body = data
	}

	if strings.TrimSpace(string(body)) == "" {
		return req, errors.New("input is empty")
	}
	if c.Text {
		req.Text = string(body)
	} else {
		req.HTML = string(body)
	}
	return req, nil
}

func printReport(w io.Writer, rep *analyzer.Report) {
	if rep.URL != "" {
		fmt.Fprintf(w, "URL:          %s\n", rep.URL)
	}
	fmt.Fprintf(w, "Input:        %s\n", rep.InputType)
	fmt.Fprintf(w, "Content type: %s\n", rep.ContentType)
	fmt.Fprintf(w, "SEO score:    %d/100%s\n", rep.SEO.Total, benchmarkSuffix(rep.SEO.Benchmark))
	fmt.Fprintf(w, "GEO score:    %d/100%s\n", rep.GEO.Total, benchmarkSuffix(rep.GEO.Benchmark))
	if rep.Industry != nil {
		fmt.Fprintf(w, "Industry:     %s\n", rep.Industry.Name)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pillars:")
	for _, p := range rep.SEO.Pillars {
		fmt.Fprintf(w, "  SEO  %-28s %3d\n", p.Label, p.Score)
	}
	for _, p := range rep.GEO.Pillars {
		fmt.Fprintf(w, "  GEO  %-28s %3d\n", p.Label, p.Score)
	}

	if items := rep.Recommendations.Combined; len(items) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recommendations:")
		for i, item := range items {
			if i == maxRecommendations {
				fmt.Fprintf(w, "  ... %d more (use --json)\n", len(items)-i)
				break
			}
			fmt.Fprintf(w, "  [%s] %s\n", item.Priority, item.Text)
		}
	}

	if len(rep.TypeFindings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Content type findings:")
		for _, f := range rep.TypeFindings {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rep.Snapshot)
}

func benchmarkSuffix(c *recommend.Comparison) string {
	if c == nil || c.Average == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s, industry avg %d, %+d)", c.Label, c.Average, c.Delta)
}
