package main

import (
	"encoding/json"
	"fmt"

	"github.com/ai-mapper/backend/recommend"
)

// Run executes the benchmarks command.
func (c *BenchmarksCmd) Run(deps *Dependencies) error {
	industries := recommend.Benchmarks()

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(industries)
	}

	fmt.Fprintf(deps.Stdout, "%-14s %-28s %-8s %s\n", "KEY", "NAME", "SEO", "GEO")
	for _, ind := range industries {
		fmt.Fprintf(deps.Stdout, "%-14s %-28s %-8s %s\n",
			ind.Key, ind.Name,
			fmt.Sprintf("%d-%d", ind.SEO.Min, ind.SEO.Max),
			fmt.Sprintf("%d-%d", ind.GEO.Min, ind.GEO.Max))
	}
	return nil
}
