// Package scoring evaluates declarative rule tables over a metrics record
// and aggregates the points into totals and category pillars.
package scoring

import (
	"math"

	"github.com/ai-mapper/backend/metrics"
)

// Rule is one independent check. Evaluate may return any value; the
// aggregator clamps it into [0, MaxPoints].
type Rule struct {
	ID        string
	Label     string
	Category  string
	MaxPoints int
	Evaluate  func(rec *metrics.Record, html string) int
}

// BreakdownEntry is the outcome of one rule.
type BreakdownEntry struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Category  string `json:"category"`
	Points    int    `json:"points"`
	MaxPoints int    `json:"maxPoints"`
	Passed    bool   `json:"passed"`
}

// Result aggregates a rule table. Order lists rule ids in table order.
type Result struct {
	Total       int                       `json:"total"`
	TotalPoints int                       `json:"totalPoints"`
	MaxPoints   int                       `json:"maxPoints"`
	Breakdown   map[string]BreakdownEntry `json:"breakdown"`
	Order       []string                  `json:"order"`
}

// Entries returns the breakdown in table order.
func (r Result) Entries() []BreakdownEntry {
	out := make([]BreakdownEntry, 0, len(r.Order))
	for _, id := range r.Order {
		out = append(out, r.Breakdown[id])
	}
	return out
}

// ComputeSEO scores rec against the SEO table.
func ComputeSEO(rec *metrics.Record, html string) Result {
	return Compute(SEORules(), rec, html)
}

// ComputeGEO scores rec against the GEO table.
func ComputeGEO(rec *metrics.Record, html string) Result {
	return Compute(GEORules(), rec, html)
}

// Compute runs every rule and sums the clamped points. Total is the rounded
// percentage of the maximum, or 0 for an empty table.
func Compute(rules []Rule, rec *metrics.Record, html string) Result {
	res := Result{
		Breakdown: make(map[string]BreakdownEntry, len(rules)),
		Order:     make([]string, 0, len(rules)),
	}
	for _, rule := range rules {
		points := 0
		if rule.Evaluate != nil {
			points = clamp(rule.Evaluate(rec, html), 0, rule.MaxPoints)
		}
		res.TotalPoints += points
		res.MaxPoints += rule.MaxPoints
		res.Breakdown[rule.ID] = BreakdownEntry{
			ID:        rule.ID,
			Label:     rule.Label,
			Category:  rule.Category,
			Points:    points,
			MaxPoints: rule.MaxPoints,
			Passed:    points == rule.MaxPoints,
		}
		res.Order = append(res.Order, rule.ID)
	}
	res.Total = percent(res.TotalPoints, res.MaxPoints)
	return res
}

func percent(points, maxPoints int) int {
	if maxPoints <= 0 {
		return 0
	}
	return int(math.Round(float64(points) / float64(maxPoints) * 100))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
