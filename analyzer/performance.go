package analyzer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	gradeOptimal    = "optimal"
	gradeAcceptable = "acceptable"
	gradePoor       = "poor"
)

var gradePoints = map[string]int{
	gradeOptimal:    2,
	gradeAcceptable: 1,
	gradePoor:       0,
}

// measurePerformance grades a finished fetch. The score is the share of
// grade points earned, two per dimension.
func measurePerformance(elapsed time.Duration, pageSize, requests, status int) *Performance {
	perf := &Performance{
		ResponseTimeMs: elapsed.Milliseconds(),
		PageSizeBytes:  pageSize,
		NumRequests:    requests,
		StatusCode:     status,
		Grades: PerformanceGrades{
			ResponseTime: gradeResponseTime(elapsed),
			PageSize:     gradePageSize(pageSize),
			NumRequests:  gradeRequestCount(requests),
		},
	}

	points := gradePoints[perf.Grades.ResponseTime] + gradePoints[perf.Grades.PageSize] + gradePoints[perf.Grades.NumRequests]
	perf.Score = int(math.Round(float64(points) / 6 * 100))
	return perf
}

func gradeResponseTime(d time.Duration) string {
	switch ms := d.Milliseconds(); {
	case ms < 200:
		return gradeOptimal
	case ms <= 500:
		return gradeAcceptable
	default:
		return gradePoor
	}
}

func gradePageSize(bytes int) string {
	switch kb := float64(bytes) / 1024; {
	case kb < 150:
		return gradeOptimal
	case kb <= 500:
		return gradeAcceptable
	default:
		return gradePoor
	}
}

func gradeRequestCount(n int) string {
	switch {
	case n <= 1:
		return gradeOptimal
	case n <= 3:
		return gradeAcceptable
	default:
		return gradePoor
	}
}

// formatKB renders bytes as kilobytes: whole numbers from 100 KB up, one
// decimal below.
func formatKB(bytes int) string {
	if bytes <= 0 {
		return "0"
	}
	kb := float64(bytes) / 1024
	if kb >= 100 {
		return strconv.FormatFloat(math.Round(kb), 'f', -1, 64)
	}
	return strconv.FormatFloat(math.Round(kb*10)/10, 'f', -1, 64)
}

// buildSnapshot is the short plain-text summary shown next to the scores.
func buildSnapshot(rep *Report) string {
	rec := rep.Metrics

	var b strings.Builder
	b.WriteString("Input: ")
	b.WriteString(strings.ToUpper(string(rep.InputType)))
	if rep.URL != "" {
		fmt.Fprintf(&b, " (%s)", rep.URL)
	}

	schemaInfo := "None detected"
	if len(rec.SchemaTypes) > 0 {
		schemaInfo = strings.Join(rec.SchemaTypes, ", ")
	}
	fmt.Fprintf(&b, "\nSchema: %s", schemaInfo)
	fmt.Fprintf(&b, "\nReadability: %.1f", rec.ReadabilityScore)
	fmt.Fprintf(&b, "\nSentences: %d, Entities: %d, Q&A: %d", rec.SentenceCount, rec.EntityDefinitions, rec.QACount)

	if p := rep.Performance; p != nil {
		fmt.Fprintf(&b, "\nPerformance: %d/100 · Response: %dms · Size: %s KB · Requests: %d",
			p.Score, p.ResponseTimeMs, formatKB(p.PageSizeBytes), p.NumRequests)
	}
	return b.String()
}
