package analyzer

import (
	"time"

	"github.com/ai-mapper/backend/metrics"
	"github.com/ai-mapper/backend/recommend"
	"github.com/ai-mapper/backend/scoring"
	"github.com/ai-mapper/backend/signals"
)

// Request is one analysis job. Exactly one source is used: HTML wins over
// Text, and URL is fetched only when both are empty. When HTML or Text is
// given, URL still serves as the base URL and the site to probe.
type Request struct {
	URL         string `json:"url"`
	HTML        string `json:"html"`
	Text        string `json:"text"`
	ContentType string `json:"contentType"`
	Industry    string `json:"industry"`
	// StatusCode is the HTTP status of supplied markup, if known.
	StatusCode  int  `json:"statusCode"`
	SkipSignals bool `json:"skipSignals"`
}

// Report is the full outcome of an analysis.
type Report struct {
	URL             string                    `json:"url,omitempty"`
	InputType       metrics.InputType         `json:"inputType"`
	ContentType     string                    `json:"contentType"`
	AnalyzedAt      time.Time                 `json:"analyzedAt"`
	SEO             ScoreCard                 `json:"seo"`
	GEO             ScoreCard                 `json:"geo"`
	Recommendations recommend.Recommendations `json:"recommendations"`
	TypeFindings    []string                  `json:"typeFindings"`
	Industry        *recommend.Industry       `json:"industry,omitempty"`
	Snapshot        string                    `json:"snapshot"`
	Performance     *Performance              `json:"performance,omitempty"`
	SiteSignals     *signals.Report           `json:"siteSignals,omitempty"`
	Metrics         *metrics.Record           `json:"metrics"`
}

// ScoreCard is one score with its pillars and, when an industry was
// requested, its benchmark comparison.
type ScoreCard struct {
	scoring.Result
	Pillars   []scoring.Pillar      `json:"pillars"`
	Benchmark *recommend.Comparison `json:"benchmark,omitempty"`
}

// Performance describes the page fetch. It exists only for fetched URLs.
type Performance struct {
	ResponseTimeMs int64             `json:"responseTimeMs"`
	PageSizeBytes  int               `json:"pageSizeBytes"`
	NumRequests    int               `json:"numRequests"`
	StatusCode     int               `json:"statusCode"`
	Score          int               `json:"performanceScore"`
	Grades         PerformanceGrades `json:"grades"`
}

// PerformanceGrades are optimal, acceptable or poor.
type PerformanceGrades struct {
	ResponseTime string `json:"responseTime"`
	PageSize     string `json:"pageSize"`
	NumRequests  string `json:"numRequests"`
}
