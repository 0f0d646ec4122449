package analyzer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ai-mapper/backend/metrics"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

const samplePage = `<html><head>
<title>Widget pricing guide for small product teams</title>
<meta name="description" content="What widgets cost and how to pick one.">
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Article","headline":"Widgets"}</script>
</head><body>
<h1>Widget pricing</h1>
<p>A widget is a small tool that saves teams time. In 2026, 40% of teams use widgets.</p>
<h2>How much does a widget cost?</h2>
<ul><li>Basic: $10</li><li>Pro: $25</li></ul>
<a href="/pricing">Pricing</a>
</body></html>`

type fakeRecorder struct {
	mu       sync.Mutex
	fetches  []string
	analyses []string
	failed   []bool
	scores   [][2]int
}

func (f *fakeRecorder) ObserveFetch(outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, outcome)
}

func (f *fakeRecorder) ObserveAnalysis(input string, failed bool, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyses = append(f.analyses, input)
	f.failed = append(f.failed, failed)
}

func (f *fakeRecorder) ObserveScores(seo, geo int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores = append(f.scores, [2]int{seo, geo})
}

func (f *fakeRecorder) RecordAnalysis(input string, failed bool) {
	f.ObserveAnalysis("usage:"+input, failed, 0)
}

func newTestService(rec *fakeRecorder, disableSignals bool) *Service {
	opts := Options{
		FetchTimeout:   5 * time.Second,
		SignalTimeout:  2 * time.Second,
		DisableSignals: disableSignals,
		Logger:         zap.NewNop(),
		Now:            func() time.Time { return fixedNow },
	}
	if rec != nil {
		opts.Recorder = rec
		opts.Usage = rec
	}
	return New(opts)
}

func TestAnalyze_HTML(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	svc := newTestService(rec, true)

	rep, err := svc.Analyze(context.Background(), Request{
		HTML:        samplePage,
		URL:         "acme.com/widgets",
		ContentType: "blogArticle",
		Industry:    "technology",
	})
	require.NoError(t, err)

	assert.Equal(t, metrics.InputHTML, rep.InputType)
	assert.Equal(t, "https://acme.com/widgets", rep.URL)
	assert.Equal(t, "blogArticle", rep.ContentType)
	assert.Equal(t, fixedNow, rep.AnalyzedAt)
	assert.Equal(t, []string{"Article"}, rep.Metrics.SchemaTypes)
	assert.Equal(t, 1, rep.Metrics.InternalLinkCount)
	assert.Len(t, rep.SEO.Pillars, 3)
	assert.Len(t, rep.GEO.Pillars, 10)
	assert.Len(t, rep.SEO.Entries(), 14)
	assert.NotEmpty(t, rep.Recommendations.Combined)
	assert.Len(t, rep.TypeFindings, 3)
	assert.Nil(t, rep.Performance)
	assert.Nil(t, rep.SiteSignals)

	require.NotNil(t, rep.Industry)
	assert.Equal(t, "Technology", rep.Industry.Name)
	require.NotNil(t, rep.SEO.Benchmark)
	assert.Equal(t, rep.SEO.Total-82, rep.SEO.Benchmark.Delta)
	require.NotNil(t, rep.GEO.Benchmark)
	assert.Equal(t, rep.GEO.Total-74, rep.GEO.Benchmark.Delta)

	assert.True(t, strings.HasPrefix(rep.Snapshot, "Input: HTML (https://acme.com/widgets)\nSchema: Article\nReadability: "))
	assert.NotContains(t, rep.Snapshot, "Performance:")

	assert.Equal(t, []string{"usage:html", "html"}, rec.analyses)
	assert.Equal(t, []bool{false, false}, rec.failed)
	assert.Equal(t, [][2]int{{rep.SEO.Total, rep.GEO.Total}}, rec.scores)
	assert.Empty(t, rec.fetches)
}

func TestAnalyze_Text(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil, true)
	rep, err := svc.Analyze(context.Background(), Request{
		Text:     "What is a widget?\n\nA widget is a small tool. Teams use it daily.",
		Industry: "unknown",
	})
	require.NoError(t, err)

	assert.Equal(t, metrics.InputText, rep.InputType)
	assert.Equal(t, "General", rep.ContentType)
	assert.Empty(t, rep.URL)
	assert.Equal(t, 2, rep.Metrics.ParagraphCount)
	assert.Nil(t, rep.Industry)
	assert.Nil(t, rep.SEO.Benchmark)
	assert.Empty(t, rep.TypeFindings)
	assert.True(t, strings.HasPrefix(rep.Snapshot, "Input: TEXT\nSchema: None detected\n"))
}

func TestAnalyze_FetchesURLAndSignals(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/page", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(samplePage))
	})
	mux.HandleFunc("/llms.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# Acme\n"))
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	rec := &fakeRecorder{}
	svc := newTestService(rec, false)
	t.Cleanup(svc.Close)

	rep, err := svc.Analyze(context.Background(), Request{URL: srv.URL + "/old"})
	require.NoError(t, err)

	assert.Equal(t, metrics.InputURL, rep.InputType)
	assert.Equal(t, srv.URL+"/old", rep.URL)

	require.NotNil(t, rep.Performance)
	assert.Equal(t, 2, rep.Performance.NumRequests)
	assert.Equal(t, len(samplePage), rep.Performance.PageSizeBytes)
	assert.Equal(t, http.StatusOK, rep.Performance.StatusCode)
	assert.Equal(t, gradeAcceptable, rep.Performance.Grades.NumRequests)

	require.NotNil(t, rep.SiteSignals)
	assert.True(t, rep.SiteSignals.LLMSTxtPresent)
	tech := rep.Metrics.GeoSignals.TechnicalGeo
	assert.True(t, metrics.True(tech.LLMSTxtPresent))
	assert.True(t, metrics.True(tech.RobotsAllowsAll))
	assert.True(t, metrics.True(tech.StatusOK))
	assert.False(t, metrics.True(tech.IndexNowEndpointOK))

	assert.Contains(t, rep.Snapshot, "\nPerformance: ")
	assert.Contains(t, rep.Snapshot, "Requests: 2")
	assert.Equal(t, []string{OutcomeOK}, rec.fetches)
}

func TestAnalyze_FetchFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(srv.Close)

	rec := &fakeRecorder{}
	svc := newTestService(rec, true)

	_, err := svc.Analyze(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
	assert.Contains(t, err.Error(), "410")
	assert.Equal(t, []string{OutcomeHTTPError}, rec.fetches)
	assert.Equal(t, []bool{true, true}, rec.failed)
	assert.Empty(t, rec.scores)

	down := httptest.NewServer(http.NotFoundHandler())
	addr := down.URL
	down.Close()

	_, err = svc.Analyze(context.Background(), Request{URL: addr})
	assert.True(t, errors.Is(err, ErrFetch))
}

func TestAnalyze_Canceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(nil, true).Analyze(ctx, Request{URL: srv.URL})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_InvalidRequests(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil, true)
	for _, req := range []Request{
		{},
		{Text: "   \n "},
		{URL: "https://"},
		{URL: "not a url"},
	} {
		_, err := svc.Analyze(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest, "%+v", req)
	}
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"acme.com", "https://acme.com"},
		{"  acme.com/news  ", "https://acme.com/news"},
		{"http://acme.com/a?b=1", "http://acme.com/a?b=1"},
		{"HTTPS://acme.com", "https://acme.com"},
	}
	for _, tt := range tests {
		got, err := NormalizeURL(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := NormalizeURL("")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
