// Package analyzer turns an analysis request into a full report: it fetches
// the page and probes the site when needed, then runs the metrics, scoring
// and recommendation core.
package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ai-mapper/backend/metrics"
	"github.com/ai-mapper/backend/recommend"
	"github.com/ai-mapper/backend/scoring"
	"github.com/ai-mapper/backend/signals"
)

const (
	// UserAgent identifies page fetches.
	UserAgent = "Earned-Owned-AI-Mapper/1.0"

	DefaultFetchTimeout = 15 * time.Second

	maxRedirects = 5
	maxPageBytes = 5 << 20
)

// Fetch outcomes reported to the Recorder.
const (
	OutcomeOK          = "ok"
	OutcomeHTTPError   = "http_error"
	OutcomeUnreachable = "unreachable"
)

var (
	// ErrInvalidRequest marks requests that cannot be analyzed as given.
	ErrInvalidRequest = errors.New("invalid analysis request")
	// ErrFetch marks failures to retrieve the requested page.
	ErrFetch = errors.New("unable to fetch URL")
)

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// Recorder receives operational measurements.
type Recorder interface {
	ObserveFetch(outcome string, d time.Duration)
	ObserveAnalysis(inputType string, failed bool, d time.Duration)
	ObserveScores(seo, geo int)
}

// UsageRecorder counts analyses for the usage statistics.
type UsageRecorder interface {
	RecordAnalysis(inputType string, failed bool)
}

// Options configure a Service. Zero values pick the defaults.
type Options struct {
	FetchTimeout   time.Duration
	SignalTimeout  time.Duration
	DisableSignals bool
	Logger         *zap.Logger
	Recorder       Recorder
	Usage          UsageRecorder
	// Now is the clock handed to the extractor and the signal collector.
	Now func() time.Time
}

// Service runs analyses. It is safe for concurrent use.
type Service struct {
	client   *http.Client
	signals  *signals.Collector
	logger   *zap.Logger
	recorder Recorder
	usage    UsageRecorder
	now      func() time.Time
}

// New creates a Service with a pooled HTTP client shared by page fetches
// and signal probes.
func New(opts Options) *Service {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Service{
		client: &http.Client{
			Timeout:   opts.FetchTimeout,
			Transport: transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		logger:   opts.Logger,
		recorder: opts.Recorder,
		usage:    opts.Usage,
		now:      opts.Now,
	}
	if !opts.DisableSignals {
		s.signals = signals.NewCollector(&http.Client{Transport: transport}, opts.SignalTimeout, opts.Logger)
		s.signals.Now = opts.Now
	}
	return s
}

// Close releases idle connections.
func (s *Service) Close() {
	s.client.CloseIdleConnections()
}

// NormalizeURL prefixes https:// when no scheme is given and checks that
// the result has a host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !schemePattern.MatchString(raw) {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("%w: invalid URL provided", ErrInvalidRequest)
	}
	return u.String(), nil
}

// inputTypeOf reports which source Analyze will use for req.
func inputTypeOf(req Request) metrics.InputType {
	switch {
	case req.HTML != "":
		return metrics.InputHTML
	case strings.TrimSpace(req.Text) != "":
		return metrics.InputText
	default:
		return metrics.InputURL
	}
}

// Analyze runs one request end to end. Errors wrap ErrInvalidRequest or
// ErrFetch, or are the context's error.
func (s *Service) Analyze(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	input := inputTypeOf(req)

	rep, err := s.analyze(ctx, req, input)

	if s.usage != nil {
		s.usage.RecordAnalysis(string(input), err != nil)
	}
	if s.recorder != nil {
		s.recorder.ObserveAnalysis(string(input), err != nil, time.Since(start))
		if err == nil {
			s.recorder.ObserveScores(rep.SEO.Total, rep.GEO.Total)
		}
	}
	if err != nil {
		s.logger.Warn("Analysis failed",
			zap.String("input", string(input)),
			zap.String("url", req.URL),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Analysis complete",
		zap.String("input", string(input)),
		zap.String("url", rep.URL),
		zap.Int("seo", rep.SEO.Total),
		zap.Int("geo", rep.GEO.Total),
		zap.Duration("elapsed", time.Since(start)))
	return rep, nil
}

func (s *Service) analyze(ctx context.Context, req Request, input metrics.InputType) (*Report, error) {
	var target string
	if strings.TrimSpace(req.URL) != "" {
		var err error
		if target, err = NormalizeURL(req.URL); err != nil {
			return nil, err
		}
	} else if input == metrics.InputURL {
		return nil, fmt.Errorf("%w: url, html or text is required", ErrInvalidRequest)
	}

	var (
		page *fetchedPage
		site *signals.Report
	)
	g, gctx := errgroup.WithContext(ctx)
	if input == metrics.InputURL {
		g.Go(func() error {
			p, err := s.fetch(gctx, target)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
	}
	if target != "" && !req.SkipSignals && s.signals != nil {
		g.Go(func() error {
			r := s.signals.Collect(gctx, target)
			site = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := metrics.Options{StatusCode: req.StatusCode, InputType: input, Now: s.now}
	if site != nil {
		opts.SiteSignals = site.SiteSignals()
	}

	var (
		rec    *metrics.Record
		markup string
	)
	switch input {
	case metrics.InputHTML:
		markup = req.HTML
		rec = metrics.Extract(markup, target, opts)
	case metrics.InputText:
		markup = metrics.TextToHTML(req.Text)
		rec = metrics.ExtractText(req.Text, target, opts)
	default:
		markup = page.html
		opts.StatusCode = page.status
		rec = metrics.Extract(markup, page.finalURL, opts)
	}

	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = recommend.TypeGeneral
	}

	seo := scoring.ComputeSEO(rec, markup)
	geo := scoring.ComputeGEO(rec, markup)

	rep := &Report{
		URL:             target,
		InputType:       input,
		ContentType:     contentType,
		AnalyzedAt:      s.now().UTC(),
		SEO:             ScoreCard{Result: seo, Pillars: scoring.SEOPillars(seo)},
		GEO:             ScoreCard{Result: geo, Pillars: scoring.GEOPillars(geo)},
		Recommendations: recommend.Build(rec, recommend.Context{ContentType: contentType}),
		TypeFindings:    recommend.TypeFindings(contentType, rec),
		SiteSignals:     site,
		Metrics:         rec,
	}
	if page != nil {
		rep.Performance = page.perf
	}
	if ind, ok := recommend.LookupIndustry(req.Industry); ok {
		seoCmp := recommend.Summarize(seo.Total, &ind.SEO)
		geoCmp := recommend.Summarize(geo.Total, &ind.GEO)
		rep.Industry = &ind
		rep.SEO.Benchmark = &seoCmp
		rep.GEO.Benchmark = &geoCmp
	}
	rep.Snapshot = buildSnapshot(rep)
	return rep, nil
}

type fetchedPage struct {
	html     string
	status   int
	finalURL string
	perf     *Performance
}

// fetch downloads target. Non-2xx answers are errors.
func (s *Service) fetch(ctx context.Context, target string) (*fetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.observeFetch(OutcomeUnreachable, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxPageBytes)); err != nil {
		s.observeFetch(OutcomeUnreachable, time.Since(start))
		return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	elapsed := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.observeFetch(OutcomeHTTPError, elapsed)
		return nil, fmt.Errorf("%w (%d)", ErrFetch, resp.StatusCode)
	}
	s.observeFetch(OutcomeOK, elapsed)

	page := &fetchedPage{
		html:     buf.String(),
		status:   resp.StatusCode,
		finalURL: resp.Request.URL.String(),
	}
	page.perf = measurePerformance(elapsed, len(page.html), 1+redirectCount(resp), resp.StatusCode)
	return page, nil
}

func (s *Service) observeFetch(outcome string, d time.Duration) {
	if s.recorder != nil {
		s.recorder.ObserveFetch(outcome, d)
	}
}

// redirectCount walks the redirect chain that led to resp.
func redirectCount(resp *http.Response) int {
	n := 0
	for r := resp.Request; r != nil && r.Response != nil; r = r.Response.Request {
		n++
	}
	return n
}
